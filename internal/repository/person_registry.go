package repository

import (
	"errors"

	"github.com/noah-isme/tutorial-records/internal/models"
)

// Sentinel errors returned by the registries. Services translate them into typed errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrInvalidCell = errors.New("attendance cell not found")
)

// PersonRegistry is the master list of people, unique on name, email and phone.
type PersonRegistry struct {
	items []models.Person
	dirty bool
}

func (r *PersonRegistry) clone() PersonRegistry {
	items := make([]models.Person, len(r.items))
	for i, p := range r.items {
		items[i] = p.Clone()
	}
	return PersonRegistry{items: items}
}

// List returns a copy of all persons in insertion order.
func (r *PersonRegistry) List() []models.Person {
	out := make([]models.Person, len(r.items))
	for i, p := range r.items {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of persons.
func (r *PersonRegistry) Len() int { return len(r.items) }

// Find returns the person with the given name, compared case-insensitively.
func (r *PersonRegistry) Find(name models.Name) (models.Person, bool) {
	if i := r.indexOf(name); i >= 0 {
		return r.items[i].Clone(), true
	}
	return models.Person{}, false
}

// ExistsByName reports whether a person with the name exists.
func (r *PersonRegistry) ExistsByName(name models.Name) bool { return r.indexOf(name) >= 0 }

// ExistsByEmail reports whether a person with the email exists.
func (r *PersonRegistry) ExistsByEmail(email models.Email) bool {
	for _, p := range r.items {
		if p.Email.Key() == email.Key() {
			return true
		}
	}
	return false
}

// ExistsByPhone reports whether a person with the phone exists.
func (r *PersonRegistry) ExistsByPhone(phone models.Phone) bool {
	for _, p := range r.items {
		if p.Phone == phone {
			return true
		}
	}
	return false
}

// Add appends a person. It fails with ErrDuplicate when name, email or phone collide.
func (r *PersonRegistry) Add(p models.Person) error {
	if r.collides(p, -1) {
		return ErrDuplicate
	}
	r.items = append(r.items, p.Clone())
	r.dirty = true
	return nil
}

// Set replaces the person named target with edited, re-checking uniqueness against the others.
func (r *PersonRegistry) Set(target models.Name, edited models.Person) error {
	i := r.indexOf(target)
	if i < 0 {
		return ErrNotFound
	}
	if r.collides(edited, i) {
		return ErrDuplicate
	}
	r.items[i] = edited.Clone()
	r.dirty = true
	return nil
}

// Remove deletes the person with the given name. It does not touch rosters.
func (r *PersonRegistry) Remove(name models.Name) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	r.dirty = true
	return nil
}

func (r *PersonRegistry) indexOf(name models.Name) int {
	for i, p := range r.items {
		if p.Name.Equal(name) {
			return i
		}
	}
	return -1
}

func (r *PersonRegistry) collides(p models.Person, skip int) bool {
	for i, existing := range r.items {
		if i == skip {
			continue
		}
		if existing.Name.Equal(p.Name) || existing.Email.Key() == p.Email.Key() || existing.Phone == p.Phone {
			return true
		}
	}
	return false
}
