package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// PersonEdit lists the fields to change. Nil fields are kept.
type PersonEdit struct {
	Name    *models.Name
	Phone   *models.Phone
	Email   *models.Email
	Address *models.Address
	Tags    *[]models.Tag
}

// IsEmpty reports whether no field is set.
func (e PersonEdit) IsEmpty() bool {
	return e.Name == nil && e.Phone == nil && e.Email == nil && e.Address == nil && e.Tags == nil
}

func (e PersonEdit) apply(p models.Person) models.Person {
	edited := p.Clone()
	if e.Name != nil {
		edited.Name = *e.Name
	}
	if e.Phone != nil {
		edited.Phone = *e.Phone
	}
	if e.Email != nil {
		edited.Email = *e.Email
	}
	if e.Address != nil {
		edited.Address = *e.Address
	}
	if e.Tags != nil {
		edited = models.NewPerson(edited.Name, edited.Phone, edited.Email, edited.Address, *e.Tags)
	}
	return edited
}

// PersonService manages the person registry.
type PersonService struct {
	store  recordStore
	logger *zap.Logger
}

// NewPersonService constructs PersonService.
func NewPersonService(store recordStore, logger *zap.Logger) *PersonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonService{store: store, logger: logger}
}

// Add registers a new person. Name, email and phone must all be unused.
func (s *PersonService) Add(ctx context.Context, p models.Person) error {
	err := s.store.Update(ctx, func(r *repository.Records) error {
		if err := r.Persons.Add(p); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicatePerson, "")
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}
	s.logger.Info("person added", zap.String("name", p.Name.String()))
	return nil
}

// Edit replaces fields of the person named target. A rename also relinks the
// person's student record; contact fields of the student stay as enrolled.
func (s *PersonService) Edit(ctx context.Context, target models.Name, edit PersonEdit) (models.Person, error) {
	if edit.IsEmpty() {
		return models.Person{}, appErrors.Clone(appErrors.ErrValidation, "at least one field to edit must be provided")
	}
	var edited models.Person
	err := s.store.Update(ctx, func(r *repository.Records) error {
		current, ok := r.Persons.Find(target)
		if !ok {
			return appErrors.Clone(appErrors.ErrPersonNotFound, "")
		}
		edited = edit.apply(current)
		if err := r.Persons.Set(target, edited); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicatePerson, "")
		}
		if edited.Name != current.Name {
			if student, ok := r.Tutorials.FindStudentByName(current.Name); ok {
				r.Tutorials.RenameStudent(student.StudentID, edited.Name)
			}
		}
		return nil
	})
	if err != nil {
		return models.Person{}, storeError(err)
	}
	s.logger.Info("person edited", zap.String("target", target.String()), zap.String("name", edited.Name.String()))
	return edited, nil
}

// Delete removes a person. A student record held by the person is unenrolled
// in the same mutation, taking its attendance and results with it.
func (s *PersonService) Delete(ctx context.Context, name models.Name) (models.Person, error) {
	var removed models.Person
	err := s.store.Update(ctx, func(r *repository.Records) error {
		person, ok := r.Persons.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrPersonNotFound, "")
		}
		if student, ok := r.Tutorials.FindStudentByName(person.Name); ok {
			if err := unenroll(r, student.StudentID, student.TutorialName); err != nil {
				return err
			}
		}
		if err := r.Persons.Remove(person.Name); err != nil {
			return appErrors.Clone(appErrors.ErrPersonNotFound, "")
		}
		removed = person
		return nil
	})
	if err != nil {
		return models.Person{}, storeError(err)
	}
	s.logger.Info("person deleted", zap.String("name", removed.Name.String()))
	return removed, nil
}

// Find looks a person up by name.
func (s *PersonService) Find(name models.Name) (models.Person, error) {
	var person models.Person
	err := s.store.View(func(r *repository.Records) error {
		p, ok := r.Persons.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrPersonNotFound, "")
		}
		person = p
		return nil
	})
	return person, err
}
