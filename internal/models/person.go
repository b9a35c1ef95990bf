package models

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

var (
	nameRegex  = regexp.MustCompile(`^[[:alnum:]][[:alnum:] ]*$`)
	phoneRegex = regexp.MustCompile(`^\d{3,}$`)
	tagRegex   = regexp.MustCompile(`^[[:alnum:]]+$`)

	validate = validator.New()
)

// Name is a person's full name. Names compare case-insensitively.
type Name string

// NewName validates and trims a full name.
func NewName(raw string) (Name, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	if !nameRegex.MatchString(trimmed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "names should only contain alphanumeric characters and spaces, and it should not be blank")
	}
	return Name(trimmed), nil
}

// Key returns the normalised form used for uniqueness checks.
func (n Name) Key() string { return strings.ToLower(string(n)) }

// Equal reports whether both names refer to the same person.
func (n Name) Equal(other Name) bool { return strings.EqualFold(string(n), string(other)) }

func (n Name) String() string { return string(n) }

// Phone is a phone number of at least three digits.
type Phone string

// NewPhone validates a phone number.
func NewPhone(raw string) (Phone, error) {
	trimmed := strings.TrimSpace(raw)
	if !phoneRegex.MatchString(trimmed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "phone numbers should only contain numbers, and it should be at least 3 digits long")
	}
	return Phone(trimmed), nil
}

func (p Phone) String() string { return string(p) }

// Email is an email address. Emails compare case-insensitively.
type Email string

// NewEmail validates an email address.
func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)
	if err := validate.Var(trimmed, "required,email"); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, "emails should be of the format local-part@domain")
	}
	return Email(trimmed), nil
}

// Key returns the normalised form used for uniqueness checks.
func (e Email) Key() string { return strings.ToLower(string(e)) }

func (e Email) String() string { return string(e) }

// Address is a free-text postal address.
type Address string

// NewAddress rejects blank addresses.
func NewAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "addresses can take any values, and it should not be blank")
	}
	return Address(trimmed), nil
}

func (a Address) String() string { return string(a) }

// Tag is a single alphanumeric label attached to a person.
type Tag string

// NewTag validates a tag name.
func NewTag(raw string) (Tag, error) {
	trimmed := strings.TrimSpace(raw)
	if !tagRegex.MatchString(trimmed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "tag names should be alphanumeric")
	}
	return Tag(trimmed), nil
}

// NewTags validates each raw tag and returns a deduplicated, sorted set.
func NewTags(raw []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(raw))
	for _, r := range raw {
		tag, err := NewTag(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return normaliseTags(tags), nil
}

func normaliseTags(tags []Tag) []Tag {
	seen := make(map[Tag]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Person is an entry of the person registry.
type Person struct {
	Name    Name    `json:"name"`
	Phone   Phone   `json:"phone"`
	Email   Email   `json:"email"`
	Address Address `json:"address"`
	Tags    []Tag   `json:"tags"`
}

// NewPerson assembles a person with a normalised tag set.
func NewPerson(name Name, phone Phone, email Email, address Address, tags []Tag) Person {
	return Person{Name: name, Phone: phone, Email: email, Address: address, Tags: normaliseTags(tags)}
}

// Clone returns a deep copy of the person.
func (p Person) Clone() Person {
	p.Tags = append([]Tag(nil), p.Tags...)
	return p
}

// HasTag reports whether the person carries the tag.
func (p Person) HasTag(tag Tag) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate re-checks every field, used when importing snapshots.
func (p Person) Validate() error {
	if _, err := NewName(string(p.Name)); err != nil {
		return err
	}
	if _, err := NewPhone(string(p.Phone)); err != nil {
		return err
	}
	if _, err := NewEmail(string(p.Email)); err != nil {
		return err
	}
	if _, err := NewAddress(string(p.Address)); err != nil {
		return err
	}
	for _, tag := range p.Tags {
		if _, err := NewTag(string(tag)); err != nil {
			return err
		}
	}
	return nil
}
