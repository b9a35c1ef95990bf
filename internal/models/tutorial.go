package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

var (
	tutorialNameRegex = regexp.MustCompile(`^[[:alnum:]][[:alnum:]_-]*$`)
	studentIDRegex    = regexp.MustCompile(`^[Ee]\d{7}$`)
)

// TutorialName identifies a tutorial group, e.g. "T01". Names match exactly.
type TutorialName string

// NewTutorialName validates a tutorial name token.
func NewTutorialName(raw string) (TutorialName, error) {
	trimmed := strings.TrimSpace(raw)
	if !tutorialNameRegex.MatchString(trimmed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "tutorial names should be a single alphanumeric token and should not be blank")
	}
	return TutorialName(trimmed), nil
}

func (t TutorialName) String() string { return string(t) }

// Venue is where a tutorial meets.
type Venue string

// NewVenue rejects blank venues.
func NewVenue(raw string) (Venue, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "venue should not be blank")
	}
	return Venue(trimmed), nil
}

// Day is the meeting weekday stored as its three-letter abbreviation.
type Day string

var weekdays = map[string]time.Weekday{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		weekdays[full] = d
		weekdays[full[:3]] = d
	}
}

// NewDay accepts full weekday names or three-letter abbreviations, case-insensitively.
func NewDay(raw string) (Day, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "day should be a weekday name or its three-letter abbreviation, e.g. Mon or Monday")
	}
	return Day(d.String()[:3]), nil
}

// Weekday converts the day back to time.Weekday.
func (d Day) Weekday() time.Weekday { return weekdays[strings.ToLower(string(d))] }

// Time is the meeting time in 24-hour HH:MM form.
type Time string

// NewTime validates an HH:MM time.
func NewTime(raw string) (Time, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.Parse("15:04", trimmed)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, "time should be in HH:MM format")
	}
	return Time(parsed.Format("15:04")), nil
}

// ValidateWeeks checks that a tutorial runs between 1 and max weeks.
func ValidateWeeks(weeks, max int) error {
	if weeks < 1 || weeks > max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weeks should be between 1 and %d", max))
	}
	return nil
}

// StudentID is a matriculation id, "E" followed by seven digits. Stored upper-case.
type StudentID string

// NewStudentID validates and normalises a student id.
func NewStudentID(raw string) (StudentID, error) {
	trimmed := strings.TrimSpace(raw)
	if !studentIDRegex.MatchString(trimmed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "student id should start with E followed by 7 digits")
	}
	return StudentID(strings.ToUpper(trimmed)), nil
}

func (s StudentID) String() string { return string(s) }

// Student is a person enrolled in a tutorial. Contact fields are copied from
// the person at enrollment and are not kept in sync afterwards.
type Student struct {
	Name         Name         `json:"name"`
	Phone        Phone        `json:"phone"`
	Email        Email        `json:"email"`
	Address      Address      `json:"address"`
	Tags         []Tag        `json:"tags"`
	StudentID    StudentID    `json:"student_id"`
	TutorialName TutorialName `json:"tutorial_name"`
}

// NewStudentFromPerson copies the person's contact fields into a new student.
func NewStudentFromPerson(p Person, id StudentID, tutorial TutorialName) Student {
	c := p.Clone()
	return Student{
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Tags:         c.Tags,
		StudentID:    id,
		TutorialName: tutorial,
	}
}

// Validate re-checks the copied contact fields and the student id.
func (s Student) Validate() error {
	contact := Person{Name: s.Name, Phone: s.Phone, Email: s.Email, Address: s.Address, Tags: s.Tags}
	if err := contact.Validate(); err != nil {
		return err
	}
	_, err := NewStudentID(string(s.StudentID))
	return err
}

// Clone returns a deep copy of the student.
func (s Student) Clone() Student {
	s.Tags = append([]Tag(nil), s.Tags...)
	return s
}

// Tutorial is a tutorial group with its roster and attendance grid.
type Tutorial struct {
	Name       TutorialName `json:"name"`
	Venue      Venue        `json:"venue"`
	Day        Day          `json:"day"`
	Time       Time         `json:"time"`
	Weeks      int          `json:"weeks"`
	Roster     []Student    `json:"roster"`
	Attendance []Attendance `json:"attendance"`
}

// NewTutorial creates a tutorial with an empty roster.
func NewTutorial(name TutorialName, venue Venue, day Day, at Time, weeks int) Tutorial {
	return Tutorial{Name: name, Venue: venue, Day: day, Time: at, Weeks: weeks, Roster: []Student{}, Attendance: []Attendance{}}
}

// HasWeek reports whether week is one of the tutorial's active weeks.
func (t Tutorial) HasWeek(week int) bool { return week >= 1 && week <= t.Weeks }

// ActiveWeeks lists the active week numbers in order.
func (t Tutorial) ActiveWeeks() []int {
	weeks := make([]int, 0, t.Weeks)
	for w := 1; w <= t.Weeks; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

// StudentIndex returns the roster position of the student id, or -1.
func (t Tutorial) StudentIndex(id StudentID) int {
	for i, s := range t.Roster {
		if s.StudentID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the tutorial.
func (t Tutorial) Clone() Tutorial {
	roster := make([]Student, len(t.Roster))
	for i, s := range t.Roster {
		roster[i] = s.Clone()
	}
	t.Roster = roster
	t.Attendance = append([]Attendance(nil), t.Attendance...)
	return t
}
