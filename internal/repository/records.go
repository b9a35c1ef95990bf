package repository

import (
	"errors"
	"fmt"

	"github.com/noah-isme/tutorial-records/internal/models"
)

// ErrInvalidSnapshot is returned when a snapshot breaks a record invariant.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Records is the complete record model: people, tutorials with their rosters
// and attendance grids, and the assessment ledger.
type Records struct {
	Persons     PersonRegistry
	Tutorials   TutorialRegistry
	Assessments AssessmentRegistry
}

// NewRecords returns an empty record model.
func NewRecords() *Records { return &Records{} }

func (r *Records) clone() *Records {
	return &Records{
		Persons:     r.Persons.clone(),
		Tutorials:   r.Tutorials.clone(),
		Assessments: r.Assessments.clone(),
	}
}

func (r *Records) dirtyTopics() []Topic {
	var topics []Topic
	if r.Persons.dirty {
		topics = append(topics, TopicPersons)
	}
	if r.Tutorials.dirty {
		topics = append(topics, TopicTutorials)
	}
	if r.Assessments.dirty {
		topics = append(topics, TopicAssessments)
	}
	return topics
}

func (r *Records) clearDirty() {
	r.Persons.dirty = false
	r.Tutorials.dirty = false
	r.Assessments.dirty = false
}

// Snapshot exports the full state.
func (r *Records) Snapshot() models.Snapshot {
	return models.Snapshot{
		Version:     models.SnapshotVersion,
		Persons:     r.Persons.List(),
		Tutorials:   r.Tutorials.List(),
		Assessments: r.Assessments.List(),
	}
}

// RecordsFromSnapshot rebuilds a record model, re-validating every field and
// relationship. Attendance grids are laid out again from the rosters; cells
// that do not belong to roster x active weeks are discarded.
func RecordsFromSnapshot(snap models.Snapshot, maxWeeks int) (*Records, error) {
	if snap.Version > models.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	records := NewRecords()

	for _, p := range snap.Persons {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: person %q: %v", ErrInvalidSnapshot, p.Name, err)
		}
		p = models.NewPerson(p.Name, p.Phone, p.Email, p.Address, p.Tags)
		if err := records.Persons.Add(p); err != nil {
			return nil, fmt.Errorf("%w: person %q is not unique", ErrInvalidSnapshot, p.Name)
		}
	}

	owners := map[models.StudentID]models.Name{}
	enrolled := map[string]models.TutorialName{}
	for _, t := range snap.Tutorials {
		tut, err := validateTutorial(t, maxWeeks)
		if err != nil {
			return nil, fmt.Errorf("%w: tutorial %q: %v", ErrInvalidSnapshot, t.Name, err)
		}
		if err := records.Tutorials.Add(tut); err != nil {
			return nil, fmt.Errorf("%w: tutorial %q is not unique", ErrInvalidSnapshot, t.Name)
		}
		for _, s := range t.Roster {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("%w: student %q: %v", ErrInvalidSnapshot, s.Name, err)
			}
			name, _ := models.NewName(string(s.Name))
			person, ok := records.Persons.Find(name)
			if !ok {
				return nil, fmt.Errorf("%w: student %q has no person record", ErrInvalidSnapshot, s.Name)
			}
			id, _ := models.NewStudentID(string(s.StudentID))
			contact := models.NewPerson(person.Name, s.Phone, s.Email, s.Address, s.Tags)
			s = models.NewStudentFromPerson(contact, id, tut.Name)
			if owner, ok := owners[s.StudentID]; ok && !owner.Equal(s.Name) {
				return nil, fmt.Errorf("%w: student id %s is held by %q and %q", ErrInvalidSnapshot, s.StudentID, owner, s.Name)
			}
			if other, ok := enrolled[s.Name.Key()]; ok {
				return nil, fmt.Errorf("%w: %q is enrolled in %s and %s", ErrInvalidSnapshot, s.Name, other, t.Name)
			}
			if err := records.Tutorials.AddStudent(tut.Name, s); err != nil {
				return nil, fmt.Errorf("%w: student %s is listed twice in %s", ErrInvalidSnapshot, s.StudentID, t.Name)
			}
			owners[s.StudentID] = s.Name
			enrolled[s.Name.Key()] = tut.Name
		}
		for _, cell := range t.Attendance {
			if err := records.Tutorials.SetPresence(tut.Name, cell.StudentID, cell.Week, cell.Present); err != nil {
				continue
			}
			_ = records.Tutorials.SetComment(tut.Name, cell.StudentID, cell.Week, cell.Comment)
		}
	}

	for _, a := range snap.Assessments {
		if _, err := models.NewAssessmentName(string(a.Name)); err != nil {
			return nil, fmt.Errorf("%w: assessment %q: %v", ErrInvalidSnapshot, a.Name, err)
		}
		fresh, err := models.NewAssessment(a.Name, a.MaxScore)
		if err != nil {
			return nil, fmt.Errorf("%w: assessment %q: %v", ErrInvalidSnapshot, a.Name, err)
		}
		if err := records.Assessments.Add(fresh); err != nil {
			return nil, fmt.Errorf("%w: assessment %q is not unique", ErrInvalidSnapshot, a.Name)
		}
		for _, res := range a.Results {
			t, ok := records.Tutorials.Find(res.TutorialName)
			if !ok || t.StudentIndex(res.StudentID) < 0 {
				return nil, fmt.Errorf("%w: result for %s in %s has no enrolled student", ErrInvalidSnapshot, res.StudentID, res.TutorialName)
			}
			if err := fresh.CheckScore(res.Score); err != nil {
				return nil, fmt.Errorf("%w: result for %s: %v", ErrInvalidSnapshot, res.StudentID, err)
			}
			if err := records.Assessments.AddResult(a.Name, res); err != nil {
				return nil, fmt.Errorf("%w: duplicate result for %s in %q", ErrInvalidSnapshot, res.StudentID, a.Name)
			}
		}
	}

	records.clearDirty()
	return records, nil
}

func validateTutorial(t models.Tutorial, maxWeeks int) (models.Tutorial, error) {
	name, err := models.NewTutorialName(string(t.Name))
	if err != nil {
		return models.Tutorial{}, err
	}
	venue, err := models.NewVenue(string(t.Venue))
	if err != nil {
		return models.Tutorial{}, err
	}
	day, err := models.NewDay(string(t.Day))
	if err != nil {
		return models.Tutorial{}, err
	}
	at, err := models.NewTime(string(t.Time))
	if err != nil {
		return models.Tutorial{}, err
	}
	if err := models.ValidateWeeks(t.Weeks, maxWeeks); err != nil {
		return models.Tutorial{}, err
	}
	return models.NewTutorial(name, venue, day, at, t.Weeks), nil
}
