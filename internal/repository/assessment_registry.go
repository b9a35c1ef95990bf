package repository

import (
	"github.com/noah-isme/tutorial-records/internal/models"
)

// AssessmentRegistry is the assessment ledger. Each assessment keeps at most
// one result per student.
type AssessmentRegistry struct {
	items []models.Assessment
	dirty bool
}

func (r *AssessmentRegistry) clone() AssessmentRegistry {
	items := make([]models.Assessment, len(r.items))
	for i, a := range r.items {
		items[i] = a.Clone()
	}
	return AssessmentRegistry{items: items}
}

// List returns a copy of all assessments in insertion order.
func (r *AssessmentRegistry) List() []models.Assessment {
	out := make([]models.Assessment, len(r.items))
	for i, a := range r.items {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of assessments.
func (r *AssessmentRegistry) Len() int { return len(r.items) }

// Find returns the assessment with the exact name.
func (r *AssessmentRegistry) Find(name models.AssessmentName) (models.Assessment, bool) {
	if i := r.indexOf(name); i >= 0 {
		return r.items[i].Clone(), true
	}
	return models.Assessment{}, false
}

// Add appends an assessment.
func (r *AssessmentRegistry) Add(a models.Assessment) error {
	if r.indexOf(a.Name) >= 0 {
		return ErrDuplicate
	}
	r.items = append(r.items, a.Clone())
	r.dirty = true
	return nil
}

// Remove deletes an assessment and its results.
func (r *AssessmentRegistry) Remove(name models.AssessmentName) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	r.dirty = true
	return nil
}

// AddResult appends a result. The score range is the caller's concern.
func (r *AssessmentRegistry) AddResult(name models.AssessmentName, result models.StudentResult) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	a := &r.items[i]
	if a.ResultIndex(result.StudentID) >= 0 {
		return ErrDuplicate
	}
	a.Results = append(a.Results, result)
	r.dirty = true
	return nil
}

// SetResult replaces the student's result in place, or appends it when absent.
func (r *AssessmentRegistry) SetResult(name models.AssessmentName, result models.StudentResult) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	a := &r.items[i]
	if j := a.ResultIndex(result.StudentID); j >= 0 {
		a.Results[j] = result
	} else {
		a.Results = append(a.Results, result)
	}
	r.dirty = true
	return nil
}

// RemoveResultsFor drops every result of the student scoped to the tutorial
// and returns how many were removed.
func (r *AssessmentRegistry) RemoveResultsFor(id models.StudentID, tutorial models.TutorialName) int {
	return r.removeWhere(func(res models.StudentResult) bool {
		return res.StudentID == id && res.TutorialName == tutorial
	})
}

// RemoveResultsForTutorial drops every result scoped to the tutorial.
func (r *AssessmentRegistry) RemoveResultsForTutorial(tutorial models.TutorialName) int {
	return r.removeWhere(func(res models.StudentResult) bool { return res.TutorialName == tutorial })
}

// RescopeResults moves the student's results from one tutorial to another.
func (r *AssessmentRegistry) RescopeResults(id models.StudentID, from, to models.TutorialName) int {
	moved := 0
	for i := range r.items {
		for j := range r.items[i].Results {
			res := &r.items[i].Results[j]
			if res.StudentID == id && res.TutorialName == from {
				res.TutorialName = to
				moved++
			}
		}
	}
	if moved > 0 {
		r.dirty = true
	}
	return moved
}

func (r *AssessmentRegistry) removeWhere(match func(models.StudentResult) bool) int {
	removed := 0
	for i := range r.items {
		kept := r.items[i].Results[:0]
		for _, res := range r.items[i].Results {
			if match(res) {
				removed++
				continue
			}
			kept = append(kept, res)
		}
		r.items[i].Results = kept
	}
	if removed > 0 {
		r.dirty = true
	}
	return removed
}

func (r *AssessmentRegistry) indexOf(name models.AssessmentName) int {
	for i, a := range r.items {
		if a.Name == name {
			return i
		}
	}
	return -1
}
