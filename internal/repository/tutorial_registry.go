package repository

import (
	"github.com/noah-isme/tutorial-records/internal/models"
)

// TutorialRegistry holds tutorial groups together with their rosters and
// attendance grids. Every tutorial keeps exactly one cell per roster student
// per active week.
type TutorialRegistry struct {
	items []models.Tutorial
	dirty bool
}

func (r *TutorialRegistry) clone() TutorialRegistry {
	items := make([]models.Tutorial, len(r.items))
	for i, t := range r.items {
		items[i] = t.Clone()
	}
	return TutorialRegistry{items: items}
}

// List returns a copy of all tutorials in insertion order.
func (r *TutorialRegistry) List() []models.Tutorial {
	out := make([]models.Tutorial, len(r.items))
	for i, t := range r.items {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tutorials.
func (r *TutorialRegistry) Len() int { return len(r.items) }

// Find returns the tutorial with the exact name.
func (r *TutorialRegistry) Find(name models.TutorialName) (models.Tutorial, bool) {
	if i := r.indexOf(name); i >= 0 {
		return r.items[i].Clone(), true
	}
	return models.Tutorial{}, false
}

// Contains reports whether a tutorial with the name exists.
func (r *TutorialRegistry) Contains(name models.TutorialName) bool { return r.indexOf(name) >= 0 }

// Add appends a tutorial and builds its attendance grid from the roster.
func (r *TutorialRegistry) Add(t models.Tutorial) error {
	if r.Contains(t.Name) {
		return ErrDuplicate
	}
	t = t.Clone()
	t.Attendance = buildGrid(t, nil)
	r.items = append(r.items, t)
	r.dirty = true
	return nil
}

// Remove deletes the tutorial with its roster and attendance.
func (r *TutorialRegistry) Remove(name models.TutorialName) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	r.dirty = true
	return nil
}

// Edit replaces venue, day, time and weeks of the named tutorial. Cells of
// weeks that are no longer active are dropped and cells for new weeks are
// created absent; existing cells keep presence and comment.
func (r *TutorialRegistry) Edit(name models.TutorialName, venue models.Venue, day models.Day, at models.Time, weeks int) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	t := &r.items[i]
	t.Venue = venue
	t.Day = day
	t.Time = at
	t.Weeks = weeks
	t.Attendance = buildGrid(*t, t.Attendance)
	r.dirty = true
	return nil
}

// AddStudent appends a student to the tutorial roster and creates absent
// cells for every active week.
func (r *TutorialRegistry) AddStudent(name models.TutorialName, s models.Student) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	t := &r.items[i]
	if t.StudentIndex(s.StudentID) >= 0 {
		return ErrDuplicate
	}
	s = s.Clone()
	s.TutorialName = name
	t.Roster = append(t.Roster, s)
	t.Attendance = buildGrid(*t, t.Attendance)
	r.dirty = true
	return nil
}

// RemoveStudent drops the student from the roster together with its cells.
func (r *TutorialRegistry) RemoveStudent(name models.TutorialName, id models.StudentID) (models.Student, error) {
	i := r.indexOf(name)
	if i < 0 {
		return models.Student{}, ErrNotFound
	}
	t := &r.items[i]
	j := t.StudentIndex(id)
	if j < 0 {
		return models.Student{}, ErrNotFound
	}
	removed := t.Roster[j]
	t.Roster = append(t.Roster[:j], t.Roster[j+1:]...)
	t.Attendance = buildGrid(*t, t.Attendance)
	r.dirty = true
	return removed, nil
}

// RenameStudent updates the name the student is linked to its person by,
// in the roster and in every attendance cell. Contact fields are left alone.
func (r *TutorialRegistry) RenameStudent(id models.StudentID, name models.Name) bool {
	renamed := false
	for i := range r.items {
		t := &r.items[i]
		j := t.StudentIndex(id)
		if j < 0 {
			continue
		}
		t.Roster[j].Name = name
		for k := range t.Attendance {
			if t.Attendance[k].StudentID == id {
				t.Attendance[k].Name = name
			}
		}
		renamed = true
	}
	if renamed {
		r.dirty = true
	}
	return renamed
}

// Students returns every enrolled student across all tutorials.
func (r *TutorialRegistry) Students() []models.Student {
	var out []models.Student
	for _, t := range r.items {
		for _, s := range t.Roster {
			out = append(out, s.Clone())
		}
	}
	return out
}

// FindStudentByName finds the student enrolled under the person name.
func (r *TutorialRegistry) FindStudentByName(name models.Name) (models.Student, bool) {
	for _, t := range r.items {
		for _, s := range t.Roster {
			if s.Name.Equal(name) {
				return s.Clone(), true
			}
		}
	}
	return models.Student{}, false
}

// FindStudentByID finds the student holding the id in any tutorial.
func (r *TutorialRegistry) FindStudentByID(id models.StudentID) (models.Student, bool) {
	for _, t := range r.items {
		if j := t.StudentIndex(id); j >= 0 {
			return t.Roster[j].Clone(), true
		}
	}
	return models.Student{}, false
}

// Cell returns a single attendance cell.
func (r *TutorialRegistry) Cell(name models.TutorialName, id models.StudentID, week int) (models.Attendance, error) {
	t, k, err := r.cell(name, id, week)
	if err != nil {
		return models.Attendance{}, err
	}
	return t.Attendance[k], nil
}

// SetPresence flips the presence flag of one cell.
func (r *TutorialRegistry) SetPresence(name models.TutorialName, id models.StudentID, week int, present bool) error {
	t, k, err := r.cell(name, id, week)
	if err != nil {
		return err
	}
	t.Attendance[k].Present = present
	r.dirty = true
	return nil
}

// SetPresenceForClass flips the presence flag of every cell in the week. The
// week is validated before any cell changes; an empty roster is a no-op.
func (r *TutorialRegistry) SetPresenceForClass(name models.TutorialName, week int, present bool) error {
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	t := &r.items[i]
	if !t.HasWeek(week) {
		return ErrInvalidCell
	}
	for k := range t.Attendance {
		if t.Attendance[k].Week == week {
			t.Attendance[k].Present = present
			r.dirty = true
		}
	}
	return nil
}

// SetComment replaces the comment of one cell. An empty text clears it.
func (r *TutorialRegistry) SetComment(name models.TutorialName, id models.StudentID, week int, text string) error {
	t, k, err := r.cell(name, id, week)
	if err != nil {
		return err
	}
	t.Attendance[k].Comment = text
	r.dirty = true
	return nil
}

func (r *TutorialRegistry) cell(name models.TutorialName, id models.StudentID, week int) (*models.Tutorial, int, error) {
	i := r.indexOf(name)
	if i < 0 {
		return nil, -1, ErrNotFound
	}
	t := &r.items[i]
	if !t.HasWeek(week) || t.StudentIndex(id) < 0 {
		return nil, -1, ErrInvalidCell
	}
	for k, a := range t.Attendance {
		if a.StudentID == id && a.Week == week {
			return t, k, nil
		}
	}
	return nil, -1, ErrInvalidCell
}

func (r *TutorialRegistry) indexOf(name models.TutorialName) int {
	for i, t := range r.items {
		if t.Name == name {
			return i
		}
	}
	return -1
}

type cellKey struct {
	id   models.StudentID
	week int
}

// buildGrid lays out roster x active weeks in roster order, reusing the
// presence and comment of any matching cell in previous.
func buildGrid(t models.Tutorial, previous []models.Attendance) []models.Attendance {
	known := make(map[cellKey]models.Attendance, len(previous))
	for _, a := range previous {
		known[cellKey{a.StudentID, a.Week}] = a
	}
	grid := make([]models.Attendance, 0, len(t.Roster)*t.Weeks)
	for _, s := range t.Roster {
		for _, week := range t.ActiveWeeks() {
			cell := models.Attendance{TutorialName: t.Name, StudentID: s.StudentID, Name: s.Name, Week: week}
			if prev, ok := known[cellKey{s.StudentID, week}]; ok {
				cell.Present = prev.Present
				cell.Comment = prev.Comment
			}
			grid = append(grid, cell)
		}
	}
	return grid
}
