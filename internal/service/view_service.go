package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// Predicate selects the items a filtered list displays. Nil accepts all.
type Predicate[T any] func(T) bool

// FilteredList is a read-only, ordered projection of one registry through the
// installed predicate. It is recomputed whenever its source changes.
type FilteredList[T any] struct {
	source    func(r *repository.Records) []T
	clone     func(T) T
	predicate Predicate[T]
	items     []T
}

func newFilteredList[T any](source func(r *repository.Records) []T, clone func(T) T) *FilteredList[T] {
	return &FilteredList[T]{source: source, clone: clone}
}

// Items returns deep copies of the displayed items.
func (l *FilteredList[T]) Items() []T {
	items := make([]T, len(l.items))
	for i, item := range l.items {
		items[i] = l.clone(item)
	}
	return items
}

// Len returns the number of displayed items.
func (l *FilteredList[T]) Len() int { return len(l.items) }

// At resolves a 1-based display index.
func (l *FilteredList[T]) At(index int) (T, error) {
	var zero T
	if index < 1 || index > len(l.items) {
		return zero, appErrors.Clone(appErrors.ErrInvalidIndex, fmt.Sprintf("index %d is not between 1 and %d", index, len(l.items)))
	}
	return l.clone(l.items[index-1]), nil
}

func (l *FilteredList[T]) refresh(r *repository.Records) {
	all := l.source(r)
	items := make([]T, 0, len(all))
	for _, item := range all {
		if l.predicate == nil || l.predicate(item) {
			items = append(items, item)
		}
	}
	l.items = items
}

// ViewService keeps one filtered list per entity type current with the store.
type ViewService struct {
	store       recordStore
	persons     *FilteredList[models.Person]
	students    *FilteredList[models.Student]
	tutorials   *FilteredList[models.Tutorial]
	assessments *FilteredList[models.Assessment]
	attendance  *FilteredList[models.Attendance]
}

type subscriber interface {
	Subscribe(fn repository.Listener, topics ...repository.Topic) func()
}

// NewViewService builds the lists and, when store supports it, subscribes
// them to registry changes.
func NewViewService(store recordStore) *ViewService {
	v := &ViewService{
		store:       store,
		persons:     newFilteredList(func(r *repository.Records) []models.Person { return r.Persons.List() }, models.Person.Clone),
		students:    newFilteredList(func(r *repository.Records) []models.Student { return r.Tutorials.Students() }, models.Student.Clone),
		tutorials:   newFilteredList(func(r *repository.Records) []models.Tutorial { return r.Tutorials.List() }, models.Tutorial.Clone),
		assessments: newFilteredList(func(r *repository.Records) []models.Assessment { return r.Assessments.List() }, models.Assessment.Clone),
		attendance:  newFilteredList(allAttendance, func(a models.Attendance) models.Attendance { return a }),
	}
	if sub, ok := store.(subscriber); ok {
		sub.Subscribe(v.onChange)
	}
	v.refreshAll()
	return v
}

func allAttendance(r *repository.Records) []models.Attendance {
	var cells []models.Attendance
	for _, t := range r.Tutorials.List() {
		cells = append(cells, t.Attendance...)
	}
	return cells
}

func (v *ViewService) onChange(topic repository.Topic) {
	_ = v.store.View(func(r *repository.Records) error {
		switch topic {
		case repository.TopicPersons:
			v.persons.refresh(r)
		case repository.TopicTutorials:
			v.students.refresh(r)
			v.tutorials.refresh(r)
			v.attendance.refresh(r)
		case repository.TopicAssessments:
			v.assessments.refresh(r)
		}
		return nil
	})
}

func (v *ViewService) refreshAll() {
	for _, topic := range repository.AllTopics {
		v.onChange(topic)
	}
}

func install[T any](v *ViewService, l *FilteredList[T], p Predicate[T]) {
	l.predicate = p
	_ = v.store.View(func(r *repository.Records) error {
		l.refresh(r)
		return nil
	})
}

// Persons returns the displayed persons.
func (v *ViewService) Persons() []models.Person { return v.persons.Items() }

// Students returns the displayed students.
func (v *ViewService) Students() []models.Student { return v.students.Items() }

// Tutorials returns the displayed tutorials.
func (v *ViewService) Tutorials() []models.Tutorial { return v.tutorials.Items() }

// Assessments returns the displayed assessments.
func (v *ViewService) Assessments() []models.Assessment { return v.assessments.Items() }

// Attendance returns the displayed attendance cells.
func (v *ViewService) Attendance() []models.Attendance { return v.attendance.Items() }

// UpdateFilteredPersonList installs p and recomputes the person list.
func (v *ViewService) UpdateFilteredPersonList(p Predicate[models.Person]) {
	install(v, v.persons, p)
}

// UpdateFilteredStudentList installs p and recomputes the student list.
func (v *ViewService) UpdateFilteredStudentList(p Predicate[models.Student]) {
	install(v, v.students, p)
}

// UpdateFilteredTutorialList installs p and recomputes the tutorial list.
func (v *ViewService) UpdateFilteredTutorialList(p Predicate[models.Tutorial]) {
	install(v, v.tutorials, p)
}

// UpdateFilteredAssessmentList installs p and recomputes the assessment list.
func (v *ViewService) UpdateFilteredAssessmentList(p Predicate[models.Assessment]) {
	install(v, v.assessments, p)
}

// UpdateFilteredAttendanceList installs p and recomputes the attendance list.
func (v *ViewService) UpdateFilteredAttendanceList(p Predicate[models.Attendance]) {
	install(v, v.attendance, p)
}

// PersonAt resolves the Nth displayed person.
func (v *ViewService) PersonAt(index int) (models.Person, error) { return v.persons.At(index) }

// StudentAt resolves the Nth displayed student.
func (v *ViewService) StudentAt(index int) (models.Student, error) { return v.students.At(index) }

// TutorialAt resolves the Nth displayed tutorial.
func (v *ViewService) TutorialAt(index int) (models.Tutorial, error) { return v.tutorials.At(index) }

// AssessmentAt resolves the Nth displayed assessment.
func (v *ViewService) AssessmentAt(index int) (models.Assessment, error) {
	return v.assessments.At(index)
}

// NameContainsKeywords matches persons whose name contains any keyword as a
// whole word, ignoring case.
func NameContainsKeywords(keywords []string) Predicate[models.Person] {
	return func(p models.Person) bool {
		for _, word := range strings.Fields(p.Name.String()) {
			for _, kw := range keywords {
				if strings.EqualFold(word, strings.TrimSpace(kw)) {
					return true
				}
			}
		}
		return false
	}
}

// TagContainsKeywords matches persons carrying a tag equal to any keyword,
// ignoring case.
func TagContainsKeywords(keywords []string) Predicate[models.Person] {
	return func(p models.Person) bool {
		for _, tag := range p.Tags {
			for _, kw := range keywords {
				if strings.EqualFold(string(tag), strings.TrimSpace(kw)) {
					return true
				}
			}
		}
		return false
	}
}

// TutorialNameIs matches the tutorial with the exact name.
func TutorialNameIs(name models.TutorialName) Predicate[models.Tutorial] {
	return func(t models.Tutorial) bool { return t.Name == name }
}

// StudentInTutorial matches students on the roster of the tutorial.
func StudentInTutorial(name models.TutorialName) Predicate[models.Student] {
	return func(s models.Student) bool { return s.TutorialName == name }
}

// AssessmentNameIs matches the assessment with the exact name.
func AssessmentNameIs(name models.AssessmentName) Predicate[models.Assessment] {
	return func(a models.Assessment) bool { return a.Name == name }
}

// AttendanceOf matches the cells of a tutorial, narrowed to one student when
// id is not empty.
func AttendanceOf(tutorial models.TutorialName, id models.StudentID) Predicate[models.Attendance] {
	return func(a models.Attendance) bool {
		return a.TutorialName == tutorial && (id == "" || a.StudentID == id)
	}
}
