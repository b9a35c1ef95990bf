package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// EnrollmentService links persons to tutorial rosters.
type EnrollmentService struct {
	store  recordStore
	logger *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store recordStore, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, logger: logger}
}

// Enroll adds the named person to a tutorial roster under id. The student
// copies the person's contact fields as they are now; later person edits do
// not reach it. Absent cells are created for every active week, including
// weeks that have already passed.
func (s *EnrollmentService) Enroll(ctx context.Context, name models.Name, id models.StudentID, tutorial models.TutorialName) (models.Student, error) {
	var student models.Student
	err := s.store.Update(ctx, func(r *repository.Records) error {
		person, ok := r.Persons.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrPersonNotFound, "")
		}
		if !r.Tutorials.Contains(tutorial) {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		student = models.NewStudentFromPerson(person, id, tutorial)
		if existing, ok := r.Tutorials.FindStudentByName(person.Name); ok {
			if existing.TutorialName == tutorial && existing.StudentID == id {
				return appErrors.Clone(appErrors.ErrDuplicateStudent, "")
			}
			return appErrors.Clone(appErrors.ErrDuplicateStudent, "person is already enrolled as "+existing.StudentID.String()+" in "+existing.TutorialName.String())
		}
		if holder, ok := r.Tutorials.FindStudentByID(id); ok {
			return appErrors.Clone(appErrors.ErrDuplicateStudent, "student id is already held by "+holder.Name.String())
		}
		if err := r.Tutorials.AddStudent(tutorial, student); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicateStudent, "")
		}
		return nil
	})
	if err != nil {
		return models.Student{}, storeError(err)
	}
	s.logger.Info("student enrolled",
		zap.String("name", name.String()),
		zap.String("student_id", id.String()),
		zap.String("tutorial", tutorial.String()),
	)
	return student, nil
}

// Unenroll removes a student from a roster with its attendance cells and the
// results scoped to that tutorial.
func (s *EnrollmentService) Unenroll(ctx context.Context, id models.StudentID, tutorial models.TutorialName) (models.Student, error) {
	var removed models.Student
	err := s.store.Update(ctx, func(r *repository.Records) error {
		t, ok := r.Tutorials.Find(tutorial)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		i := t.StudentIndex(id)
		if i < 0 {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		removed = t.Roster[i]
		return unenroll(r, id, tutorial)
	})
	if err != nil {
		return models.Student{}, storeError(err)
	}
	s.logger.Info("student unenrolled", zap.String("student_id", id.String()), zap.String("tutorial", tutorial.String()))
	return removed, nil
}

// Transfer moves a student to another tutorial in one step. Attendance in
// the old tutorial is dropped, fresh absent cells are created in the new one
// and existing results follow the student.
func (s *EnrollmentService) Transfer(ctx context.Context, id models.StudentID, from, to models.TutorialName) (models.Student, error) {
	var moved models.Student
	err := s.store.Update(ctx, func(r *repository.Records) error {
		source, ok := r.Tutorials.Find(from)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		if !r.Tutorials.Contains(to) {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		i := source.StudentIndex(id)
		if i < 0 {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		if from == to {
			return appErrors.Clone(appErrors.ErrDuplicateStudent, "")
		}
		student, err := r.Tutorials.RemoveStudent(from, id)
		if err != nil {
			return translateNotFound(err, appErrors.ErrStudentNotFound)
		}
		student.TutorialName = to
		if err := r.Tutorials.AddStudent(to, student); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicateStudent, "")
		}
		r.Assessments.RescopeResults(id, from, to)
		moved = student
		return nil
	})
	if err != nil {
		return models.Student{}, storeError(err)
	}
	s.logger.Info("student transferred",
		zap.String("student_id", id.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	return moved, nil
}

// Students lists every enrolled student across tutorials.
func (s *EnrollmentService) Students() []models.Student {
	var students []models.Student
	_ = s.store.View(func(r *repository.Records) error {
		students = r.Tutorials.Students()
		return nil
	})
	return students
}

func unenroll(r *repository.Records, id models.StudentID, tutorial models.TutorialName) error {
	if _, err := r.Tutorials.RemoveStudent(tutorial, id); err != nil {
		return translateNotFound(err, appErrors.ErrStudentNotFound)
	}
	r.Assessments.RemoveResultsFor(id, tutorial)
	return nil
}
