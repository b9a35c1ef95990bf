package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// AttendanceService records presence and comments on attendance cells.
type AttendanceService struct {
	store  recordStore
	logger *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(store recordStore, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{store: store, logger: logger}
}

// MarkForStudent marks a student present for the week.
func (s *AttendanceService) MarkForStudent(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int) error {
	return s.setPresence(ctx, tutorial, id, week, true)
}

// UnmarkForStudent marks a student absent for the week.
func (s *AttendanceService) UnmarkForStudent(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int) error {
	return s.setPresence(ctx, tutorial, id, week, false)
}

// MarkForClass marks the whole roster present for the week.
func (s *AttendanceService) MarkForClass(ctx context.Context, tutorial models.TutorialName, week int) error {
	return s.setClassPresence(ctx, tutorial, week, true)
}

// UnmarkForClass marks the whole roster absent for the week.
func (s *AttendanceService) UnmarkForClass(ctx context.Context, tutorial models.TutorialName, week int) error {
	return s.setClassPresence(ctx, tutorial, week, false)
}

func (s *AttendanceService) setPresence(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int, present bool) error {
	err := s.store.Update(ctx, func(r *repository.Records) error {
		return translateNotFound(r.Tutorials.SetPresence(tutorial, id, week, present), appErrors.ErrTutorialNotFound)
	})
	if err != nil {
		return storeError(err)
	}
	s.logger.Info("attendance updated",
		zap.String("tutorial", tutorial.String()),
		zap.String("student_id", id.String()),
		zap.Int("week", week),
		zap.Bool("present", present),
	)
	return nil
}

func (s *AttendanceService) setClassPresence(ctx context.Context, tutorial models.TutorialName, week int, present bool) error {
	err := s.store.Update(ctx, func(r *repository.Records) error {
		return translateNotFound(r.Tutorials.SetPresenceForClass(tutorial, week, present), appErrors.ErrTutorialNotFound)
	})
	if err != nil {
		return storeError(err)
	}
	s.logger.Info("class attendance updated", zap.String("tutorial", tutorial.String()), zap.Int("week", week), zap.Bool("present", present))
	return nil
}

// SetComment attaches a comment to one attendance cell, replacing any
// previous comment.
func (s *AttendanceService) SetComment(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return appErrors.Clone(appErrors.ErrValidation, "comment should not be blank")
	}
	return s.writeComment(ctx, tutorial, id, week, text)
}

// RemoveComment clears the comment of one attendance cell.
func (s *AttendanceService) RemoveComment(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int) error {
	return s.writeComment(ctx, tutorial, id, week, "")
}

func (s *AttendanceService) writeComment(ctx context.Context, tutorial models.TutorialName, id models.StudentID, week int, text string) error {
	err := s.store.Update(ctx, func(r *repository.Records) error {
		return translateNotFound(r.Tutorials.SetComment(tutorial, id, week, text), appErrors.ErrTutorialNotFound)
	})
	if err != nil {
		return storeError(err)
	}
	s.logger.Info("attendance comment updated",
		zap.String("tutorial", tutorial.String()),
		zap.String("student_id", id.String()),
		zap.Int("week", week),
		zap.Bool("cleared", text == ""),
	)
	return nil
}

// Cell returns one attendance cell.
func (s *AttendanceService) Cell(tutorial models.TutorialName, id models.StudentID, week int) (models.Attendance, error) {
	var cell models.Attendance
	err := s.store.View(func(r *repository.Records) error {
		c, err := r.Tutorials.Cell(tutorial, id, week)
		if err != nil {
			return translateNotFound(err, appErrors.ErrTutorialNotFound)
		}
		cell = c
		return nil
	})
	return cell, err
}

// Comment returns the comment of one attendance cell, empty when none is set.
func (s *AttendanceService) Comment(tutorial models.TutorialName, id models.StudentID, week int) (string, error) {
	cell, err := s.Cell(tutorial, id, week)
	if err != nil {
		return "", err
	}
	return cell.Comment, nil
}

// Summary aggregates presence per student of the tutorial, in roster order.
func (s *AttendanceService) Summary(tutorial models.TutorialName) ([]models.AttendanceSummary, error) {
	var summary []models.AttendanceSummary
	err := s.store.View(func(r *repository.Records) error {
		t, ok := r.Tutorials.Find(tutorial)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		summary = summarise(t)
		return nil
	})
	return summary, err
}

func summarise(t models.Tutorial) []models.AttendanceSummary {
	present := make(map[models.StudentID]int, len(t.Roster))
	for _, a := range t.Attendance {
		if a.Present {
			present[a.StudentID]++
		}
	}
	out := make([]models.AttendanceSummary, 0, len(t.Roster))
	for _, st := range t.Roster {
		row := models.AttendanceSummary{StudentID: st.StudentID, Name: st.Name, Present: present[st.StudentID], Total: t.Weeks}
		if t.Weeks > 0 {
			row.Percent = float64(row.Present) * 100 / float64(t.Weeks)
		}
		out = append(out, row)
	}
	return out
}
