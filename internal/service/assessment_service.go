package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// ResultRow is a displayable student result.
type ResultRow struct {
	StudentID models.StudentID `json:"student_id"`
	Name      models.Name      `json:"name"`
	Score     float64          `json:"score"`
	MaxScore  float64          `json:"max_score"`
}

// AssessmentService manages assessments and their result ledgers.
type AssessmentService struct {
	store  recordStore
	logger *zap.Logger
}

// NewAssessmentService constructs AssessmentService.
func NewAssessmentService(store recordStore, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{store: store, logger: logger}
}

// Add creates an assessment with an empty ledger.
func (s *AssessmentService) Add(ctx context.Context, name models.AssessmentName, maxScore float64) (models.Assessment, error) {
	assessment, err := models.NewAssessment(name, maxScore)
	if err != nil {
		return models.Assessment{}, err
	}
	err = s.store.Update(ctx, func(r *repository.Records) error {
		if err := r.Assessments.Add(assessment); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicateAssessment, "")
		}
		return nil
	})
	if err != nil {
		return models.Assessment{}, storeError(err)
	}
	s.logger.Info("assessment added", zap.String("assessment", name.String()), zap.Float64("max_score", maxScore))
	return assessment, nil
}

// Remove deletes an assessment with all its results.
func (s *AssessmentService) Remove(ctx context.Context, name models.AssessmentName) (models.Assessment, error) {
	var removed models.Assessment
	err := s.store.Update(ctx, func(r *repository.Records) error {
		a, ok := r.Assessments.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrAssessmentNotFound, "")
		}
		removed = a
		return translateNotFound(r.Assessments.Remove(name), appErrors.ErrAssessmentNotFound)
	})
	if err != nil {
		return models.Assessment{}, storeError(err)
	}
	s.logger.Info("assessment removed", zap.String("assessment", name.String()), zap.Int("results", len(removed.Results)))
	return removed, nil
}

// AddStudentResult records the score of the student enrolled under name. It
// fails when the student already has a result for the assessment.
func (s *AssessmentService) AddStudentResult(ctx context.Context, name models.Name, assessment models.AssessmentName, score float64) (models.StudentResult, error) {
	return s.writeResult(ctx, name, assessment, score, false)
}

// SetStudentResult records or corrects the student's score, replacing an
// existing result in place.
func (s *AssessmentService) SetStudentResult(ctx context.Context, name models.Name, assessment models.AssessmentName, score float64) (models.StudentResult, error) {
	return s.writeResult(ctx, name, assessment, score, true)
}

// writeResult resolves assessment, then student, then score range, then
// duplicates, reporting the first failure.
func (s *AssessmentService) writeResult(ctx context.Context, name models.Name, assessment models.AssessmentName, score float64, upsert bool) (models.StudentResult, error) {
	var result models.StudentResult
	err := s.store.Update(ctx, func(r *repository.Records) error {
		a, ok := r.Assessments.Find(assessment)
		if !ok {
			return appErrors.Clone(appErrors.ErrAssessmentNotFound, "")
		}
		student, ok := r.Tutorials.FindStudentByName(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		if err := a.CheckScore(score); err != nil {
			return err
		}
		result = models.StudentResult{StudentID: student.StudentID, TutorialName: student.TutorialName, Score: score}
		if upsert {
			return translateNotFound(r.Assessments.SetResult(assessment, result), appErrors.ErrAssessmentNotFound)
		}
		if err := r.Assessments.AddResult(assessment, result); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicateStudentResult, "")
		}
		return nil
	})
	if err != nil {
		return models.StudentResult{}, storeError(err)
	}
	s.logger.Info("student result recorded",
		zap.String("assessment", assessment.String()),
		zap.String("student_id", result.StudentID.String()),
		zap.Float64("score", score),
		zap.Bool("upsert", upsert),
	)
	return result, nil
}

// RemoveStudentResults drops every result of the student scoped to the tutorial.
func (s *AssessmentService) RemoveStudentResults(ctx context.Context, id models.StudentID, tutorial models.TutorialName) (int, error) {
	removed := 0
	err := s.store.Update(ctx, func(r *repository.Records) error {
		removed = r.Assessments.RemoveResultsFor(id, tutorial)
		return nil
	})
	if err != nil {
		return 0, storeError(err)
	}
	return removed, nil
}

// Results lists the scores of one tutorial's students for the assessment, in
// ledger order.
func (s *AssessmentService) Results(assessment models.AssessmentName, tutorial models.TutorialName) ([]ResultRow, error) {
	var rows []ResultRow
	err := s.store.View(func(r *repository.Records) error {
		a, ok := r.Assessments.Find(assessment)
		if !ok {
			return appErrors.Clone(appErrors.ErrAssessmentNotFound, "")
		}
		t, ok := r.Tutorials.Find(tutorial)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		rows = make([]ResultRow, 0, len(a.Results))
		for _, res := range a.Results {
			if res.TutorialName != tutorial {
				continue
			}
			row := ResultRow{StudentID: res.StudentID, Score: res.Score, MaxScore: a.MaxScore}
			if i := t.StudentIndex(res.StudentID); i >= 0 {
				row.Name = t.Roster[i].Name
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}
