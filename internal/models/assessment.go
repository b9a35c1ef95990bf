package models

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// AssessmentName identifies an assessment. Names match exactly.
type AssessmentName string

// NewAssessmentName rejects blank names.
func NewAssessmentName(raw string) (AssessmentName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "assessment name should not be blank")
	}
	return AssessmentName(trimmed), nil
}

func (a AssessmentName) String() string { return string(a) }

// StudentResult is a single student's score for an assessment.
type StudentResult struct {
	StudentID    StudentID    `json:"student_id"`
	TutorialName TutorialName `json:"tutorial_name"`
	Score        float64      `json:"score"`
}

// Assessment holds the ledger of scores for one assessment.
type Assessment struct {
	Name     AssessmentName  `json:"name"`
	MaxScore float64         `json:"max_score"`
	Results  []StudentResult `json:"results"`
}

// NewAssessment creates an assessment with an empty ledger.
func NewAssessment(name AssessmentName, maxScore float64) (Assessment, error) {
	if maxScore <= 0 {
		return Assessment{}, appErrors.Clone(appErrors.ErrValidation, "maximum score should be positive")
	}
	return Assessment{Name: name, MaxScore: maxScore, Results: []StudentResult{}}, nil
}

// CheckScore validates score against the assessment's range.
func (a Assessment) CheckScore(score float64) error {
	if score < 0 || score > a.MaxScore {
		return appErrors.Clone(appErrors.ErrScoreOutOfRange, fmt.Sprintf("score should be between 0 and %g", a.MaxScore))
	}
	return nil
}

// ResultIndex returns the ledger position of the student's result, or -1.
func (a Assessment) ResultIndex(id StudentID) int {
	for i, r := range a.Results {
		if r.StudentID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the assessment.
func (a Assessment) Clone() Assessment {
	a.Results = append([]StudentResult(nil), a.Results...)
	return a
}
