package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

type recordStore interface {
	Update(ctx context.Context, fn func(r *repository.Records) error) error
	View(fn func(r *repository.Records) error) error
}

// Settings carries the record limits taken from configuration.
type Settings struct {
	MaxWeeks        int
	DefaultMaxScore float64
}

func (s Settings) withDefaults() Settings {
	if s.MaxWeeks <= 0 {
		s.MaxWeeks = 13
	}
	if s.DefaultMaxScore <= 0 {
		s.DefaultMaxScore = 100
	}
	return s
}

// Model is the handle command handlers receive. It groups the services
// sharing one record store and the filtered views over it.
type Model struct {
	store    *repository.Store
	settings Settings
	logger   *zap.Logger

	Persons     *PersonService
	Tutorials   *TutorialService
	Enrollment  *EnrollmentService
	Attendance  *AttendanceService
	Assessments *AssessmentService
	Views       *ViewService
}

// NewModel wires every service to store.
func NewModel(store *repository.Store, settings Settings, logger *zap.Logger) *Model {
	if store == nil {
		store = repository.NewStore(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	settings = settings.withDefaults()
	return &Model{
		store:       store,
		settings:    settings,
		logger:      logger,
		Persons:     NewPersonService(store, logger),
		Tutorials:   NewTutorialService(store, settings, logger),
		Enrollment:  NewEnrollmentService(store, logger),
		Attendance:  NewAttendanceService(store, logger),
		Assessments: NewAssessmentService(store, logger),
		Views:       NewViewService(store),
	}
}

// Settings returns the effective record limits.
func (m *Model) Settings() Settings { return m.settings }

// Export returns the full state as a serialisable snapshot.
func (m *Model) Export() models.Snapshot {
	var snap models.Snapshot
	_ = m.store.View(func(r *repository.Records) error {
		snap = r.Snapshot()
		return nil
	})
	return snap
}

// Import replaces the full state with snap. The snapshot is validated first;
// on any error the current state is kept.
func (m *Model) Import(ctx context.Context, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records, err := repository.RecordsFromSnapshot(snap, m.settings.MaxWeeks)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "snapshot is invalid")
	}
	if err := m.store.Replace(records); err != nil {
		return storeError(err)
	}
	m.logger.Info("records imported",
		zap.Int("persons", records.Persons.Len()),
		zap.Int("tutorials", records.Tutorials.Len()),
		zap.Int("assessments", records.Assessments.Len()),
	)
	return nil
}

// storeError normalises errors escaping a store mutation.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrReentrant):
		return appErrors.Wrap(err, appErrors.ErrReentrantMutation.Code, appErrors.ErrReentrantMutation.Message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
}

// translateNotFound maps registry sentinels to typed errors.
func translateNotFound(err error, notFound *appErrors.Error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(notFound, "")
	case errors.Is(err, repository.ErrInvalidCell):
		return appErrors.Clone(appErrors.ErrInvalidWeekOrStudent, "")
	default:
		return err
	}
}
