package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// TutorialEdit lists the tutorial fields to change. Nil fields are kept.
type TutorialEdit struct {
	Venue *models.Venue
	Day   *models.Day
	Time  *models.Time
	Weeks *int
}

// IsEmpty reports whether no field is set.
func (e TutorialEdit) IsEmpty() bool {
	return e.Venue == nil && e.Day == nil && e.Time == nil && e.Weeks == nil
}

// TutorialService manages tutorial groups.
type TutorialService struct {
	store    recordStore
	settings Settings
	logger   *zap.Logger
}

// NewTutorialService constructs TutorialService.
func NewTutorialService(store recordStore, settings Settings, logger *zap.Logger) *TutorialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorialService{store: store, settings: settings.withDefaults(), logger: logger}
}

// Add registers a tutorial with an empty roster.
func (s *TutorialService) Add(ctx context.Context, t models.Tutorial) error {
	if err := models.ValidateWeeks(t.Weeks, s.settings.MaxWeeks); err != nil {
		return err
	}
	err := s.store.Update(ctx, func(r *repository.Records) error {
		if err := r.Tutorials.Add(models.NewTutorial(t.Name, t.Venue, t.Day, t.Time, t.Weeks)); err != nil {
			return appErrors.Clone(appErrors.ErrDuplicateTutorial, "")
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}
	s.logger.Info("tutorial added", zap.String("tutorial", t.Name.String()), zap.Int("weeks", t.Weeks))
	return nil
}

// Edit changes venue, day, time or weeks. Changing weeks regenerates the
// attendance grid for the new week range.
func (s *TutorialService) Edit(ctx context.Context, name models.TutorialName, edit TutorialEdit) (models.Tutorial, error) {
	if edit.IsEmpty() {
		return models.Tutorial{}, appErrors.Clone(appErrors.ErrValidation, "at least one field to edit must be provided")
	}
	if edit.Weeks != nil {
		if err := models.ValidateWeeks(*edit.Weeks, s.settings.MaxWeeks); err != nil {
			return models.Tutorial{}, err
		}
	}
	var edited models.Tutorial
	err := s.store.Update(ctx, func(r *repository.Records) error {
		current, ok := r.Tutorials.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		venue, day, at, weeks := current.Venue, current.Day, current.Time, current.Weeks
		if edit.Venue != nil {
			venue = *edit.Venue
		}
		if edit.Day != nil {
			day = *edit.Day
		}
		if edit.Time != nil {
			at = *edit.Time
		}
		if edit.Weeks != nil {
			weeks = *edit.Weeks
		}
		if err := r.Tutorials.Edit(name, venue, day, at, weeks); err != nil {
			return translateNotFound(err, appErrors.ErrTutorialNotFound)
		}
		edited, _ = r.Tutorials.Find(name)
		return nil
	})
	if err != nil {
		return models.Tutorial{}, storeError(err)
	}
	s.logger.Info("tutorial edited", zap.String("tutorial", name.String()), zap.Int("weeks", edited.Weeks))
	return edited, nil
}

// Remove deletes a tutorial together with its roster, its attendance grid
// and every result scoped to it. Person records are untouched.
func (s *TutorialService) Remove(ctx context.Context, name models.TutorialName) (models.Tutorial, error) {
	var removed models.Tutorial
	var purged int
	err := s.store.Update(ctx, func(r *repository.Records) error {
		t, ok := r.Tutorials.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		if err := r.Tutorials.Remove(name); err != nil {
			return translateNotFound(err, appErrors.ErrTutorialNotFound)
		}
		purged = r.Assessments.RemoveResultsForTutorial(name)
		removed = t
		return nil
	})
	if err != nil {
		return models.Tutorial{}, storeError(err)
	}
	s.logger.Info("tutorial removed",
		zap.String("tutorial", name.String()),
		zap.Int("students", len(removed.Roster)),
		zap.Int("results_purged", purged),
	)
	return removed, nil
}

// Find looks a tutorial up by exact name.
func (s *TutorialService) Find(name models.TutorialName) (models.Tutorial, error) {
	var tutorial models.Tutorial
	err := s.store.View(func(r *repository.Records) error {
		t, ok := r.Tutorials.Find(name)
		if !ok {
			return appErrors.Clone(appErrors.ErrTutorialNotFound, "")
		}
		tutorial = t
		return nil
	})
	return tutorial, err
}

// Contains reports whether a tutorial with the name exists.
func (s *TutorialService) Contains(name models.TutorialName) bool {
	found := false
	_ = s.store.View(func(r *repository.Records) error {
		found = r.Tutorials.Contains(name)
		return nil
	})
	return found
}
