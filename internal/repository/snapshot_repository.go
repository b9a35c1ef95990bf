package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/pkg/storage"
)

type snapshotStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Rename(from, to string) error
}

// SnapshotRepository encodes full-state snapshots as JSON files.
type SnapshotRepository struct {
	storage  snapshotStorage
	filename string
	logger   *zap.Logger
	now      func() time.Time
}

// NewSnapshotRepository constructs a repository writing to filename inside storage.
func NewSnapshotRepository(store snapshotStorage, filename string, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filename == "" {
		filename = "records.json"
	}
	return &SnapshotRepository{storage: store, filename: filename, logger: logger, now: time.Now}
}

// Load reads the snapshot. A missing file yields an empty snapshot and
// found=false. An undecodable file is moved aside to a uniquely named backup
// so the next save does not overwrite it, and an empty snapshot is returned.
func (r *SnapshotRepository) Load(ctx context.Context) (models.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, false, err
	}
	data, err := r.storage.Read(r.filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return emptySnapshot(), false, nil
		}
		return models.Snapshot{}, false, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		backup, qerr := r.Quarantine()
		if qerr != nil {
			return models.Snapshot{}, false, fmt.Errorf("decode snapshot: %w (quarantine failed: %v)", err, qerr)
		}
		r.logger.Warn("snapshot unreadable, starting empty", zap.String("backup", backup), zap.Error(err))
		return emptySnapshot(), false, nil
	}
	return snap, true, nil
}

// Save writes the snapshot, stamping it with the save time.
func (r *SnapshotRepository) Save(ctx context.Context, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap.Version = models.SnapshotVersion
	snap.SavedAt = r.now().UTC()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := r.storage.Save(r.filename, data); err != nil {
		return err
	}
	r.logger.Debug("snapshot saved", zap.String("file", r.filename), zap.Int("persons", len(snap.Persons)))
	return nil
}

// Quarantine moves the current snapshot file aside and returns the backup name.
func (r *SnapshotRepository) Quarantine() (string, error) {
	backup := fmt.Sprintf("%s.%s.corrupt", r.filename, uuid.NewString())
	if err := r.storage.Rename(r.filename, backup); err != nil {
		return "", err
	}
	return backup, nil
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{
		Version:     models.SnapshotVersion,
		Persons:     []models.Person{},
		Tutorials:   []models.Tutorial{},
		Assessments: []models.Assessment{},
	}
}
