package models

import "time"

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the full, serialisable state of the record model.
type Snapshot struct {
	Version     int          `json:"version"`
	SavedAt     time.Time    `json:"saved_at"`
	Persons     []Person     `json:"persons"`
	Tutorials   []Tutorial   `json:"tutorials"`
	Assessments []Assessment `json:"assessments"`
}
