package audit

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventDatasetLoaded       EventType = "dataset_loaded"
	EventDatasetCleaned      EventType = "dataset_cleaned"
	EventDatasetReloadFailed EventType = "dataset_reload_failed"
)

// Event records one dataset lifecycle action. It is transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Rows       int       `json:"rows,omitempty"`
	Dropped    int       `json:"dropped,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
