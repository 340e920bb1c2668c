package models

import (
	"time"

	"github.com/google/uuid"
)

// CleaningReport summarizes what the cleaning pipeline changed.
type CleaningReport struct {
	InputRows  int          `json:"input_rows"`
	OutputRows int          `json:"output_rows"`
	Steps      []StepReport `json:"steps"`
	// MissingAfter counts entries still lacking each metric after cleaning.
	MissingAfter map[Metric]int `json:"missing_after"`
}

// StepReport is the outcome of one cleaning step.
type StepReport struct {
	Name     string `json:"name"`
	Affected int    `json:"affected"`
	Dropped  int    `json:"dropped,omitempty"`
}

// Snapshot is one loaded, profiled and cleaned version of the dataset.
//
// Invariants:
//   - ID is unique per load
//   - Entries are the cleaned entries; RawRows counts rows before decoding
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	Source      string          `json:"source"`
	LoadedAt    time.Time       `json:"loaded_at"`
	RawRows     int             `json:"raw_rows"`
	Entries     []Entry         `json:"-"`
	Coordinates []Coordinate    `json:"-"`
	Profile     *Profile        `json:"-"`
	Cleaning    *CleaningReport `json:"-"`
	Issues      []Issue         `json:"-"`
}

// SnapshotSummary is the snapshot metadata exposed over the API.
type SnapshotSummary struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	RawRows     int       `json:"raw_rows"`
	Entries     int       `json:"entries"`
	Coordinates int       `json:"coordinates"`
	Issues      int       `json:"decode_issues"`
}

func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:          s.ID,
		Source:      s.Source,
		LoadedAt:    s.LoadedAt,
		RawRows:     s.RawRows,
		Entries:     len(s.Entries),
		Coordinates: len(s.Coordinates),
		Issues:      len(s.Issues),
	}
}
