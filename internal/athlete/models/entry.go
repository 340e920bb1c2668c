package models

import (
	"strings"
	"time"

	dErrors "podium/pkg/domain-errors"
)

// Entry is one athlete's participation in one event at one Games edition.
//
// Invariants:
//   - Name and NOC are non-empty
//   - Year is positive
//
// Optional measurements are pointers so a missing value is never confused
// with zero.
type Entry struct {
	Name            string     `json:"name"`
	Gender          Gender     `json:"gender,omitempty"`
	BornDate        *time.Time `json:"born_date,omitempty"`
	Age             *float64   `json:"age,omitempty"`
	HeightCm        *float64   `json:"height_cm,omitempty"`
	WeightKg        *float64   `json:"weight_kg,omitempty"`
	NOC             string     `json:"noc"`
	Country         string     `json:"country,omitempty"`
	Year            int        `json:"year"`
	Season          Season     `json:"type,omitempty"`
	City            string     `json:"city,omitempty"`
	Discipline      string     `json:"discipline,omitempty"`
	DisciplineGroup string     `json:"discipline_grouped,omitempty"`
	Event           string     `json:"event,omitempty"`
	Medal           Medal      `json:"medal,omitempty"`
}

// NewEntry validates the identifying fields of an entry.
func NewEntry(name, noc string, year int) (*Entry, error) {
	name = strings.TrimSpace(name)
	noc = strings.TrimSpace(noc)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "entry name cannot be empty")
	}
	if noc == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "entry noc cannot be empty")
	}
	if year <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "entry year must be positive")
	}
	return &Entry{Name: name, NOC: noc, Year: year}, nil
}

// Edition identifies the Games edition of the entry.
func (e *Entry) Edition() Edition {
	return Edition{Year: e.Year, Season: e.Season}
}

// Metric returns a named physical measurement.
func (e *Entry) Metric(m Metric) *float64 {
	switch m {
	case MetricAge:
		return e.Age
	case MetricHeight:
		return e.HeightCm
	case MetricWeight:
		return e.WeightKg
	}
	return nil
}

// Edition is a single occurrence of the Games.
type Edition struct {
	Year   int    `json:"year"`
	Season Season `json:"type"`
}

// Metric names a numeric attribute of an athlete.
type Metric string

const (
	MetricAge    Metric = "age"
	MetricHeight Metric = "height_cm"
	MetricWeight Metric = "weight_kg"
)

// Metrics lists every supported physical metric.
var Metrics = []Metric{MetricAge, MetricHeight, MetricWeight}

func ParseMetric(raw string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown metric %q", raw)
}

// Float returns a pointer to v; used when building entries in code and tests.
func Float(v float64) *float64 {
	return &v
}
