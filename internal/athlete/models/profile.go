package models

// ColumnKind is the inferred type of a raw column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindDate        ColumnKind = "date"
	KindCategorical ColumnKind = "categorical"
)

// Profile describes the structure and quality of a raw table.
type Profile struct {
	Rows          int             `json:"rows"`
	Columns       int             `json:"columns"`
	DuplicateRows int             `json:"duplicate_rows"`
	ColumnStats   []ColumnProfile `json:"column_stats"`
	Issues        []string        `json:"issues"`
}

// ColumnProfile is the per-column part of a Profile.
type ColumnProfile struct {
	Name         string       `json:"name"`
	Kind         ColumnKind   `json:"kind"`
	Count        int          `json:"count"`
	Missing      int          `json:"missing"`
	MissingRatio float64      `json:"missing_ratio"`
	Distinct     int          `json:"distinct"`
	Invalid      int          `json:"invalid,omitempty"`
	TopValues    []ValueCount `json:"top_values,omitempty"`
	Summary      *Summary     `json:"summary,omitempty"`
	Outliers     int          `json:"outliers,omitempty"`
	// Variants holds groups of spellings that differ only by case or whitespace.
	Variants [][]string `json:"variants,omitempty"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary is the five-number summary plus mean and standard deviation.
type Summary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// IQR is the interquartile range.
func (s Summary) IQR() float64 {
	return s.Q3 - s.Q1
}

// Fences returns the Tukey fences at 1.5 IQR.
func (s Summary) Fences() (lower, upper float64) {
	iqr := s.IQR()
	return s.Q1 - 1.5*iqr, s.Q3 + 1.5*iqr
}
