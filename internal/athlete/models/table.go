package models

import "strings"

// RawTable is a CSV as read, before any typing. Missing cells are "".
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of column name (case-insensitive, trimmed) or -1.
func (t *RawTable) Index(name string) int {
	want := columnKey(name)
	for i, c := range t.Columns {
		if columnKey(c) == want {
			return i
		}
	}
	return -1
}

// columnKey also drops a byte order mark left on a first header.
func columnKey(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// Column returns every value of column i.
func (t *RawTable) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// Issue records a problem with one cell or row found while decoding.
type Issue struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}
