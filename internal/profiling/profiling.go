// Package profiling inspects a raw table before any cleaning: column kinds,
// missing values, distributions, outliers and inconsistent spellings.
package profiling

import (
	"fmt"
	"sort"
	"strings"

	"podium/internal/athlete/models"
	"podium/internal/ingest"
	"podium/internal/stats"
)

const (
	// KindThreshold is the share of present values that must parse for a
	// column to be classified as numeric or date.
	KindThreshold = 0.9
	topValues     = 5
)

// Profile computes the data profile of t. It never mutates t.
func Profile(t *models.RawTable) *models.Profile {
	p := &models.Profile{
		Rows:          len(t.Rows),
		Columns:       len(t.Columns),
		DuplicateRows: duplicateRows(t),
		ColumnStats:   make([]models.ColumnProfile, 0, len(t.Columns)),
	}
	for i, name := range t.Columns {
		p.ColumnStats = append(p.ColumnStats, profileColumn(strings.TrimSpace(name), t.Column(i)))
	}
	p.Issues = issues(p)
	return p
}

func profileColumn(name string, cells []string) models.ColumnProfile {
	cp := models.ColumnProfile{Name: name, Count: len(cells), Kind: models.KindCategorical}

	counts := make(map[string]int)
	var present []string
	for _, c := range cells {
		if c == "" {
			cp.Missing++
			continue
		}
		present = append(present, c)
		counts[c]++
	}
	if cp.Count > 0 {
		cp.MissingRatio = float64(cp.Missing) / float64(cp.Count)
	}
	cp.Distinct = len(counts)
	cp.TopValues = top(counts, topValues)

	if len(present) == 0 {
		return cp
	}

	numbers := make([]float64, 0, len(present))
	dates := 0
	for _, v := range present {
		if f, ok := ingest.ParseNumber(v); ok {
			numbers = append(numbers, f)
		}
		if _, ok := ingest.ParseDate(v); ok {
			dates++
		}
	}

	switch {
	case share(len(numbers), len(present)) >= KindThreshold:
		cp.Kind = models.KindNumeric
		cp.Invalid = len(present) - len(numbers)
		if s, ok := stats.Summarize(numbers); ok {
			cp.Summary = &s
			cp.Outliers = len(stats.Outliers(numbers, s))
		}
	case share(dates, len(present)) >= KindThreshold:
		cp.Kind = models.KindDate
		cp.Invalid = len(present) - dates
	default:
		cp.Variants = variants(counts)
	}
	return cp
}

func share(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

// top returns the n most frequent values, ties broken by value.
func top(counts map[string]int, n int) []models.ValueCount {
	out := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, models.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// variants groups distinct values that collapse to the same key once case
// and surrounding whitespace are ignored.
func variants(counts map[string]int) [][]string {
	groups := make(map[string][]string)
	for v := range counts {
		key := strings.ToLower(strings.TrimSpace(v))
		groups[key] = append(groups[key], v)
	}
	var out [][]string
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		sort.Strings(g)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func duplicateRows(t *models.RawTable) int {
	seen := make(map[string]struct{}, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func issues(p *models.Profile) []string {
	out := []string{}
	if p.DuplicateRows > 0 {
		out = append(out, fmt.Sprintf("%d duplicate rows", p.DuplicateRows))
	}
	for _, c := range p.ColumnStats {
		if c.Missing > 0 {
			out = append(out, fmt.Sprintf("column %q: %d missing values (%.1f%%)", c.Name, c.Missing, c.MissingRatio*100))
		}
		if c.Invalid > 0 {
			out = append(out, fmt.Sprintf("column %q: %d values do not parse as %s", c.Name, c.Invalid, c.Kind))
		}
		if c.Outliers > 0 {
			out = append(out, fmt.Sprintf("column %q: %d outliers outside 1.5 IQR", c.Name, c.Outliers))
		}
		for _, v := range c.Variants {
			out = append(out, fmt.Sprintf("column %q: inconsistent spellings %s", c.Name, strings.Join(quoteAll(v), ", ")))
		}
	}
	return out
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
