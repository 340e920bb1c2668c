package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"podium/internal/athlete/models"
)

// dateLayouts are tried in order when parsing born_date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"2006/01/02",
	"2006",
}

// DecodeEntries types a participation table. Unparsable cells are left missing
// and reported; rows without name, noc or a valid year are rejected.
// Categorical values are kept verbatim; normalizing them is a cleaning step.
func DecodeEntries(t *models.RawTable) ([]models.Entry, []models.Issue) {
	idx := make(map[string]int)
	for _, c := range []string{
		"name", "gender", "born_date", "age", "height_cm", "weight_kg", "noc", "country",
		"year", "type", "city", "discipline", "discipline_grouped", "event", "medal",
	} {
		idx[c] = columnIndex(t, c)
	}

	entries := make([]models.Entry, 0, len(t.Rows))
	var issues []models.Issue

	for r, row := range t.Rows {
		// Row numbers are 1-based and count the header, matching a spreadsheet view.
		rowNum := r + 2
		cell := func(col string) string {
			return cellAt(row, idx[col])
		}

		year, ok := parseYear(cell("year"))
		if !ok {
			issues = append(issues, models.Issue{Row: rowNum, Column: "year", Value: cell("year"), Reason: "row rejected: invalid year"})
			continue
		}
		e, err := models.NewEntry(cell("name"), cell("noc"), year)
		if err != nil {
			issues = append(issues, models.Issue{Row: rowNum, Reason: "row rejected: " + err.Error()})
			continue
		}

		e.Gender = models.Gender(cell("gender"))
		e.Country = cell("country")
		e.Season = models.Season(cell("type"))
		e.City = cell("city")
		e.Discipline = cell("discipline")
		e.DisciplineGroup = cell("discipline_grouped")
		e.Event = cell("event")
		e.Medal = models.Medal(cell("medal"))

		numeric := []struct {
			col    string
			target **float64
		}{
			{"age", &e.Age},
			{"height_cm", &e.HeightCm},
			{"weight_kg", &e.WeightKg},
		}
		for _, n := range numeric {
			raw := cell(n.col)
			if raw == "" {
				continue
			}
			v, ok := ParseNumber(raw)
			if !ok {
				issues = append(issues, models.Issue{Row: rowNum, Column: n.col, Value: raw, Reason: "not a number"})
				continue
			}
			*n.target = &v
		}

		if raw := cell("born_date"); raw != "" {
			d, ok := ParseDate(raw)
			if ok {
				e.BornDate = &d
			} else {
				issues = append(issues, models.Issue{Row: rowNum, Column: "born_date", Value: raw, Reason: "not a date"})
			}
		}

		entries = append(entries, *e)
	}
	return entries, issues
}

// ParseNumber accepts a decimal comma when no decimal point is present.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseDate tries every supported layout.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseYear(raw string) (int, bool) {
	v, ok := ParseNumber(raw)
	if !ok || v != math.Trunc(v) || v <= 0 {
		return 0, false
	}
	return int(v), true
}
