package cleaning

import (
	"strings"
	"time"

	"podium/internal/athlete/models"
	"podium/internal/stats"
)

type normalizer struct {
	aliases Aliases
}

func newNormalizer(a Aliases) normalizer {
	return normalizer{aliases: lowerKeys(a)}
}

func lowerKeys(a Aliases) Aliases {
	out := Aliases{
		Gender: make(map[string]models.Gender, len(a.Gender)),
		Season: make(map[string]models.Season, len(a.Season)),
		Medal:  make(map[string]models.Medal, len(a.Medal)),
	}
	for k, v := range a.Gender {
		out.Gender[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for k, v := range a.Season {
		out.Season[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for k, v := range a.Medal {
		out.Medal[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func (n normalizer) gender(raw models.Gender) models.Gender {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if g, ok := n.aliases.Gender[key]; ok {
		return g
	}
	g, err := models.ParseGender(key)
	if err != nil {
		return ""
	}
	return g
}

func (n normalizer) season(raw models.Season) models.Season {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if s, ok := n.aliases.Season[key]; ok {
		return s
	}
	s, err := models.ParseSeason(key)
	if err != nil {
		return ""
	}
	return s
}

func (n normalizer) medal(raw models.Medal) models.Medal {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if m, ok := n.aliases.Medal[key]; ok {
		return m
	}
	m, err := models.ParseMedal(key)
	if err != nil {
		return models.MedalNone
	}
	return m
}

// apply canonicalizes categories. Free-text categories collapse inner
// whitespace and every case variant takes the most frequent spelling.
func (n normalizer) apply(entries []models.Entry) ([]models.Entry, models.StepReport) {
	texts := []func(*models.Entry) *string{
		func(e *models.Entry) *string { return &e.Discipline },
		func(e *models.Entry) *string { return &e.DisciplineGroup },
		func(e *models.Entry) *string { return &e.City },
		func(e *models.Entry) *string { return &e.Country },
		func(e *models.Entry) *string { return &e.Event },
	}
	spellings := make([]map[string]string, len(texts))
	for i, field := range texts {
		spellings[i] = canonicalSpellings(entries, field)
	}

	var report models.StepReport
	for i := range entries {
		e := &entries[i]
		before := *e
		e.Name = collapse(e.Name)
		e.NOC = strings.ToUpper(strings.TrimSpace(e.NOC))
		e.Gender = n.gender(e.Gender)
		e.Season = n.season(e.Season)
		e.Medal = n.medal(e.Medal)
		for f, field := range texts {
			p := field(e)
			if v := collapse(*p); v != "" {
				*p = spellings[f][strings.ToLower(v)]
			} else {
				*p = ""
			}
		}
		if !sameCategories(before, *e) {
			report.Affected++
		}
	}
	return entries, report
}

func sameCategories(a, b models.Entry) bool {
	return a.Name == b.Name && a.NOC == b.NOC && a.Gender == b.Gender && a.Season == b.Season &&
		a.Medal == b.Medal && a.Discipline == b.Discipline && a.DisciplineGroup == b.DisciplineGroup &&
		a.City == b.City && a.Country == b.Country && a.Event == b.Event
}

// canonicalSpellings maps each lower-cased value to its most frequent
// spelling, ties broken by the lexically smallest spelling.
func canonicalSpellings(entries []models.Entry, field func(*models.Entry) *string) map[string]string {
	counts := make(map[string]map[string]int)
	for i := range entries {
		v := collapse(*field(&entries[i]))
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][v]++
	}
	out := make(map[string]string, len(counts))
	for key, variants := range counts {
		best, bestN := "", 0
		for v, n := range variants {
			if n > bestN || (n == bestN && v < best) {
				best, bestN = v, n
			}
		}
		out[key] = best
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type entryKey struct {
	name, noc, discipline, event string
	year                         int
	season                       models.Season
	medal                        models.Medal
}

func deduplicate(entries []models.Entry) ([]models.Entry, models.StepReport) {
	seen := make(map[entryKey]struct{}, len(entries))
	out := entries[:0]
	var report models.StepReport
	for _, e := range entries {
		k := entryKey{
			name: e.Name, noc: e.NOC, discipline: e.Discipline, event: e.Event,
			year: e.Year, season: e.Season, medal: e.Medal,
		}
		if _, dup := seen[k]; dup {
			report.Dropped++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	report.Affected = report.Dropped
	return out, report
}

// AgeAt returns completed years between born and 1 July of year.
func AgeAt(born time.Time, year int) int {
	age := year - born.Year()
	if born.Month() > time.July || (born.Month() == time.July && born.Day() > 1) {
		age--
	}
	return age
}

func deriveAge(entries []models.Entry) ([]models.Entry, models.StepReport) {
	var report models.StepReport
	for i := range entries {
		e := &entries[i]
		if e.Age != nil || e.BornDate == nil {
			continue
		}
		if age := AgeAt(*e.BornDate, e.Year); age > 0 {
			e.Age = models.Float(float64(age))
			report.Affected++
		}
	}
	return entries, report
}

type boundsFilter struct {
	bounds map[models.Metric]Range
	policy Policy
}

func (b boundsFilter) apply(entries []models.Entry) ([]models.Entry, models.StepReport) {
	var report models.StepReport
	out := entries[:0]
	for _, e := range entries {
		drop := false
		for _, m := range models.Metrics {
			r, ok := b.bounds[m]
			v := e.Metric(m)
			if !ok || v == nil || r.Contains(*v) {
				continue
			}
			report.Affected++
			if b.policy == PolicyDrop {
				drop = true
				continue
			}
			setMetric(&e, m, nil)
		}
		if drop {
			report.Dropped++
			continue
		}
		out = append(out, e)
	}
	return out, report
}

func setMetric(e *models.Entry, m models.Metric, v *float64) {
	switch m {
	case models.MetricAge:
		e.Age = v
	case models.MetricHeight:
		e.HeightCm = v
	case models.MetricWeight:
		e.WeightKg = v
	}
}

type imputeKey struct {
	gender models.Gender
	group  string
}

// imputePhysical fills missing height and weight with the median of the
// (gender, discipline group) cell, falling back to the gender median.
func imputePhysical(entries []models.Entry) ([]models.Entry, models.StepReport) {
	var report models.StepReport
	for _, m := range []models.Metric{models.MetricHeight, models.MetricWeight} {
		byGroup := make(map[imputeKey][]float64)
		byGender := make(map[models.Gender][]float64)
		for i := range entries {
			v := entries[i].Metric(m)
			if v == nil {
				continue
			}
			k := imputeKey{gender: entries[i].Gender, group: entries[i].DisciplineGroup}
			byGroup[k] = append(byGroup[k], *v)
			byGender[k.gender] = append(byGender[k.gender], *v)
		}
		groupMedian := medians(byGroup)
		genderMedian := medians(byGender)

		for i := range entries {
			e := &entries[i]
			if e.Metric(m) != nil || e.Gender == "" {
				continue
			}
			v, ok := groupMedian[imputeKey{gender: e.Gender, group: e.DisciplineGroup}]
			if !ok {
				v, ok = genderMedian[e.Gender]
			}
			if !ok {
				continue
			}
			setMetric(e, m, models.Float(v))
			report.Affected++
		}
	}
	return entries, report
}

func medians[K comparable](groups map[K][]float64) map[K]float64 {
	out := make(map[K]float64, len(groups))
	for k, values := range groups {
		if m, ok := stats.Median(values); ok {
			out[k] = m
		}
	}
	return out
}
