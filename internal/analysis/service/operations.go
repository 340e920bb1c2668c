package service

import (
	"sort"
	"strconv"
	"strings"

	"podium/internal/analysis/models"
	athlete "podium/internal/athlete/models"
	"podium/internal/stats"
)

// Athletes are identified by name, so an athlete entered in several events
// or editions counts once.

func ComputeOverview(entries []athlete.Entry) models.Overview {
	names := make(map[string]struct{})
	nocs := make(map[string]struct{})
	editions := make(map[athlete.Edition]struct{})
	disciplines := make(map[string]struct{})
	o := models.Overview{Entries: len(entries)}
	for i := range entries {
		e := &entries[i]
		names[e.Name] = struct{}{}
		nocs[e.NOC] = struct{}{}
		editions[e.Edition()] = struct{}{}
		if e.Discipline != "" {
			disciplines[e.Discipline] = struct{}{}
		}
		if e.Medal.IsWon() {
			o.Medals++
		}
	}
	o.Athletes = len(names)
	o.NOCs = len(nocs)
	o.Editions = len(editions)
	o.Disciplines = len(disciplines)
	return o
}

// ParticipationByGender counts entries per (year, gender). Entries without a
// gender are skipped.
func ParticipationByGender(entries []athlete.Entry) []models.GenderCount {
	type key struct {
		year   int
		gender athlete.Gender
	}
	counts := make(map[key]int)
	for i := range entries {
		if entries[i].Gender == "" {
			continue
		}
		counts[key{entries[i].Year, entries[i].Gender}]++
	}
	out := make([]models.GenderCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.GenderCount{Year: k.year, Gender: k.gender, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Gender < out[j].Gender
	})
	return out
}

// DisciplinesPerYear counts distinct disciplines held each year.
func DisciplinesPerYear(entries []athlete.Entry) []models.DisciplineCount {
	byYear := make(map[int]map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if byYear[e.Year] == nil {
			byYear[e.Year] = make(map[string]struct{})
		}
		if e.Discipline != "" {
			byYear[e.Year][e.Discipline] = struct{}{}
		}
	}
	out := make([]models.DisciplineCount, 0, len(byYear))
	for y, ds := range byYear {
		out = append(out, models.DisciplineCount{Year: y, Disciplines: len(ds)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func medalRows(entries []athlete.Entry) map[string]*models.MedalRow {
	rows := make(map[string]*models.MedalRow)
	names := make(map[string]map[string]struct{})
	for i := range entries {
		e := &entries[i]
		row, ok := rows[e.NOC]
		if !ok {
			row = &models.MedalRow{NOC: e.NOC}
			rows[e.NOC] = row
			names[e.NOC] = make(map[string]struct{})
		}
		names[e.NOC][e.Name] = struct{}{}
		switch e.Medal {
		case athlete.MedalGold:
			row.Gold++
		case athlete.MedalSilver:
			row.Silver++
		case athlete.MedalBronze:
			row.Bronze++
		}
	}
	for noc, row := range rows {
		row.TotalAthletes = len(names[noc])
		row.TotalMedals = row.Gold + row.Silver + row.Bronze
	}
	return rows
}

func sortValue(r *models.MedalRow, by models.MedalSort) int {
	switch by {
	case models.SortTotalAthletes:
		return r.TotalAthletes
	case models.SortGold:
		return r.Gold
	case models.SortSilver:
		return r.Silver
	case models.SortBronze:
		return r.Bronze
	}
	return r.TotalMedals
}

// MedalTable ranks NOCs by the chosen column, descending, ties by NOC, and
// keeps the first top rows.
func MedalTable(entries []athlete.Entry, by models.MedalSort, top int) []models.MedalRow {
	rows := medalRows(entries)
	out := make([]models.MedalRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		vi, vj := sortValue(&out[i], by), sortValue(&out[j], by)
		if vi != vj {
			return vi > vj
		}
		return out[i].NOC < out[j].NOC
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// MedalMap joins medal-winning NOCs with their coordinates, most medals
// first. NOCs without coordinates are left out.
func MedalMap(entries []athlete.Entry, coords []athlete.Coordinate) []models.MedalMapPoint {
	byNOC := make(map[string]athlete.Coordinate, len(coords))
	for _, c := range coords {
		byNOC[c.NOC] = c
	}
	out := []models.MedalMapPoint{}
	for _, row := range MedalTable(entries, models.SortTotalMedals, 0) {
		if row.TotalMedals == 0 {
			break
		}
		c, ok := byNOC[row.NOC]
		if !ok {
			continue
		}
		out = append(out, models.MedalMapPoint{
			MedalRow:  row,
			Country:   c.Country,
			Capital:   c.Capital,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return out
}

func boxStats(group string, values []float64) (models.BoxStats, bool) {
	s, ok := stats.Summarize(values)
	if !ok {
		return models.BoxStats{}, false
	}
	outliers := stats.Outliers(values, s)
	if outliers == nil {
		outliers = []float64{}
	}
	sort.Float64s(outliers)
	return models.BoxStats{
		Group:    group,
		Count:    len(values),
		Min:      s.Min,
		Q1:       s.Q1,
		Median:   s.Median,
		Q3:       s.Q3,
		Max:      s.Max,
		Mean:     s.Mean,
		Outliers: outliers,
	}, true
}

// MetricDistribution returns box statistics of metric per group, groups in
// label order. Entries missing the metric or the group are skipped.
func MetricDistribution(entries []athlete.Entry, metric athlete.Metric, by models.GroupBy) models.Distribution {
	values := make(map[string][]float64)
	for i := range entries {
		v := entries[i].Metric(metric)
		if v == nil {
			continue
		}
		g, ok := by.Value(&entries[i])
		if !ok {
			continue
		}
		values[g] = append(values[g], *v)
	}
	d := models.Distribution{Metric: metric, GroupBy: by, Groups: []models.BoxStats{}}
	for _, g := range sortedKeys(values) {
		if b, ok := boxStats(g, values[g]); ok {
			d.Groups = append(d.Groups, b)
		}
	}
	return d
}

// HeightWeightPoints returns scatter points for entries with both height and
// weight, in input order, capped at limit.
func HeightWeightPoints(entries []athlete.Entry, colorBy models.GroupBy, limit int) models.HeightWeight {
	hw := models.HeightWeight{ColorBy: colorBy, Points: []models.Point{}}
	for i := range entries {
		e := &entries[i]
		if e.HeightCm == nil || e.WeightKg == nil {
			continue
		}
		group, ok := colorBy.Value(e)
		if !ok {
			continue
		}
		if colorBy == models.GroupNone {
			group = ""
		}
		hw.Total++
		if limit > 0 && len(hw.Points) >= limit {
			hw.Truncated = true
			continue
		}
		hw.Points = append(hw.Points, models.Point{
			Name:       e.Name,
			HeightCm:   *e.HeightCm,
			WeightKg:   *e.WeightKg,
			Age:        e.Age,
			NOC:        e.NOC,
			Discipline: e.Discipline,
			Medal:      e.Medal,
			Group:      group,
		})
	}
	return hw
}

// DisciplineTree counts distinct athletes per (group, discipline) with
// their share of the group and of the whole set.
func DisciplineTree(entries []athlete.Entry) []models.TreeNode {
	type key struct{ group, discipline string }
	cells := make(map[key]map[string]struct{})
	groups := make(map[string]map[string]struct{})
	total := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if e.Discipline == "" || e.DisciplineGroup == "" {
			continue
		}
		k := key{e.DisciplineGroup, e.Discipline}
		if cells[k] == nil {
			cells[k] = make(map[string]struct{})
		}
		if groups[k.group] == nil {
			groups[k.group] = make(map[string]struct{})
		}
		cells[k][e.Name] = struct{}{}
		groups[k.group][e.Name] = struct{}{}
		total[e.Name] = struct{}{}
	}
	out := make([]models.TreeNode, 0, len(cells))
	for k, names := range cells {
		n := len(names)
		out = append(out, models.TreeNode{
			Group:        k.group,
			Discipline:   k.discipline,
			Athletes:     n,
			ShareOfGroup: ratio(n, len(groups[k.group])),
			ShareOfTotal: ratio(n, len(total)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Athletes != out[j].Athletes {
			return out[i].Athletes > out[j].Athletes
		}
		return out[i].Discipline < out[j].Discipline
	})
	return out
}

func ratio(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

// AverageAgeByDiscipline picks the top disciplines by distinct athletes and
// reports their mean entry age, oldest first. Disciplines without any
// recorded age are dropped after selection.
func AverageAgeByDiscipline(entries []athlete.Entry, top int) []models.DisciplineAge {
	athletes := make(map[string]map[string]struct{})
	ages := make(map[string][]float64)
	for i := range entries {
		e := &entries[i]
		if e.Discipline == "" {
			continue
		}
		if athletes[e.Discipline] == nil {
			athletes[e.Discipline] = make(map[string]struct{})
		}
		athletes[e.Discipline][e.Name] = struct{}{}
		if e.Age != nil {
			ages[e.Discipline] = append(ages[e.Discipline], *e.Age)
		}
	}

	ranked := make([]models.DisciplineAge, 0, len(athletes))
	for d, names := range athletes {
		ranked = append(ranked, models.DisciplineAge{Discipline: d, Athletes: len(names)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Athletes != ranked[j].Athletes {
			return ranked[i].Athletes > ranked[j].Athletes
		}
		return ranked[i].Discipline < ranked[j].Discipline
	})
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	out := make([]models.DisciplineAge, 0, len(ranked))
	for _, r := range ranked {
		mean, ok := stats.Mean(ages[r.Discipline])
		if !ok {
			continue
		}
		r.MeanAge = mean
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanAge > out[j].MeanAge })
	return out
}

// AgeByDisciplineGroup returns age box statistics per (group, gender).
func AgeByDisciplineGroup(entries []athlete.Entry) []models.GroupAge {
	type key struct {
		group  string
		gender athlete.Gender
	}
	values := make(map[key][]float64)
	for i := range entries {
		e := &entries[i]
		if e.Age == nil || e.DisciplineGroup == "" || e.Gender == "" {
			continue
		}
		k := key{e.DisciplineGroup, e.Gender}
		values[k] = append(values[k], *e.Age)
	}
	out := make([]models.GroupAge, 0, len(values))
	for k, v := range values {
		b, ok := boxStats(k.group+" / "+string(k.gender), v)
		if !ok {
			continue
		}
		out = append(out, models.GroupAge{DisciplineGroup: k.group, Gender: k.gender, BoxStats: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisciplineGroup != out[j].DisciplineGroup {
			return out[i].DisciplineGroup < out[j].DisciplineGroup
		}
		return out[i].Gender < out[j].Gender
	})
	return out
}

// ComputeMedalTrend counts the medals of one NOC per edition it took part
// in, in chronological order. Editions without medals report zeros.
func ComputeMedalTrend(entries []athlete.Entry, noc string) models.MedalTrend {
	noc = strings.ToUpper(strings.TrimSpace(noc))
	byEdition := make(map[athlete.Edition]*models.TrendPoint)
	for i := range entries {
		e := &entries[i]
		if e.NOC != noc {
			continue
		}
		p, ok := byEdition[e.Edition()]
		if !ok {
			p = &models.TrendPoint{Year: e.Year, Season: e.Season}
			byEdition[e.Edition()] = p
		}
		switch e.Medal {
		case athlete.MedalGold:
			p.Gold++
		case athlete.MedalSilver:
			p.Silver++
		case athlete.MedalBronze:
			p.Bronze++
		}
	}
	t := models.MedalTrend{NOC: noc, Points: make([]models.TrendPoint, 0, len(byEdition))}
	for _, p := range byEdition {
		p.Total = p.Gold + p.Silver + p.Bronze
		t.Points = append(t.Points, *p)
	}
	sort.Slice(t.Points, func(i, j int) bool {
		if t.Points[i].Year != t.Points[j].Year {
			return t.Points[i].Year < t.Points[j].Year
		}
		return t.Points[i].Season < t.Points[j].Season
	})
	return t
}

// ComputeFilterOptions lists the values present in the data for each filter.
func ComputeFilterOptions(entries []athlete.Entry) models.FilterOptions {
	seasons := make(map[athlete.Season]struct{})
	genders := make(map[athlete.Gender]struct{})
	nocs := make(map[string]struct{})
	groups := make(map[string]struct{})
	disciplines := make(map[string]struct{})
	var o models.FilterOptions
	for i := range entries {
		e := &entries[i]
		if o.MinYear == 0 || e.Year < o.MinYear {
			o.MinYear = e.Year
		}
		if e.Year > o.MaxYear {
			o.MaxYear = e.Year
		}
		if e.Season != "" {
			seasons[e.Season] = struct{}{}
		}
		if e.Gender != "" {
			genders[e.Gender] = struct{}{}
		}
		nocs[e.NOC] = struct{}{}
		if e.DisciplineGroup != "" {
			groups[e.DisciplineGroup] = struct{}{}
		}
		if e.Discipline != "" {
			disciplines[e.Discipline] = struct{}{}
		}
	}
	o.Seasons = sortedKeys(seasons)
	o.Genders = sortedKeys(genders)
	o.NOCs = sortedKeys(nocs)
	o.DisciplineGroups = sortedKeys(groups)
	o.Disciplines = sortedKeys(disciplines)
	return o
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
