package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/analysis/models"
	athlete "podium/internal/athlete/models"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestComputeOverview(t *testing.T) {
	diff(t, models.Overview{Athletes: 5, NOCs: 4, Editions: 3, Disciplines: 4, Entries: 7, Medals: 5},
		ComputeOverview(fixtureEntries()))
	diff(t, models.Overview{}, ComputeOverview(nil))
}

func TestParticipationByGender(t *testing.T) {
	want := []models.GenderCount{
		{Year: 2012, Gender: "F", Count: 2},
		{Year: 2012, Gender: "M", Count: 1},
		{Year: 2014, Gender: "M", Count: 1},
		{Year: 2016, Gender: "F", Count: 2},
		{Year: 2016, Gender: "M", Count: 1},
	}
	diff(t, want, ParticipationByGender(fixtureEntries()))
}

func TestDisciplinesPerYear(t *testing.T) {
	want := []models.DisciplineCount{{Year: 2012, Disciplines: 2}, {Year: 2014, Disciplines: 1}, {Year: 2016, Disciplines: 2}}
	diff(t, want, DisciplinesPerYear(fixtureEntries()))
}

func TestMedalTable(t *testing.T) {
	nocs := func(rows []models.MedalRow) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.NOC
		}
		return out
	}
	entries := fixtureEntries()

	t.Run("by total medals, ties by noc", func(t *testing.T) {
		rows := MedalTable(entries, models.SortTotalMedals, 0)
		assert.Equal(t, []string{"ESP", "FRA", "KOR", "NOR"}, nocs(rows))
		diff(t, models.MedalRow{NOC: "ESP", TotalAthletes: 1, TotalMedals: 2, Gold: 1, Silver: 1}, rows[0])
	})

	t.Run("by athletes", func(t *testing.T) {
		rows := MedalTable(entries, models.SortTotalAthletes, 0)
		assert.Equal(t, []string{"KOR", "ESP", "FRA", "NOR"}, nocs(rows))
	})

	t.Run("by gold", func(t *testing.T) {
		assert.Equal(t, []string{"ESP", "KOR", "NOR", "FRA"}, nocs(MedalTable(entries, models.SortGold, 0)))
	})

	t.Run("top truncates", func(t *testing.T) {
		assert.Equal(t, []string{"ESP", "FRA"}, nocs(MedalTable(entries, models.SortTotalMedals, 2)))
	})
}

func TestMedalMapSkipsNOCsWithoutCoordinates(t *testing.T) {
	points := MedalMap(fixtureEntries(), fixtureCoordinates())

	require.Len(t, points, 3)
	assert.Equal(t, "ESP", points[0].NOC)
	assert.Equal(t, "Madrid", points[0].Capital)
	for _, p := range points {
		assert.NotEqual(t, "NOR", p.NOC)
		assert.Positive(t, p.TotalMedals)
	}
}

func TestMedalMapNoMedals(t *testing.T) {
	entries := []athlete.Entry{{Name: "A", NOC: "ESP", Year: 2000}}
	assert.Empty(t, MedalMap(entries, fixtureCoordinates()))
}

func TestMetricDistribution(t *testing.T) {
	d := MetricDistribution(fixtureEntries(), athlete.MetricAge, models.GroupGender)

	want := models.Distribution{
		Metric:  athlete.MetricAge,
		GroupBy: models.GroupGender,
		Groups: []models.BoxStats{
			{Group: "F", Count: 4, Min: 19, Q1: 21.25, Median: 22, Q3: 23, Max: 26, Mean: 22.25, Outliers: []float64{26}},
			{Group: "M", Count: 2, Min: 28, Q1: 28.5, Median: 29, Q3: 29.5, Max: 30, Mean: 29, Outliers: []float64{}},
		},
	}
	diff(t, want, d, cmpopts.EquateApprox(0, 1e-9))
}

func TestMetricDistributionUngrouped(t *testing.T) {
	d := MetricDistribution(fixtureEntries(), athlete.MetricHeight, models.GroupNone)
	require.Len(t, d.Groups, 1)
	assert.Equal(t, "all", d.Groups[0].Group)
	assert.Equal(t, 5, d.Groups[0].Count)
}

func TestHeightWeightPoints(t *testing.T) {
	hw := HeightWeightPoints(fixtureEntries(), models.GroupMedal, 2)

	assert.Equal(t, 4, hw.Total)
	assert.True(t, hw.Truncated)
	require.Len(t, hw.Points, 2)
	assert.Equal(t, "Gold", hw.Points[0].Group)
	assert.Equal(t, "Silver", hw.Points[1].Group)

	all := HeightWeightPoints(fixtureEntries(), models.GroupNone, 0)
	assert.False(t, all.Truncated)
	assert.Len(t, all.Points, 4)
	assert.Empty(t, all.Points[0].Group)
}

func TestDisciplineTree(t *testing.T) {
	want := []models.TreeNode{
		{Group: "Aquatics", Discipline: "Diving", Athletes: 1, ShareOfGroup: 0.5, ShareOfTotal: 0.2},
		{Group: "Aquatics", Discipline: "Swimming", Athletes: 1, ShareOfGroup: 0.5, ShareOfTotal: 0.2},
		{Group: "Archery", Discipline: "Archery", Athletes: 2, ShareOfGroup: 1, ShareOfTotal: 0.4},
		{Group: "Biathlon", Discipline: "Biathlon", Athletes: 1, ShareOfGroup: 1, ShareOfTotal: 0.2},
	}
	diff(t, want, DisciplineTree(fixtureEntries()), cmpopts.EquateApprox(0, 1e-9))
}

func TestAverageAgeByDiscipline(t *testing.T) {
	got := AverageAgeByDiscipline(fixtureEntries(), models.DefaultDisciplineTop)
	want := []models.DisciplineAge{
		{Discipline: "Diving", Athletes: 1, MeanAge: 30},
		{Discipline: "Biathlon", Athletes: 1, MeanAge: 28},
		{Discipline: "Swimming", Athletes: 1, MeanAge: 70.0 / 3},
		{Discipline: "Archery", Athletes: 2, MeanAge: 19},
	}
	diff(t, want, got, cmpopts.EquateApprox(0, 1e-9))

	top := AverageAgeByDiscipline(fixtureEntries(), 1)
	require.Len(t, top, 1)
	assert.Equal(t, "Archery", top[0].Discipline, "selection is by athlete count")
}

func TestAgeByDisciplineGroup(t *testing.T) {
	got := AgeByDisciplineGroup(fixtureEntries())

	keys := make([]string, len(got))
	for i, g := range got {
		keys[i] = g.DisciplineGroup + "/" + string(g.Gender)
	}
	assert.Equal(t, []string{"Aquatics/F", "Aquatics/M", "Archery/F", "Biathlon/M"}, keys)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, 22.0, got[0].Median)
}

func TestComputeMedalTrend(t *testing.T) {
	want := models.MedalTrend{
		NOC: "ESP",
		Points: []models.TrendPoint{
			{Year: 2012, Season: athlete.SeasonSummer, Gold: 1, Silver: 1, Total: 2},
			{Year: 2016, Season: athlete.SeasonSummer},
		},
	}
	diff(t, want, ComputeMedalTrend(fixtureEntries(), "esp"))

	empty := ComputeMedalTrend(fixtureEntries(), "USA")
	assert.Empty(t, empty.Points)
}

func TestComputeFilterOptions(t *testing.T) {
	want := models.FilterOptions{
		MinYear:          2012,
		MaxYear:          2016,
		Seasons:          []athlete.Season{athlete.SeasonSummer, athlete.SeasonWinter},
		Genders:          []athlete.Gender{athlete.GenderFemale, athlete.GenderMale},
		NOCs:             []string{"ESP", "FRA", "KOR", "NOR"},
		DisciplineGroups: []string{"Aquatics", "Archery", "Biathlon"},
		Disciplines:      []string{"Archery", "Biathlon", "Diving", "Swimming"},
	}
	diff(t, want, ComputeFilterOptions(fixtureEntries()))
}
