package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	athlete "podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
)

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"year_from":        {"1992"},
		"year_to":          {"2016"},
		"season":           {"summer"},
		"noc":              {" esp "},
		"medal":            {"gold"},
		"gender":           {"F,M", "f"},
		"discipline_group": {"Athletics"},
	}

	f, err := ParseFilter(q)
	require.NoError(t, err)

	assert.Equal(t, 1992, f.YearFrom)
	assert.Equal(t, 2016, f.YearTo)
	assert.Equal(t, athlete.SeasonSummer, f.Season)
	assert.Equal(t, "ESP", f.NOC)
	assert.Equal(t, "Gold", f.Medal)
	assert.Equal(t, []athlete.Gender{athlete.GenderFemale, athlete.GenderMale}, f.Genders)
}

func TestParseFilterErrors(t *testing.T) {
	cases := map[string]url.Values{
		"inverted years": {"year_from": {"2016"}, "year_to": {"1992"}},
		"year not int":   {"year_from": {"nineteen"}},
		"bad season":     {"season": {"spring"}},
		"bad gender":     {"gender": {"X"}},
		"bad medal":      {"medal": {"platinum"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilter(q)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestFilterMatch(t *testing.T) {
	gold := athlete.Entry{Name: "Ana", NOC: "ESP", Year: 2012, Season: athlete.SeasonSummer,
		Gender: athlete.GenderFemale, Medal: athlete.MedalGold, Discipline: "Swimming", DisciplineGroup: "Aquatics"}
	none := gold
	none.Medal = athlete.MedalNone

	assert.True(t, Filter{}.Match(&gold))
	assert.True(t, Filter{YearFrom: 2012, YearTo: 2012}.Match(&gold))
	assert.False(t, Filter{YearFrom: 2016}.Match(&gold))
	assert.False(t, Filter{Season: athlete.SeasonWinter}.Match(&gold))
	assert.True(t, Filter{Medal: MedalWon}.Match(&gold))
	assert.False(t, Filter{Medal: MedalWon}.Match(&none))
	assert.True(t, Filter{Medal: MedalNone}.Match(&none))
	assert.False(t, Filter{Medal: "Silver"}.Match(&gold))
	assert.False(t, Filter{Genders: []athlete.Gender{athlete.GenderMale}}.Match(&gold))
	assert.True(t, Filter{DisciplineGroup: "aquatics", Discipline: "SWIMMING"}.Match(&gold))
}

func TestFilterKeyIsNormalized(t *testing.T) {
	a := Filter{Genders: []athlete.Gender{"M", "F", "M"}, Medal: "any"}.Normalize()
	b := Filter{Genders: []athlete.Gender{"F", "M"}}.Normalize()
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Filter{NOC: "ESP"}.Key())
}

func TestParseParameters(t *testing.T) {
	s, err := ParseMedalSort("")
	require.NoError(t, err)
	assert.Equal(t, SortTotalMedals, s)
	_, err = ParseMedalSort("silver_total")
	assert.Error(t, err)

	g, err := ParseGroupBy("TYPE")
	require.NoError(t, err)
	assert.Equal(t, GroupSeason, g)
}
