package service

import (
	"time"

	"github.com/google/uuid"

	athlete "podium/internal/athlete/models"
)

func f64(v float64) *float64 { return &v }

// fixtureEntries covers two editions, three NOCs and repeat athletes.
func fixtureEntries() []athlete.Entry {
	return []athlete.Entry{
		{Name: "Ana", Gender: "F", Age: f64(22), HeightCm: f64(170), WeightKg: f64(60), NOC: "ESP", Year: 2012, Season: athlete.SeasonSummer, Discipline: "Swimming", DisciplineGroup: "Aquatics", Event: "100m Free", Medal: athlete.MedalGold},
		{Name: "Ana", Gender: "F", Age: f64(22), HeightCm: f64(170), WeightKg: f64(60), NOC: "ESP", Year: 2012, Season: athlete.SeasonSummer, Discipline: "Swimming", DisciplineGroup: "Aquatics", Event: "200m Free", Medal: athlete.MedalSilver},
		{Name: "Ana", Gender: "F", Age: f64(26), HeightCm: f64(170), WeightKg: f64(61), NOC: "ESP", Year: 2016, Season: athlete.SeasonSummer, Discipline: "Swimming", DisciplineGroup: "Aquatics", Event: "100m Free"},
		{Name: "Luc", Gender: "M", Age: f64(30), HeightCm: f64(185), WeightKg: f64(80), NOC: "FRA", Year: 2012, Season: athlete.SeasonSummer, Discipline: "Diving", DisciplineGroup: "Aquatics", Event: "Platform", Medal: athlete.MedalBronze},
		{Name: "Kim", Gender: "F", Age: f64(19), NOC: "KOR", Year: 2016, Season: athlete.SeasonSummer, Discipline: "Archery", DisciplineGroup: "Archery", Event: "Individual", Medal: athlete.MedalGold},
		{Name: "Lee", Gender: "M", NOC: "KOR", Year: 2016, Season: athlete.SeasonSummer, Discipline: "Archery", DisciplineGroup: "Archery", Event: "Individual"},
		{Name: "Ola", Gender: "M", Age: f64(28), HeightCm: f64(180), NOC: "NOR", Year: 2014, Season: athlete.SeasonWinter, Discipline: "Biathlon", DisciplineGroup: "Biathlon", Event: "Sprint", Medal: athlete.MedalGold},
	}
}

func fixtureCoordinates() []athlete.Coordinate {
	return []athlete.Coordinate{
		{NOC: "ESP", Country: "Spain", Capital: "Madrid", Latitude: 40.4, Longitude: -3.7},
		{NOC: "KOR", Country: "South Korea", Capital: "Seoul", Latitude: 37.5, Longitude: 127},
		{NOC: "FRA", Country: "France", Capital: "Paris", Latitude: 48.9, Longitude: 2.35},
	}
}

func fixtureSnapshot() *athlete.Snapshot {
	return &athlete.Snapshot{
		ID:          uuid.MustParse("7b0c2a4e-3f6d-4a8e-9d2b-1c5e8f7a6b3d"),
		Source:      "testdata/jjoo.csv",
		LoadedAt:    time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC),
		Entries:     fixtureEntries(),
		Coordinates: fixtureCoordinates(),
	}
}
