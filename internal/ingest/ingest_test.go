package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
)

const participationCSV = `name,gender,born_date,age,height_cm,weight_kg,noc,year,type,discipline,discipline_grouped,event,medal
Ana Pérez,F,1990-03-14,22,168,58,ESP,2012,Summer,Swimming,Aquatics,100m Freestyle,Gold
Luc Martin,M,,NA,185,"82,5",FRA,2012,Summer,Athletics,Athletics,Marathon,No Medal
,M,1985-01-01,27,180,75,USA,2012,Summer,Rowing,Rowing,Eights,
Kim Lee,F,not-a-date,abc,160,50,KOR,1988.0,Winter,Skating,Skating,1000m,Silver
Bad Year,F,1970-01-01,30,170,60,ITA,19xx,Summer,Fencing,Fencing,Foil,
`

func TestReadTable(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(participationCSV))
	require.NoError(t, err)

	assert.Len(t, tbl.Columns, 13)
	assert.Len(t, tbl.Rows, 5)
	// NA markers and empty cells both read as missing.
	assert.Equal(t, "", tbl.Rows[1][tbl.Index("age")])
	assert.Equal(t, "", tbl.Rows[1][tbl.Index("born_date")])
	assert.Equal(t, "82,5", tbl.Rows[1][tbl.Index("weight_kg")])
}

func TestReadTableHeaderOnly(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("name,noc,year\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "noc", "year"}, tbl.Columns)
	assert.Empty(t, tbl.Rows)
	require.NoError(t, RequireColumns(tbl, "name", "noc", "year"))

	entries, issues := DecodeEntries(tbl)
	assert.Empty(t, entries)
	assert.Empty(t, issues)
}

func TestReadTableStripsByteOrderMark(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("\ufeffname,noc\nAna,ESP\n"))
	require.NoError(t, err)

	assert.Equal(t, "name", tbl.Columns[0])
	assert.Equal(t, 0, tbl.Index("name"))
	assert.Equal(t, "Ana", tbl.Rows[0][0])
}

func TestReadTableRejectsEmptyInput(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRequireColumns(t *testing.T) {
	tbl := &models.RawTable{Columns: []string{"name", "sex", "noc"}}

	require.NoError(t, RequireColumns(tbl, "name", "gender"))

	err := RequireColumns(tbl, EssentialColumns...)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "year, type, medal, age, discipline_grouped, discipline")
}

func TestDecodeEntries(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(participationCSV))
	require.NoError(t, err)

	entries, issues := DecodeEntries(tbl)
	require.Len(t, entries, 3)

	ana := entries[0]
	assert.Equal(t, "Ana Pérez", ana.Name)
	assert.Equal(t, 2012, ana.Year)
	require.NotNil(t, ana.Age)
	assert.Equal(t, 22.0, *ana.Age)
	require.NotNil(t, ana.BornDate)
	assert.Equal(t, 1990, ana.BornDate.Year())
	assert.Equal(t, models.Medal("Gold"), ana.Medal)

	luc := entries[1]
	assert.Nil(t, luc.Age)
	require.NotNil(t, luc.WeightKg)
	assert.Equal(t, 82.5, *luc.WeightKg)
	assert.Equal(t, models.Medal("No Medal"), luc.Medal)

	kim := entries[2]
	assert.Equal(t, 1988, kim.Year)
	assert.Nil(t, kim.Age)
	assert.Nil(t, kim.BornDate)

	reasons := make(map[string]int)
	for _, is := range issues {
		reasons[is.Reason]++
	}
	assert.Equal(t, 1, reasons["row rejected: invalid year"])
	assert.Equal(t, 1, reasons["row rejected: entry name cannot be empty"])
	assert.Equal(t, 1, reasons["not a number"])
	assert.Equal(t, 1, reasons["not a date"])
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber("1,5")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = ParseNumber("NaN")
	assert.False(t, ok)
	_, ok = ParseNumber("1,000.5")
	assert.False(t, ok)
}

func TestDecodeCoordinates(t *testing.T) {
	csv := `noc,country,capital,latitude,longitude
esp,Spain,Madrid,40.4,-3.7
FRA,France,Paris,48.8,2.3
ESP,Spain again,Madrid,0,0
USA,United States,Washington,,-77
XXX,Nowhere,,95,10
`
	tbl, err := ReadTable(strings.NewReader(csv))
	require.NoError(t, err)

	coords, err := DecodeCoordinates(tbl)
	require.NoError(t, err)
	require.Len(t, coords, 2)
	assert.Equal(t, models.Coordinate{NOC: "ESP", Country: "Spain", Capital: "Madrid", Latitude: 40.4, Longitude: -3.7}, coords[0])
	assert.Equal(t, "FRA", coords[1].NOC)
}

func TestDecodeCoordinatesRequiresColumns(t *testing.T) {
	tbl := &models.RawTable{Columns: []string{"noc", "latitude"}}
	_, err := DecodeCoordinates(tbl)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestWriteEntries(t *testing.T) {
	born := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	entries := []models.Entry{
		{Name: "Ana Pérez", Gender: models.GenderFemale, BornDate: &born, Age: models.Float(22), HeightCm: models.Float(168.5), NOC: "ESP", Year: 2012, Season: models.SeasonSummer, Medal: models.MedalGold},
		{Name: "Luc Martin", NOC: "FRA", Year: 2016},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))

	tbl, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, OutputColumns, tbl.Columns)
	require.Len(t, tbl.Rows, 2)

	row := tbl.Rows[0]
	assert.Equal(t, "1990-03-14", row[tbl.Index("born_date")])
	assert.Equal(t, "168.5", row[tbl.Index("height_cm")])
	assert.Equal(t, "Gold", row[tbl.Index("medal")])
	assert.Equal(t, "", tbl.Rows[1][tbl.Index("age")])
	assert.Equal(t, "No Medal", tbl.Rows[1][tbl.Index("medal")])
}

func TestWriteEntriesKeepsMissingMarkersLiteral(t *testing.T) {
	entries := []models.Entry{
		{Name: "NA", NOC: "NAM", Year: 2012, City: "NaN", Event: "<nil>"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	row := records[1]
	assert.Equal(t, "NA", row[slices.Index(OutputColumns, "name")])
	assert.Equal(t, "NaN", row[slices.Index(OutputColumns, "city")])
	assert.Equal(t, "<nil>", row[slices.Index(OutputColumns, "event")])
	assert.Equal(t, "", row[slices.Index(OutputColumns, "age")])
}
