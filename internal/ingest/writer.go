package ingest

import (
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
)

// OutputColumns is the header of an exported entries file. It matches the
// canonical input names so an export can be loaded again.
var OutputColumns = []string{
	"name", "gender", "born_date", "age", "height_cm", "weight_kg", "noc", "country",
	"year", "type", "city", "discipline", "discipline_grouped", "event", "medal",
}

const noMedalLabel = "No Medal"

// WriteEntries writes entries as CSV with OutputColumns as header.
func WriteEntries(w io.Writer, entries []models.Entry) error {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, OutputColumns)
	for i := range entries {
		records = append(records, entryRecord(&entries[i]))
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return dErrors.Wrap(df.Err, dErrors.CodeInternal, "build export table")
	}
	if err := df.WriteCSV(w); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "write csv")
	}
	return nil
}

func entryRecord(e *models.Entry) []string {
	born := ""
	if e.BornDate != nil {
		born = e.BornDate.Format("2006-01-02")
	}
	medal := string(e.Medal)
	if !e.Medal.IsWon() {
		medal = noMedalLabel
	}
	return []string{
		e.Name, string(e.Gender), born,
		formatOptional(e.Age), formatOptional(e.HeightCm), formatOptional(e.WeightKg),
		e.NOC, e.Country, strconv.Itoa(e.Year), string(e.Season), e.City,
		e.Discipline, e.DisciplineGroup, e.Event, medal,
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
