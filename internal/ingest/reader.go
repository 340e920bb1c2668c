// Package ingest turns the Olympic CSV files into typed domain values.
//
// Reading happens in two stages: ReadTable loads the file as an untyped
// RawTable (the input to profiling), and DecodeEntries types it into entries,
// reporting every cell it could not parse instead of failing the load.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"podium/internal/athlete/models"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/sentinel"
)

// EssentialColumns must be present in the participation file.
var EssentialColumns = []string{
	"year", "type", "noc", "medal", "age", "gender", "discipline_grouped", "name", "discipline",
}

// naValues are read as missing cells.
var naValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// utf8BOM is dropped from the start of the input so the first header matches.
var utf8BOM = []byte("\ufeff")

// ReadTable reads a CSV with a header row. Every column is kept as text. A
// file with a header and no data rows yields a table with no rows.
func ReadTable(r io.Reader) (*models.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read csv")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		if header, ok := headerOnly(data); ok {
			return &models.RawTable{Columns: header, Rows: [][]string{}}, nil
		}
		return nil, dErrors.Wrap(df.Err, dErrors.CodeValidation, "malformed csv")
	}

	names := df.Names()
	rows := make([][]string, df.Nrow())
	for i := range rows {
		rows[i] = make([]string, len(names))
	}
	for c, name := range names {
		col := df.Col(name)
		for r := 0; r < col.Len(); r++ {
			el := col.Elem(r)
			if el.IsNA() {
				continue
			}
			rows[r][c] = strings.TrimSpace(el.String())
		}
	}
	return &models.RawTable{Columns: names, Rows: rows}, nil
}

// headerOnly reports whether data holds exactly one record, returning it.
// The dataframe loader rejects such input as empty.
func headerOnly(data []byte) ([]string, bool) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(records) != 1 || len(records[0]) == 0 {
		return nil, false
	}
	return records[0], true
}

// LoadTable opens path and reads it with ReadTable.
func LoadTable(ctx context.Context, path string) (*models.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "file "+path+" not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "open "+path)
	}
	defer f.Close()
	return ReadTable(f)
}

// RequireColumns fails with a validation error naming every missing column.
// Aliases (for example "sex" for "gender") satisfy the canonical name.
func RequireColumns(t *models.RawTable, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if columnIndex(t, c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeValidation, "missing essential columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

var columnAliases = map[string][]string{
	"gender":             {"sex"},
	"born_date":          {"birth_date", "born"},
	"height_cm":          {"height"},
	"weight_kg":          {"weight"},
	"type":               {"season"},
	"discipline":         {"sport"},
	"discipline_grouped": {"discipline_group", "sport_group"},
	"country":            {"país", "pais", "team"},
	"capital":            {},
	"latitude":           {"lat"},
	"longitude":          {"lon", "lng"},
}

func columnIndex(t *models.RawTable, canonical string) int {
	if i := t.Index(canonical); i >= 0 {
		return i
	}
	for _, alias := range columnAliases[canonical] {
		if i := t.Index(alias); i >= 0 {
			return i
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
