package ingest

import (
	"context"
	"strings"

	"podium/internal/athlete/models"
)

// CoordinateColumns must be present in the coordinates file.
var CoordinateColumns = []string{"noc", "country", "latitude", "longitude"}

// DecodeCoordinates types a coordinates table, dropping rows with any missing
// or unparsable key field. The first row wins when a NOC repeats.
func DecodeCoordinates(t *models.RawTable) ([]models.Coordinate, error) {
	if err := RequireColumns(t, CoordinateColumns...); err != nil {
		return nil, err
	}
	nocIdx := columnIndex(t, "noc")
	countryIdx := columnIndex(t, "country")
	capitalIdx := columnIndex(t, "capital")
	latIdx := columnIndex(t, "latitude")
	lonIdx := columnIndex(t, "longitude")

	seen := make(map[string]struct{})
	coords := make([]models.Coordinate, 0, len(t.Rows))
	for _, row := range t.Rows {
		noc := strings.ToUpper(cellAt(row, nocIdx))
		country := cellAt(row, countryIdx)
		if noc == "" || country == "" {
			continue
		}
		lat, okLat := ParseNumber(cellAt(row, latIdx))
		lon, okLon := ParseNumber(cellAt(row, lonIdx))
		if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		if _, dup := seen[noc]; dup {
			continue
		}
		seen[noc] = struct{}{}

		c := models.Coordinate{NOC: noc, Country: country, Latitude: lat, Longitude: lon}
		c.Capital = cellAt(row, capitalIdx)
		coords = append(coords, c)
	}
	return coords, nil
}

// LoadCoordinates reads and decodes the coordinates file at path.
func LoadCoordinates(ctx context.Context, path string) ([]models.Coordinate, error) {
	t, err := LoadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeCoordinates(t)
}
