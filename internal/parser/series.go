package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"chipanalyzer/internal/models"
)

// ParseSeries reads a FRED CSV export (date, value) into dated points at
// the series' native frequency. Missing observations ("." rows) are
// skipped. Points come back sorted by date.
func ParseSeries(r io.Reader) ([]models.SeriesPoint, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read series CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient series rows: %d", len(records))
	}

	var points []models.SeriesPoint
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			continue
		}
		value, err := parseValue(record[1])
		if err != nil {
			continue
		}
		points = append(points, models.SeriesPoint{Date: date, Value: value})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no usable series observations")
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
