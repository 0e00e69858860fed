package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"chipanalyzer/internal/models"
)

// DeflatorBaseYear is the year the deflator is rebased to (= 100), so
// deflated wages come out in constant 2017 dollars.
const DeflatorBaseYear = 2017

// ParseDeflator reads the FRED CSV export of the US GDP deflator
// (date, value) and averages observations per year.
func ParseDeflator(r io.Reader) ([]models.DeflatorPoint, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read deflator CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient deflator rows: %d", len(records))
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, record := range records[1:] {
		if len(record) < 2 || len(record[0]) < 4 {
			continue
		}
		year, err := strconv.Atoi(record[0][:4])
		if err != nil {
			continue
		}
		value, err := parseValue(record[1])
		if err != nil {
			continue
		}
		sums[year] += value
		counts[year]++
	}
	if len(sums) == 0 {
		return nil, fmt.Errorf("no usable deflator observations")
	}

	points := make([]models.DeflatorPoint, 0, len(sums))
	for year, sum := range sums {
		points = append(points, models.DeflatorPoint{
			Year:  year,
			Value: sum / float64(counts[year]),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	return RebaseDeflator(points, DeflatorBaseYear), nil
}

// RebaseDeflator scales the series so the base year equals 100. The
// series is returned unchanged when the base year is absent.
func RebaseDeflator(points []models.DeflatorPoint, baseYear int) []models.DeflatorPoint {
	var base float64
	for _, p := range points {
		if p.Year == baseYear {
			base = p.Value
			break
		}
	}
	if base == 0 {
		return points
	}

	rebased := make([]models.DeflatorPoint, len(points))
	for i, p := range points {
		rebased[i] = models.DeflatorPoint{Year: p.Year, Value: p.Value / base * 100}
	}
	return rebased
}
