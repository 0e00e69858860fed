package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"chipanalyzer/internal/models"
)

// PWTParser reads a Penn World Table CSV export. The table carries many
// more series than the estimation needs; only the national-accounts GDP,
// capital stock, employment, human capital, labor share and population
// columns are picked up.
type PWTParser struct {
	logger *slog.Logger
}

func NewPWTParser(logger *slog.Logger) *PWTParser {
	return &PWTParser{logger: logger}
}

func (p *PWTParser) Parse(r io.Reader) ([]models.PWTObservation, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read PWT header: %w", err)
	}
	columns := indexColumns(header)

	for _, required := range []string{"countrycode", "year", "rgdpna", "rnna"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("PWT data missing column %q", required)
		}
	}

	var observations []models.PWTObservation
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read PWT row: %w", err)
		}

		isocode, _ := field(record, columns, "countrycode")
		country, _ := field(record, columns, "country")
		yearStr, _ := field(record, columns, "year")

		year, err := strconv.Atoi(yearStr)
		if err != nil {
			skipped++
			continue
		}

		observations = append(observations, models.PWTObservation{
			ISOCode:      isocode,
			Country:      country,
			Year:         year,
			GDP:          floatField(record, columns, "rgdpna"),
			Capital:      floatField(record, columns, "rnna"),
			Employment:   floatField(record, columns, "emp"),
			HumanCapital: floatField(record, columns, "hc"),
			LaborShare:   floatField(record, columns, "labsh"),
			Population:   floatField(record, columns, "pop"),
		})
	}

	if skipped > 0 {
		p.logger.Debug("Skipped unparsable PWT rows", "skipped", skipped)
	}
	return observations, nil
}

// floatField returns 0 for blank or malformed cells; PWT leaves series
// empty for years a country did not report.
func floatField(record []string, columns map[string]int, name string) float64 {
	s, ok := field(record, columns, name)
	if !ok {
		return 0
	}
	v, err := parseValue(s)
	if err != nil {
		return 0
	}
	return v
}
