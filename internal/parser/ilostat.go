package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"chipanalyzer/internal/models"
)

// ILOSTATParser reads the rplumber CSV export of an ILOSTAT indicator:
// ref_area, sex, classif1, classif2, time, obs_value. Only sex totals are
// kept, and wage datasets are additionally filtered to USD series.
type ILOSTATParser struct {
	requireUSD bool
	logger     *slog.Logger
}

func NewILOSTATParser(requireUSD bool, logger *slog.Logger) *ILOSTATParser {
	return &ILOSTATParser{requireUSD: requireUSD, logger: logger}
}

func (p *ILOSTATParser) Parse(r io.Reader) ([]models.ILOValue, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read ILOSTAT header: %w", err)
	}
	columns := indexColumns(header)

	for _, required := range []string{"ref_area", "time", "classif1", "obs_value"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("ILOSTAT data missing column %q", required)
		}
	}

	var values []models.ILOValue
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ILOSTAT row: %w", err)
		}

		if sex, ok := field(record, columns, "sex"); ok {
			if !strings.Contains(sex, "SEX_T") && !strings.Contains(strings.ToLower(sex), "total") {
				continue
			}
		}
		if p.requireUSD {
			currency, ok := field(record, columns, "classif2")
			if !ok || !strings.Contains(strings.ToUpper(currency), "USD") {
				continue
			}
		}

		isocode, _ := field(record, columns, "ref_area")
		yearStr, _ := field(record, columns, "time")
		iscoCode, _ := field(record, columns, "classif1")
		valueStr, _ := field(record, columns, "obs_value")

		year, err := strconv.Atoi(yearStr)
		if err != nil {
			skipped++
			continue
		}
		value, err := parseValue(valueStr)
		if err != nil {
			skipped++
			continue
		}

		values = append(values, models.ILOValue{
			ISOCode:  isocode,
			Year:     year,
			ISCOCode: iscoCode,
			Value:    value,
		})
	}

	if skipped > 0 {
		p.logger.Debug("Skipped unparsable ILOSTAT rows", "skipped", skipped)
	}
	return values, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func field(record []string, columns map[string]int, name string) (string, bool) {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

func parseValue(valueStr string) (float64, error) {
	valueStr = strings.TrimSpace(valueStr)
	valueStr = strings.ReplaceAll(valueStr, "\"", "")

	if valueStr == "" || valueStr == "-" {
		return 0, fmt.Errorf("empty or invalid value")
	}

	return strconv.ParseFloat(valueStr, 64)
}
