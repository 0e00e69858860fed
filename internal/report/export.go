package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"chipanalyzer/internal/models"
)

// ExportCSV writes the per-country results as CSV and returns the path.
func ExportCSV(countries []models.CountryResult, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(dir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"isocode", "chip_value", "elementary_wage", "theta", "alpha", "mpl", "gdp", "year_min", "year_max", "n_years"}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, c := range countries {
		record := []string{
			c.ISOCode,
			formatFloat(c.CHIP),
			formatFloat(c.ElementaryWage),
			formatFloat(c.Theta),
			formatFloat(c.Alpha),
			formatFloat(c.MPL),
			formatFloat(c.GDP),
			strconv.Itoa(c.YearMin),
			strconv.Itoa(c.YearMax),
			strconv.Itoa(c.NYears),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return path, nil
}

// ExportJSON writes any result value as indented JSON and returns the path.
func ExportJSON(v any, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON export: %w", err)
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON export: %w", err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
