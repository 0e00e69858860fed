package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/models"
)

func TestValidate(t *testing.T) {
	t.Run("within tolerance passes", func(t *testing.T) {
		v := Validate(2.34, 2.33, 1.0)
		assert.True(t, v.Passed)
		assert.InDelta(t, 0.4292, v.DeviationPct, 1e-3)
	})

	t.Run("outside tolerance fails", func(t *testing.T) {
		v := Validate(2.60, 2.33, 1.0)
		assert.False(t, v.Passed)
		assert.Greater(t, v.DeviationPct, 1.0)
	})

	t.Run("exact match", func(t *testing.T) {
		v := Validate(2.33, 2.33, 1.0)
		assert.True(t, v.Passed)
		assert.Equal(t, 0.0, v.DeviationPct)
	})
}

func testReport() *Report {
	validation := Validate(2.34, 2.33, 10.0)
	return &Report{
		Run: models.EstimateRun{
			ID:         uuid.New(),
			CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Study:      "baseline",
			PWTVersion: "11.0",
			YearStart:  2000,
			YearEnd:    2022,
			CHIPValue:  2.34,
			NCountries: 58,
			MeanAlpha:  0.41,
			Weighting:  "gdp_weighted",
		},
		Countries: []models.CountryResult{
			{ISOCode: "USA", CHIP: 9.12, ElementaryWage: 12.5, Theta: 0.73, Alpha: 0.38,
				YearMin: 2000, YearMax: 2022, NYears: 20},
			{ISOCode: "IND", CHIP: 0.61, ElementaryWage: 0.8, Theta: 0.76, Alpha: 0.45,
				YearMin: 2005, YearMax: 2019, NYears: 9},
		},
		Validation: &validation,
		Vintages: map[string]cache.Metadata{
			"employment": {Source: "ILOSTAT API", LastUpdated: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
			"pwt_11_0":   {Source: "rug.nl/ggdc", Version: "11.0", LastUpdated: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestReportMarkdown(t *testing.T) {
	md := testReport().Markdown()

	assert.Contains(t, md, "# CHIP Estimate — baseline")
	assert.Contains(t, md, "**$2.34/hour**")
	assert.Contains(t, md, "| Years | 2000-2022 |")
	assert.Contains(t, md, "| PWT version | 11.0 |")
	assert.Contains(t, md, "| Status | PASSED |")
	assert.Contains(t, md, "| USA | 9.12 |")
	assert.Contains(t, md, "| IND | 0.61 |")
	assert.Contains(t, md, "rug.nl/ggdc 11.0")
}

func TestReportMarkdown_FailedValidation(t *testing.T) {
	r := testReport()
	v := Validate(3.00, 2.33, 1.0)
	r.Validation = &v

	md := r.Markdown()
	assert.Contains(t, md, "| Status | FAILED |")
}

func TestReportMarkdown_TruncatesCountries(t *testing.T) {
	r := testReport()
	r.Countries = nil
	for i := 0; i < 25; i++ {
		r.Countries = append(r.Countries, models.CountryResult{
			ISOCode: string(rune('A'+i)) + "AA",
			CHIP:    float64(25 - i),
		})
	}

	md := r.Markdown()
	assert.Contains(t, md, "Showing top 20 of 25 countries")
}

func TestReportSave(t *testing.T) {
	dir := t.TempDir()
	path, err := testReport().Save(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "baseline")
	assert.True(t, strings.HasSuffix(path, ".md"))
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportCSV(testReport().Countries, dir, "countries_baseline")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "isocode,chip_value")
	assert.Contains(t, content, "USA,9.120000")

	lines := strings.Split(strings.TrimSpace(content), "\n")
	assert.Len(t, lines, 3)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportJSON(testReport().Run, dir, "run")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"baseline"`)
}
