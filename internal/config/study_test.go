package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStudyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultStudy(t *testing.T) {
	s := DefaultStudy()

	assert.Equal(t, "baseline", s.Name)
	assert.Equal(t, 2000, s.Data.YearStart)
	assert.Equal(t, 2022, s.Data.YearEnd)
	assert.Equal(t, 0.33, s.Model.DefaultAlpha)
	assert.Equal(t, "simple", s.Model.WageAveraging)
	assert.Equal(t, "gdp_weighted", s.Aggregation.Weighting)
	assert.True(t, s.Model.EnableImputation)
	assert.NoError(t, s.validate())
}

func TestLoadStudy(t *testing.T) {
	t.Run("no files keeps defaults", func(t *testing.T) {
		s, err := LoadStudy()
		require.NoError(t, err)
		assert.Equal(t, "baseline", s.Name)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		s, err := LoadStudy(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 2000, s.Data.YearStart)
	})

	t.Run("overrides layer on defaults", func(t *testing.T) {
		path := writeStudyFile(t, `
name: original_study
data:
  year_start: 2004
  year_end: 2018
  pwt_version: "10.0"
validation:
  target_value: 2.33
  tolerance_pct: 10
`)
		s, err := LoadStudy(path)
		require.NoError(t, err)

		assert.Equal(t, "original_study", s.Name)
		assert.Equal(t, 2004, s.Data.YearStart)
		assert.Equal(t, 2018, s.Data.YearEnd)
		assert.Equal(t, "10.0", s.Data.PWTVersion)
		assert.Equal(t, 2.33, s.Validation.TargetValue)
		// Untouched fields keep their defaults.
		assert.Equal(t, "simple", s.Model.WageAveraging)
		assert.Equal(t, 0.33, s.Model.DefaultAlpha)
	})

	t.Run("later files win", func(t *testing.T) {
		base := writeStudyFile(t, "name: base\n")
		override := writeStudyFile(t, "name: override\n")

		s, err := LoadStudy(base, override)
		require.NoError(t, err)
		assert.Equal(t, "override", s.Name)
	})

	t.Run("broken yaml fails", func(t *testing.T) {
		path := writeStudyFile(t, "name: [unclosed\n")
		_, err := LoadStudy(path)
		assert.Error(t, err)
	})

	t.Run("invalid year range fails", func(t *testing.T) {
		path := writeStudyFile(t, "data:\n  year_start: 2020\n  year_end: 2010\n")
		_, err := LoadStudy(path)
		assert.Error(t, err)
	})

	t.Run("unknown weighting fails", func(t *testing.T) {
		path := writeStudyFile(t, "aggregation:\n  weighting: population_weighted\n")
		_, err := LoadStudy(path)
		assert.Error(t, err)
	})

	t.Run("unknown wage averaging fails", func(t *testing.T) {
		path := writeStudyFile(t, "model:\n  wage_averaging: median\n")
		_, err := LoadStudy(path)
		assert.Error(t, err)
	})

	t.Run("hdi weighting needs an hdi file", func(t *testing.T) {
		path := writeStudyFile(t, "aggregation:\n  weighting: hdi_weighted\n")
		_, err := LoadStudy(path)
		assert.Error(t, err)

		path = writeStudyFile(t, "aggregation:\n  weighting: hdi_weighted\n  hdi_file: configs/hdi.yaml\n")
		s, err := LoadStudy(path)
		require.NoError(t, err)
		assert.Equal(t, "configs/hdi.yaml", s.Aggregation.HDIFile)
	})
}
