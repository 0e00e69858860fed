package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chipanalyzer/internal/models"
)

func TestMapOccupation(t *testing.T) {
	t.Run("maps both ISCO revisions", func(t *testing.T) {
		occ, ok := MapOccupation("OCU_ISCO08_1")
		require.True(t, ok)
		assert.Equal(t, OccupationManagers, occ)

		occ, ok = MapOccupation("OCU_ISCO88_9")
		require.True(t, ok)
		assert.Equal(t, OccupationElementary, occ)
	})

	t.Run("drops totals and skill rollups", func(t *testing.T) {
		for _, code := range []string{"OCU_ISCO08_TOTAL", "OCU_SKILL_TOTAL", "OCU_SKILL_L1", "OCU_ISCO08_X"} {
			_, ok := MapOccupation(code)
			assert.False(t, ok, code)
		}
	})

	t.Run("drops unknown codes", func(t *testing.T) {
		_, ok := MapOccupation("OCU_ISCO08_99")
		assert.False(t, ok)
	})
}

func TestMergeLabor(t *testing.T) {
	employment := []models.ILOValue{
		{ISOCode: "USA", Year: 2010, ISCOCode: "OCU_ISCO08_1", Value: 100},
		{ISOCode: "USA", Year: 2010, ISCOCode: "OCU_ISCO08_9", Value: 200},
	}
	wages := []models.ILOValue{
		{ISOCode: "USA", Year: 2010, ISCOCode: "OCU_ISCO08_1", Value: 30},
	}
	hours := []models.ILOValue{
		{ISOCode: "USA", Year: 2010, ISCOCode: "OCU_ISCO08_9", Value: 35},
	}

	merged := MergeLabor(employment, wages, hours)
	require.Len(t, merged, 2)

	managers := merged[0]
	assert.Equal(t, OccupationManagers, managers.Occupation)
	assert.Equal(t, 100.0, managers.Employment)
	assert.Equal(t, 30.0, managers.Wage)
	assert.Equal(t, 40.0, managers.Hours)

	elementary := merged[1]
	assert.Equal(t, OccupationElementary, elementary.Occupation)
	assert.True(t, math.IsNaN(elementary.Wage))
	assert.Equal(t, 35.0, elementary.Hours)
	assert.Equal(t, 200.0*35.0, elementary.LaborHours())
}

func TestApplyExclusions(t *testing.T) {
	labor := []models.LaborObservation{
		{ISOCode: "USA", Year: 2010},
		{ISOCode: "KHM", Year: 2010},
		{ISOCode: "ALB", Year: 2012},
		{ISOCode: "ALB", Year: 2013},
		{ISOCode: "DEU", Year: 2010},
	}

	kept := ApplyExclusions(labor, []string{"DEU"})
	require.Len(t, kept, 2)
	assert.Equal(t, "USA", kept[0].ISOCode)
	assert.Equal(t, "ALB", kept[1].ISOCode)
	assert.Equal(t, 2013, kept[1].Year)
}

func TestIncludeCountries(t *testing.T) {
	labor := []models.LaborObservation{
		{ISOCode: "USA"},
		{ISOCode: "DEU"},
		{ISOCode: "FRA"},
	}

	assert.Len(t, IncludeCountries(labor, nil), 3)

	kept := IncludeCountries(labor, []string{"DEU"})
	require.Len(t, kept, 1)
	assert.Equal(t, "DEU", kept[0].ISOCode)
}

func TestFilterYears(t *testing.T) {
	labor := []models.LaborObservation{
		{ISOCode: "USA", Year: 1999},
		{ISOCode: "USA", Year: 2000},
		{ISOCode: "USA", Year: 2022},
		{ISOCode: "USA", Year: 2023},
	}

	kept := FilterYears(labor, 2000, 2022)
	require.Len(t, kept, 2)
	assert.Equal(t, 2000, kept[0].Year)
	assert.Equal(t, 2022, kept[1].Year)
}

func TestDeflateWages(t *testing.T) {
	labor := []models.LaborObservation{
		{ISOCode: "USA", Year: 2010, Wage: 12},
		{ISOCode: "USA", Year: 2011, Wage: 10},
		{ISOCode: "USA", Year: 2012, Wage: math.NaN()},
	}
	deflator := []models.DeflatorPoint{
		{Year: 2010, Value: 120},
		{Year: 2012, Value: 110},
	}

	deflated := DeflateWages(labor, deflator)
	require.Len(t, deflated, 3)
	assert.InDelta(t, 10.0, deflated[0].Wage, 1e-9)
	// No deflator for 2011: the nominal wage must not survive into a
	// constant-dollar study.
	assert.True(t, math.IsNaN(deflated[1].Wage))
	assert.True(t, math.IsNaN(deflated[2].Wage))
}
