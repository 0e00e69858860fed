package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chipanalyzer/internal/models"
)

// cobbDouglasRows generates country-years satisfying
// ln(Y/Leff) = ln(A) + alpha*ln(K/Leff) exactly.
func cobbDouglasRows(isoCode string, alpha, tfp float64, capitals []float64) []models.CountryYear {
	rows := make([]models.CountryYear, len(capitals))
	for i, k := range capitals {
		leff := 100.0
		y := tfp * leff * math.Pow(k/leff, alpha)
		rows[i] = models.CountryYear{
			ISOCode:        isoCode,
			Year:           2010 + i,
			EffectiveLabor: leff,
			HumanCapital:   1.0,
			GDP:            y,
			Capital:        k,
		}
	}
	return rows
}

func TestMergeWithPWT(t *testing.T) {
	effLabor := []EffectiveLabor{
		{ISOCode: "USA", Year: 2010, LaborHours: 4000, EffLabor: 3500},
		{ISOCode: "USA", Year: 2011, LaborHours: 4100, EffLabor: 3600},
	}
	avgWage := map[countryYearKey]float64{{"USA", 2010}: 20}
	elemWage := map[countryYearKey]float64{{"USA", 2010}: 8}
	pwt := []models.PWTObservation{
		{ISOCode: "USA", Year: 2010, GDP: 1000, Capital: 3000, HumanCapital: 3.5},
	}

	merged := MergeWithPWT(effLabor, avgWage, elemWage, pwt)
	require.Len(t, merged, 1)

	row := merged[0]
	assert.Equal(t, 2010, row.Year)
	assert.Equal(t, 3500.0, row.EffectiveLabor)
	assert.Equal(t, 20.0, row.AverageWage)
	assert.Equal(t, 8.0, row.ElementaryWage)
	assert.Equal(t, 3000.0, row.Capital)
	assert.True(t, math.IsNaN(row.Alpha))
}

func TestMergeWithPWT_MissingWagesStayNaN(t *testing.T) {
	effLabor := []EffectiveLabor{{ISOCode: "USA", Year: 2010, EffLabor: 100}}
	pwt := []models.PWTObservation{{ISOCode: "USA", Year: 2010, GDP: 1, Capital: 1, HumanCapital: 1}}

	merged := MergeWithPWT(effLabor, nil, nil, pwt)
	require.Len(t, merged, 1)
	assert.True(t, math.IsNaN(merged[0].AverageWage))
	assert.True(t, math.IsNaN(merged[0].ElementaryWage))
}

func TestEstimateAlphas(t *testing.T) {
	t.Run("recovers capital share from synthetic data", func(t *testing.T) {
		data := cobbDouglasRows("USA", 0.4, 2.0, []float64{1000, 2000, 4000, 8000})

		alphas, mean := EstimateAlphas(data, 0.33)
		require.Contains(t, alphas, "USA")
		assert.InDelta(t, 0.4, alphas["USA"], 1e-6)
		assert.InDelta(t, 0.4, mean, 1e-6)
	})

	t.Run("too few observations yields no estimate", func(t *testing.T) {
		data := cobbDouglasRows("USA", 0.4, 2.0, []float64{1000, 2000})

		alphas, mean := EstimateAlphas(data, 0.33)
		assert.Empty(t, alphas)
		assert.Equal(t, 0.33, mean)
	})

	t.Run("estimates outside unit interval are rejected", func(t *testing.T) {
		// Output falls as capital rises, implying a negative share.
		data := cobbDouglasRows("USA", -0.2, 2.0, []float64{1000, 2000, 4000, 8000})

		alphas, _ := EstimateAlphas(data, 0.33)
		assert.NotContains(t, alphas, "USA")
	})
}

func TestImputeAlphas(t *testing.T) {
	t.Run("mean fallback with a small sample", func(t *testing.T) {
		data := append(
			cobbDouglasRows("USA", 0.4, 2.0, []float64{1000, 2000, 4000}),
			cobbDouglasRows("DEU", 0.4, 2.0, []float64{1500, 2500})...,
		)
		alphas := map[string]float64{"USA": 0.4}

		imputed := ImputeAlphas(alphas, data, 0.4)
		assert.InDelta(t, 0.4, imputed["DEU"], 1e-9)
		assert.InDelta(t, 0.4, imputed["USA"], 1e-9)
	})

	t.Run("regression imputation with enough estimates", func(t *testing.T) {
		var data []models.CountryYear
		alphas := make(map[string]float64)
		countries := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH", "III", "JJJ"}
		for i, c := range countries {
			alpha := 0.25 + 0.02*float64(i)
			data = append(data, cobbDouglasRows(c, alpha, 2.0, []float64{1000, 2000, 4000, 8000})...)
			alphas[c] = alpha
		}
		data = append(data, cobbDouglasRows("ZZZ", 0.3, 2.0, []float64{1000, 2000, 4000})...)

		imputed := ImputeAlphas(alphas, data, 0.33)
		z, ok := imputed["ZZZ"]
		require.True(t, ok)
		assert.Greater(t, z, 0.0)
		assert.Less(t, z, 1.0)
	})

	t.Run("no missing countries returns input", func(t *testing.T) {
		data := cobbDouglasRows("USA", 0.4, 2.0, []float64{1000, 2000, 4000})
		alphas := map[string]float64{"USA": 0.4}

		imputed := ImputeAlphas(alphas, data, 0.4)
		assert.Equal(t, alphas, imputed)
	})
}
