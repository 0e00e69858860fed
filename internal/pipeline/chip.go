package pipeline

import (
	"math"
	"sort"

	"chipanalyzer/internal/models"
)

// ApplyAlphas attaches a capital share to every country-year, falling
// back to the mean when a country has none.
func ApplyAlphas(data []models.CountryYear, alphas map[string]float64, meanAlpha float64) []models.CountryYear {
	out := make([]models.CountryYear, len(data))
	for i, row := range data {
		alpha, ok := alphas[row.ISOCode]
		if !ok || math.IsNaN(alpha) {
			alpha = meanAlpha
		}
		row.Alpha = alpha
		out[i] = row
	}
	return out
}

// CalculateCHIP derives the marginal product of labor, the distortion
// factor and the adjusted elementary wage for rows with complete wage
// data. Incomplete rows are dropped here, after alpha estimation has
// already seen the full PWT sample.
//
//	MPL   = (1 - alpha) × ((K / effLabor) × hc)^alpha
//	theta = MPL / averageWage
//	CHIP  = elementaryWage × theta
func CalculateCHIP(data []models.CountryYear) []models.CountryYear {
	var complete []models.CountryYear
	for _, row := range data {
		if math.IsNaN(row.AverageWage) || math.IsNaN(row.ElementaryWage) || math.IsNaN(row.Alpha) {
			continue
		}
		if row.EffectiveLabor <= 0 || row.Capital <= 0 || row.AverageWage <= 0 {
			continue
		}

		kPerL := (row.Capital / row.EffectiveLabor) * row.HumanCapital
		row.MPL = (1 - row.Alpha) * math.Pow(kPerL, row.Alpha)
		row.Theta = row.MPL / row.AverageWage
		row.CHIP = row.ElementaryWage * row.Theta
		complete = append(complete, row)
	}
	return complete
}

// AggregateCountries averages the estimates across years per country.
func AggregateCountries(data []models.CountryYear) []models.CountryResult {
	type acc struct {
		chip, elemWage, theta, alpha, mpl, gdp float64
		yearMin, yearMax, n                    int
	}
	byCountry := make(map[string]*acc)

	for _, row := range data {
		a := byCountry[row.ISOCode]
		if a == nil {
			a = &acc{yearMin: row.Year, yearMax: row.Year}
			byCountry[row.ISOCode] = a
		}
		a.chip += row.CHIP
		a.elemWage += row.ElementaryWage
		a.theta += row.Theta
		a.alpha += row.Alpha
		a.mpl += row.MPL
		a.gdp += row.GDP
		if row.Year < a.yearMin {
			a.yearMin = row.Year
		}
		if row.Year > a.yearMax {
			a.yearMax = row.Year
		}
		a.n++
	}

	results := make([]models.CountryResult, 0, len(byCountry))
	for country, a := range byCountry {
		n := float64(a.n)
		results = append(results, models.CountryResult{
			ISOCode:        country,
			CHIP:           a.chip / n,
			ElementaryWage: a.elemWage / n,
			Theta:          a.theta / n,
			Alpha:          a.alpha / n,
			MPL:            a.mpl / n,
			GDP:            a.gdp / n,
			YearMin:        a.yearMin,
			YearMax:        a.yearMax,
			NYears:         a.n,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ISOCode < results[j].ISOCode
	})
	return results
}
