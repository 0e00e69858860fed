package pipeline

import (
	"math"
	"sort"

	"chipanalyzer/internal/models"
	"chipanalyzer/internal/stats"
)

// WageRatio is the skill weight of an occupation in a country: its wage
// relative to the reference occupation, averaged across years.
type WageRatio struct {
	ISOCode    string
	Occupation string
	Ratio      float64
}

// EffectiveLabor is skill-weighted labor supply for a country-year.
type EffectiveLabor struct {
	ISOCode    string
	Year       int
	LaborHours float64
	EffLabor   float64
}

// WageRatios computes wage ratios relative to the reference occupation.
// The ratio is taken per country-year first and then averaged across
// years; averaging wages first would mix survey vintages.
func WageRatios(labor []models.LaborObservation, reference string) []WageRatio {
	refWages := make(map[countryYearKey]float64)
	for _, row := range labor {
		if row.Occupation == reference && row.HasWage() {
			refWages[countryYearKey{row.ISOCode, row.Year}] = row.Wage
		}
	}

	sums := make(map[laborKey]float64)
	counts := make(map[laborKey]int)
	for _, row := range labor {
		if !row.HasWage() {
			continue
		}
		ref, ok := refWages[countryYearKey{row.ISOCode, row.Year}]
		if !ok || ref == 0 {
			continue
		}
		key := laborKey{ISOCode: row.ISOCode, Occupation: row.Occupation}
		sums[key] += row.Wage / ref
		counts[key]++
	}

	ratios := make([]WageRatio, 0, len(sums))
	for key, sum := range sums {
		ratios = append(ratios, WageRatio{
			ISOCode:    key.ISOCode,
			Occupation: key.Occupation,
			Ratio:      sum / float64(counts[key]),
		})
	}

	sort.Slice(ratios, func(i, j int) bool {
		if ratios[i].ISOCode != ratios[j].ISOCode {
			return ratios[i].ISOCode < ratios[j].ISOCode
		}
		return ratios[i].Occupation < ratios[j].Occupation
	})
	return ratios
}

// ImputeWageRatios fills missing country-occupation ratios. The ratios
// are pivoted to a country × occupation matrix and each occupation
// column is imputed from the others by OLS prediction.
func ImputeWageRatios(ratios []WageRatio) []WageRatio {
	countries := uniqueCountries(ratios)
	if len(countries) == 0 {
		return ratios
	}

	countryIndex := make(map[string]int, len(countries))
	for i, c := range countries {
		countryIndex[c] = i
	}
	occupationIndex := make(map[string]int, len(Occupations))
	for j, o := range Occupations {
		occupationIndex[o] = j
	}

	columns := make([][]float64, len(Occupations))
	for j := range columns {
		columns[j] = make([]float64, len(countries))
		for i := range columns[j] {
			columns[j][i] = math.NaN()
		}
	}
	for _, r := range ratios {
		j, ok := occupationIndex[r.Occupation]
		if !ok {
			continue
		}
		columns[j][countryIndex[r.ISOCode]] = r.Ratio
	}

	imputed := stats.NormPredict(columns)

	var out []WageRatio
	for i, country := range countries {
		for j, occupation := range Occupations {
			v := imputed[j][i]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, WageRatio{ISOCode: country, Occupation: occupation, Ratio: v})
		}
	}
	return out
}

func uniqueCountries(ratios []WageRatio) []string {
	seen := make(map[string]bool)
	var countries []string
	for _, r := range ratios {
		if !seen[r.ISOCode] {
			seen[r.ISOCode] = true
			countries = append(countries, r.ISOCode)
		}
	}
	sort.Strings(countries)
	return countries
}

// CalculateEffectiveLabor aggregates skill-weighted labor hours per
// country-year across ALL employment rows, not only those with wages.
// Occupations without a ratio weight 1.0.
func CalculateEffectiveLabor(labor []models.LaborObservation, ratios []WageRatio) []EffectiveLabor {
	ratioByKey := make(map[laborKey]float64, len(ratios))
	for _, r := range ratios {
		ratioByKey[laborKey{ISOCode: r.ISOCode, Occupation: r.Occupation}] = r.Ratio
	}

	type totals struct {
		laborHours float64
		effLabor   float64
	}
	byCountryYear := make(map[countryYearKey]*totals)

	for _, row := range labor {
		ratio, ok := ratioByKey[laborKey{ISOCode: row.ISOCode, Occupation: row.Occupation}]
		if !ok || math.IsNaN(ratio) {
			ratio = 1.0
		}

		key := countryYearKey{row.ISOCode, row.Year}
		t := byCountryYear[key]
		if t == nil {
			t = &totals{}
			byCountryYear[key] = t
		}
		t.laborHours += row.LaborHours()
		t.effLabor += row.LaborHours() * ratio
	}

	result := make([]EffectiveLabor, 0, len(byCountryYear))
	for key, t := range byCountryYear {
		result = append(result, EffectiveLabor{
			ISOCode:    key.ISOCode,
			Year:       key.Year,
			LaborHours: t.laborHours,
			EffLabor:   t.effLabor,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ISOCode != result[j].ISOCode {
			return result[i].ISOCode < result[j].ISOCode
		}
		return result[i].Year < result[j].Year
	})
	return result
}

// AverageWage computes the mean wage per country-year. The simple mean
// across occupations is the default; "weighted" weights by labor hours.
func AverageWage(labor []models.LaborObservation, method string) map[countryYearKey]float64 {
	sums := make(map[countryYearKey]float64)
	weights := make(map[countryYearKey]float64)

	for _, row := range labor {
		if !row.HasWage() {
			continue
		}
		key := countryYearKey{row.ISOCode, row.Year}
		switch method {
		case "weighted":
			sums[key] += row.Wage * row.LaborHours()
			weights[key] += row.LaborHours()
		default:
			sums[key] += row.Wage
			weights[key]++
		}
	}

	averages := make(map[countryYearKey]float64, len(sums))
	for key, sum := range sums {
		if weights[key] > 0 {
			averages[key] = sum / weights[key]
		}
	}
	return averages
}

// ElementaryWage extracts the unskilled wage per country-year.
func ElementaryWage(labor []models.LaborObservation) map[countryYearKey]float64 {
	sums := make(map[countryYearKey]float64)
	counts := make(map[countryYearKey]float64)

	for _, row := range labor {
		if row.Occupation != OccupationElementary || !row.HasWage() {
			continue
		}
		key := countryYearKey{row.ISOCode, row.Year}
		sums[key] += row.Wage
		counts[key]++
	}

	wages := make(map[countryYearKey]float64, len(sums))
	for key, sum := range sums {
		wages[key] = sum / counts[key]
	}
	return wages
}
