package pipeline

import (
	"math"
	"sort"

	"chipanalyzer/internal/models"
)

// defaultWeeklyHours substitutes for countries that never report hours.
const defaultWeeklyHours = 40.0

type countryYearKey struct {
	ISOCode string
	Year    int
}

type laborKey struct {
	ISOCode    string
	Year       int
	Occupation string
}

// Country-years excluded for known data quality issues in the source data.
var excludedObservations = map[countryYearKey]bool{
	{"ALB", 2012}: true,
	{"GHA", 2017}: true,
	{"EGY", 2009}: true,
	{"RWA", 2014}: true,
	{"COD", 2005}: true,
	{"CIV", 2019}: true,
	{"BLZ", 2017}: true,
}

// Countries excluded entirely.
var excludedCountries = map[string]bool{
	"KHM": true,
	"LAO": true,
	"TLS": true,
}

// MergeLabor joins employment, wages and hours at the occupation level.
// Employment rows form the base; wages default to NaN and hours to 40
// when the country-year-occupation has no matching row.
func MergeLabor(employment, wages, hours []models.ILOValue) []models.LaborObservation {
	wageByKey := indexByLaborKey(MapOccupations(wages))
	hoursByKey := indexByLaborKey(MapOccupations(hours))

	var merged []models.LaborObservation
	for _, e := range MapOccupations(employment) {
		key := laborKey{e.ISOCode, e.Year, e.Occupation}

		wage := math.NaN()
		if w, ok := wageByKey[key]; ok {
			wage = w
		}

		weeklyHours := defaultWeeklyHours
		if h, ok := hoursByKey[key]; ok && h > 0 {
			weeklyHours = h
		}

		merged = append(merged, models.LaborObservation{
			ISOCode:    e.ISOCode,
			Year:       e.Year,
			Occupation: e.Occupation,
			Employment: e.Value,
			Wage:       wage,
			Hours:      weeklyHours,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.ISOCode != b.ISOCode {
			return a.ISOCode < b.ISOCode
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Occupation < b.Occupation
	})
	return merged
}

func indexByLaborKey(values []mappedValue) map[laborKey]float64 {
	index := make(map[laborKey]float64, len(values))
	for _, v := range values {
		index[laborKey{v.ISOCode, v.Year, v.Occupation}] = v.Value
	}
	return index
}

// ApplyExclusions removes known data quality issues plus any extra
// countries the study excludes.
func ApplyExclusions(labor []models.LaborObservation, extraCountries []string) []models.LaborObservation {
	extra := make(map[string]bool, len(extraCountries))
	for _, c := range extraCountries {
		extra[c] = true
	}

	var kept []models.LaborObservation
	for _, row := range labor {
		if excludedCountries[row.ISOCode] || extra[row.ISOCode] {
			continue
		}
		if excludedObservations[countryYearKey{row.ISOCode, row.Year}] {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// IncludeCountries keeps only the listed ISO codes. An empty list keeps all.
func IncludeCountries(labor []models.LaborObservation, isoCodes []string) []models.LaborObservation {
	if len(isoCodes) == 0 {
		return labor
	}

	include := make(map[string]bool, len(isoCodes))
	for _, c := range isoCodes {
		include[c] = true
	}

	var kept []models.LaborObservation
	for _, row := range labor {
		if include[row.ISOCode] {
			kept = append(kept, row)
		}
	}
	return kept
}

// FilterYears keeps rows within [start, end] inclusive.
func FilterYears(labor []models.LaborObservation, start, end int) []models.LaborObservation {
	var kept []models.LaborObservation
	for _, row := range labor {
		if row.Year >= start && row.Year <= end {
			kept = append(kept, row)
		}
	}
	return kept
}

// DeflateWages converts wages to constant dollars using the rebased GDP
// deflator. Rows without a deflator for their year lose the wage entirely:
// a deflated study must never mix nominal wages in.
func DeflateWages(labor []models.LaborObservation, deflator []models.DeflatorPoint) []models.LaborObservation {
	byYear := make(map[int]float64, len(deflator))
	for _, d := range deflator {
		byYear[d.Year] = d.Value
	}

	deflated := make([]models.LaborObservation, len(labor))
	for i, row := range labor {
		if row.HasWage() {
			if v, ok := byYear[row.Year]; ok && v > 0 {
				row.Wage = row.Wage / (v / 100)
			} else {
				row.Wage = math.NaN()
			}
		}
		deflated[i] = row
	}
	return deflated
}
