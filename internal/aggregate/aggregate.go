package aggregate

import (
	"fmt"
	"sort"

	"chipanalyzer/internal/models"
)

// Contribution is one country's share of the global value.
type Contribution struct {
	ISOCode string
	CHIP    float64
	Weight  float64
	Value   float64 // CHIP × Weight
}

// Result is the output of a weighting scheme. Metadata carries the
// scheme-level diagnostics reports print alongside the value.
type Result struct {
	Value         float64
	Scheme        string
	Contributions []Contribution
	NCountries    int
	Metadata      map[string]float64
}

const (
	SchemeGDPWeighted   = "gdp_weighted"
	SchemeLaborWeighted = "labor_weighted"
	SchemeHDIWeighted   = "hdi_weighted"
	SchemeUnweighted    = "unweighted"
)

// GDPWeighted combines country values weighted by economic output. This
// is the headline scheme: larger economies pull the global value harder.
func GDPWeighted(countries []models.CountryResult) (Result, error) {
	return weighted(countries, SchemeGDPWeighted, func(c models.CountryResult) float64 {
		return c.GDP
	})
}

// LaborWeighted weights by total labor hours observed for the country.
func LaborWeighted(countries []models.CountryResult, laborHours map[string]float64) (Result, error) {
	return weighted(countries, SchemeLaborWeighted, func(c models.CountryResult) float64 {
		return laborHours[c.ISOCode]
	})
}

// HDIWeighted weights by Human Development Index scores (0-1 scale).
func HDIWeighted(countries []models.CountryResult, hdi map[string]float64) (Result, error) {
	return weighted(countries, SchemeHDIWeighted, func(c models.CountryResult) float64 {
		return hdi[c.ISOCode]
	})
}

// Unweighted averages all countries equally.
func Unweighted(countries []models.CountryResult) (Result, error) {
	return weighted(countries, SchemeUnweighted, func(models.CountryResult) float64 {
		return 1
	})
}

// ByScheme dispatches on a scheme name from study config.
func ByScheme(scheme string, countries []models.CountryResult, laborHours, hdi map[string]float64) (Result, error) {
	switch scheme {
	case SchemeGDPWeighted:
		return GDPWeighted(countries)
	case SchemeLaborWeighted:
		return LaborWeighted(countries, laborHours)
	case SchemeHDIWeighted:
		return HDIWeighted(countries, hdi)
	case SchemeUnweighted:
		return Unweighted(countries)
	default:
		return Result{}, fmt.Errorf("unknown weighting scheme: %s", scheme)
	}
}

func weighted(countries []models.CountryResult, scheme string, weightOf func(models.CountryResult) float64) (Result, error) {
	var total float64
	var included []models.CountryResult
	for _, c := range countries {
		if w := weightOf(c); w > 0 {
			total += w
			included = append(included, c)
		}
	}
	if total == 0 {
		return Result{}, fmt.Errorf("%s: no countries with positive weight", scheme)
	}

	result := Result{
		Scheme:        scheme,
		NCountries:    len(included),
		Contributions: make([]Contribution, 0, len(included)),
		Metadata: map[string]float64{
			"total_weight":      total,
			"dropped_countries": float64(len(countries) - len(included)),
		},
	}
	for _, c := range included {
		weight := weightOf(c) / total
		contribution := Contribution{
			ISOCode: c.ISOCode,
			CHIP:    c.CHIP,
			Weight:  weight,
			Value:   c.CHIP * weight,
		}
		result.Value += contribution.Value
		result.Contributions = append(result.Contributions, contribution)
	}

	sort.Slice(result.Contributions, func(i, j int) bool {
		return result.Contributions[i].Value > result.Contributions[j].Value
	})
	return result, nil
}

// CompareWeightings runs every applicable scheme side by side.
func CompareWeightings(countries []models.CountryResult, laborHours, hdi map[string]float64) []Result {
	var results []Result
	if r, err := Unweighted(countries); err == nil {
		results = append(results, r)
	}
	if r, err := GDPWeighted(countries); err == nil {
		results = append(results, r)
	}
	if len(laborHours) > 0 {
		if r, err := LaborWeighted(countries, laborHours); err == nil {
			results = append(results, r)
		}
	}
	if len(hdi) > 0 {
		if r, err := HDIWeighted(countries, hdi); err == nil {
			results = append(results, r)
		}
	}
	return results
}
