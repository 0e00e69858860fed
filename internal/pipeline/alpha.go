package pipeline

import (
	"math"
	"sort"

	"chipanalyzer/internal/models"
	"chipanalyzer/internal/stats"
)

const (
	// minAlphaObservations is the fewest country-years needed to fit a
	// country-specific capital share.
	minAlphaObservations = 3
	// minImputationSample is the fewest estimated alphas needed before
	// regression imputation is preferred over the mean.
	minImputationSample = 10
)

// MergeWithPWT joins the labor-side aggregates with Penn World Table data
// on country-year. Country-years without PWT coverage are dropped; wage
// fields may be NaN and are filtered later, after alpha estimation.
func MergeWithPWT(effLabor []EffectiveLabor,
	avgWage, elemWage map[countryYearKey]float64,
	pwt []models.PWTObservation) []models.CountryYear {

	pwtByKey := make(map[countryYearKey]models.PWTObservation, len(pwt))
	for _, p := range pwt {
		pwtByKey[countryYearKey{p.ISOCode, p.Year}] = p
	}

	var merged []models.CountryYear
	for _, e := range effLabor {
		key := countryYearKey{e.ISOCode, e.Year}
		p, ok := pwtByKey[key]
		if !ok {
			continue
		}

		row := models.CountryYear{
			ISOCode:        e.ISOCode,
			Year:           e.Year,
			LaborHours:     e.LaborHours,
			EffectiveLabor: e.EffLabor,
			AverageWage:    math.NaN(),
			ElementaryWage: math.NaN(),
			GDP:            p.GDP,
			Capital:        p.Capital,
			HumanCapital:   p.HumanCapital,
			Alpha:          math.NaN(),
		}
		if w, ok := avgWage[key]; ok {
			row.AverageWage = w
		}
		if w, ok := elemWage[key]; ok {
			row.ElementaryWage = w
		}
		merged = append(merged, row)
	}
	return merged
}

// EstimateAlphas fits a country-specific capital share by OLS on
// ln(Y/Leff) = a + alpha*ln(K/Leff) with Leff = effective labor × human
// capital. Estimates outside (0, 1) are rejected. Returns the estimates
// and their mean (0.33 when nothing could be estimated).
func EstimateAlphas(data []models.CountryYear, defaultAlpha float64) (map[string]float64, float64) {
	byCountry := groupByCountry(data)

	alphas := make(map[string]float64)
	for _, country := range sortedCountries(byCountry) {
		var lnK [][]float64
		var lnY []float64
		for _, row := range byCountry[country] {
			y, k, ok := logProductivity(row)
			if !ok {
				continue
			}
			lnK = append(lnK, []float64{k})
			lnY = append(lnY, y)
		}
		if len(lnY) < minAlphaObservations {
			continue
		}

		coeffs, err := stats.LeastSquares(lnK, lnY)
		if err != nil {
			continue
		}
		if alpha := coeffs[1]; alpha > 0 && alpha < 1 {
			alphas[country] = alpha
		}
	}

	if len(alphas) == 0 {
		return alphas, defaultAlpha
	}

	var sum float64
	for _, a := range alphas {
		sum += a
	}
	return alphas, sum / float64(len(alphas))
}

// ImputeAlphas predicts missing capital shares from each country's mean
// log output and log capital per effective worker. With fewer than ten
// estimated alphas the mean is used instead, and predictions are clipped
// to [0.01, 0.99].
func ImputeAlphas(alphas map[string]float64, data []models.CountryYear, meanAlpha float64) map[string]float64 {
	byCountry := groupByCountry(data)

	type chars struct{ lnY, lnK float64 }
	countryChars := make(map[string]chars)
	for country, rows := range byCountry {
		var sumY, sumK float64
		var n int
		for _, row := range rows {
			y, k, ok := logProductivity(row)
			if !ok {
				continue
			}
			sumY += y
			sumK += k
			n++
		}
		if n > 0 {
			countryChars[country] = chars{lnY: sumY / float64(n), lnK: sumK / float64(n)}
		}
	}

	var missing []string
	for country := range byCountry {
		if _, ok := alphas[country]; !ok {
			missing = append(missing, country)
		}
	}
	sort.Strings(missing)
	if len(missing) == 0 {
		return alphas
	}

	imputed := make(map[string]float64, len(alphas)+len(missing))
	for country, alpha := range alphas {
		imputed[country] = alpha
	}

	var trainX [][]float64
	var trainY []float64
	for country, alpha := range alphas {
		c, ok := countryChars[country]
		if !ok {
			continue
		}
		trainX = append(trainX, []float64{c.lnY, c.lnK})
		trainY = append(trainY, alpha)
	}

	var coeffs []float64
	if len(trainX) >= minImputationSample {
		var err error
		coeffs, err = stats.LeastSquares(trainX, trainY)
		if err != nil {
			coeffs = nil
		}
	}

	for _, country := range missing {
		c, haveChars := countryChars[country]
		if coeffs != nil && haveChars {
			imputed[country] = clamp(stats.Predict(coeffs, []float64{c.lnY, c.lnK}), 0.01, 0.99)
		} else {
			imputed[country] = meanAlpha
		}
	}
	return imputed
}

// logProductivity returns ln(Y/Leff) and ln(K/Leff) for a country-year,
// or ok=false when the inputs cannot support the logs.
func logProductivity(row models.CountryYear) (lnY, lnK float64, ok bool) {
	leff := row.EffectiveLabor * row.HumanCapital
	if leff <= 0 || row.GDP <= 0 || row.Capital <= 0 {
		return 0, 0, false
	}
	lnY = math.Log(row.GDP / leff)
	lnK = math.Log(row.Capital / leff)
	if math.IsNaN(lnY) || math.IsInf(lnY, 0) || math.IsNaN(lnK) || math.IsInf(lnK, 0) {
		return 0, 0, false
	}
	return lnY, lnK, true
}

func groupByCountry(data []models.CountryYear) map[string][]models.CountryYear {
	grouped := make(map[string][]models.CountryYear)
	for _, row := range data {
		grouped[row.ISOCode] = append(grouped[row.ISOCode], row)
	}
	return grouped
}

func sortedCountries(grouped map[string][]models.CountryYear) []string {
	countries := make([]string, 0, len(grouped))
	for c := range grouped {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
