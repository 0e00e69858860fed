package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chipanalyzer/internal/aggregate"
	"chipanalyzer/internal/config"
	"chipanalyzer/internal/models"
)

// Inputs bundles the raw datasets an estimation needs. HDI is only
// consulted when the study aggregates hdi_weighted.
type Inputs struct {
	Employment []models.ILOValue
	Wages      []models.ILOValue
	Hours      []models.ILOValue
	PWT        []models.PWTObservation
	Deflator   []models.DeflatorPoint
	HDI        map[string]float64
}

// Result is a finished estimation: the run record, the per-country
// aggregates and the underlying country-year rows.
type Result struct {
	Run         models.EstimateRun
	Countries   []models.CountryResult
	CountryYear []models.CountryYear
	Global      aggregate.Result
}

type Pipeline struct {
	study  *config.Study
	logger *slog.Logger
}

func New(study *config.Study, logger *slog.Logger) *Pipeline {
	return &Pipeline{study: study, logger: logger}
}

// Run executes the full estimation: labor merge, cleaning, wage ratios,
// effective labor, PWT merge, alpha estimation, distortion factor,
// country aggregation and the global weighted value.
func (p *Pipeline) Run(inputs Inputs) (*Result, error) {
	labor := MergeLabor(inputs.Employment, inputs.Wages, inputs.Hours)
	return p.RunMerged(labor, inputs.PWT, inputs.Deflator, inputs.HDI)
}

// RunMerged executes the estimation on labor rows already merged at the
// occupation level, as loaded from the database.
func (p *Pipeline) RunMerged(labor []models.LaborObservation, pwtData []models.PWTObservation, deflator []models.DeflatorPoint, hdi map[string]float64) (*Result, error) {
	study := p.study

	labor = FilterYears(labor, study.Data.YearStart, study.Data.YearEnd)
	labor = IncludeCountries(labor, study.Cleaning.IncludeCountries)
	labor = ApplyExclusions(labor, study.Cleaning.ExcludeCountries)
	if len(labor) == 0 {
		return nil, fmt.Errorf("no labor observations left after filtering %d-%d",
			study.Data.YearStart, study.Data.YearEnd)
	}
	p.logger.Info("Merged labor data", "observations", len(labor))

	if study.Model.Deflate {
		labor = DeflateWages(labor, deflator)
		p.logger.Info("Applied GDP deflator", "years", len(deflator))
	}

	// Ratios come from rows with wages; effective labor uses all employment.
	ratios := WageRatios(labor, OccupationManagers)
	if study.Model.EnableImputation {
		before := len(ratios)
		ratios = ImputeWageRatios(ratios)
		p.logger.Info("Imputed wage ratios", "before", before, "after", len(ratios))
	}

	effLabor := CalculateEffectiveLabor(labor, ratios)
	avgWage := AverageWage(labor, study.Model.WageAveraging)
	elemWage := ElementaryWage(labor)

	pwt := filterPWTYears(pwtData, study.Data.YearStart, study.Data.YearEnd)
	merged := MergeWithPWT(effLabor, avgWage, elemWage, pwt)
	if len(merged) == 0 {
		return nil, fmt.Errorf("no country-years matched between labor data and PWT")
	}
	p.logger.Info("Merged with PWT", "country_years", len(merged))

	// Alpha estimation sees every country-year with PWT coverage, even
	// those without wage data. The wage filter happens in CalculateCHIP.
	alphas, meanAlpha := EstimateAlphas(merged, study.Model.DefaultAlpha)
	p.logger.Info("Estimated capital shares", "countries", len(alphas), "mean_alpha", meanAlpha)
	if study.Model.EnableImputation {
		alphas = ImputeAlphas(alphas, merged, meanAlpha)
	}

	withAlphas := ApplyAlphas(merged, alphas, meanAlpha)
	estimated := CalculateCHIP(withAlphas)
	if len(estimated) == 0 {
		return nil, fmt.Errorf("no country-years with complete wage and capital data")
	}

	countries := AggregateCountries(estimated)

	laborHours := make(map[string]float64, len(effLabor))
	for _, e := range effLabor {
		laborHours[e.ISOCode] += e.LaborHours
	}

	global, err := aggregate.ByScheme(study.Aggregation.Weighting, countries, laborHours, hdi)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	p.logger.Info("Global CHIP value",
		"value", global.Value,
		"scheme", global.Scheme,
		"countries", global.NCountries)

	run := models.EstimateRun{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Study:      study.Name,
		PWTVersion: study.Data.PWTVersion,
		YearStart:  study.Data.YearStart,
		YearEnd:    study.Data.YearEnd,
		CHIPValue:  global.Value,
		NCountries: global.NCountries,
		MeanAlpha:  meanAlpha,
		Weighting:  global.Scheme,
		Deflated:   study.Model.Deflate,
	}

	return &Result{
		Run:         run,
		Countries:   countries,
		CountryYear: estimated,
		Global:      global,
	}, nil
}

func filterPWTYears(pwt []models.PWTObservation, start, end int) []models.PWTObservation {
	var kept []models.PWTObservation
	for _, p := range pwt {
		if p.Year >= start && p.Year <= end {
			kept = append(kept, p)
		}
	}
	return kept
}
