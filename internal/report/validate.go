package report

import "math"

// ValidationResult compares a computed value against a reproduction
// target: the deviation in percent and whether it stays inside the
// tolerance band.
type ValidationResult struct {
	Value        float64 `json:"value"`
	Target       float64 `json:"target"`
	DeviationPct float64 `json:"deviation_pct"`
	TolerancePct float64 `json:"tolerance_pct"`
	Passed       bool    `json:"passed"`
}

// Validate checks value against target within tolerancePct percent.
func Validate(value, target, tolerancePct float64) ValidationResult {
	deviation := math.Abs(value-target) / target * 100
	return ValidationResult{
		Value:        value,
		Target:       target,
		DeviationPct: deviation,
		TolerancePct: tolerancePct,
		Passed:       deviation <= tolerancePct,
	}
}
