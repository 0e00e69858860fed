package models

import (
	"time"

	"github.com/google/uuid"
)

// CountryYear holds the merged estimation inputs and derived values for
// one country-year. Fields are filled in as the pipeline progresses;
// NaN marks values that are not available.
type CountryYear struct {
	ISOCode        string
	Year           int
	LaborHours     float64
	EffectiveLabor float64
	AverageWage    float64
	ElementaryWage float64
	GDP            float64
	Capital        float64
	HumanCapital   float64
	Alpha          float64
	MPL            float64
	Theta          float64
	CHIP           float64
}

// CountryResult is the per-country aggregate: means across all years
// the country contributed to the estimate.
type CountryResult struct {
	ISOCode        string
	CHIP           float64
	ElementaryWage float64
	Theta          float64
	Alpha          float64
	MPL            float64
	GDP            float64
	YearMin        int
	YearMax        int
	NYears         int
}

// EstimateRun records one pipeline execution and its headline result.
type EstimateRun struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Study        string
	PWTVersion   string
	YearStart    int
	YearEnd      int
	CHIPValue    float64
	NCountries   int
	MeanAlpha    float64
	Weighting    string
	Deflated     bool
	Validated    bool
	DeviationPct float64
}
