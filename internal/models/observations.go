package models

import (
	"math"
	"time"
)

// ILOValue is a single raw ILOSTAT observation before occupation mapping:
// one value (employment count, hourly wage or weekly hours) for an ISCO
// occupation code in a country-year.
type ILOValue struct {
	ISOCode  string
	Year     int
	ISCOCode string
	Value    float64
}

// LaborObservation is a merged labor row: employment, wage and hours for
// one occupation group in a country-year. Wage is NaN when the country
// reported employment but no earnings data.
type LaborObservation struct {
	ISOCode    string
	Year       int
	Occupation string
	Employment float64
	Wage       float64
	Hours      float64
}

func (o *LaborObservation) HasWage() bool {
	return !math.IsNaN(o.Wage)
}

// LaborHours is total hours worked by the group: employment × weekly hours.
func (o *LaborObservation) LaborHours() float64 {
	return o.Employment * o.Hours
}

// PWTObservation is one Penn World Table country-year row.
type PWTObservation struct {
	ISOCode      string
	Country      string
	Year         int
	GDP          float64 // rgdpna, real GDP at constant national prices
	Capital      float64 // rnna, real capital stock at constant national prices
	Employment   float64 // emp, persons engaged (millions)
	HumanCapital float64 // hc, human capital index
	LaborShare   float64 // labsh
	Population   float64
}

// DeflatorPoint is a yearly US GDP deflator value, rebased so the
// base year equals 100.
type DeflatorPoint struct {
	Year  int
	Value float64
}

// SeriesPoint is one dated observation of a FRED series, kept at its
// native monthly frequency. Extrapolation needs the exact dates, not
// yearly averages.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}
