package extrapolate

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chipanalyzer/internal/models"
	"chipanalyzer/internal/report"
)

// Current is the primary API payload: the value of one CHIP right now.
type Current struct {
	CHIPValue float64 `json:"chip_usd"`
	Date      string  `json:"date"`
	Method    string  `json:"method"`
	Currency  string  `json:"currency"`
	Unit      string  `json:"unit"`
	CPIRatio  float64 `json:"cpi_ratio,omitempty"`
	CPIDate   string  `json:"cpi_date,omitempty"`
	Published string  `json:"published"`
}

// Multiplier relates one country's value to the global one. 1.0 means
// the country matches the global CHIP.
type Multiplier struct {
	ISOCode    string  `json:"country"`
	CHIPValue  float64 `json:"chip_usd"`
	Multiplier float64 `json:"multiplier"`
}

// Multipliers is the per-country API payload.
type Multipliers struct {
	GlobalCHIP float64      `json:"global_chip_usd"`
	RunID      uuid.UUID    `json:"run_id"`
	NCountries int          `json:"n_countries"`
	Countries  []Multiplier `json:"countries"`
	Published  string       `json:"published"`
}

// History is the full time-series API payload.
type History struct {
	Entries   []Entry `json:"entries"`
	Count     int     `json:"count"`
	FirstDate string  `json:"first_date,omitempty"`
	LastDate  string  `json:"last_date,omitempty"`
	Published string  `json:"published"`
}

// PublishCurrent writes api/current.json from the latest ledger entry.
func PublishCurrent(dir string, latest Entry) (string, error) {
	current := Current{
		CHIPValue: latest.CHIPValue,
		Date:      latest.Date,
		Method:    latest.Method,
		Currency:  "USD",
		Unit:      "per hour",
		CPIRatio:  latest.CPIRatio,
		CPIDate:   latest.CPIDate,
		Published: time.Now().UTC().Format("2006-01-02"),
	}
	return report.ExportJSON(current, filepath.Join(dir, "api"), "current")
}

// PublishHistory writes api/history.json.
func PublishHistory(dir string, entries []Entry) (string, error) {
	history := History{
		Entries:   entries,
		Count:     len(entries),
		Published: time.Now().UTC().Format("2006-01-02"),
	}
	if len(entries) > 0 {
		history.FirstDate = entries[0].Date
		history.LastDate = entries[len(entries)-1].Date
	}
	return report.ExportJSON(history, filepath.Join(dir, "api"), "history")
}

// PublishMultipliers writes api/multipliers.json from a run's country
// results. Country order is preserved, so callers get them ranked the
// way the repository returns them.
func PublishMultipliers(dir string, run models.EstimateRun, countries []models.CountryResult) (string, error) {
	multipliers := Multipliers{
		GlobalCHIP: run.CHIPValue,
		RunID:      run.ID,
		NCountries: len(countries),
		Countries:  make([]Multiplier, 0, len(countries)),
		Published:  time.Now().UTC().Format("2006-01-02"),
	}
	for _, c := range countries {
		m := Multiplier{ISOCode: c.ISOCode, CHIPValue: c.CHIP}
		if run.CHIPValue > 0 {
			m.Multiplier = c.CHIP / run.CHIPValue
		}
		multipliers.Countries = append(multipliers.Countries, m)
	}
	return report.ExportJSON(multipliers, filepath.Join(dir, "api"), "multipliers")
}
