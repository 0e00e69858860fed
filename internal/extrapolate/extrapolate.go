package extrapolate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"chipanalyzer/internal/models"
)

const (
	MethodRecalculation = "recalculation"
	MethodExtrapolation = "extrapolation"
)

// Entry is one row of the value history ledger: either a full
// recalculation run or a CPI extrapolation of one.
type Entry struct {
	Date      string    `json:"date"`
	Method    string    `json:"method"`
	CHIPValue float64   `json:"chip_usd"`
	BaseRunID uuid.UUID `json:"base_run_id"`
	BaseValue float64   `json:"base_chip,omitempty"`
	BaseDate  string    `json:"base_date,omitempty"`
	CPIRatio  float64   `json:"cpi_ratio,omitempty"`
	CPIDate   string    `json:"cpi_date,omitempty"`
	CPIValue  float64   `json:"cpi_value,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// FromRun records a finished estimation run as a recalculation entry.
func FromRun(run models.EstimateRun, notes string) Entry {
	return Entry{
		Date:      run.CreatedAt.Format("2006-01-02"),
		Method:    MethodRecalculation,
		CHIPValue: run.CHIPValue,
		BaseRunID: run.ID,
		Notes:     notes,
	}
}

// Extrapolate carries a run's value forward to the latest CPI
// observation: value_now = value_base × CPI_now / CPI_base. The base CPI
// is the newest observation on or before the run date, so reruns against
// an unchanged series reproduce the same entry.
func Extrapolate(run models.EstimateRun, cpi []models.SeriesPoint, notes string) (Entry, error) {
	if len(cpi) == 0 {
		return Entry{}, fmt.Errorf("empty CPI series")
	}

	points := make([]models.SeriesPoint, len(cpi))
	copy(points, cpi)
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	base, ok := observationAt(points, run.CreatedAt)
	if !ok {
		return Entry{}, fmt.Errorf("no CPI observation on or before run date %s",
			run.CreatedAt.Format("2006-01-02"))
	}
	if base.Value <= 0 {
		return Entry{}, fmt.Errorf("non-positive base CPI value: %v", base.Value)
	}

	current := points[len(points)-1]
	ratio := current.Value / base.Value

	if notes == "" {
		notes = "Monthly CPI extrapolation"
	}
	return Entry{
		Date:      time.Now().UTC().Format("2006-01-02"),
		Method:    MethodExtrapolation,
		CHIPValue: run.CHIPValue * ratio,
		BaseRunID: run.ID,
		BaseValue: run.CHIPValue,
		BaseDate:  run.CreatedAt.Format("2006-01-02"),
		CPIRatio:  ratio,
		CPIDate:   current.Date.Format("2006-01-02"),
		CPIValue:  current.Value,
		Notes:     notes,
	}, nil
}

// observationAt returns the newest point dated on or before t. Points
// must be sorted by date.
func observationAt(points []models.SeriesPoint, t time.Time) (models.SeriesPoint, bool) {
	idx := sort.Search(len(points), func(i int) bool { return points[i].Date.After(t) })
	if idx == 0 {
		return models.SeriesPoint{}, false
	}
	return points[idx-1], true
}

// LoadHistory reads the JSON ledger. A missing file is an empty history.
func LoadHistory(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	return entries, nil
}

// AppendHistory adds an entry to the ledger and returns the new length.
func AppendHistory(path string, entry Entry) (int, error) {
	entries, err := LoadHistory(path)
	if err != nil {
		return 0, err
	}
	entries = append(entries, entry)

	if err := writeJSON(path, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// WriteLatest overwrites latest.json, the pointer the publishers read.
func WriteLatest(path string, entry Entry) error {
	return writeJSON(path, entry)
}

// LoadLatest reads latest.json.
func LoadLatest(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return entry, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
