package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"chipanalyzer/internal/models"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveLaborObservation upserts one labor row. COALESCE keeps previously
// imported values when a later import carries the field as NULL, so
// partial re-imports never erase data.
func (r *Repository) SaveLaborObservation(obs models.LaborObservation) error {
	query := `
    INSERT INTO labor_observations (isocode, year, occupation, employment, wage, hours)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (isocode, year, occupation)
    DO UPDATE SET
        employment = COALESCE(EXCLUDED.employment, labor_observations.employment),
        wage = COALESCE(EXCLUDED.wage, labor_observations.wage),
        hours = COALESCE(EXCLUDED.hours, labor_observations.hours)`

	_, err := r.db.Exec(query,
		obs.ISOCode,
		obs.Year,
		obs.Occupation,
		nullIfZero(obs.Employment),
		nullIfNaN(obs.Wage),
		nullIfZero(obs.Hours),
	)
	return err
}

func (r *Repository) SavePWTObservation(obs models.PWTObservation) error {
	query := `
    INSERT INTO pwt_observations (isocode, country, year, gdp, capital, employment, hc, labor_share, population)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    ON CONFLICT (isocode, year)
    DO UPDATE SET
        country = EXCLUDED.country,
        gdp = COALESCE(EXCLUDED.gdp, pwt_observations.gdp),
        capital = COALESCE(EXCLUDED.capital, pwt_observations.capital),
        employment = COALESCE(EXCLUDED.employment, pwt_observations.employment),
        hc = COALESCE(EXCLUDED.hc, pwt_observations.hc),
        labor_share = COALESCE(EXCLUDED.labor_share, pwt_observations.labor_share),
        population = COALESCE(EXCLUDED.population, pwt_observations.population)`

	_, err := r.db.Exec(query,
		obs.ISOCode,
		obs.Country,
		obs.Year,
		nullIfZero(obs.GDP),
		nullIfZero(obs.Capital),
		nullIfZero(obs.Employment),
		nullIfZero(obs.HumanCapital),
		nullIfZero(obs.LaborShare),
		nullIfZero(obs.Population),
	)
	return err
}

func (r *Repository) SaveDeflator(point models.DeflatorPoint) error {
	query := `
    INSERT INTO deflator (year, value)
    VALUES ($1, $2)
    ON CONFLICT (year) DO UPDATE SET value = EXCLUDED.value`

	_, err := r.db.Exec(query, point.Year, point.Value)
	return err
}

// LoadLabor returns labor rows within the year range. Hours default to 40
// for NULL columns; wages stay NaN so the pipeline can tell "no earnings
// survey" from "zero wage".
func (r *Repository) LoadLabor(yearStart, yearEnd int) ([]models.LaborObservation, error) {
	rows, err := r.db.Query(`
		SELECT isocode, year, occupation, employment, wage, hours
		FROM labor_observations
		WHERE year BETWEEN $1 AND $2
		ORDER BY isocode, year, occupation
	`, yearStart, yearEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query labor observations: %w", err)
	}
	defer rows.Close()

	var observations []models.LaborObservation
	for rows.Next() {
		var obs models.LaborObservation
		var employment, wage, hours sql.NullFloat64

		if err := rows.Scan(&obs.ISOCode, &obs.Year, &obs.Occupation, &employment, &wage, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan labor row: %w", err)
		}

		obs.Employment = employment.Float64
		obs.Wage = math.NaN()
		if wage.Valid {
			obs.Wage = wage.Float64
		}
		obs.Hours = 40.0
		if hours.Valid && hours.Float64 > 0 {
			obs.Hours = hours.Float64
		}

		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

func (r *Repository) LoadPWT(yearStart, yearEnd int) ([]models.PWTObservation, error) {
	rows, err := r.db.Query(`
		SELECT isocode, country, year, gdp, capital, employment, hc, labor_share, population
		FROM pwt_observations
		WHERE year BETWEEN $1 AND $2
		ORDER BY isocode, year
	`, yearStart, yearEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query PWT observations: %w", err)
	}
	defer rows.Close()

	var observations []models.PWTObservation
	for rows.Next() {
		var obs models.PWTObservation
		var gdp, capital, employment, hc, laborShare, population sql.NullFloat64

		if err := rows.Scan(&obs.ISOCode, &obs.Country, &obs.Year,
			&gdp, &capital, &employment, &hc, &laborShare, &population); err != nil {
			return nil, fmt.Errorf("failed to scan PWT row: %w", err)
		}

		obs.GDP = gdp.Float64
		obs.Capital = capital.Float64
		obs.Employment = employment.Float64
		obs.HumanCapital = hc.Float64
		obs.LaborShare = laborShare.Float64
		obs.Population = population.Float64

		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

func (r *Repository) LoadDeflator() ([]models.DeflatorPoint, error) {
	rows, err := r.db.Query(`SELECT year, value FROM deflator ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deflator: %w", err)
	}
	defer rows.Close()

	var points []models.DeflatorPoint
	for rows.Next() {
		var p models.DeflatorPoint
		if err := rows.Scan(&p.Year, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan deflator row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *Repository) SaveRun(run models.EstimateRun) error {
	query := `
    INSERT INTO estimate_runs (id, created_at, study, pwt_version, year_start, year_end,
        chip_value, n_countries, mean_alpha, weighting, deflated, validated, deviation_pct)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(query,
		run.ID, run.CreatedAt, run.Study, run.PWTVersion, run.YearStart, run.YearEnd,
		run.CHIPValue, run.NCountries, run.MeanAlpha, run.Weighting,
		run.Deflated, run.Validated, run.DeviationPct)
	return err
}

func (r *Repository) SaveCountryResults(runID uuid.UUID, results []models.CountryResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO country_results (run_id, isocode, chip_value, elementary_wage,
			theta, alpha, mpl, gdp, year_min, year_max, n_years)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range results {
		if _, err := stmt.Exec(runID, c.ISOCode, c.CHIP, c.ElementaryWage,
			c.Theta, c.Alpha, c.MPL, c.GDP, c.YearMin, c.YearMax, c.NYears); err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", c.ISOCode, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ListRuns() ([]models.EstimateRun, error) {
	rows, err := r.db.Query(`
		SELECT id, created_at, study, pwt_version, year_start, year_end,
			chip_value, n_countries, mean_alpha, weighting, deflated, validated, deviation_pct
		FROM estimate_runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.EstimateRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *Repository) GetRun(id uuid.UUID) (models.EstimateRun, error) {
	row := r.db.QueryRow(`
		SELECT id, created_at, study, pwt_version, year_start, year_end,
			chip_value, n_countries, mean_alpha, weighting, deflated, validated, deviation_pct
		FROM estimate_runs
		WHERE id = $1
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EstimateRun{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

func (r *Repository) GetCountryResults(runID uuid.UUID) ([]models.CountryResult, error) {
	rows, err := r.db.Query(`
		SELECT isocode, chip_value, elementary_wage, theta, alpha, mpl, gdp,
			year_min, year_max, n_years
		FROM country_results
		WHERE run_id = $1
		ORDER BY chip_value DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query country results: %w", err)
	}
	defer rows.Close()

	var results []models.CountryResult
	for rows.Next() {
		var c models.CountryResult
		if err := rows.Scan(&c.ISOCode, &c.CHIP, &c.ElementaryWage, &c.Theta,
			&c.Alpha, &c.MPL, &c.GDP, &c.YearMin, &c.YearMax, &c.NYears); err != nil {
			return nil, fmt.Errorf("failed to scan country result: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *Repository) DeleteRun(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM estimate_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// GlobalPoint is one run's headline value, for the time series chart.
type GlobalPoint struct {
	RunID     uuid.UUID
	CreatedAt string
	Study     string
	CHIPValue float64
}

func (r *Repository) GetGlobalSeries() ([]GlobalPoint, error) {
	rows, err := r.db.Query(`
		SELECT id, to_char(created_at, 'YYYY-MM-DD HH24:MI'), study, chip_value
		FROM estimate_runs
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query global series: %w", err)
	}
	defer rows.Close()

	var points []GlobalPoint
	for rows.Next() {
		var p GlobalPoint
		if err := rows.Scan(&p.RunID, &p.CreatedAt, &p.Study, &p.CHIPValue); err != nil {
			return nil, fmt.Errorf("failed to scan global series row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (models.EstimateRun, error) {
	var run models.EstimateRun
	err := row.Scan(&run.ID, &run.CreatedAt, &run.Study, &run.PWTVersion,
		&run.YearStart, &run.YearEnd, &run.CHIPValue, &run.NCountries,
		&run.MeanAlpha, &run.Weighting, &run.Deflated, &run.Validated, &run.DeviationPct)
	if err != nil {
		return models.EstimateRun{}, err
	}
	return run, nil
}

func nullIfZero(val float64) interface{} {
	if val == 0 {
		return nil
	}
	return val
}

func nullIfNaN(val float64) interface{} {
	if math.IsNaN(val) {
		return nil
	}
	return val
}
