package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/config"
	"chipanalyzer/internal/database"
	"chipanalyzer/internal/extrapolate"
	"chipanalyzer/internal/pipeline"
	"chipanalyzer/internal/report"
	"chipanalyzer/internal/visualization"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()

	studyPath := flag.String("study", "", "path to a study YAML overriding the defaults")
	renderCharts := flag.Bool("charts", false, "render PNG charts after the estimation")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, *studyPath, *renderCharts, logger); err != nil {
		logger.Error("Estimation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, studyPath string, renderCharts bool, logger *slog.Logger) error {
	study, err := config.LoadStudy(cfg.DataPath, studyPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded study",
		"name", study.Name,
		"years", fmt.Sprintf("%d-%d", study.Data.YearStart, study.Data.YearEnd),
		"weighting", study.Aggregation.Weighting)

	db, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	labor, err := repo.LoadLabor(study.Data.YearStart, study.Data.YearEnd)
	if err != nil {
		return err
	}
	if len(labor) == 0 {
		return fmt.Errorf("no labor observations in %d-%d, run the import first",
			study.Data.YearStart, study.Data.YearEnd)
	}

	pwt, err := repo.LoadPWT(study.Data.YearStart, study.Data.YearEnd)
	if err != nil {
		return err
	}

	deflator, err := repo.LoadDeflator()
	if err != nil {
		return err
	}

	var hdi map[string]float64
	if study.Aggregation.HDIFile != "" {
		hdi, err = config.LoadHDI(study.Aggregation.HDIFile)
		if err != nil {
			return err
		}
		logger.Info("Loaded HDI scores", "countries", len(hdi))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := pipeline.New(study, logger).RunMerged(labor, pwt, deflator, hdi)
	if err != nil {
		return err
	}

	var validation *report.ValidationResult
	if study.Validation.TargetValue > 0 {
		v := report.Validate(result.Run.CHIPValue, study.Validation.TargetValue, study.Validation.TolerancePct)
		validation = &v
		result.Run.Validated = v.Passed
		result.Run.DeviationPct = v.DeviationPct
		logger.Info("Validation",
			"target", v.Target,
			"deviation_pct", v.DeviationPct,
			"passed", v.Passed)
	}

	if err := repo.SaveRun(result.Run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := repo.SaveCountryResults(result.Run.ID, result.Countries); err != nil {
		return fmt.Errorf("failed to save country results: %w", err)
	}

	entry := extrapolate.FromRun(result.Run, "recalculation with PWT "+study.Data.PWTVersion)
	if _, err := extrapolate.AppendHistory(filepath.Join(study.Output.Dir, "history.json"), entry); err != nil {
		return err
	}
	if err := extrapolate.WriteLatest(filepath.Join(study.Output.Dir, "latest.json"), entry); err != nil {
		return err
	}

	dataCache := cache.New(cfg.CacheDir)
	rep := &report.Report{
		Run:        result.Run,
		Countries:  result.Countries,
		Validation: validation,
		Vintages:   dataCache.AllMetadata(),
	}

	reportPath, err := rep.Save(study.Output.Dir)
	if err != nil {
		return err
	}
	logger.Info("Report written", "path", reportPath)

	csvPath, err := report.ExportCSV(result.Countries, study.Output.Dir, "countries_"+study.Name)
	if err != nil {
		return err
	}
	logger.Info("CSV export written", "path", csvPath)

	if study.Output.Format == "json" {
		jsonPath, err := report.ExportJSON(result, study.Output.Dir, "result_"+study.Name)
		if err != nil {
			return err
		}
		logger.Info("JSON export written", "path", jsonPath)
	}

	if renderCharts {
		chartPath, err := visualization.PlotCountryCHIP(result.Countries, cfg.ChartsDir, 20)
		if err != nil {
			return err
		}
		logger.Info("Country chart written", "path", chartPath)

		points, err := repo.GetGlobalSeries()
		if err != nil {
			return err
		}
		seriesPath, err := visualization.PlotGlobalSeries(points, cfg.ChartsDir)
		if err != nil {
			return err
		}
		logger.Info("Series chart written", "path", seriesPath)
	}

	logger.Info("Estimation completed",
		"run_id", result.Run.ID,
		"chip_value", result.Run.CHIPValue,
		"countries", result.Run.NCountries)

	return nil
}
