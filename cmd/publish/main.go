package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"chipanalyzer/internal/config"
	"chipanalyzer/internal/database"
	"chipanalyzer/internal/extrapolate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()

	outputDir := flag.String("output", "output", "directory holding the ledger; api/ files land under it")
	flag.Parse()

	if err := run(cfg, *outputDir, logger); err != nil {
		logger.Error("Publish failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, logger *slog.Logger) error {
	latest, err := extrapolate.LoadLatest(filepath.Join(outputDir, "latest.json"))
	if err != nil {
		return fmt.Errorf("no latest value to publish, run the estimate or extrapolate first: %w", err)
	}

	path, err := extrapolate.PublishCurrent(outputDir, latest)
	if err != nil {
		return err
	}
	logger.Info("Published current value", "path", path, "chip_value", latest.CHIPValue)

	history, err := extrapolate.LoadHistory(filepath.Join(outputDir, "history.json"))
	if err != nil {
		return err
	}
	if len(history) > 0 {
		path, err = extrapolate.PublishHistory(outputDir, history)
		if err != nil {
			return err
		}
		logger.Info("Published history", "path", path, "entries", len(history))
	} else {
		logger.Warn("No history ledger found, skipping history publish")
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	baseRun, err := repo.GetRun(latest.BaseRunID)
	if err != nil {
		return fmt.Errorf("base run %s not found: %w", latest.BaseRunID, err)
	}
	countries, err := repo.GetCountryResults(baseRun.ID)
	if err != nil {
		return err
	}
	if len(countries) == 0 {
		logger.Warn("Base run has no country results, skipping multipliers publish")
		return nil
	}

	path, err = extrapolate.PublishMultipliers(outputDir, baseRun, countries)
	if err != nil {
		return err
	}
	logger.Info("Published multipliers", "path", path, "countries", len(countries))

	return nil
}
