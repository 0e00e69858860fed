package main

import (
	"bytes"
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
	"chipanalyzer/internal/fetcher"
	"chipanalyzer/internal/parser"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()

	outputDir := flag.String("output", "output", "directory for the ledger and latest value")
	notes := flag.String("notes", "", "notes to include in the history entry")
	refresh := flag.Bool("refresh", false, "fetch fresh CPI data instead of the cached series")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, *outputDir, *notes, *refresh, logger); err != nil {
		logger.Error("Extrapolation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, outputDir, notes string, refresh bool, logger *slog.Logger) error {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runs, err := database.NewRepository(db).ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no estimation runs found, run the estimate first")
	}
	base := runs[0]
	logger.Info("Base run",
		"run_id", base.ID,
		"study", base.Study,
		"chip_value", base.CHIPValue,
		"created_at", base.CreatedAt)

	dataCache := cache.New(cfg.CacheDir)
	if refresh {
		if err := dataCache.Invalidate(fetcher.DatasetCPI); err != nil {
			return err
		}
	}

	raw, err := fetcher.New(dataCache, cfg.FredAPIKey, logger).CPI(ctx)
	if err != nil {
		return err
	}
	cpi, err := parser.ParseSeries(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	logger.Info("CPI series",
		"observations", len(cpi),
		"latest", cpi[len(cpi)-1].Date.Format("2006-01-02"))

	entry, err := extrapolate.Extrapolate(base, cpi, notes)
	if err != nil {
		return err
	}
	if entry.CPIRatio == 1.0 {
		logger.Warn("CPI unchanged since the base run, value carried over as-is")
	}

	count, err := extrapolate.AppendHistory(filepath.Join(outputDir, "history.json"), entry)
	if err != nil {
		return err
	}
	if err := extrapolate.WriteLatest(filepath.Join(outputDir, "latest.json"), entry); err != nil {
		return err
	}

	logger.Info("Extrapolation completed",
		"chip_value", entry.CHIPValue,
		"cpi_ratio", entry.CPIRatio,
		"cpi_date", entry.CPIDate,
		"history_entries", count)

	return nil
}
