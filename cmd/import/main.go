package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/config"
	"chipanalyzer/internal/database"
	"chipanalyzer/internal/fetcher"
	"chipanalyzer/internal/models"
	"chipanalyzer/internal/parser"
	"chipanalyzer/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()

	pwtVersion := flag.String("pwt", fetcher.DefaultPWTVersion, "PWT version to import")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, *pwtVersion, logger); err != nil {
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, pwtVersion string, logger *slog.Logger) error {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dataCache := cache.New(cfg.CacheDir)
	repo := database.NewRepository(db)

	labor, err := mergeLaborFromCache(dataCache, logger)
	if err != nil {
		return err
	}
	for _, obs := range labor {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := repo.SaveLaborObservation(obs); err != nil {
			logger.Warn("Failed to save labor observation",
				"isocode", obs.ISOCode,
				"year", obs.Year,
				"occupation", obs.Occupation,
				"error", err)
		}
	}
	logger.Info("Labor data imported", "records", len(labor))

	pwtData, err := dataCache.Get(fetcher.PWTCacheKey(pwtVersion))
	if err != nil {
		return fmt.Errorf("failed to read cached PWT data: %w", err)
	}
	pwtParser := parser.NewPWTParser(logger)
	pwtObs, err := pwtParser.Parse(bytes.NewReader(pwtData))
	if err != nil {
		return fmt.Errorf("failed to parse PWT data: %w", err)
	}
	for _, obs := range pwtObs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := repo.SavePWTObservation(obs); err != nil {
			logger.Warn("Failed to save PWT observation",
				"isocode", obs.ISOCode,
				"year", obs.Year,
				"error", err)
		}
	}
	logger.Info("PWT data imported", "records", len(pwtObs), "version", pwtVersion)

	deflatorData, err := dataCache.Get(fetcher.DatasetDeflator)
	if err != nil {
		logger.Warn("No cached deflator data, skipping", "error", err)
		return nil
	}
	points, err := parser.ParseDeflator(bytes.NewReader(deflatorData))
	if err != nil {
		return fmt.Errorf("failed to parse deflator data: %w", err)
	}
	for _, point := range points {
		if err := repo.SaveDeflator(point); err != nil {
			logger.Warn("Failed to save deflator point",
				"year", point.Year,
				"error", err)
		}
	}
	logger.Info("Deflator data imported", "records", len(points))

	return nil
}

// mergeLaborFromCache parses the three cached ILOSTAT datasets and joins
// them at the occupation level. Wages are filtered to USD series;
// employment and hours are not currency-denominated.
func mergeLaborFromCache(dataCache *cache.Cache, logger *slog.Logger) ([]models.LaborObservation, error) {
	employment, err := parseILOSTAT(dataCache, fetcher.DatasetEmployment, false, logger)
	if err != nil {
		return nil, err
	}
	wages, err := parseILOSTAT(dataCache, fetcher.DatasetWages, true, logger)
	if err != nil {
		return nil, err
	}
	hours, err := parseILOSTAT(dataCache, fetcher.DatasetHours, false, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.MergeLabor(employment, wages, hours), nil
}

func parseILOSTAT(dataCache *cache.Cache, dataset string, requireUSD bool, logger *slog.Logger) ([]models.ILOValue, error) {
	data, err := dataCache.Get(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached %s data: %w", dataset, err)
	}

	iloParser := parser.NewILOSTATParser(requireUSD, logger)
	values, err := iloParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", dataset, err)
	}

	logger.Info("Parsed dataset", "dataset", dataset, "records", len(values))
	return values, nil
}
