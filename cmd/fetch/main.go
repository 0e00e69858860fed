package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chipanalyzer/internal/cache"
	"chipanalyzer/internal/config"
	"chipanalyzer/internal/fetcher"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.LoadConfig()

	pwtVersion := flag.String("pwt", fetcher.DefaultPWTVersion, "PWT version to fetch")
	refresh := flag.Bool("refresh", false, "invalidate the cache before fetching")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, *pwtVersion, *refresh, logger); err != nil {
		logger.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, pwtVersion string, refresh bool, logger *slog.Logger) error {
	dataCache := cache.New(cfg.CacheDir)

	if refresh {
		if err := dataCache.Invalidate(""); err != nil {
			return err
		}
		logger.Info("Cache invalidated")
	}

	f := fetcher.New(dataCache, cfg.FredAPIKey, logger)

	raw, err := f.FetchAll(ctx, pwtVersion)
	if err != nil {
		return err
	}

	logger.Info("Fetch completed",
		"employment_bytes", len(raw.Employment),
		"wages_bytes", len(raw.Wages),
		"hours_bytes", len(raw.Hours),
		"pwt_bytes", len(raw.PWT),
		"deflator_bytes", len(raw.Deflator))

	for _, dataset := range dataCache.List() {
		if meta, ok := dataCache.GetMetadata(dataset); ok {
			logger.Info("Cached dataset",
				"dataset", dataset,
				"source", meta.Source,
				"fetched", meta.LastUpdated)
		}
	}

	return nil
}
