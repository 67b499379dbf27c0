// Package main provides the encounter console binary.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/app"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	campaignID := flag.Int64("campaign", 0, "campaign id override (0 = use config)")
	seed := flag.Uint64("seed", 0, "dice seed override (0 = use config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *campaignID > 0 {
		cfg.Encounter.CampaignID = *campaignID
	}
	if *seed != 0 {
		cfg.Encounter.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging, "skirmish")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	a, cleanup, err := app.Build(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("building application", zap.Error(err))
	}
	defer cleanup()

	logger.Info("encounter console ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int64("campaign_id", cfg.Encounter.CampaignID),
		zap.Int("history", len(a.Encounter.History())),
		zap.Duration("startup", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("console", a.Service)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("console exited with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}
