// Package main provides a CLI tool that loads a party YAML file into the
// PostgreSQL roster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/importer"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	campaignName := flag.String("campaign", "", "campaign name; created if missing (required)")
	partyFile := flag.String("party", "content/party.yaml", "path to the party YAML file")
	flag.Parse()

	if *campaignName == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	imp := importer.New(
		postgres.NewCampaignRepository(pool.DB()),
		postgres.NewCharacterRepository(pool.DB()),
		os.Stdout,
	)
	report, err := imp.Run(ctx, *campaignName, *partyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("set encounter.campaign_id=%d to fight with this party\n", report.CampaignID)
}
