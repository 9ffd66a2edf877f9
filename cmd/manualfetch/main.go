// manualfetch triggers one sync or backfill run from the command line,
// against the same pipelines the worker schedules.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportsedge/ingestion/internal/cache"
	"sportsedge/ingestion/internal/collector"
	"sportsedge/ingestion/internal/config"
	"sportsedge/ingestion/internal/estimator"
	"sportsedge/ingestion/internal/isolate"
	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
	"sportsedge/ingestion/internal/sports"
	"sportsedge/ingestion/internal/store"
	"sportsedge/ingestion/internal/syncer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	syncType := flag.String("sync", "daily", "sync type: backfill, daily, live, weekly")
	sportFlag := flag.String("sport", "", "sport to sync (empty runs every enabled sport)")
	startYear := flag.Int("start", 0, "backfill start year (backfill only)")
	endYear := flag.Int("end", 0, "backfill end year (backfill only)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	switch *syncType {
	case "backfill", "daily", "live", "weekly":
	default:
		log.Fatal().Str("sync", *syncType).Msg("Unknown sync type")
	}

	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Interrupted, cancelling run...")
		cancel()
	}()

	targets, err := resolveSports(cfg, *sportFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sport selection")
	}

	db, err := store.NewDatabase(ctx, store.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	var (
		retrain  syncer.RetrainPublisher
		payloads provider.PayloadCache
	)
	if redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, payload cache and retrain signals disabled")
	} else {
		defer redisCache.Close()
		retrain = redisCache
		payloads = redisCache
	}

	var tracker isolate.Tracker = isolate.NoopTracker{}
	if cfg.TrackerURL != "" {
		tracker = isolate.NewWebhookTracker(cfg.TrackerURL, cfg.TrackerToken)
	}
	runner := isolate.NewRunner(tracker)

	registry := sports.NewRegistry()
	est := estimator.NewSynthetic()
	writer := store.NewBatchWriter(db.Documents, cfg.MaxBatchSize)

	for _, sport := range targets {
		adapter, ok := registry[sport]
		if !ok {
			log.Fatal().Str("sport", string(sport)).Msg("No adapter registered for sport")
		}

		limiter := provider.NewLimiter(cfg.RateLimitInterval)
		client := provider.NewClient(sport, cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderTimeout, limiter, adapter)

		var fetcher provider.Fetcher = client
		if payloads != nil {
			fetcher = provider.NewCachedFetcher(client, payloads, sport, cfg.PayloadCacheTTL)
		}

		switch *syncType {
		case "backfill":
			from := *startYear
			if from == 0 {
				from = cfg.BackfillStartYear
			}
			to := *endYear
			if to == 0 {
				to = cfg.EffectiveBackfillEndYear()
			}

			orchestrator := collector.NewOrchestrator(adapter, fetcher, writer, db.Documents, db.Status, est, runner)
			summary, err := orchestrator.CollectHistorical(ctx, from, to)
			if err != nil {
				log.Fatal().Err(err).Str("sport", string(sport)).Msg("Backfill aborted")
			}
			printSummary(summary)

		default:
			controller := syncer.NewController(adapter, fetcher, writer, db.Documents, db.Status, est, runner, retrain)

			var err error
			switch *syncType {
			case "daily":
				err = controller.RunDaily(ctx)
			case "live":
				err = controller.RunLive(ctx)
			case "weekly":
				err = controller.RunWeekly(ctx)
			}
			if err != nil {
				log.Error().Err(err).Str("sport", string(sport)).Str("sync", *syncType).Msg("Sync run failed")
			}

			status, err := db.Status.GetSyncStatus(ctx, sport, cadenceFor(*syncType))
			if err != nil {
				log.Warn().Err(err).Str("sport", string(sport)).Msg("No sync status recorded for run")
			} else {
				writeStatus(os.Stdout, status)
			}
		}
	}

	log.Info().Str("sync", *syncType).Msg("Manual run complete")
}

func resolveSports(cfg *config.Config, sportFlag string) ([]models.Sport, error) {
	if sportFlag == "" {
		return cfg.Sports()
	}

	sport, err := models.ParseSport(sportFlag)
	if err != nil {
		return nil, err
	}
	return []models.Sport{sport}, nil
}

func cadenceFor(syncType string) models.Cadence {
	switch syncType {
	case "live":
		return models.CadenceLive
	case "weekly":
		return models.CadenceWeekly
	default:
		return models.CadenceDaily
	}
}

// writeStatus prints the SyncStatus a routine recorded, mirroring what the
// backfill summary shows.
func writeStatus(w io.Writer, status *models.SyncStatus) {
	fmt.Fprintf(w, "\n=== Sync status: %s/%s ===\n", status.Sport, status.Cadence)
	fmt.Fprintf(w, "Status: %s\n", status.Status)
	for _, detail := range status.Details {
		fmt.Fprintf(w, "  - %s\n", detail)
	}
	fmt.Fprintf(w, "Last update: %s\n\n", status.LastUpdate.Format(time.RFC3339))
}

func printSummary(summary *models.CollectionSummary) {
	fmt.Printf("\n=== Collection summary: %s ===\n", summary.Sport)
	fmt.Printf("Years collected: %d (%d-%d)\n", summary.YearsCollected, summary.StartYear, summary.EndYear)
	for _, category := range []models.Category{
		models.CategoryEvents, models.CategoryParticipants, models.CategoryTeams,
		models.CategoryWeather, models.CategoryBetting, models.CategoryAdvanced,
	} {
		fmt.Printf("  %-13s %d\n", category+":", summary.Totals[category])
	}
	if len(summary.Failures) > 0 {
		fmt.Printf("Failures (%d):\n", len(summary.Failures))
		for _, failure := range summary.Failures {
			fmt.Printf("  - %s\n", failure)
		}
	}
	fmt.Printf("Completed at: %s\n\n", summary.CompletedAt.Format(time.RFC3339))
}
