package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sportsedge/ingestion/internal/cache"
	"sportsedge/ingestion/internal/collector"
	"sportsedge/ingestion/internal/config"
	"sportsedge/ingestion/internal/estimator"
	"sportsedge/ingestion/internal/isolate"
	"sportsedge/ingestion/internal/metrics"
	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
	"sportsedge/ingestion/internal/sports"
	"sportsedge/ingestion/internal/store"
	"sportsedge/ingestion/internal/syncer"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting multi-sport data collection worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
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
	log.Info().Msg("Database connection established")

	// Initialize Redis cache
	var (
		retrain  syncer.RetrainPublisher
		payloads provider.PayloadCache
	)
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		retrain = redisCache
		payloads = redisCache
		log.Info().Msg("Redis cache connected")
	}

	// Exception tracker
	var tracker isolate.Tracker = isolate.NoopTracker{}
	if cfg.TrackerURL != "" {
		tracker = isolate.NewWebhookTracker(cfg.TrackerURL, cfg.TrackerToken)
		log.Info().Str("url", cfg.TrackerURL).Msg("Exception tracker configured")
	}
	runner := isolate.NewRunner(tracker)

	// Build per-sport pipelines
	enabledSports, err := cfg.Sports()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sports configuration")
	}

	registry := sports.NewRegistry()
	est := estimator.NewSynthetic()
	writer := store.NewBatchWriter(db.Documents, cfg.MaxBatchSize)

	orchestrators := make(map[models.Sport]*collector.Orchestrator)
	controllers := make(map[models.Sport]*syncer.Controller)
	for _, sport := range enabledSports {
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

		orchestrators[sport] = collector.NewOrchestrator(adapter, fetcher, writer, db.Documents, db.Status, est, runner)
		controllers[sport] = syncer.NewController(adapter, fetcher, writer, db.Documents, db.Status, est, runner, retrain)

		log.Info().Str("sport", string(sport)).Msg("Sport pipeline initialized")
	}

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := syncer.NewScheduler(controllers)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run historical backfill if enabled, one goroutine per sport
	if cfg.BackfillEnabled {
		startYear := cfg.BackfillStartYear
		endYear := cfg.EffectiveBackfillEndYear()
		log.Info().
			Int("start_year", startYear).
			Int("end_year", endYear).
			Msg("Running historical backfill...")

		var wg sync.WaitGroup
		for sport, orchestrator := range orchestrators {
			wg.Add(1)
			go func(sport models.Sport, o *collector.Orchestrator) {
				defer wg.Done()
				summary, err := o.CollectHistorical(ctx, startYear, endYear)
				if err != nil {
					log.Error().Err(err).Str("sport", string(sport)).Msg("Backfill aborted")
					return
				}
				log.Info().
					Str("sport", string(sport)).
					Int("years", summary.YearsCollected).
					Int("failures", len(summary.Failures)).
					Msg("Backfill finished")
			}(sport, orchestrator)
		}
		go func() {
			wg.Wait()
			log.Info().Msg("Historical backfill complete for all sports")
		}()
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *store.Database) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
