package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"sportsedge/ingestion/internal/models"
)

// Config holds all application configuration
type Config struct {
	// External provider API
	ProviderAPIKey  string        `envconfig:"PROVIDER_API_KEY" required:"true"`
	ProviderBaseURL string        `envconfig:"PROVIDER_BASE_URL" default:"https://site.api.sportsfeed.io/apis/v2/sports"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`

	// Minimum interval between provider calls, per sport client
	RateLimitInterval time.Duration `envconfig:"RATE_LIMIT_INTERVAL" default:"500ms"`

	// How long raw provider payloads stay in the Redis cache
	PayloadCacheTTL time.Duration `envconfig:"PAYLOAD_CACHE_TTL" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     string `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"sportsedge"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"sportsedge_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Which sports to run; comma-separated, empty means all
	EnabledSports string `envconfig:"ENABLED_SPORTS" default:""`

	// Batch writing
	MaxBatchSize int `envconfig:"MAX_BATCH_SIZE" default:"25"`

	// Historical backfill
	BackfillEnabled   bool `envconfig:"BACKFILL_ENABLED" default:"false"`
	BackfillStartYear int  `envconfig:"BACKFILL_START_YEAR" default:"2015"`
	BackfillEndYear   int  `envconfig:"BACKFILL_END_YEAR" default:"0"`

	// Scheduler
	EnableScheduler bool `envconfig:"ENABLE_SCHEDULER" default:"true"`

	// Exception tracker webhook; empty disables reporting
	TrackerURL   string `envconfig:"TRACKER_URL" default:""`
	TrackerToken string `envconfig:"TRACKER_TOKEN" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("PROVIDER_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be positive")
	}

	if c.BackfillEndYear != 0 && c.BackfillEndYear < c.BackfillStartYear {
		return fmt.Errorf("BACKFILL_END_YEAR must not precede BACKFILL_START_YEAR")
	}

	if _, err := c.Sports(); err != nil {
		return err
	}

	return nil
}

// Sports returns the enabled sports, defaulting to every supported one
func (c *Config) Sports() ([]models.Sport, error) {
	if strings.TrimSpace(c.EnabledSports) == "" {
		return models.AllSports, nil
	}

	var enabled []models.Sport
	for _, name := range strings.Split(c.EnabledSports, ",") {
		sport, err := models.ParseSport(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("ENABLED_SPORTS: %w", err)
		}
		enabled = append(enabled, sport)
	}

	return enabled, nil
}

// EffectiveBackfillEndYear resolves the open-ended end year to the current
// calendar year
func (c *Config) EffectiveBackfillEndYear() int {
	if c.BackfillEndYear > 0 {
		return c.BackfillEndYear
	}
	return time.Now().Year()
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
