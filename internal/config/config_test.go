package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsedge/ingestion/internal/models"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "test-key")
	t.Setenv("DATABASE_PASSWORD", "test-password")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DatabaseHost)
	assert.Equal(t, 25, cfg.MaxBatchSize)
	assert.Equal(t, 2015, cfg.BackfillStartYear)
	assert.True(t, cfg.EnableScheduler)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "test-password")

	_, err := Load()
	assert.Error(t, err, "A missing provider key must fail fast")
}

func TestConfig_Sports(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	all, err := cfg.Sports()
	require.NoError(t, err)
	assert.Equal(t, models.AllSports, all, "Empty selection enables every sport")

	cfg.EnabledSports = "nba, f1"
	selected, err := cfg.Sports()
	require.NoError(t, err)
	assert.Equal(t, []models.Sport{models.SportNBA, models.SportF1}, selected)

	cfg.EnabledSports = "nba,cricket"
	_, err = cfg.Sports()
	assert.Error(t, err, "Unknown sports are rejected")
}

func TestValidate_YearRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKFILL_START_YEAR", "2020")
	t.Setenv("BACKFILL_END_YEAR", "2018")

	_, err := Load()
	assert.Error(t, err, "An inverted backfill range must be rejected")
}

func TestEffectiveBackfillEndYear(t *testing.T) {
	cfg := &Config{BackfillStartYear: 2015, BackfillEndYear: 2022}
	assert.Equal(t, 2022, cfg.EffectiveBackfillEndYear())

	cfg.BackfillEndYear = 0
	assert.GreaterOrEqual(t, cfg.EffectiveBackfillEndYear(), 2025,
		"An open-ended range resolves to the current year")
}
