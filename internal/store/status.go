package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/models"
)

// StatusRepository persists the singleton CollectionSummary and SyncStatus
// documents consumed by operational monitoring. Both are keyed upserts:
// always overwritten, never appended.
type StatusRepository struct {
	db *Database
}

// SaveCollectionSummary overwrites the per-sport backfill summary
func (r *StatusRepository) SaveCollectionSummary(ctx context.Context, summary *models.CollectionSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal collection summary: %w", err)
	}

	query := `
		INSERT INTO collection_summaries (sport, body, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (sport) DO UPDATE SET
			body = EXCLUDED.body,
			completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.Pool.Exec(ctx, query, string(summary.Sport), body, summary.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save collection summary: %w", err)
	}

	log.Info().
		Str("sport", string(summary.Sport)).
		Int("years", summary.YearsCollected).
		Msg("Collection summary saved")

	return nil
}

// GetCollectionSummary reads the per-sport backfill summary
func (r *StatusRepository) GetCollectionSummary(ctx context.Context, sport models.Sport) (*models.CollectionSummary, error) {
	query := `SELECT body FROM collection_summaries WHERE sport = $1`

	var body []byte
	err := r.db.Pool.QueryRow(ctx, query, string(sport)).Scan(&body)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no collection summary for sport %s", sport)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection summary: %w", err)
	}

	var summary models.CollectionSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode collection summary: %w", err)
	}

	return &summary, nil
}

// SaveSyncStatus overwrites the per sport+cadence last-run record
func (r *StatusRepository) SaveSyncStatus(ctx context.Context, status *models.SyncStatus) error {
	body, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}

	query := `
		INSERT INTO sync_status (sport, cadence, status, body, last_update)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sport, cadence) DO UPDATE SET
			status = EXCLUDED.status,
			body = EXCLUDED.body,
			last_update = EXCLUDED.last_update
	`

	_, err = r.db.Pool.Exec(ctx, query,
		string(status.Sport), string(status.Cadence), string(status.Status), body, status.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}

	return nil
}

// GetSyncStatus reads the last-run record for one sport+cadence
func (r *StatusRepository) GetSyncStatus(ctx context.Context, sport models.Sport, cadence models.Cadence) (*models.SyncStatus, error) {
	query := `SELECT body FROM sync_status WHERE sport = $1 AND cadence = $2`

	var body []byte
	err := r.db.Pool.QueryRow(ctx, query, string(sport), string(cadence)).Scan(&body)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no sync status for %s/%s", sport, cadence)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	var status models.SyncStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}

	return &status, nil
}
