package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/models"
)

// DocumentRepository gives keyed-upsert document semantics on Postgres.
// Each canonical record lives in the documents table as one JSONB row keyed
// by (collection, doc_id); sport and season are promoted columns for the
// equality/range selections the dependent-category queries need.
type DocumentRepository struct {
	db *Database
}

const upsertDocumentSQL = `
	INSERT INTO documents (collection, doc_id, sport, season, body, collected_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (collection, doc_id) DO UPDATE SET
		sport = EXCLUDED.sport,
		season = EXCLUDED.season,
		body = EXCLUDED.body,
		collected_at = NOW()
`

// UpsertChunk commits one chunk of documents atomically: the whole chunk
// lands in a single transaction or none of it does. collected_at always
// reflects the latest successful write.
func (r *DocumentRepository) UpsertChunk(ctx context.Context, collection string, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin chunk transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		body, err := json.Marshal(doc.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}
		batch.Queue(upsertDocumentSQL, collection, doc.ID, string(doc.Sport), doc.Season, body)
	}

	results := tx.SendBatch(ctx, batch)
	for range docs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk: %w", err)
	}

	log.Debug().
		Str("collection", collection).
		Int("count", len(docs)).
		Msg("Chunk committed")

	return nil
}

// GetEvent retrieves one event document by id. CollectedAt comes from the
// collected_at column, which tracks the latest successful write.
func (r *DocumentRepository) GetEvent(ctx context.Context, sport models.Sport, eventID string) (*models.Event, error) {
	query := `
		SELECT body, collected_at FROM documents
		WHERE collection = $1 AND doc_id = $2
	`

	collection := models.CollectionName(sport, models.CategoryEvents)

	var (
		body        []byte
		collectedAt time.Time
	)
	err := r.db.Pool.QueryRow(ctx, query, collection, eventID).Scan(&body, &collectedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("event not found: %s", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event %s: %w", eventID, err)
	}
	event.CollectedAt = collectedAt

	return &event, nil
}

// EventsBySeason retrieves all of a sport's events for one season, ordered
// by event date. The dependent-category pipeline reads these back rather
// than re-deriving identifiers.
func (r *DocumentRepository) EventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error) {
	query := `
		SELECT body, collected_at FROM documents
		WHERE collection = $1 AND season = $2
		ORDER BY body->>'date'
	`

	return r.queryEvents(ctx, query, models.CollectionName(sport, models.CategoryEvents), season)
}

// OutdoorEventsBySeason retrieves a season's events at outdoor venues.
// Weather records are only derived for these.
func (r *DocumentRepository) OutdoorEventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error) {
	query := `
		SELECT body, collected_at FROM documents
		WHERE collection = $1 AND season = $2
		  AND (body->'venue'->>'indoor')::boolean = false
		ORDER BY body->>'date'
	`

	return r.queryEvents(ctx, query, models.CollectionName(sport, models.CategoryEvents), season)
}

// EventsInWindow retrieves a sport's events dated inside [from, to)
func (r *DocumentRepository) EventsInWindow(ctx context.Context, sport models.Sport, from, to time.Time) ([]models.Event, error) {
	query := `
		SELECT body, collected_at FROM documents
		WHERE collection = $1
		  AND body->>'date' >= $2 AND body->>'date' < $3
		ORDER BY body->>'date'
	`

	collection := models.CollectionName(sport, models.CategoryEvents)
	rows, err := r.db.Pool.Query(ctx, query, collection, from.Format(time.RFC3339), to.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query events in window: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountByCollection returns the number of documents in a collection
func (r *DocumentRepository) CountByCollection(ctx context.Context, collection string) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE collection = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, collection).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

func (r *DocumentRepository) queryEvents(ctx context.Context, query, collection string, season int) ([]models.Event, error) {
	rows, err := r.db.Pool.Query(ctx, query, collection, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var (
			body        []byte
			collectedAt time.Time
		)
		if err := rows.Scan(&body, &collectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		var event models.Event
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		event.CollectedAt = collectedAt
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
