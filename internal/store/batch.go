package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/metrics"
	"sportsedge/ingestion/internal/models"
)

// DefaultMaxBatchSize bounds one atomic commit when no size is configured.
const DefaultMaxBatchSize = 25

// ChunkCommitter commits one bounded chunk atomically. DocumentRepository
// is the production implementation; tests substitute an in-memory fake.
type ChunkCommitter interface {
	UpsertChunk(ctx context.Context, collection string, docs []models.Document) error
}

// ChunkError reports one failed chunk with its record id range so the
// caller can retry that chunk specifically.
type ChunkError struct {
	Collection string
	FirstID    string
	LastID     string
	Size       int
	Err        error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk commit failed for %s [%s..%s] (%d records): %v",
		e.Collection, e.FirstID, e.LastID, e.Size, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// BatchError aggregates the failed chunks of one Write call.
type BatchError struct {
	Chunks []*ChunkError
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Chunks))
	for i, c := range e.Chunks {
		parts[i] = c.Error()
	}
	return fmt.Sprintf("%d chunk(s) failed: %s", len(e.Chunks), strings.Join(parts, "; "))
}

// BatchWriter splits record sequences into bounded chunks and commits each
// chunk atomically with upsert semantics. A failed chunk is skipped and
// reported; the remaining chunks still commit.
type BatchWriter struct {
	committer    ChunkCommitter
	maxBatchSize int
}

// NewBatchWriter creates a writer with the given chunk bound.
func NewBatchWriter(committer ChunkCommitter, maxBatchSize int) *BatchWriter {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &BatchWriter{
		committer:    committer,
		maxBatchSize: maxBatchSize,
	}
}

// Write commits records to a collection in ceil(N/maxBatchSize) chunks.
// Returns the number of records that committed. The error, if any, is a
// *BatchError listing every failed chunk's id range.
func (w *BatchWriter) Write(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	written := 0
	var failed []*ChunkError

	for _, chunk := range chunkDocuments(docs, w.maxBatchSize) {
		start := time.Now()
		if err := w.committer.UpsertChunk(ctx, collection, chunk); err != nil {
			chunkErr := &ChunkError{
				Collection: collection,
				FirstID:    chunk[0].ID,
				LastID:     chunk[len(chunk)-1].ID,
				Size:       len(chunk),
				Err:        err,
			}
			failed = append(failed, chunkErr)
			metrics.RecordChunkCommit(collection, "error", len(chunk), time.Since(start).Seconds())
			log.Error().
				Err(err).
				Str("collection", collection).
				Str("first_id", chunkErr.FirstID).
				Str("last_id", chunkErr.LastID).
				Msg("Chunk commit failed, skipping chunk")
			continue
		}

		written += len(chunk)
		metrics.RecordChunkCommit(collection, "ok", len(chunk), time.Since(start).Seconds())
	}

	log.Debug().
		Str("collection", collection).
		Int("written", written).
		Int("failed_chunks", len(failed)).
		Msg("Batch write complete")

	if len(failed) > 0 {
		return written, &BatchError{Chunks: failed}
	}
	return written, nil
}

// chunkDocuments splits docs into sub-slices of at most size records.
func chunkDocuments(docs []models.Document, size int) [][]models.Document {
	var chunks [][]models.Document
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}
	return chunks
}
