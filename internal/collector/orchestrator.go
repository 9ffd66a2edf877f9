// Package collector runs the multi-year historical backfill. The
// orchestrator is sport-agnostic; the adapter supplies the category plan,
// resource paths and normalizers for its league.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/estimator"
	"sportsedge/ingestion/internal/isolate"
	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
	"sportsedge/ingestion/internal/sports"
)

// DocumentWriter commits normalized documents in bounded atomic chunks.
type DocumentWriter interface {
	Write(ctx context.Context, collection string, docs []models.Document) (int, error)
}

// EventReader reads back a season's committed events. Dependent categories
// derive from these rather than re-deriving identifiers from raw payloads.
type EventReader interface {
	EventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error)
	OutdoorEventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error)
}

// SummaryStore persists the per-sport backfill summary.
type SummaryStore interface {
	SaveCollectionSummary(ctx context.Context, summary *models.CollectionSummary) error
}

// Orchestrator drives the full historical collection for one sport: a year
// loop over the adapter's category plan, each year/category pair isolated
// so one failure never aborts the rest of the run.
type Orchestrator struct {
	adapter   sports.Adapter
	fetcher   provider.Fetcher
	writer    DocumentWriter
	reader    EventReader
	summaries SummaryStore
	estimator estimator.Estimator
	runner    *isolate.Runner
}

// NewOrchestrator creates a backfill orchestrator for one sport.
func NewOrchestrator(
	adapter sports.Adapter,
	fetcher provider.Fetcher,
	writer DocumentWriter,
	reader EventReader,
	summaries SummaryStore,
	est estimator.Estimator,
	runner *isolate.Runner,
) *Orchestrator {
	return &Orchestrator{
		adapter:   adapter,
		fetcher:   fetcher,
		writer:    writer,
		reader:    reader,
		summaries: summaries,
		estimator: est,
		runner:    runner,
	}
}

// CollectHistorical backfills every season in [startYear, endYear],
// categories in the adapter's dependency order. Returns the summary of the
// run; the only error it propagates is context cancellation.
func (o *Orchestrator) CollectHistorical(ctx context.Context, startYear, endYear int) (*models.CollectionSummary, error) {
	sport := o.adapter.Sport()
	span := isolate.StartSpan(sport, string(models.CadenceBackfill))

	summary := models.NewCollectionSummary(sport, startYear, endYear)

	log.Info().
		Str("sport", string(sport)).
		Int("start_year", startYear).
		Int("end_year", endYear).
		Msg("Historical collection starting")

	for year := startYear; year <= endYear; year++ {
		if ctx.Err() != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("%d: run cancelled: %v", year, ctx.Err()))
			break
		}

		if o.collectYear(ctx, year, summary) {
			summary.YearsCollected++
		}
	}

	summary.CompletedAt = time.Now().UTC()

	if err := o.summaries.SaveCollectionSummary(ctx, summary); err != nil {
		log.Error().
			Err(err).
			Str("sport", string(sport)).
			Msg("Failed to save collection summary")
	}

	status := "success"
	if len(summary.Failures) > 0 {
		status = "partial"
	}
	span.End(status)

	log.Info().
		Str("sport", string(sport)).
		Int("years_collected", summary.YearsCollected).
		Int("failures", len(summary.Failures)).
		Msg("Historical collection complete")

	return summary, ctx.Err()
}

// collectYear runs one season through the category plan. Reports whether
// the year's events landed, which gates the dependent categories.
func (o *Orchestrator) collectYear(ctx context.Context, year int, summary *models.CollectionSummary) bool {
	sport := o.adapter.Sport()
	eventsOK := false

	for _, step := range o.adapter.Plan() {
		unit := isolate.Unit{Sport: sport, Season: year, Category: step.Category}

		var outcome isolate.Outcome
		if step.DependsOnEvents && !eventsOK {
			outcome = o.runner.Skip(unit, isolate.ReasonDependencyUnmet)
		} else {
			outcome = o.runner.Run(ctx, unit, func(ctx context.Context) (int, error) {
				return o.collectCategory(ctx, year, step)
			})
		}

		switch outcome.Status {
		case isolate.StatusOK:
			summary.Totals[step.Category] += outcome.Count
			if step.Category == models.CategoryEvents {
				eventsOK = true
			}
		case isolate.StatusFailed:
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("%d/%s: %v", year, step.Category, outcome.Err))
		case isolate.StatusSkipped:
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("%d/%s: skipped (%s)", year, step.Category, outcome.Reason))
		}
	}

	return eventsOK
}

// collectCategory collects one year/category pair and returns the number
// of documents committed.
func (o *Orchestrator) collectCategory(ctx context.Context, year int, step sports.CategoryPlan) (int, error) {
	if step.Estimated {
		return o.collectEstimated(ctx, year, step)
	}
	return o.collectFromProvider(ctx, year, step)
}

func (o *Orchestrator) collectFromProvider(ctx context.Context, year int, step sports.CategoryPlan) (int, error) {
	payload, err := o.fetcher.Fetch(ctx, provider.Request{Kind: step.Resource, Season: year})
	if err != nil {
		return 0, err
	}

	nctx := sports.NormalizeContext{Season: year, Now: time.Now().UTC()}
	if step.DependsOnEvents {
		events, err := o.reader.EventsBySeason(ctx, o.adapter.Sport(), year)
		if err != nil {
			return 0, fmt.Errorf("failed to read season events: %w", err)
		}
		nctx.Events = events
	}

	docs, err := o.adapter.Normalize(step.Resource, payload, nctx)
	if err != nil {
		return 0, err
	}

	collection := models.CollectionName(o.adapter.Sport(), step.Category)
	return o.writer.Write(ctx, collection, docs)
}

// collectEstimated derives a category from the year's committed events.
// Weather only applies to outdoor venues; a season with no outdoor events
// succeeds with zero records.
func (o *Orchestrator) collectEstimated(ctx context.Context, year int, step sports.CategoryPlan) (int, error) {
	sport := o.adapter.Sport()

	var (
		events []models.Event
		err    error
	)
	if step.Category == models.CategoryWeather {
		events, err = o.reader.OutdoorEventsBySeason(ctx, sport, year)
	} else {
		events, err = o.reader.EventsBySeason(ctx, sport, year)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read season events: %w", err)
	}

	now := time.Now().UTC()
	docs := make([]models.Document, 0, len(events))
	for _, event := range events {
		switch step.Category {
		case models.CategoryWeather:
			record := o.estimator.Weather(event)
			record.CollectedAt = now
			docs = append(docs, models.WeatherDocument(record))
		case models.CategoryBetting:
			line := o.estimator.BettingLine(event)
			line.CollectedAt = now
			docs = append(docs, models.BettingDocument(line))
		case models.CategoryAdvanced:
			metrics := o.estimator.Advanced(event)
			metrics.CollectedAt = now
			docs = append(docs, models.AdvancedDocument(metrics))
		default:
			return 0, fmt.Errorf("category %s has no estimator", step.Category)
		}
	}

	return o.writer.Write(ctx, models.CollectionName(sport, step.Category), docs)
}
