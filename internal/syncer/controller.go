// Package syncer keeps collected data current after the backfill: daily
// refreshes, live score polling, weekly maintenance and the edge-triggered
// pre-event routine.
package syncer

import (
	"context"
	"errors"
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

// EventReader reads back committed events.
type EventReader interface {
	GetEvent(ctx context.Context, sport models.Sport, eventID string) (*models.Event, error)
	EventsInWindow(ctx context.Context, sport models.Sport, from, to time.Time) ([]models.Event, error)
}

// StatusStore persists the per sport+cadence last-run record.
type StatusStore interface {
	SaveSyncStatus(ctx context.Context, status *models.SyncStatus) error
}

// RetrainPublisher signals the model training pipeline after the weekly
// maintenance pass.
type RetrainPublisher interface {
	PublishRetrain(ctx context.Context, sport models.Sport) error
}

// Controller runs the scheduled sync routines for one sport. Each routine
// records a SyncStatus on every run, including no-ops, so monitoring can
// tell "skipped by design" from "never ran".
type Controller struct {
	adapter   sports.Adapter
	fetcher   provider.Fetcher
	writer    DocumentWriter
	reader    EventReader
	statuses  StatusStore
	estimator estimator.Estimator
	runner    *isolate.Runner
	retrain   RetrainPublisher

	// clock is swappable so tests can pin the season calendar.
	clock func() time.Time
}

// NewController creates a sync controller for one sport.
func NewController(
	adapter sports.Adapter,
	fetcher provider.Fetcher,
	writer DocumentWriter,
	reader EventReader,
	statuses StatusStore,
	est estimator.Estimator,
	runner *isolate.Runner,
	retrain RetrainPublisher,
) *Controller {
	return &Controller{
		adapter:   adapter,
		fetcher:   fetcher,
		writer:    writer,
		reader:    reader,
		statuses:  statuses,
		estimator: est,
		runner:    runner,
		retrain:   retrain,
		clock:     time.Now,
	}
}

// RunDaily refreshes the schedule, yesterday's results, rosters, standings
// and the predictions for events starting within 24 hours. Off-season it
// records a skip and makes no provider calls.
func (c *Controller) RunDaily(ctx context.Context) error {
	now := c.clock()
	sport := c.adapter.Sport()
	span := isolate.StartSpan(sport, string(models.CadenceDaily))

	status := &models.SyncStatus{Sport: sport, Cadence: models.CadenceDaily, Status: models.SyncSuccess}

	if !c.adapter.SeasonWindow().InSeason(now) {
		c.runner.Skip(isolate.Unit{Sport: sport, Routine: "daily"}, isolate.ReasonOffSeason)
		status.Status = models.SyncSkipped
		status.AddDetail(isolate.ReasonOffSeason)
		c.finish(ctx, span, status, now)
		return nil
	}

	season := c.adapter.SeasonWindow().SeasonYear(now)
	tally := newTally(status)

	tally.record(c.runner.Run(ctx, c.unit("schedule", season), func(ctx context.Context) (int, error) {
		return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceSchedule, Season: season},
			models.CategoryEvents, now, nil)
	}))

	tally.record(c.runner.Run(ctx, c.unit("results", season), func(ctx context.Context) (int, error) {
		return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceResults, Season: season, Date: now.AddDate(0, 0, -1)},
			models.CategoryEvents, now, nil)
	}))

	rosterOutcome := c.runner.Run(ctx, c.unit("roster", season), func(ctx context.Context) (int, error) {
		return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceRoster, Season: season},
			models.CategoryParticipants, now, nil)
	})
	tally.record(rosterOutcome)

	if c.supportsResource(provider.ResourceInjuries) {
		tally.record(c.runner.Run(ctx, c.unit("injuries", season), func(ctx context.Context) (int, error) {
			return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceInjuries, Season: season},
				models.CategoryParticipants, now, nil)
		}))
	}

	if c.hasCategory(models.CategoryTeams) {
		tally.record(c.runner.Run(ctx, c.unit("standings", season), func(ctx context.Context) (int, error) {
			return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceStandings, Season: season},
				models.CategoryTeams, now, nil)
		}))
	}

	// Upcoming predictions derive from current rosters; a failed roster
	// refresh makes them stale, so they skip instead.
	if rosterOutcome.Status != isolate.StatusOK {
		c.runner.Skip(c.unit("predictions", season), isolate.ReasonDependencyUnmet)
		status.AddDetail(fmt.Sprintf("predictions: skipped (%s)", isolate.ReasonDependencyUnmet))
	} else {
		tally.record(c.runner.Run(ctx, c.unit("predictions", season), func(ctx context.Context) (int, error) {
			events, err := c.reader.EventsInWindow(ctx, sport, now, now.Add(24*time.Hour))
			if err != nil {
				return 0, err
			}
			docs := make([]models.Document, 0, len(events))
			for _, event := range events {
				metrics := c.estimator.Advanced(event)
				metrics.CollectedAt = now
				docs = append(docs, models.AdvancedDocument(metrics))
			}
			return c.writer.Write(ctx, models.CollectionName(sport, models.CategoryAdvanced), docs)
		}))
	}

	tally.settle(status)
	c.finish(ctx, span, status, now)
	return nil
}

// RunLive polls the live scoreboard. It is a recorded no-op off-season and
// on non-game days; either way no provider call happens.
func (c *Controller) RunLive(ctx context.Context) error {
	now := c.clock()
	sport := c.adapter.Sport()
	span := isolate.StartSpan(sport, string(models.CadenceLive))

	status := &models.SyncStatus{Sport: sport, Cadence: models.CadenceLive, Status: models.SyncSuccess}

	if !c.adapter.SeasonWindow().InSeason(now) {
		c.runner.Skip(isolate.Unit{Sport: sport, Routine: "live"}, isolate.ReasonOffSeason)
		status.Status = models.SyncSkipped
		status.AddDetail(isolate.ReasonOffSeason)
		c.finish(ctx, span, status, now)
		return nil
	}

	if !c.adapter.Cadence().IsGameDay(now) {
		c.runner.Skip(isolate.Unit{Sport: sport, Routine: "live"}, isolate.ReasonNotGameDay)
		status.Status = models.SyncSkipped
		status.AddDetail(isolate.ReasonNotGameDay)
		c.finish(ctx, span, status, now)
		return nil
	}

	season := c.adapter.SeasonWindow().SeasonYear(now)
	outcome := c.runner.Run(ctx, c.unit("live", season), func(ctx context.Context) (int, error) {
		return c.pollScoreboard(ctx, season, now)
	})
	if outcome.Status == isolate.StatusFailed {
		status.Status = models.SyncError
		status.AddDetail(fmt.Sprintf("live: %v", outcome.Err))
	}

	c.finish(ctx, span, status, now)
	return outcome.Err
}

// pollScoreboard fetches the live scoreboard, upserts the events and runs
// lifecycle edge detection against the previously stored copies.
func (c *Controller) pollScoreboard(ctx context.Context, season int, now time.Time) (int, error) {
	sport := c.adapter.Sport()

	payload, err := c.fetcher.Fetch(ctx, provider.Request{Kind: provider.ResourceLiveScoreboard, Season: season})
	if err != nil {
		return 0, err
	}

	docs, err := c.adapter.Normalize(provider.ResourceLiveScoreboard, payload,
		sports.NormalizeContext{Season: season, Now: now})
	if err != nil {
		return 0, err
	}

	// Snapshot the stored flags before the upsert overwrites them.
	type transition struct {
		before *models.Event
		after  models.Event
	}
	var transitions []transition
	for _, doc := range docs {
		after, ok := doc.Body.(models.Event)
		if !ok {
			continue
		}
		before, err := c.reader.GetEvent(ctx, sport, after.EventID)
		if err != nil {
			before = nil
		}
		transitions = append(transitions, transition{before: before, after: after})
	}

	written, err := c.writer.Write(ctx, models.CollectionName(sport, models.CategoryEvents), docs)
	if err != nil {
		return written, err
	}

	// Refresh derived metrics for in-progress events on every poll.
	var liveDocs []models.Document
	for _, tr := range transitions {
		if tr.after.IsLive() {
			metrics := c.estimator.Advanced(tr.after)
			metrics.CollectedAt = now
			liveDocs = append(liveDocs, models.AdvancedDocument(metrics))
		}
	}
	if len(liveDocs) > 0 {
		if _, err := c.writer.Write(ctx, models.CollectionName(sport, models.CategoryAdvanced), liveDocs); err != nil {
			return written, err
		}
	}

	for _, tr := range transitions {
		c.HandleEventUpdate(ctx, tr.before, tr.after)
	}

	return written, nil
}

// HandleEventUpdate fires the pre-event routine when an event's lifecycle
// flag transitions pending -> announced. The trigger is the edge, not the
// value, so an already-announced event never re-fires.
func (c *Controller) HandleEventUpdate(ctx context.Context, before *models.Event, after models.Event) {
	flag := c.adapter.LifecycleFlag()

	prev := models.FlagPending
	if before != nil {
		prev = before.Flag(flag)
	}

	if prev != models.FlagPending || after.Flag(flag) != models.FlagAnnounced {
		return
	}

	log.Info().
		Str("sport", string(c.adapter.Sport())).
		Str("event_id", after.EventID).
		Str("flag", flag).
		Msg("Lifecycle flag announced, running pre-event sync")

	c.runPreEvent(ctx, after)
}

// runPreEvent refreshes the announcement resource, market prices and
// predictions for one event.
func (c *Controller) runPreEvent(ctx context.Context, event models.Event) {
	now := c.clock()
	sport := c.adapter.Sport()
	span := isolate.StartSpan(sport, string(models.CadencePreEvent))

	status := &models.SyncStatus{Sport: sport, Cadence: models.CadencePreEvent, Status: models.SyncSuccess}
	status.AddDetail(fmt.Sprintf("event: %s", event.EventID))
	tally := newTally(status)

	unit := func(name string) isolate.Unit {
		return isolate.Unit{Sport: sport, Season: event.Season, EventID: event.EventID, Routine: name}
	}

	resource := c.adapter.PreEventResource()
	tally.record(c.runner.Run(ctx, unit(string(resource)), func(ctx context.Context) (int, error) {
		req := provider.Request{Kind: resource, Season: event.Season, Round: event.Round, Date: event.Date}
		return c.fetchAndWrite(ctx, req, categoryForResource(resource), now, []models.Event{event})
	}))

	tally.record(c.runner.Run(ctx, unit("betting"), func(ctx context.Context) (int, error) {
		return c.refreshBetting(ctx, event, now)
	}))

	tally.record(c.runner.Run(ctx, unit("predictions"), func(ctx context.Context) (int, error) {
		metrics := c.estimator.Advanced(event)
		metrics.CollectedAt = now
		doc := models.AdvancedDocument(metrics)
		return c.writer.Write(ctx, models.CollectionName(sport, models.CategoryAdvanced), []models.Document{doc})
	}))

	tally.settle(status)
	c.finish(ctx, span, status, now)
}

// refreshBetting re-prices one event: from the odds feed when the sport
// has one wired, from the estimator otherwise.
func (c *Controller) refreshBetting(ctx context.Context, event models.Event, now time.Time) (int, error) {
	sport := c.adapter.Sport()
	collection := models.CollectionName(sport, models.CategoryBetting)

	for _, step := range c.adapter.Plan() {
		if step.Category != models.CategoryBetting {
			continue
		}
		if !step.Estimated {
			req := provider.Request{Kind: step.Resource, Season: event.Season}
			return c.fetchAndWrite(ctx, req, models.CategoryBetting, now, []models.Event{event})
		}
		break
	}

	line := c.estimator.BettingLine(event)
	line.CollectedAt = now
	doc := models.BettingDocument(line)
	return c.writer.Write(ctx, collection, []models.Document{doc})
}

// RunWeekly refreshes standings, recomputes trend metrics over the past
// week's completed events and signals the training pipeline.
func (c *Controller) RunWeekly(ctx context.Context) error {
	now := c.clock()
	sport := c.adapter.Sport()
	span := isolate.StartSpan(sport, string(models.CadenceWeekly))

	status := &models.SyncStatus{Sport: sport, Cadence: models.CadenceWeekly, Status: models.SyncSuccess}

	if !c.adapter.SeasonWindow().InSeason(now) {
		c.runner.Skip(isolate.Unit{Sport: sport, Routine: "weekly"}, isolate.ReasonOffSeason)
		status.Status = models.SyncSkipped
		status.AddDetail(isolate.ReasonOffSeason)
		c.finish(ctx, span, status, now)
		return nil
	}

	season := c.adapter.SeasonWindow().SeasonYear(now)
	tally := newTally(status)

	if c.hasCategory(models.CategoryTeams) {
		tally.record(c.runner.Run(ctx, c.unit("standings", season), func(ctx context.Context) (int, error) {
			return c.fetchAndWrite(ctx, provider.Request{Kind: provider.ResourceStandings, Season: season},
				models.CategoryTeams, now, nil)
		}))
	}

	tally.record(c.runner.Run(ctx, c.unit("trends", season), func(ctx context.Context) (int, error) {
		events, err := c.reader.EventsInWindow(ctx, sport, now.AddDate(0, 0, -7), now)
		if err != nil {
			return 0, err
		}
		var docs []models.Document
		for _, event := range events {
			if !event.IsCompleted() {
				continue
			}
			metrics := c.estimator.Advanced(event)
			metrics.CollectedAt = now
			docs = append(docs, models.AdvancedDocument(metrics))
		}
		return c.writer.Write(ctx, models.CollectionName(sport, models.CategoryAdvanced), docs)
	}))

	tally.record(c.runner.Run(ctx, c.unit("retrain", season), func(ctx context.Context) (int, error) {
		if c.retrain == nil {
			return 0, nil
		}
		return 0, c.retrain.PublishRetrain(ctx, sport)
	}))

	tally.settle(status)
	c.finish(ctx, span, status, now)
	return nil
}

// fetchAndWrite runs the fetch/normalize/write pipeline for one resource.
func (c *Controller) fetchAndWrite(ctx context.Context, req provider.Request, category models.Category, now time.Time, events []models.Event) (int, error) {
	payload, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return 0, err
	}

	docs, err := c.adapter.Normalize(req.Kind, payload,
		sports.NormalizeContext{Season: req.Season, Now: now, Events: events})
	if err != nil {
		return 0, err
	}

	return c.writer.Write(ctx, models.CollectionName(c.adapter.Sport(), category), docs)
}

func (c *Controller) unit(routine string, season int) isolate.Unit {
	return isolate.Unit{Sport: c.adapter.Sport(), Season: season, Routine: routine}
}

func (c *Controller) supportsResource(kind provider.ResourceKind) bool {
	_, _, err := c.adapter.ResourcePath(provider.Request{Kind: kind})
	return !errors.Is(err, provider.ErrUnsupportedResource)
}

func (c *Controller) hasCategory(category models.Category) bool {
	for _, step := range c.adapter.Plan() {
		if step.Category == category {
			return true
		}
	}
	return false
}

func (c *Controller) finish(ctx context.Context, span *isolate.Span, status *models.SyncStatus, now time.Time) {
	status.LastUpdate = now.UTC()

	if err := c.statuses.SaveSyncStatus(ctx, status); err != nil {
		log.Error().
			Err(err).
			Str("sport", string(status.Sport)).
			Str("cadence", string(status.Cadence)).
			Msg("Failed to save sync status")
	}

	span.End(string(status.Status))
}

// categoryForResource maps a pre-event resource onto the collection its
// documents belong to.
func categoryForResource(kind provider.ResourceKind) models.Category {
	switch kind {
	case provider.ResourceQualifying:
		return models.CategoryEvents
	case provider.ResourceOdds:
		return models.CategoryBetting
	default:
		return models.CategoryParticipants
	}
}

// tally folds per-unit outcomes into the routine's SyncStatus. A routine
// with any success is still "success"; all units failing makes it "error".
type tally struct {
	ok     int
	failed int
	status *models.SyncStatus
}

func newTally(status *models.SyncStatus) *tally {
	return &tally{status: status}
}

func (t *tally) record(outcome isolate.Outcome) {
	switch outcome.Status {
	case isolate.StatusOK:
		t.ok++
	case isolate.StatusFailed:
		t.failed++
		t.status.AddDetail(fmt.Sprintf("%s: %v", outcome.Unit.Routine, outcome.Err))
	}
}

func (t *tally) settle(status *models.SyncStatus) {
	if t.failed > 0 && t.ok == 0 {
		status.Status = models.SyncError
	}
}
