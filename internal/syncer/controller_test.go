package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsedge/ingestion/internal/estimator"
	"sportsedge/ingestion/internal/isolate"
	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
	"sportsedge/ingestion/internal/sports"
)

type countingFetcher struct {
	payloads map[provider.ResourceKind]string
	errs     map[provider.ResourceKind]error
	calls    []provider.Request
}

func (f *countingFetcher) Fetch(ctx context.Context, req provider.Request) ([]byte, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.errs[req.Kind]; ok {
		return nil, err
	}
	if payload, ok := f.payloads[req.Kind]; ok {
		return []byte(payload), nil
	}
	return nil, fmt.Errorf("no script for %s", req.Kind)
}

func (f *countingFetcher) callsFor(kind provider.ResourceKind) int {
	n := 0
	for _, call := range f.calls {
		if call.Kind == kind {
			n++
		}
	}
	return n
}

// fakeStore implements the writer and reader seams over plain maps.
type fakeStore struct {
	events  map[string]models.Event
	written map[string][]models.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:  make(map[string]models.Event),
		written: make(map[string][]models.Document),
	}
}

func (s *fakeStore) Write(ctx context.Context, collection string, docs []models.Document) (int, error) {
	s.written[collection] = append(s.written[collection], docs...)
	if strings.HasSuffix(collection, "_events") {
		for _, doc := range docs {
			if event, ok := doc.Body.(models.Event); ok {
				s.events[event.EventID] = event
			}
		}
	}
	return len(docs), nil
}

func (s *fakeStore) GetEvent(ctx context.Context, sport models.Sport, eventID string) (*models.Event, error) {
	event, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %s", eventID)
	}
	return &event, nil
}

func (s *fakeStore) EventsInWindow(ctx context.Context, sport models.Sport, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	for _, event := range s.events {
		if !event.Date.Before(from) && event.Date.Before(to) {
			events = append(events, event)
		}
	}
	return events, nil
}

type statusRecorder struct {
	saved []*models.SyncStatus
}

func (r *statusRecorder) SaveSyncStatus(ctx context.Context, status *models.SyncStatus) error {
	r.saved = append(r.saved, status)
	return nil
}

func (r *statusRecorder) last(cadence models.Cadence) *models.SyncStatus {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].Cadence == cadence {
			return r.saved[i]
		}
	}
	return nil
}

type retrainRecorder struct {
	published []models.Sport
}

func (r *retrainRecorder) PublishRetrain(ctx context.Context, sport models.Sport) error {
	r.published = append(r.published, sport)
	return nil
}

func emptyNFLPayloads() map[provider.ResourceKind]string {
	return map[provider.ResourceKind]string{
		provider.ResourceSchedule:       `{"events":[]}`,
		provider.ResourceResults:        `{"events":[]}`,
		provider.ResourceLiveScoreboard: `{"events":[]}`,
		provider.ResourceRoster:         `{"athletes":[]}`,
		provider.ResourceStandings:      `{"standings":[]}`,
		provider.ResourceInjuries:       `{"injuries":[]}`,
		provider.ResourceOdds:           `{"items":[]}`,
	}
}

func newTestController(fetcher *countingFetcher, store *fakeStore, statuses *statusRecorder, retrain RetrainPublisher, now time.Time) *Controller {
	controller := NewController(
		sports.NewNFL(),
		fetcher,
		store,
		store,
		statuses,
		estimator.NewSynthetic(),
		isolate.NewRunner(nil),
		retrain,
	)
	controller.clock = func() time.Time { return now }
	return controller
}

func TestController_DailyOffSeasonMakesNoProviderCalls(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	statuses := &statusRecorder{}

	// July is outside the NFL September-February window
	offSeason := time.Date(2023, 7, 15, 10, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, newFakeStore(), statuses, nil, offSeason)

	require.NoError(t, controller.RunDaily(context.Background()))

	assert.Empty(t, fetcher.calls, "Off-season daily sync must not touch the provider")

	status := statuses.last(models.CadenceDaily)
	require.NotNil(t, status, "A skipped run still records its status")
	assert.Equal(t, models.SyncSkipped, status.Status)
	assert.Contains(t, status.Details, isolate.ReasonOffSeason)
}

func TestController_DailyRunsEveryRoutine(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	statuses := &statusRecorder{}

	// A Tuesday mid-season
	inSeason := time.Date(2023, 10, 10, 7, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, newFakeStore(), statuses, nil, inSeason)

	require.NoError(t, controller.RunDaily(context.Background()))

	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceSchedule))
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceResults))
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceRoster))
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceInjuries))
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceStandings))

	// Results backfill targets yesterday
	for _, call := range fetcher.calls {
		if call.Kind == provider.ResourceResults {
			assert.Equal(t, inSeason.AddDate(0, 0, -1), call.Date)
		}
	}

	status := statuses.last(models.CadenceDaily)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSuccess, status.Status)
}

func TestController_DailyRosterFailureSkipsPredictions(t *testing.T) {
	fetcher := &countingFetcher{
		payloads: emptyNFLPayloads(),
		errs:     map[provider.ResourceKind]error{provider.ResourceRoster: errors.New("provider returned 503")},
	}
	statuses := &statusRecorder{}

	inSeason := time.Date(2023, 10, 10, 7, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, newFakeStore(), statuses, nil, inSeason)

	require.NoError(t, controller.RunDaily(context.Background()))

	status := statuses.last(models.CadenceDaily)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSuccess, status.Status, "Partial success is still success")

	var sawRosterFailure, sawPredictionsSkip bool
	for _, detail := range status.Details {
		if strings.Contains(detail, "roster") {
			sawRosterFailure = true
		}
		if strings.Contains(detail, "predictions") && strings.Contains(detail, isolate.ReasonDependencyUnmet) {
			sawPredictionsSkip = true
		}
	}
	assert.True(t, sawRosterFailure, "The roster failure should be in the details")
	assert.True(t, sawPredictionsSkip, "Predictions must skip when rosters are stale")
}

func TestController_LiveSkipsOffSeasonAndNonGameDays(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	statuses := &statusRecorder{}

	offSeason := time.Date(2023, 7, 16, 13, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, newFakeStore(), statuses, nil, offSeason)
	require.NoError(t, controller.RunLive(context.Background()))
	assert.Empty(t, fetcher.calls, "Off-season live sync must not touch the provider")

	// Wednesday October 4th 2023: in season but not an NFL game day
	wednesday := time.Date(2023, 10, 4, 20, 0, 0, 0, time.UTC)
	controller = newTestController(fetcher, newFakeStore(), statuses, nil, wednesday)
	require.NoError(t, controller.RunLive(context.Background()))
	assert.Empty(t, fetcher.calls, "Non-game-day live sync must not touch the provider")

	status := statuses.last(models.CadenceLive)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSkipped, status.Status)
	assert.Contains(t, status.Details, isolate.ReasonNotGameDay)
}

func TestController_LivePollsOnGameDay(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	fetcher.payloads[provider.ResourceLiveScoreboard] = `{"events":[
		{"id":"nfl-live-1","date":"2023-10-08T17:00Z","season":{"year":2023},
		 "status":{"type":{"state":"in"}},
		 "competitions":[{"venue":{"fullName":"Lambeau Field","address":{"city":"Green Bay"}},
		   "competitors":[
		     {"homeAway":"home","score":"14","team":{"id":"gb","displayName":"Green Bay"}},
		     {"homeAway":"away","score":"10","team":{"id":"det","displayName":"Detroit"}}]}]}
	]}`
	statuses := &statusRecorder{}
	store := newFakeStore()

	// Sunday October 8th 2023
	sunday := time.Date(2023, 10, 8, 18, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, store, statuses, nil, sunday)

	require.NoError(t, controller.RunLive(context.Background()))

	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceLiveScoreboard))
	require.Contains(t, store.events, "nfl-live-1", "The live event should be upserted")
	assert.Equal(t, models.StatusInProgress, store.events["nfl-live-1"].Status)
	assert.Len(t, store.written["nfl_advanced"], 1, "In-progress events get their metrics refreshed")

	status := statuses.last(models.CadenceLive)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSuccess, status.Status)
}

func TestController_PreEventFiresOnlyOnEdge(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	statuses := &statusRecorder{}
	store := newFakeStore()

	now := time.Date(2023, 10, 8, 11, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, store, statuses, nil, now)

	pending := models.Event{
		EventID: "nfl-edge-1",
		Sport:   models.SportNFL,
		Season:  2023,
		Date:    now.Add(90 * time.Minute),
		Status:  models.StatusScheduled,
		LifecycleFlags: map[string]string{
			"inactives": models.FlagPending,
		},
	}
	announced := pending
	announced.LifecycleFlags = map[string]string{"inactives": models.FlagAnnounced}

	// pending -> announced fires the routine exactly once
	controller.HandleEventUpdate(context.Background(), &pending, announced)
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceInjuries), "The announcement resource should be refreshed")
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceOdds), "Market prices should be refreshed")
	assert.Len(t, store.written["nfl_advanced"], 1, "Predictions should be refreshed for the event")

	status := statuses.last(models.CadencePreEvent)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSuccess, status.Status)
	assert.Contains(t, status.Details, "event: nfl-edge-1")

	// announced -> announced is not an edge
	controller.HandleEventUpdate(context.Background(), &announced, announced)
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceInjuries), "A repeated announced state must not re-fire")

	// pending -> pending is not an edge either
	controller.HandleEventUpdate(context.Background(), &pending, pending)
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceInjuries))
}

func TestController_PreEventFiresForUnseenAnnouncedEvent(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	store := newFakeStore()

	now := time.Date(2023, 10, 8, 11, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, store, &statusRecorder{}, nil, now)

	announced := models.Event{
		EventID:        "nfl-new-1",
		Sport:          models.SportNFL,
		Season:         2023,
		Status:         models.StatusScheduled,
		LifecycleFlags: map[string]string{"inactives": models.FlagAnnounced},
	}

	// No stored copy means the flag was pending as far as we knew
	controller.HandleEventUpdate(context.Background(), nil, announced)
	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceInjuries))
}

func TestController_WeeklyPublishesRetrain(t *testing.T) {
	fetcher := &countingFetcher{payloads: emptyNFLPayloads()}
	statuses := &statusRecorder{}
	retrain := &retrainRecorder{}

	inSeason := time.Date(2023, 10, 10, 5, 0, 0, 0, time.UTC)
	controller := newTestController(fetcher, newFakeStore(), statuses, retrain, inSeason)

	require.NoError(t, controller.RunWeekly(context.Background()))

	assert.Equal(t, 1, fetcher.callsFor(provider.ResourceStandings))
	require.Len(t, retrain.published, 1, "Weekly maintenance should signal the training pipeline")
	assert.Equal(t, models.SportNFL, retrain.published[0])

	status := statuses.last(models.CadenceWeekly)
	require.NotNil(t, status)
	assert.Equal(t, models.SyncSuccess, status.Status)
}
