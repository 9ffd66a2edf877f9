package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsedge/ingestion/internal/estimator"
	"sportsedge/ingestion/internal/isolate"
	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
	"sportsedge/ingestion/internal/sports"
)

// scriptedFetcher serves canned payloads. Season-specific scripts win over
// the per-resource fallback.
type scriptedFetcher struct {
	payloads map[string]string
	errs     map[string]error
	calls    []provider.Request
}

func fetchKey(kind provider.ResourceKind, season int) string {
	return fmt.Sprintf("%s/%d", kind, season)
}

func (f *scriptedFetcher) Fetch(ctx context.Context, req provider.Request) ([]byte, error) {
	f.calls = append(f.calls, req)

	if err, ok := f.errs[fetchKey(req.Kind, req.Season)]; ok {
		return nil, err
	}
	if payload, ok := f.payloads[fetchKey(req.Kind, req.Season)]; ok {
		return []byte(payload), nil
	}
	if payload, ok := f.payloads[string(req.Kind)]; ok {
		return []byte(payload), nil
	}
	return nil, fmt.Errorf("no script for %s season %d", req.Kind, req.Season)
}

// memoryStore is an in-memory document store implementing both the writer
// and reader seams, so tests see exactly what the orchestrator committed.
type memoryStore struct {
	collections map[string]map[string]models.Document
	writeCalls  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{collections: make(map[string]map[string]models.Document)}
}

func (m *memoryStore) Write(ctx context.Context, collection string, docs []models.Document) (int, error) {
	m.writeCalls++
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]models.Document)
	}
	for _, doc := range docs {
		m.collections[collection][doc.ID] = doc
	}
	return len(docs), nil
}

func (m *memoryStore) eventsWhere(sport models.Sport, season int, outdoorOnly bool) []models.Event {
	var events []models.Event
	for _, doc := range m.collections[models.CollectionName(sport, models.CategoryEvents)] {
		event, ok := doc.Body.(models.Event)
		if !ok || event.Season != season {
			continue
		}
		if outdoorOnly && event.Venue.Indoor {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].EventID < events[j].EventID })
	return events
}

func (m *memoryStore) EventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error) {
	return m.eventsWhere(sport, season, false), nil
}

func (m *memoryStore) OutdoorEventsBySeason(ctx context.Context, sport models.Sport, season int) ([]models.Event, error) {
	return m.eventsWhere(sport, season, true), nil
}

func (m *memoryStore) count(collection string) int {
	return len(m.collections[collection])
}

type summaryRecorder struct {
	saved *models.CollectionSummary
}

func (s *summaryRecorder) SaveCollectionSummary(ctx context.Context, summary *models.CollectionSummary) error {
	s.saved = summary
	return nil
}

func nflScoreboard(season int) string {
	return fmt.Sprintf(`{"events":[
		{"id":"nfl-%d-1","date":"%d-09-11T17:00Z","season":{"year":%d},"week":{"number":1},
		 "status":{"type":{"state":"post"}},
		 "competitions":[{"venue":{"fullName":"Lambeau Field","address":{"city":"Green Bay"}},
		   "competitors":[
		     {"homeAway":"home","score":"27","team":{"id":"gb","displayName":"Green Bay"}},
		     {"homeAway":"away","score":"20","team":{"id":"chi","displayName":"Chicago"}}]}]},
		{"id":"nfl-%d-2","date":"%d-09-12T00:15Z","season":{"year":%d},"week":{"number":1},
		 "status":{"type":{"state":"post"}},
		 "competitions":[{"venue":{"fullName":"Mercedes-Benz Stadium","indoor":true,"address":{"city":"Atlanta"}},
		   "competitors":[
		     {"homeAway":"home","score":"17","team":{"id":"atl","displayName":"Atlanta"}},
		     {"homeAway":"away","score":"24","team":{"id":"no","displayName":"New Orleans"}}]}]}
	]}`, season, season, season, season, season, season)
}

func nflOdds(season int) string {
	return fmt.Sprintf(`{"items":[
		{"eventId":"nfl-%d-1","moneylineHome":-150,"moneylineAway":130,"spread":-3.5,"overUnder":44.5},
		{"eventId":"unknown-event","moneylineHome":100,"moneylineAway":-120,"spread":1.0,"overUnder":40.0}
	]}`, season)
}

const nflRoster = `{"athletes":[
	{"id":"qb-1","fullName":"Test Quarterback","position":{"abbreviation":"QB"},"team":{"id":"gb"},
	 "statistics":{"gamesPlayed":16,"points":320}}
]}`

const nflStandings = `{"standings":[
	{"team":{"id":"gb","displayName":"Green Bay","abbreviation":"GB"},
	 "stats":[{"name":"wins","value":13},{"name":"losses","value":4}]}
]}`

func newTestOrchestrator(fetcher *scriptedFetcher, store *memoryStore, summaries *summaryRecorder) *Orchestrator {
	return NewOrchestrator(
		sports.NewNFL(),
		fetcher,
		store,
		store,
		summaries,
		estimator.NewSynthetic(),
		isolate.NewRunner(nil),
	)
}

func scriptForSeasons(seasons ...int) *scriptedFetcher {
	f := &scriptedFetcher{
		payloads: map[string]string{
			string(provider.ResourceRoster):    nflRoster,
			string(provider.ResourceStandings): nflStandings,
		},
		errs: map[string]error{},
	}
	for _, season := range seasons {
		f.payloads[fetchKey(provider.ResourceSchedule, season)] = nflScoreboard(season)
		f.payloads[fetchKey(provider.ResourceOdds, season)] = nflOdds(season)
	}
	return f
}

func TestOrchestrator_CollectSingleYear(t *testing.T) {
	fetcher := scriptForSeasons(2022)
	store := newMemoryStore()
	summaries := &summaryRecorder{}

	summary, err := newTestOrchestrator(fetcher, store, summaries).CollectHistorical(context.Background(), 2022, 2022)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.YearsCollected, "The single year should count as collected")
	assert.Empty(t, summary.Failures, "Nothing should fail")

	assert.Equal(t, 2, summary.Totals[models.CategoryEvents])
	assert.Equal(t, 1, summary.Totals[models.CategoryParticipants])
	assert.Equal(t, 1, summary.Totals[models.CategoryTeams])
	assert.Equal(t, 1, summary.Totals[models.CategoryWeather], "Only the outdoor event gets weather")
	assert.Equal(t, 1, summary.Totals[models.CategoryBetting], "The unknown odds item is dropped")
	assert.Equal(t, 2, summary.Totals[models.CategoryAdvanced])

	require.NotNil(t, summaries.saved, "The summary should be persisted")
	assert.Equal(t, 2022, summaries.saved.StartYear)

	// The odds item joined onto the completed home win
	bettingDoc := store.collections["nfl_betting"]["nfl-2022-1"]
	line, ok := bettingDoc.Body.(models.BettingLine)
	require.True(t, ok, "Betting collection should hold BettingLine documents")
	assert.Equal(t, "gb", line.ActualResult, "Completed events carry the actual winner")
	assert.False(t, line.Estimated, "Feed-sourced lines are not estimated")
}

func TestOrchestrator_YearFailureIsIsolated(t *testing.T) {
	fetcher := scriptForSeasons(2018, 2019, 2020, 2021, 2022)
	fetcher.errs[fetchKey(provider.ResourceSchedule, 2020)] = errors.New("provider returned 502")
	delete(fetcher.payloads, fetchKey(provider.ResourceSchedule, 2020))

	store := newMemoryStore()
	summaries := &summaryRecorder{}

	summary, err := newTestOrchestrator(fetcher, store, summaries).CollectHistorical(context.Background(), 2018, 2022)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.YearsCollected, "The broken year should not count")
	assert.Equal(t, 8, summary.Totals[models.CategoryEvents], "The other four years still land")

	// 2020: one failed category plus three dependent skips
	require.Len(t, summary.Failures, 4)
	assert.Contains(t, summary.Failures[0], "2020/events")
	assert.Contains(t, summary.Failures[1], "2020/weather")
	assert.Contains(t, summary.Failures[1], "dependency-unmet")
	assert.Contains(t, summary.Failures[2], "2020/betting")
	assert.Contains(t, summary.Failures[3], "2020/advanced")

	// Roster and standings do not depend on events, so 2020 still ran them
	assert.Equal(t, 5, summary.Totals[models.CategoryParticipants])
	assert.Equal(t, 5, summary.Totals[models.CategoryTeams])
}

func TestOrchestrator_DependentCategoriesNeverOrphan(t *testing.T) {
	fetcher := scriptForSeasons(2022)
	store := newMemoryStore()

	_, err := newTestOrchestrator(fetcher, store, &summaryRecorder{}).CollectHistorical(context.Background(), 2022, 2022)
	require.NoError(t, err)

	eventIDs := store.collections["nfl_events"]
	for _, collection := range []string{"nfl_weather", "nfl_betting", "nfl_advanced"} {
		for id := range store.collections[collection] {
			_, exists := eventIDs[id]
			assert.True(t, exists, "%s document %s should reference a collected event", collection, id)
		}
	}
}

func TestOrchestrator_RerunIsIdempotent(t *testing.T) {
	fetcher := scriptForSeasons(2022)
	store := newMemoryStore()
	orchestrator := newTestOrchestrator(fetcher, store, &summaryRecorder{})

	first, err := orchestrator.CollectHistorical(context.Background(), 2022, 2022)
	require.NoError(t, err)

	countsAfterFirst := map[string]int{}
	for collection := range store.collections {
		countsAfterFirst[collection] = store.count(collection)
	}

	second, err := orchestrator.CollectHistorical(context.Background(), 2022, 2022)
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals, "A re-run should write the same totals")
	for collection, count := range countsAfterFirst {
		assert.Equal(t, count, store.count(collection), "Re-running should not grow %s", collection)
	}
}

func TestOrchestrator_CancelledContextStopsRun(t *testing.T) {
	fetcher := scriptForSeasons(2022)
	store := newMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestOrchestrator(fetcher, store, &summaryRecorder{}).CollectHistorical(ctx, 2018, 2022)
	assert.Error(t, err, "A cancelled context should surface")
	assert.Zero(t, summary.YearsCollected)
	require.NotEmpty(t, summary.Failures)
	assert.Contains(t, summary.Failures[0], "cancelled")
}
