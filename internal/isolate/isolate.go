// Package isolate wraps units of work in error capture so one bad
// year/category/event reports and skips instead of aborting the run.
package isolate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/metrics"
	"sportsedge/ingestion/internal/models"
)

// Status of one unit of work after execution
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Well-known skip reasons
const (
	ReasonOffSeason       = "off-season"
	ReasonNotGameDay      = "not-game-day"
	ReasonDependencyUnmet = "dependency-unmet"
)

// Unit identifies one unit of work for logging and exception reports
type Unit struct {
	Sport    models.Sport
	Season   int
	Category models.Category
	EventID  string
	Routine  string
}

func (u Unit) String() string {
	s := fmt.Sprintf("%s/%s", u.Sport, u.Category)
	if u.Routine != "" {
		s = fmt.Sprintf("%s/%s", u.Sport, u.Routine)
	}
	if u.Season > 0 {
		s = fmt.Sprintf("%s/%d", s, u.Season)
	}
	if u.EventID != "" {
		s = fmt.Sprintf("%s/%s", s, u.EventID)
	}
	return s
}

// Outcome is the result of a unit of work. Count carries the number of
// records the unit wrote, if it writes any.
type Outcome struct {
	Unit   Unit
	Status Status
	Reason string
	Count  int
	Err    error
}

// Runner executes units of work and converts panics and errors into
// reported, skippable outcomes.
type Runner struct {
	tracker Tracker
}

// NewRunner creates a runner reporting to the given tracker
func NewRunner(tracker Tracker) *Runner {
	if tracker == nil {
		tracker = NoopTracker{}
	}
	return &Runner{tracker: tracker}
}

// Run executes fn. On failure it logs, reports to the exception tracker,
// records metrics, and returns a failed outcome instead of propagating.
func (r *Runner) Run(ctx context.Context, unit Unit, fn func(ctx context.Context) (int, error)) Outcome {
	count, err := r.execute(ctx, fn)
	if err != nil {
		log.Error().
			Err(err).
			Str("unit", unit.String()).
			Msg("Unit of work failed, continuing")

		metrics.RecordIsolatedFailure(string(unit.Sport), string(unit.Category))
		r.tracker.Report(ctx, Report{
			Message:    err.Error(),
			Sport:      unit.Sport,
			Season:     unit.Season,
			Category:   unit.Category,
			EventID:    unit.EventID,
			Routine:    unit.Routine,
			OccurredAt: time.Now().UTC(),
		})

		return Outcome{Unit: unit, Status: StatusFailed, Err: err}
	}

	return Outcome{Unit: unit, Status: StatusOK, Count: count}
}

// Skip records a skipped unit with its reason
func (r *Runner) Skip(unit Unit, reason string) Outcome {
	log.Info().
		Str("unit", unit.String()).
		Str("reason", reason).
		Msg("Unit of work skipped")

	metrics.RecordSkippedUnit(string(unit.Sport), reason)
	return Outcome{Unit: unit, Status: StatusSkipped, Reason: reason}
}

func (r *Runner) execute(ctx context.Context, fn func(ctx context.Context) (int, error)) (count int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in unit of work: %v", rec)
		}
	}()
	return fn(ctx)
}

// Span times one full orchestrator or controller run. It is always ended
// regardless of how many sub-units failed, so duration-based monitoring
// sees every run.
type Span struct {
	sport   models.Sport
	name    string
	started time.Time
}

// StartSpan opens a span for a full run
func StartSpan(sport models.Sport, name string) *Span {
	log.Info().
		Str("sport", string(sport)).
		Str("span", name).
		Msg("Run started")

	return &Span{sport: sport, name: name, started: time.Now()}
}

// End closes the span with a terminal status
func (s *Span) End(status string) {
	duration := time.Since(s.started)
	metrics.RecordSync(string(s.sport), s.name, status, duration.Seconds())

	log.Info().
		Str("sport", string(s.sport)).
		Str("span", s.name).
		Str("status", status).
		Dur("duration", duration).
		Msg("Run complete")
}
