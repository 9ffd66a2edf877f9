// Package sports holds the per-league adapters. The collection engine and
// sync controllers are sport-agnostic; everything league-specific (resource
// paths, payload shapes, season calendar, cadences, lifecycle flags) lives
// behind the Adapter interface.
package sports

import (
	"fmt"
	"net/url"
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// SeasonWindow is a sport's in-season month range, inclusive. Windows may
// wrap the year boundary (e.g. NBA October through June).
type SeasonWindow struct {
	Start time.Month
	End   time.Month
}

// InSeason reports whether t falls inside the window
func (w SeasonWindow) InSeason(t time.Time) bool {
	m := t.Month()
	if w.Start <= w.End {
		return m >= w.Start && m <= w.End
	}
	return m >= w.Start || m <= w.End
}

// SeasonYear labels the season containing t. Wrapping seasons are labeled
// by their starting year (January of an NBA season belongs to the prior
// year's season).
func (w SeasonWindow) SeasonYear(t time.Time) int {
	if w.Start > w.End && t.Month() <= w.End {
		return t.Year() - 1
	}
	return t.Year()
}

// CadenceConfig drives the scheduled sync controller for one sport.
type CadenceConfig struct {
	DailyCron    string
	WeeklyCron   string
	Timezone     string
	LiveInterval time.Duration
	// GameDays restricts live polling to the sport's game-day calendar.
	// Empty means any day during the season.
	GameDays []time.Weekday
}

// IsGameDay reports whether t is on the sport's game-day calendar
func (c CadenceConfig) IsGameDay(t time.Time) bool {
	if len(c.GameDays) == 0 {
		return true
	}
	for _, d := range c.GameDays {
		if t.Weekday() == d {
			return true
		}
	}
	return false
}

// CategoryPlan is one step of a sport's backfill, in dependency order.
// Estimated categories are produced by the estimator instead of a provider
// resource.
type CategoryPlan struct {
	Category        models.Category
	Resource        provider.ResourceKind
	DependsOnEvents bool
	Estimated       bool
}

// NormalizeContext carries the read-side inputs a normalizer may need.
// Dependent categories receive the year's already-written events so they
// never re-derive identifiers.
type NormalizeContext struct {
	Season int
	Now    time.Time
	Events []models.Event
}

// Adapter is the capability set one sport supplies to the generic engine.
type Adapter interface {
	provider.PathResolver

	Sport() models.Sport
	DisplayName() string

	// Normalize maps a raw payload into canonical documents. Pure: no
	// I/O, defensive defaulting for missing optional fields.
	Normalize(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error)

	// Plan returns the backfill categories in dependency order.
	Plan() []CategoryPlan

	SeasonWindow() SeasonWindow
	Cadence() CadenceConfig

	// LifecycleFlag names the event field whose pending->announced
	// transition triggers the pre-event routine.
	LifecycleFlag() string

	// PreEventResource is fetched when the pre-event routine fires, to
	// refresh the data the lifecycle transition published.
	PreEventResource() provider.ResourceKind
}

// NormalizationError marks a malformed or unexpected payload shape. The
// unit is skipped and the offending payload referenced in the report.
type NormalizationError struct {
	Sport models.Sport
	Kind  provider.ResourceKind
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed for %s/%s: %v", e.Sport, e.Kind, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// NewRegistry constructs every supported sport adapter keyed by sport.
func NewRegistry() map[models.Sport]Adapter {
	adapters := []Adapter{
		NewNBA(),
		NewNFL(),
		NewSoccer(),
		NewF1(),
		NewMMA(),
	}

	registry := make(map[models.Sport]Adapter, len(adapters))
	for _, a := range adapters {
		registry[a.Sport()] = a
	}
	return registry
}

func seasonParams(season int) url.Values {
	params := url.Values{}
	params.Set("season", fmt.Sprintf("%d", season))
	return params
}
