package models

import "time"

// SyncOutcome is the terminal status of a sync routine or backfill run.
// Partial success is still "success"; skips carry their reason in Details.
type SyncOutcome string

const (
	SyncSuccess SyncOutcome = "success"
	SyncError   SyncOutcome = "error"
	SyncSkipped SyncOutcome = "skipped"
)

// Cadence names a scheduled sync routine type.
type Cadence string

const (
	CadenceDaily    Cadence = "daily"
	CadenceLive     Cadence = "live"
	CadenceWeekly   Cadence = "weekly"
	CadencePreEvent Cadence = "pre-event"
	CadenceBackfill Cadence = "backfill"
)

// CollectionSummary is the singleton per-sport summary of the last full
// historical backfill. Overwritten on every run, never appended.
type CollectionSummary struct {
	Sport          Sport            `json:"sport"`
	Totals         map[Category]int `json:"totals"`
	YearsCollected int              `json:"yearsCollected"`
	StartYear      int              `json:"startYear"`
	EndYear        int              `json:"endYear"`
	Failures       []string         `json:"failures,omitempty"`
	CompletedAt    time.Time        `json:"completedAt"`
}

// NewCollectionSummary initializes a summary with zeroed category totals
func NewCollectionSummary(sport Sport, startYear, endYear int) *CollectionSummary {
	return &CollectionSummary{
		Sport:     sport,
		StartYear: startYear,
		EndYear:   endYear,
		Totals: map[Category]int{
			CategoryEvents:       0,
			CategoryParticipants: 0,
			CategoryTeams:        0,
			CategoryWeather:      0,
			CategoryBetting:      0,
			CategoryAdvanced:     0,
		},
	}
}

// SyncStatus is the singleton per sport+cadence last-run record consumed
// by operational monitoring. Overwritten on every run.
type SyncStatus struct {
	Sport      Sport       `json:"sport"`
	Cadence    Cadence     `json:"cadence"`
	Status     SyncOutcome `json:"status"`
	LastUpdate time.Time   `json:"lastUpdate"`
	Details    []string    `json:"details,omitempty"`
}

// AddDetail appends a free-form diagnostic line
func (s *SyncStatus) AddDetail(detail string) {
	s.Details = append(s.Details, detail)
}
