package models

import "time"

// EventStatus tracks the lifecycle of a game/race/fight
type EventStatus string

const (
	StatusScheduled  EventStatus = "scheduled"
	StatusInProgress EventStatus = "in-progress"
	StatusCompleted  EventStatus = "completed"
	StatusPostponed  EventStatus = "postponed"
)

// Lifecycle flag values. Pre-event routines fire on the transition
// pending -> announced, never on the absolute value.
const (
	FlagPending   = "pending"
	FlagAnnounced = "announced"
)

// EventParticipant is one side of an event. Team sports use HomeAway
// ("home"/"away"); ranked sports (F1, MMA) use Rank and leave HomeAway empty.
type EventParticipant struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	HomeAway      string `json:"homeAway,omitempty"`
	Rank          int    `json:"rank,omitempty"`
	Score         int    `json:"score"`
}

// Venue is where an event takes place. Indoor gates weather collection.
type Venue struct {
	Name   string `json:"name"`
	City   string `json:"city,omitempty"`
	Indoor bool   `json:"indoor"`
}

// Event is the canonical record for a game, race or fight card.
// EventID is unique within a sport and is the join key for the derived
// WeatherRecord/BettingLine/AdvancedMetrics documents.
type Event struct {
	EventID        string             `json:"eventId"`
	Sport          Sport              `json:"sport"`
	Season         int                `json:"season"`
	Round          int                `json:"round,omitempty"`
	Date           time.Time          `json:"date"`
	Participants   []EventParticipant `json:"participants"`
	Venue          Venue              `json:"venue"`
	Status         EventStatus        `json:"status"`
	LifecycleFlags map[string]string  `json:"lifecycleFlags,omitempty"`
	CollectedAt    time.Time          `json:"collectedAt"`
}

// IsLive returns true if the event is currently in progress
func (e *Event) IsLive() bool {
	return e.Status == StatusInProgress
}

// IsCompleted returns true if the event has finished
func (e *Event) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// Winner returns the participant id with the highest score, or "" when the
// event has no participants.
func (e *Event) Winner() string {
	best := ""
	bestScore := -1
	for _, p := range e.Participants {
		if p.Score > bestScore {
			best = p.ParticipantID
			bestScore = p.Score
		}
	}
	return best
}

// Flag returns the value of a lifecycle flag, defaulting to pending
func (e *Event) Flag(name string) string {
	if e.LifecycleFlags == nil {
		return FlagPending
	}
	if v, ok := e.LifecycleFlags[name]; ok {
		return v
	}
	return FlagPending
}
