package models

import "time"

// CareerStats holds aggregate counters for a participant. Values the
// provider omits stay zero rather than failing normalization.
type CareerStats struct {
	Appearances int     `json:"appearances"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Points      float64 `json:"points"`
	Rating      float64 `json:"rating,omitempty"`
}

// Participant is the canonical record for a player, driver or fighter.
type Participant struct {
	ParticipantID string      `json:"participantId"`
	Sport         Sport       `json:"sport"`
	Season        int         `json:"season"`
	TeamID        *string     `json:"teamId"`
	Name          string      `json:"name"`
	Position      string      `json:"position,omitempty"`
	Country       string      `json:"country,omitempty"`
	BirthDate     string      `json:"birthDate,omitempty"`
	InjuryStatus  string      `json:"injuryStatus,omitempty"`
	CareerStats   CareerStats `json:"careerStats"`
	CollectedAt   time.Time   `json:"collectedAt"`
}

// Team is the canonical record for a team or constructor.
type Team struct {
	TeamID      string    `json:"teamId"`
	Sport       Sport     `json:"sport"`
	Season      int       `json:"season"`
	Name        string    `json:"name"`
	Code        string    `json:"code,omitempty"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws,omitempty"`
	Points      float64   `json:"points"`
	Ranking     int       `json:"ranking,omitempty"`
	RosterIDs   []string  `json:"rosterIds,omitempty"`
	CollectedAt time.Time `json:"collectedAt"`
}
