package models

import "time"

// Derived per-event documents. Each is 1:1 with an Event and is only
// created once the Event exists in the store. Records produced by the
// estimator instead of a real provider carry Estimated=true so downstream
// consumers can tell synthetic values from sourced ones.

// WeatherRecord holds atmospheric conditions for an outdoor event.
type WeatherRecord struct {
	EventID       string    `json:"eventId"`
	Sport         Sport     `json:"sport"`
	Season        int       `json:"season"`
	TemperatureC  float64   `json:"temperatureC"`
	WindSpeedKph  float64   `json:"windSpeedKph"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	Estimated     bool      `json:"estimated"`
	CollectedAt   time.Time `json:"collectedAt"`
}

// BettingLine holds market prices for an event plus the denormalized
// outcome for later accuracy scoring.
type BettingLine struct {
	EventID       string    `json:"eventId"`
	Sport         Sport     `json:"sport"`
	Season        int       `json:"season"`
	MoneylineHome int       `json:"moneylineHome"`
	MoneylineAway int       `json:"moneylineAway"`
	Spread        float64   `json:"spread"`
	Total         float64   `json:"total"`
	ActualResult  string    `json:"actualResult,omitempty"`
	Estimated     bool      `json:"estimated"`
	CollectedAt   time.Time `json:"collectedAt"`
}

// AdvancedMetrics holds derived per-event analytics.
type AdvancedMetrics struct {
	EventID         string    `json:"eventId"`
	Sport           Sport     `json:"sport"`
	Season          int       `json:"season"`
	Pace            float64   `json:"pace"`
	Efficiency      float64   `json:"efficiency"`
	Momentum        float64   `json:"momentum"`
	PredictedWinner string    `json:"predictedWinner,omitempty"`
	Confidence      float64   `json:"confidence,omitempty"`
	Estimated       bool      `json:"estimated"`
	CollectedAt     time.Time `json:"collectedAt"`
}
