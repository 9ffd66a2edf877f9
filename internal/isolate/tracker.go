package isolate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/models"
)

// Report is one structured exception sent to the external tracker.
type Report struct {
	Message    string          `json:"message"`
	Sport      models.Sport    `json:"sport"`
	Season     int             `json:"season,omitempty"`
	Category   models.Category `json:"category,omitempty"`
	EventID    string          `json:"eventId,omitempty"`
	Routine    string          `json:"routine,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Tracker receives structured exception reports. The production
// implementation posts to an external tracker; tests use a recorder.
type Tracker interface {
	Report(ctx context.Context, r Report)
}

// NoopTracker drops reports. Used when no tracker URL is configured.
type NoopTracker struct{}

func (NoopTracker) Report(ctx context.Context, r Report) {}

// WebhookTracker posts reports as JSON to an exception-tracker endpoint.
// Delivery is best effort: a tracker outage must never fail the run it is
// reporting on.
type WebhookTracker struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewWebhookTracker creates a tracker posting to the given URL
func NewWebhookTracker(url, token string) *WebhookTracker {
	return &WebhookTracker{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (t *WebhookTracker) Report(ctx context.Context, r Report) {
	body, err := json.Marshal(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal exception report")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create exception report request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to deliver exception report")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().
			Int("status", resp.StatusCode).
			Msg("Exception tracker rejected report")
	}
}
