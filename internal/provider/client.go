package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/metrics"
	"sportsedge/ingestion/internal/models"
)

// ResourceKind names a provider resource. Which kinds a sport supports is
// decided by its path resolver.
type ResourceKind string

const (
	ResourceSchedule       ResourceKind = "schedule"
	ResourceRoster         ResourceKind = "roster"
	ResourceStandings      ResourceKind = "standings"
	ResourceLiveScoreboard ResourceKind = "liveScoreboard"
	ResourceResults        ResourceKind = "results"
	ResourceQualifying     ResourceKind = "qualifying"
	ResourceCircuits       ResourceKind = "circuits"
	ResourceInjuries       ResourceKind = "injuries"
	ResourceOdds           ResourceKind = "odds"
)

// Request identifies one resource fetch.
type Request struct {
	Kind   ResourceKind
	Season int
	Round  int
	Date   time.Time
}

// Fetcher is the seam the orchestrator and controllers depend on, so tests
// can substitute a scripted fake.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// PathResolver maps a request onto the provider's URL space. Each sport
// adapter supplies one.
type PathResolver interface {
	ResourcePath(req Request) (string, url.Values, error)
}

// Client calls one sport's statistics API. It performs no retries: a
// failed call is an isolated unit and the idempotent re-run is the
// recovery mechanism.
type Client struct {
	sport      models.Sport
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *Limiter
	paths      PathResolver
}

// NewClient creates a provider client for one sport.
func NewClient(sport models.Sport, baseURL, apiKey string, timeout time.Duration, limiter *Limiter, paths PathResolver) *Client {
	return &Client{
		sport:   sport,
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: limiter,
		paths:   paths,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch retrieves one raw payload. HTTP rejections, transport failures,
// timeouts and malformed bodies come back as distinct *Error kinds.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	path, params, err := c.paths.ResourcePath(req)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Throttle(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", c.apiKey)
	}
	if len(params) > 0 {
		httpReq.URL.RawQuery = params.Encode()
	}

	log.Debug().
		Str("sport", string(c.sport)).
		Str("kind", string(req.Kind)).
		Int("season", req.Season).
		Str("url", endpoint).
		Msg("Making provider request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := KindNetwork
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() || errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		metrics.RecordProviderCall(string(c.sport), string(req.Kind), string(kind), time.Since(start).Seconds())
		return nil, &Error{Kind: kind, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordProviderCall(string(c.sport), string(req.Kind), string(KindNetwork), time.Since(start).Seconds())
		return nil, &Error{Kind: KindNetwork, Endpoint: path, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderCall(string(c.sport), string(req.Kind), string(KindHTTP), time.Since(start).Seconds())
		return nil, &Error{Kind: KindHTTP, StatusCode: resp.StatusCode, Endpoint: path}
	}

	if !json.Valid(body) {
		metrics.RecordProviderCall(string(c.sport), string(req.Kind), string(KindDecode), time.Since(start).Seconds())
		return nil, &Error{Kind: KindDecode, Endpoint: path, Err: fmt.Errorf("response is not valid JSON")}
	}

	metrics.RecordProviderCall(string(c.sport), string(req.Kind), "ok", time.Since(start).Seconds())
	log.Debug().
		Str("sport", string(c.sport)).
		Str("kind", string(req.Kind)).
		Int("size", len(body)).
		Msg("Provider request successful")

	return body, nil
}
