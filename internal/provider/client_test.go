package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsedge/ingestion/internal/models"
)

type staticResolver struct{}

func (staticResolver) ResourcePath(req Request) (string, url.Values, error) {
	switch req.Kind {
	case ResourceSchedule:
		params := url.Values{}
		params.Set("season", "2023")
		return "basketball/nba/schedule", params, nil
	default:
		return "", nil, ErrUnsupportedResource
	}
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(models.SportNBA, baseURL, "test-key", timeout, NewLimiter(time.Millisecond), staticResolver{})
}

func TestClient_FetchSuccess(t *testing.T) {
	var gotPath, gotAuth, gotSeason string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSeason = r.URL.Query().Get("season")
		w.Write([]byte(`{"events":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)

	body, err := client.Fetch(context.Background(), Request{Kind: ResourceSchedule, Season: 2023})
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(body))
	assert.Equal(t, "/basketball/nba/schedule", gotPath)
	assert.Equal(t, "test-key", gotAuth, "The API key should ride the Authorization header")
	assert.Equal(t, "2023", gotSeason)
}

func TestClient_FetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)

	_, err := client.Fetch(context.Background(), Request{Kind: ResourceSchedule, Season: 2023})
	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindHTTP, provErr.Kind)
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode)
}

func TestClient_FetchDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)

	_, err := client.Fetch(context.Background(), Request{Kind: ResourceSchedule, Season: 2023})
	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindDecode, provErr.Kind)
}

func TestClient_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20*time.Millisecond)

	_, err := client.Fetch(context.Background(), Request{Kind: ResourceSchedule, Season: 2023})
	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindTimeout, provErr.Kind)
}

func TestClient_FetchNetworkError(t *testing.T) {
	// A closed server makes the transport fail outright
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, 5*time.Second)

	_, err := client.Fetch(context.Background(), Request{Kind: ResourceSchedule, Season: 2023})
	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindNetwork, provErr.Kind)
}

func TestClient_UnsupportedResourceNeverCallsProvider(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)

	_, err := client.Fetch(context.Background(), Request{Kind: ResourceQualifying, Season: 2023})
	require.ErrorIs(t, err, ErrUnsupportedResource)
	assert.False(t, called, "Resolution failures must not reach the network")
}

func TestLimiter_EnforcesMinimumInterval(t *testing.T) {
	limiter := NewLimiter(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Throttle(ctx), "First call should pass immediately")

	start := time.Now()
	require.NoError(t, limiter.Throttle(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond,
		"Second call should wait out the interval")
}

func TestLimiter_RespectsContextCancellation(t *testing.T) {
	limiter := NewLimiter(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.NoError(t, limiter.Throttle(ctx))
	err := limiter.Throttle(ctx)
	assert.Error(t, err, "A cancelled context should abort the wait")
}
