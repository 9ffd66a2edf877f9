package provider

import (
	"context"
	"fmt"
	"time"

	"sportsedge/ingestion/internal/models"
)

// PayloadCache stores raw provider payloads for a short TTL. A miss returns
// nil; storage failures are the implementation's problem, never the caller's.
type PayloadCache interface {
	GetPayload(ctx context.Context, key string) []byte
	SetPayload(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

// CachedFetcher decorates a Fetcher with a short-TTL payload cache so
// repeated requests for the same resource inside one sync window skip the
// provider. Live scoreboards bypass the cache: stale scores are worse than
// an extra call.
type CachedFetcher struct {
	fetcher Fetcher
	cache   PayloadCache
	sport   models.Sport
	ttl     time.Duration
}

// NewCachedFetcher wraps fetcher with the given cache.
func NewCachedFetcher(fetcher Fetcher, cache PayloadCache, sport models.Sport, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   cache,
		sport:   sport,
		ttl:     ttl,
	}
}

// Fetch serves from the cache when it can, otherwise fetches and stores.
// Errors are never cached.
func (c *CachedFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Kind == ResourceLiveScoreboard {
		return c.fetcher.Fetch(ctx, req)
	}

	key := payloadKey(c.sport, req)
	if payload := c.cache.GetPayload(ctx, key); payload != nil {
		return payload, nil
	}

	payload, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.SetPayload(ctx, key, payload, c.ttl)
	return payload, nil
}

// payloadKey identifies one resource fetch; every request field that changes
// the response is part of the key.
func payloadKey(sport models.Sport, req Request) string {
	key := fmt.Sprintf("sportsedge:payload:%s:%s:%d", sport, req.Kind, req.Season)
	if req.Round > 0 {
		key = fmt.Sprintf("%s:r%d", key, req.Round)
	}
	if !req.Date.IsZero() {
		key = fmt.Sprintf("%s:%s", key, req.Date.Format("20060102"))
	}
	return key
}
