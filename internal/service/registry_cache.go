package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"addrcore/internal/metrics"
	"addrcore/internal/model"
)

// QueryCache stores serialized registry responses
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRegistry serves repeated keywords from a cache.
// Cache failures are treated as misses; registry errors are never cached.
type CachedRegistry struct {
	next    Registry
	cache   QueryCache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewCachedRegistry wraps next with cache
func NewCachedRegistry(next Registry, cache QueryCache, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *CachedRegistry {
	return &CachedRegistry{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		log:     logger.With("component", "registry_cache"),
	}
}

func cacheKey(keyword string) string {
	return "registry:" + keyword
}

// Query implements Registry
func (r *CachedRegistry) Query(ctx context.Context, keyword string) (*model.RegistryResponse, error) {
	key := cacheKey(keyword)

	start := time.Now()
	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.WarnContext(ctx, "registry cache read failed", slog.String("keyword", keyword), slog.String("error", err.Error()))
	} else if ok {
		var cached model.RegistryResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			r.metrics.ObserveRegistryLatency("cached", time.Since(start))
			return &cached, nil
		}
		r.log.WarnContext(ctx, "registry cache entry corrupt", slog.String("keyword", keyword))
	}

	resp, err := r.next.Query(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(resp); err == nil {
		if err := r.cache.Set(ctx, key, encoded, r.ttl); err != nil {
			r.log.WarnContext(ctx, "registry cache write failed", slog.String("keyword", keyword), slog.String("error", err.Error()))
		}
	}
	return resp, nil
}
