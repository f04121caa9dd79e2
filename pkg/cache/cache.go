package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"playerEngagement/pkg/logger"
)

// Aside is the read-through, write-invalidate layer every service composes.
// A cache outage must never fail a caller's request: lookup and store failures
// are logged and the origin call serves the request directly.
//
// There is deliberately no request coalescing. Concurrent GetOrCreate calls
// for the same key on a miss each invoke the origin and each write the cache,
// last writer wins (known cache-stampede limitation).
type Aside struct {
	store Store
}

func NewAside(store Store) *Aside {
	return &Aside{store: store}
}

// GetOrCreate returns the cached value under key, or calls origin, stores the
// result with the given ttl and returns it. Only origin errors propagate.
func GetOrCreate[T any](
	ctx context.Context,
	a *Aside,
	key string,
	ttl time.Duration,
	origin func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	raw, err := a.store.Get(ctx, key)
	if err == nil {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			hitsTotal.WithLabelValues(keyPrefix(key)).Inc()
			return value, nil
		}
		// stored payload is unreadable, treat it like a store failure
		logger.Warn("cache payload unreadable, falling back to origin", "key", key)
		degradedTotal.WithLabelValues(keyPrefix(key)).Inc()
		return origin(ctx)
	}

	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("cache lookup failed, falling back to origin", "key", key, "error", err)
		degradedTotal.WithLabelValues(keyPrefix(key)).Inc()
		return origin(ctx)
	}

	missesTotal.WithLabelValues(keyPrefix(key)).Inc()

	value, err := origin(ctx)
	if err != nil {
		return zero, err
	}

	if err := a.set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache populate failed", "key", key, "error", err)
		degradedTotal.WithLabelValues(keyPrefix(key)).Inc()
	}

	return value, nil
}

// Set stores value under key unconditionally. Used to refresh an entry after
// the caller already holds the fresh value.
func Set[T any](ctx context.Context, a *Aside, key string, value T, ttl time.Duration) {
	if err := a.set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
		degradedTotal.WithLabelValues(keyPrefix(key)).Inc()
	}
}

func (a *Aside) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := a.store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("store cache value: %w", err)
	}

	return nil
}

// Invalidate is best-effort deletion; failure is logged, never propagated.
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := a.store.Delete(ctx, key); err != nil {
			logger.Warn("cache invalidate failed", "key", key, "error", err)
			degradedTotal.WithLabelValues(keyPrefix(key)).Inc()
		}
	}
}
