// Package cache keeps Notion-derived results between requests, in the spirit
// of incremental regeneration: entries are served while fresh, refetched
// once stale, and served stale when the refetch fails.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRevalidate = 10 * time.Second
	DefaultKeep       = 24 * time.Hour
)

// Options configures freshness.
type Options struct {
	// Revalidate is how long an entry is served without refetching.
	Revalidate time.Duration
	// Keep is how long a stale entry stays available as a fallback.
	Keep time.Duration
	// Disabled bypasses the store entirely.
	Disabled bool
}

type entry struct {
	Value      json.RawMessage `json:"value"`
	FreshUntil time.Time       `json:"fresh_until"`
}

// Cache wraps a Store with freshness bookkeeping.
type Cache struct {
	store  Store
	opts   Options
	group  singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

// New creates a cache over store.
func New(store Store, opts Options, logger *zap.Logger) *Cache {
	if opts.Revalidate <= 0 {
		opts.Revalidate = DefaultRevalidate
	}
	if opts.Keep < opts.Revalidate {
		opts.Keep = max(DefaultKeep, opts.Revalidate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, opts: opts, logger: logger.Named("cache"), now: time.Now}
}

// Purge drops every entry under prefix ("" drops everything).
func (c *Cache) Purge(ctx context.Context, prefix string) (int64, error) {
	return c.store.DelPrefix(ctx, prefix)
}

// Load returns the cached value for key, calling fetch when the entry is
// missing or stale. Concurrent loads of one key share a single fetch.
func Load[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil || c.opts.Disabled {
		return fetch(ctx)
	}

	stale, fresh := c.read(ctx, key)
	if fresh {
		var v T
		if err := json.Unmarshal(stale.Value, &v); err == nil {
			return v, nil
		}
		stale = nil
	}

	// The shared fetch outlives any single caller: a caller whose request is
	// cancelled stops waiting, the others still get the result.
	ch := c.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.write(fctx, key, v)
		return v, nil
	})

	var (
		res any
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case r := <-ch:
		res, err = r.Val, r.Err
	}
	if err != nil {
		if stale != nil {
			var v T
			if jsonErr := json.Unmarshal(stale.Value, &v); jsonErr == nil {
				c.logger.Warn("serving stale entry", zap.String("key", key), zap.Error(err))
				return v, nil
			}
		}
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", res, key)
	}
	return v, nil
}

// read returns the stored entry, if any, and whether it is still fresh.
func (c *Cache) read(ctx context.Context, key string) (*entry, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	return &e, c.now().Before(e.FreshUntil)
}

func (c *Cache) write(ctx context.Context, key string, v any) {
	val, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	raw, err := json.Marshal(entry{Value: val, FreshUntil: c.now().Add(c.opts.Revalidate)})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.opts.Keep); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
