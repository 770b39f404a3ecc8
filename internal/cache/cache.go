// Package cache holds the most recent catalog snapshot in memory.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/diff"
)

// Fetcher retrieves a complete catalog from the remote source.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Catalog, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (catalog.Catalog, error)

// Fetch calls f(ctx).
func (f FetcherFunc) Fetch(ctx context.Context) (catalog.Catalog, error) {
	return f(ctx)
}

// ChangeObserver is told what changed whenever a snapshot replaces an older one.
type ChangeObserver func(*diff.ChangeSet)

// Catalog caches a single catalog snapshot. A snapshot is replaced wholesale on
// a successful fetch and kept untouched when a fetch fails.
type Catalog struct {
	mu        sync.RWMutex
	snapshot  catalog.Catalog
	fetchedAt time.Time
	present   bool

	// issued numbers each fetch as it starts. Only a fetch numbered above
	// floor may commit; commits and Clear raise floor.
	issued uint64
	floor  uint64

	maxAge   time.Duration
	observer ChangeObserver
	log      *slog.Logger
}

// Option configures the cache.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxAge makes snapshots older than d count as missing. Zero keeps a
// snapshot until it is cleared or force-refreshed.
func WithMaxAge(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithChangeObserver registers a callback for snapshot replacements. Without
// one, a non-empty change summary is logged at info.
func WithChangeObserver(fn ChangeObserver) Option {
	return func(c *Catalog) { c.observer = fn }
}

// New creates an empty cache.
func New(opts ...Option) *Catalog {
	c := &Catalog{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = c.logChanges
	}
	return c
}

// Get returns the cached snapshot, fetching through f when the cache is empty,
// stale, or forceRefresh is set. A fetch error is returned unchanged and the
// previous snapshot is kept.
func (c *Catalog) Get(ctx context.Context, forceRefresh bool, f Fetcher) (catalog.Catalog, error) {
	if !forceRefresh {
		if models, ok := c.fresh(); ok {
			c.log.Debug("catalog cache hit", "models", len(models))
			return models, nil
		}
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	c.log.Debug("catalog cache miss", "force_refresh", forceRefresh, "seq", seq)

	// The fetch runs without the lock. A result is stored only if no later
	// fetch has committed and Clear has not run since it started; the caller
	// gets its own result either way.
	models, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = catalog.Catalog{}
	}

	c.mu.Lock()
	if seq <= c.floor {
		c.mu.Unlock()
		c.log.Debug("catalog fetch superseded", "seq", seq, "models", len(models))
		return models, nil
	}
	prev, hadPrev := c.snapshot, c.present
	c.snapshot = models
	c.fetchedAt = time.Now()
	c.present = true
	c.floor = seq
	c.mu.Unlock()

	c.log.Debug("catalog cache replaced", "models", len(models), "had_previous", hadPrev)
	if hadPrev {
		c.observer(diff.Compute(prev, models, diff.Options{}))
	}
	return models, nil
}

// Clear drops the snapshot. The next Get fetches regardless of forceRefresh,
// and fetches already in flight do not repopulate the cache.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.floor = c.issued
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.present = false
	c.mu.Unlock()

	c.log.Debug("catalog cache cleared")
}

// Snapshot returns the cached catalog and when it was fetched. ok is false
// when the cache is empty.
func (c *Catalog) Snapshot() (models catalog.Catalog, fetchedAt time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.fetchedAt, c.present
}

func (c *Catalog) fresh() (catalog.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present {
		return nil, false
	}
	if c.maxAge > 0 && time.Since(c.fetchedAt) > c.maxAge {
		return nil, false
	}
	return c.snapshot, true
}

func (c *Catalog) logChanges(cs *diff.ChangeSet) {
	if !cs.HasChanges() {
		return
	}
	c.log.Info("model catalog changed",
		"new", len(cs.New),
		"updated", len(cs.Updated),
		"removed", len(cs.Removed),
		"repriced", len(cs.Repriced()))
	c.log.Debug("model catalog diff", "summary", diff.RenderSummary(cs))
}
