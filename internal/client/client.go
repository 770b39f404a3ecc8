// Package client is the entry point for model selection. It owns the catalog
// cache and routes every request through the selection engine.
package client

import (
	"context"
	"log/slog"

	"github.com/everstacklabs/modelpick/internal/cache"
	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/selector"
)

// Client selects models from a cached OpenRouter catalog.
type Client struct {
	fetcher cache.Fetcher
	cache   *cache.Catalog
	engine  *selector.Engine
	log     *slog.Logger

	cacheOpts []cache.Option
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger. It is also handed to the cache and the default
// engine.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithEngine replaces the default selection engine.
func WithEngine(e *selector.Engine) Option {
	return func(c *Client) { c.engine = e }
}

// WithCacheOptions passes options through to the catalog cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(c *Client) { c.cacheOpts = append(c.cacheOpts, opts...) }
}

// New creates a Client that fetches the catalog through f.
func New(f cache.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: f,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = selector.NewEngine(selector.WithLogger(c.log))
	}
	c.cache = cache.New(append([]cache.Option{cache.WithLogger(c.log)}, c.cacheOpts...)...)
	return c
}

// SelectOne returns the cheapest model meeting req, or nil when none does.
// Unless req.ForceRefresh says otherwise, the catalog is refetched first.
func (c *Client) SelectOne(ctx context.Context, req selector.Requirements) (*catalog.Model, error) {
	models, err := c.cache.Get(ctx, req.RefreshOr(true), c.fetcher)
	if err != nil {
		return nil, err
	}

	m, err := c.engine.SelectBest(models, req)
	if err != nil {
		return nil, err
	}
	if m == nil {
		c.log.Info("no model matched requirements", "candidates", len(models))
	}
	return m, nil
}

// SelectMany returns up to limit of the cheapest models meeting req, cheapest
// first. limit <= 0 returns every match. Unless req.ForceRefresh says
// otherwise, a cached catalog is reused.
func (c *Client) SelectMany(ctx context.Context, req selector.Requirements, limit int) (catalog.Catalog, error) {
	models, err := c.cache.Get(ctx, req.RefreshOr(false), c.fetcher)
	if err != nil {
		return nil, err
	}
	return c.engine.SelectTop(models, req, limit)
}

// Models returns the whole catalog, unfiltered.
func (c *Client) Models(ctx context.Context, forceRefresh bool) (catalog.Catalog, error) {
	return c.cache.Get(ctx, forceRefresh, c.fetcher)
}

// Refresh fetches the catalog now, replacing the cached snapshot on success.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.cache.Get(ctx, true, c.fetcher)
	return err
}

// ClearCache drops the cached snapshot.
func (c *Client) ClearCache() {
	c.cache.Clear()
}
