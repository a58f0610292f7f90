// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pagecraft/internal/metrics"
)

// DefaultPageTTL bounds how stale a public page can get if an
// invalidation is lost.
const DefaultPageTTL = 5 * time.Minute

// PageCache stores the live-mode HTML of published pages by slug. Cache
// failures are logged and treated as misses; the public site falls back
// to rendering from the database.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a PageCache. A zero ttl means DefaultPageTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

func pageKey(slug string) string { return pageKeyPrefix + slug }

// Get returns the cached HTML of slug.
func (c *PageCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	html, err := c.client.Get(ctx, pageKey(slug)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.PageCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.PageCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("page cache read failed", "slug", slug, "error", err)
		return nil, false
	}
	metrics.PageCacheLookups.WithLabelValues("hit").Inc()
	return html, true
}

// Set caches the rendered HTML of slug.
func (c *PageCache) Set(ctx context.Context, slug string, html []byte) {
	if err := c.client.Set(ctx, pageKey(slug), html, c.ttl).Err(); err != nil {
		slog.Warn("page cache write failed", "slug", slug, "error", err)
	}
}

// InvalidatePage drops the cached HTML of slug, after a save or a status
// change of that page.
func (c *PageCache) InvalidatePage(ctx context.Context, slug string) {
	if err := c.client.Unlink(ctx, pageKey(slug)).Err(); err != nil {
		slog.Warn("page cache invalidate failed", "slug", slug, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "slug", slug)
}

// InvalidateAll drops every cached page. It runs at startup, since pages
// rendered by an older build may use different templates, and whenever a
// site-wide setting changes.
func (c *PageCache) InvalidateAll(ctx context.Context) {
	n, err := deleteMatching(ctx, c.client, pageKeyPrefix+"*")
	if err != nil {
		slog.Warn("page cache flush failed", "removed", n, "error", err)
		return
	}
	if n > 0 {
		slog.Info("page cache flushed", "removed", n)
	}
}
