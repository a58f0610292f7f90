// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPreviewTTL outlives the editor's idle timeout so a detached
	// preview pane never goes blank while its session is open.
	DefaultPreviewTTL = 3 * time.Hour
)

// PreviewCache holds the latest edit-mode preview of each editor session,
// pushed by the session's debounced preview sync and served to the
// detached preview pane.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache backed by the given Valkey client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// PutPreview stores the preview HTML of a session.
func (c *PreviewCache) PutPreview(ctx context.Context, sessionID string, html []byte) error {
	if err := c.client.Set(ctx, previewKeyPrefix+sessionID, html, c.ttl).Err(); err != nil {
		return fmt.Errorf("store preview %s: %w", sessionID, err)
	}
	return nil
}

// GetPreview returns the last synced preview of a session. ok is false
// when nothing has been synced yet.
func (c *PreviewCache) GetPreview(ctx context.Context, sessionID string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, previewKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load preview %s: %w", sessionID, err)
	}
	return val, true, nil
}

// DropPreview removes a session's preview when the session closes.
func (c *PreviewCache) DropPreview(ctx context.Context, sessionID string) error {
	if err := c.client.Unlink(ctx, previewKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("drop preview %s: %w", sessionID, err)
	}
	return nil
}
