// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go keeps an audit trail of public page cache invalidations:
// which page was dropped and whether a save or a status change caused it.
package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
)

// CacheLogStore writes cache_invalidation_log rows.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records that the cached rendering of a page was dropped. Failures
// are logged and otherwise ignored; the invalidation itself already
// happened.
func (s *CacheLogStore) Log(ctx context.Context, pageID uuid.UUID, action string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (entity_type, entity_id, action)
		VALUES ('page', $1, $2)
	`, pageID, action)
	if err != nil {
		slog.Warn("failed to log cache invalidation", "page", pageID, "action", action, "error", err)
	}
}
