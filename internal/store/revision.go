// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// revisionColumns lists all columns for page_revisions SELECTs.
const revisionColumns = `id, page_id, version, blocks, created_by, created_at`

// RevisionStore reads the block snapshots written by PageStore.SaveBlocks.
type RevisionStore struct {
	db *sql.DB
}

// NewRevisionStore creates a new RevisionStore backed by the given database.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// scanRevision scans a single page_revisions row into a PageRevision.
func scanRevision(scanner interface{ Scan(...any) error }) (*models.PageRevision, error) {
	var (
		r      models.PageRevision
		blocks []byte
	)
	if err := scanner.Scan(&r.ID, &r.PageID, &r.Version, &blocks, &r.CreatedBy, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &r.Blocks); err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", r.ID, err)
	}
	return &r, nil
}

// ListByPageID returns the revisions of a page, newest first.
func (s *RevisionStore) ListByPageID(ctx context.Context, pageID uuid.UUID, limit int) ([]*models.PageRevision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+revisionColumns+`
		FROM page_revisions
		WHERE page_id = $1
		ORDER BY version DESC
		LIMIT $2
	`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*models.PageRevision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}
