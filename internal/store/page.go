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

// PageStore handles pages and their ordered block lists.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

// pageColumns lists the columns selected in page queries.
const pageColumns = `id, slug, title, status, version, published_at, created_at, updated_at`

func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Status, &p.Version,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all pages ordered by title.
func (s *PageStore) List(ctx context.Context) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published page by slug. Returns nil if
// there is no such page or it is still a draft.
func (s *PageStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE slug = $1 AND status = 'published'
	`, slug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether a page already uses slug.
func (s *PageStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check page slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new draft page with no blocks.
func (s *PageStore) Create(ctx context.Context, title, slug string) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (title, slug)
		VALUES ($1, $2)
		RETURNING `+pageColumns,
		title, slug,
	)
	p, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return p, nil
}

// SetStatus publishes or unpublishes a page. Publishing stamps
// published_at the first time only.
func (s *PageStore) SetStatus(ctx context.Context, id uuid.UUID, status models.PageStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pages
		SET status = $1,
		    published_at = CASE WHEN $1 = 'published' THEN COALESCE(published_at, NOW()) ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set page status: %w", err)
	}
	return nil
}

// LoadBlocks returns the stored blocks of a page in order.
func (s *PageStore) LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT block_id, block_type, content, settings, is_visible, position
		FROM page_blocks
		WHERE page_id = $1
		ORDER BY position ASC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	list := []models.Block{}
	for rows.Next() {
		var (
			b                 models.Block
			content, settings []byte
		)
		if err := rows.Scan(&b.ID, &b.Type, &content, &settings, &b.IsVisible, &b.Position); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		if err := json.Unmarshal(content, &b.Content); err != nil {
			return nil, fmt.Errorf("decode content of block %s: %w", b.ID, err)
		}
		if err := json.Unmarshal(settings, &b.Settings); err != nil {
			return nil, fmt.Errorf("decode settings of block %s: %w", b.ID, err)
		}
		b.Settings = b.Settings.Normalize()
		list = append(list, b)
	}
	return list, rows.Err()
}

// LoadSnapshot returns the stored blocks of a page as a JSON array built by
// the database, so decoding is left to the caller.
func (s *PageStore) LoadSnapshot(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	var snapshot []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(json_agg(json_build_object(
			'id', block_id,
			'type', block_type,
			'content', content,
			'settings', settings,
			'isVisible', is_visible,
			'position', position
		) ORDER BY position), '[]'::json)
		FROM page_blocks
		WHERE page_id = $1
	`, pageID).Scan(&snapshot)
	if err != nil {
		return nil, fmt.Errorf("load block snapshot: %w", err)
	}
	return snapshot, nil
}

// SaveBlocks replaces the stored block list of a page in one transaction:
// the old rows are removed, the new list is written with positions taken
// from list order, the page version is bumped and a revision snapshot is
// recorded. It returns the new version.
func (s *PageStore) SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save blocks: %w", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx, `
		UPDATE pages SET version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING version
	`, pageID).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("save blocks: page %s not found", pageID)
	}
	if err != nil {
		return 0, fmt.Errorf("bump page version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_blocks WHERE page_id = $1`, pageID); err != nil {
		return 0, fmt.Errorf("clear blocks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO page_blocks (page_id, block_id, block_type, content, settings, is_visible, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare block insert: %w", err)
	}
	defer stmt.Close()

	ordered := make([]models.Block, len(list))
	for i, b := range list {
		b.Position = i
		if b.Content == nil {
			b.Content = map[string]any{}
		}
		content, err := json.Marshal(b.Content)
		if err != nil {
			return 0, fmt.Errorf("encode content of block %s: %w", b.ID, err)
		}
		settings, err := json.Marshal(b.Settings.Normalize())
		if err != nil {
			return 0, fmt.Errorf("encode settings of block %s: %w", b.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, pageID, b.ID, b.Type, content, settings, b.IsVisible, i); err != nil {
			return 0, fmt.Errorf("insert block %s: %w", b.ID, err)
		}
		ordered[i] = b
	}

	snapshot, err := json.Marshal(ordered)
	if err != nil {
		return 0, fmt.Errorf("encode revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO page_revisions (page_id, version, blocks, created_by)
		VALUES ($1, $2, $3, $4)
	`, pageID, version, snapshot, userID); err != nil {
		return 0, fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save blocks: %w", err)
	}
	return version, nil
}
