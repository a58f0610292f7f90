// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bridge connects editing sessions to storage. It loads and saves
// whole block lists, and keeps the public page cache in step with what was
// written.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// ErrPageNotFound is returned for operations on a page that does not exist.
var ErrPageNotFound = errors.New("page not found")

// Pages is the page storage the bridge writes through.
type Pages interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error)
	LoadSnapshot(ctx context.Context, pageID uuid.UUID) ([]byte, error)
	SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.PageStatus) error
}

// Invalidator drops cached renderings of a page.
type Invalidator interface {
	InvalidatePage(ctx context.Context, slug string)
}

// AuditLog records cache invalidations.
type AuditLog interface {
	Log(ctx context.Context, pageID uuid.UUID, action string)
}

// Bridge is the persistence side of the editor.
type Bridge struct {
	pages  Pages
	cache  Invalidator
	audit  AuditLog
	logger *slog.Logger
}

// New creates a Bridge. cache and audit may be nil.
func New(pages Pages, cache Invalidator, audit AuditLog, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{pages: pages, cache: cache, audit: audit, logger: logger}
}

func (b *Bridge) page(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	p, err := b.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("page %s: %w", id, ErrPageNotFound)
	}
	return p, nil
}

// LoadSnapshot returns the stored blocks of a page as JSON.
func (b *Bridge) LoadSnapshot(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	if _, err := b.page(ctx, pageID); err != nil {
		return nil, err
	}
	return b.pages.LoadSnapshot(ctx, pageID)
}

// LoadBlocks returns the stored blocks of a page in order.
func (b *Bridge) LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error) {
	if _, err := b.page(ctx, pageID); err != nil {
		return nil, err
	}
	return b.pages.LoadBlocks(ctx, pageID)
}

// SaveBlocks replaces the stored block list of a page. Positions are taken
// from list order. A published page's cached rendering is dropped once the
// write commits.
func (b *Bridge) SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) error {
	p, err := b.page(ctx, pageID)
	if err != nil {
		return err
	}
	version, err := b.pages.SaveBlocks(ctx, pageID, list, userID)
	if err != nil {
		return fmt.Errorf("save blocks of %s: %w", p.Slug, err)
	}
	b.logger.Info("page blocks saved", "page", pageID, "slug", p.Slug, "version", version, "blocks", len(list))
	if p.IsPublished() {
		b.invalidate(ctx, p, "save")
	}
	return nil
}

// Publish makes a page visible on the public site.
func (b *Bridge) Publish(ctx context.Context, pageID uuid.UUID) error {
	return b.setStatus(ctx, pageID, models.PageStatusPublished, "publish")
}

// Unpublish takes a page off the public site.
func (b *Bridge) Unpublish(ctx context.Context, pageID uuid.UUID) error {
	return b.setStatus(ctx, pageID, models.PageStatusDraft, "unpublish")
}

func (b *Bridge) setStatus(ctx context.Context, pageID uuid.UUID, status models.PageStatus, action string) error {
	p, err := b.page(ctx, pageID)
	if err != nil {
		return err
	}
	if err := b.pages.SetStatus(ctx, pageID, status); err != nil {
		return err
	}
	b.invalidate(ctx, p, action)
	return nil
}

func (b *Bridge) invalidate(ctx context.Context, p *models.Page, action string) {
	if b.cache != nil {
		b.cache.InvalidatePage(ctx, p.Slug)
	}
	if b.audit != nil {
		b.audit.Log(ctx, p.ID, action)
	}
}
