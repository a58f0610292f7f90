// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the publishing state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// Page is a block-composed marketing page. Its blocks live in the
// page_blocks table and are loaded separately by the editor.
type Page struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      PageStatus `json:"status"`
	Version     int        `json:"version"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished returns true if the page is visible on the public site.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// PageRevision is a snapshot of a page's block list taken on every save.
type PageRevision struct {
	ID        uuid.UUID  `json:"id"`
	PageID    uuid.UUID  `json:"page_id"`
	Version   int        `json:"version"`
	Blocks    []Block    `json:"blocks"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
