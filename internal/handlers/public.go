// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/editor"
	"pagecraft/internal/models"
	"pagecraft/internal/preview"
)

// homeSlug is the page served at the site root.
const homeSlug = "home"

// PublishedPages finds live pages and their blocks.
type PublishedPages interface {
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Page, error)
	LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error)
}

// PageCache stores rendered public pages by slug.
type PageCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, html []byte)
}

// SiteSettings reads site-wide settings.
type SiteSettings interface {
	Get(ctx context.Context, key, fallback string) (string, error)
}

// Public renders published pages for visitors. It checks the Valkey page
// cache before rendering, and stores rendered results on miss.
type Public struct {
	pages    PublishedPages
	refs     editor.ReferenceSource
	settings SiteSettings
	cache    PageCache
	renderer *preview.Renderer
}

// NewPublic creates a new Public handler group. cache and settings may be
// nil.
func NewPublic(pages PublishedPages, refs editor.ReferenceSource, settings SiteSettings, cache PageCache, renderer *preview.Renderer) *Public {
	return &Public{
		pages:    pages,
		refs:     refs,
		settings: settings,
		cache:    cache,
		renderer: renderer,
	}
}

// Homepage renders the page with slug "home".
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, homeSlug)
}

// Page renders a published page by its slug.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, chi.URLParam(r, "slug"))
}

func (p *Public) serve(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, slug); ok {
			writeHTML(w, cached)
			return
		}
	}

	page, err := p.pages.FindPublishedBySlug(ctx, slug)
	if err != nil {
		slog.Error("find page by slug failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	list, err := p.pages.LoadBlocks(ctx, page.ID)
	if err != nil {
		slog.Error("load page blocks failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	opts := preview.Options{SiteName: p.siteName(ctx)}
	if p.refs != nil {
		ref, err := p.refs.Reference(ctx)
		if err != nil {
			slog.Warn("reference data unavailable for public page", "error", err, "slug", slug)
		}
		opts.Ref = ref
	}

	rendered, err := p.renderer.Page(page.Title, list, opts)
	if err != nil {
		slog.Error("render page failed", "error", err, "slug", slug)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<!DOCTYPE html><html><head><title>` + html.EscapeString(page.Title) + `</title></head>
<body><h1>` + html.EscapeString(page.Title) + `</h1><p>This page could not be rendered.</p></body></html>`))
		return
	}

	if p.cache != nil {
		p.cache.Set(ctx, slug, rendered)
	}
	writeHTML(w, rendered)
}

func (p *Public) siteName(ctx context.Context) string {
	if p.settings == nil {
		return ""
	}
	name, err := p.settings.Get(ctx, models.SettingSiteName, "")
	if err != nil {
		slog.Warn("read site name failed", "error", err)
		return ""
	}
	return name
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
