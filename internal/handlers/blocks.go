// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/editor"
	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
)

// BlockStore loads and replaces the stored block list of a page.
type BlockStore interface {
	LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error)
	SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) error
}

// RevisionLister lists the saved snapshots of a page.
type RevisionLister interface {
	ListByPageID(ctx context.Context, pageID uuid.UUID, limit int) ([]*models.PageRevision, error)
}

// Blocks serves the whole-list load/save contract and the reference data
// the editor shell needs. There is no partial update endpoint: a save
// always sends the full ordered list.
type Blocks struct {
	store     BlockStore
	refs      editor.ReferenceSource
	revisions RevisionLister
}

// NewBlocks creates the block list handlers. revisions may be nil.
func NewBlocks(store BlockStore, refs editor.ReferenceSource, revisions RevisionLister) *Blocks {
	return &Blocks{store: store, refs: refs, revisions: revisions}
}

// pageID parses the {id} URL parameter.
func pageID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("page id: %w", errBadRequest)
	}
	return id, nil
}

// Load returns the stored blocks of a page in order.
func (b *Blocks) Load(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := b.store.LoadBlocks(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Block{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Save replaces the stored blocks of a page with the posted list. Positions
// are taken from list order.
func (b *Blocks) Save(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var list blockList
	if err := decodeJSON(r, &list); err != nil {
		writeError(w, r, err)
		return
	}
	if err := list.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	for i := range list {
		list[i].Position = i
		list[i].Settings = list[i].Settings.Normalize()
		if list[i].Content == nil {
			list[i].Content = map[string]any{}
		}
	}

	var userID *uuid.UUID
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		uid := sess.UserID
		userID = &uid
	}

	if err := b.store.SaveBlocks(r.Context(), id, list, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Revisions lists the most recent saved snapshots of a page, newest
// first. ?limit= caps the count (default 20).
func (b *Blocks) Revisions(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if b.revisions == nil {
		writeJSON(w, http.StatusOK, []*models.PageRevision{})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, fmt.Errorf("limit must be 1-100: %w", errBadRequest))
			return
		}
		limit = n
	}

	revs, err := b.revisions.ListByPageID(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if revs == nil {
		revs = []*models.PageRevision{}
	}
	writeJSON(w, http.StatusOK, revs)
}

// Reference returns the services, testimonials and locations blocks can
// display.
func (b *Blocks) Reference(w http.ResponseWriter, r *http.Request) {
	ref, err := b.refs.Reference(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}
