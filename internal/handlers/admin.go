// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"pagecraft/internal/editor"
	"pagecraft/internal/models"
	"pagecraft/internal/render"
)

// PageDirectory is the page storage the admin screens use.
type PageDirectory interface {
	List(ctx context.Context) ([]models.Page, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, title, slug string) (*models.Page, error)
}

// Publisher changes whether a page is live.
type Publisher interface {
	Publish(ctx context.Context, pageID uuid.UUID) error
	Unpublish(ctx context.Context, pageID uuid.UUID) error
}

// Admin groups the admin panel HTML handlers: the page list and the
// editor shell.
type Admin struct {
	renderer  *render.Renderer
	pages     PageDirectory
	publisher Publisher
	manager   *editor.Manager
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, pages PageDirectory, publisher Publisher, manager *editor.Manager) *Admin {
	return &Admin{
		renderer:  renderer,
		pages:     pages,
		publisher: publisher,
		manager:   manager,
	}
}

// PagesList renders all pages with their status.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	a.renderPages(w, r, map[string]any{})
}

// notices are the flash messages a redirect back to the page list may
// ask for. Unknown values are ignored.
var notices = map[string]render.Flash{
	"published":   {Type: "success", Message: "Page published."},
	"unpublished": {Type: "info", Message: "Page moved back to draft."},
}

func (a *Admin) renderPages(w http.ResponseWriter, r *http.Request, data map[string]any) {
	pages, err := a.pages.List(r.Context())
	if err != nil {
		slog.Error("list pages failed", "error", err)
	}
	data["Pages"] = pages

	var flashes []render.Flash
	if f, ok := notices[r.URL.Query().Get("notice")]; ok {
		flashes = append(flashes, f)
	}
	a.renderer.Page(w, r, "pages", &render.PageData{
		Title:   "Pages",
		Section: "pages",
		Data:    data,
		Flashes: flashes,
	})
}

// PageCreate handles the new page form. The slug defaults to one derived
// from the title.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	form := pageForm{
		Title: r.FormValue("title"),
	}
	form.Slug = normalizeSlug(form.Title, r.FormValue("slug"))

	if err := form.Validate(); err != nil {
		a.formError(w, r, form, err)
		return
	}

	exists, err := a.pages.SlugExists(r.Context(), form.Slug)
	if err != nil {
		slog.Error("check slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		a.formError(w, r, form, validation.Errors{"Slug": errors.New("is already in use")})
		return
	}

	page, err := a.pages.Create(r.Context(), form.Title, form.Slug)
	if err != nil {
		slog.Error("create page failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("page created", "page", page.ID, "slug", page.Slug)
	http.Redirect(w, r, "/admin/pages/"+page.ID.String()+"/edit", http.StatusSeeOther)
}

func (a *Admin) formError(w http.ResponseWriter, r *http.Request, form pageForm, err error) {
	msgs := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		msgs = fieldErrors(verrs)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	a.renderPages(w, r, map[string]any{
		"FormTitle":  form.Title,
		"FormSlug":   form.Slug,
		"FormErrors": msgs,
	})
}

// PageEdit opens (or resumes) an editing session for the page and renders
// the editor shell bound to it.
func (a *Admin) PageEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pageID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	page, err := a.pages.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find page failed", "error", err, "page", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	s, err := a.manager.Open(r.Context(), page.ID, callerID(r))
	if err != nil {
		slog.Error("open editor session failed", "error", err, "page", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "editor", &render.PageData{
		Title:   "Edit " + page.Title,
		Section: "pages",
		Data: map[string]any{
			"Page":      page,
			"SessionID": s.ID,
		},
	})
}

// PagePublish makes the page visible on the public site.
func (a *Admin) PagePublish(w http.ResponseWriter, r *http.Request) {
	a.setStatus(w, r, a.publisher.Publish, "published")
}

// PageUnpublish takes the page off the public site.
func (a *Admin) PageUnpublish(w http.ResponseWriter, r *http.Request) {
	a.setStatus(w, r, a.publisher.Unpublish, "unpublished")
}

func (a *Admin) setStatus(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) error, notice string) {
	id, err := pageID(r)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		if errorStatus(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		slog.Error("change page status failed", "error", err, "page", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/?notice="+notice, http.StatusSeeOther)
}
