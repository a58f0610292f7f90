// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"pagecraft/internal/models"
	"pagecraft/internal/render"
)

func newAdminEnv(t *testing.T) (*Admin, *fakePages) {
	t.Helper()
	renderer, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	pages := newFakePages()
	return NewAdmin(renderer, pages, pages, newTestManager(t, pages)), pages
}

func adminRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "admin@pagecraft.local", "admin")))
}

func TestAdminPagesList(t *testing.T) {
	h, pages := newAdminEnv(t)
	pages.add("Home", "home", models.PageStatusPublished)
	pages.add("About us", "about-us", models.PageStatusDraft)

	rec := httptest.NewRecorder()
	h.PagesList(rec, adminRequest(http.MethodGet, "/admin/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"About us", "/about-us", "status-published", "Unpublish", "Publish"} {
		if !strings.Contains(body, want) {
			t.Errorf("page list missing %q", want)
		}
	}
}

func TestAdminPagesListNotice(t *testing.T) {
	h, _ := newAdminEnv(t)
	tests := []struct {
		target, want, absent string
	}{
		{"/admin/?notice=published", "Page published.", ""},
		{"/admin/?notice=unpublished", "Page moved back to draft.", ""},
		{"/admin/?notice=%3Cscript%3E", "", "flash-"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.PagesList(rec, adminRequest(http.MethodGet, tt.target, nil))
		body := rec.Body.String()
		if tt.want != "" && !strings.Contains(body, tt.want) {
			t.Errorf("%s: missing %q", tt.target, tt.want)
		}
		if tt.absent != "" && strings.Contains(body, tt.absent) {
			t.Errorf("%s: unexpected %q", tt.target, tt.absent)
		}
	}
}

func TestAdminPageCreate(t *testing.T) {
	h, pages := newAdminEnv(t)

	rec := httptest.NewRecorder()
	h.PageCreate(rec, adminRequest(http.MethodPost, "/admin/pages", url.Values{"title": {"Our Services"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	list, _ := pages.List(t.Context())
	if len(list) != 1 || list[0].Slug != "our-services" {
		t.Fatalf("pages = %+v", list)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/pages/"+list[0].ID.String()+"/edit" {
		t.Errorf("Location = %q", loc)
	}
}

func TestAdminPageCreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"missing title", url.Values{"title": {""}}, "Title"},
		{"reserved slug", url.Values{"title": {"Admin"}}, "Slug"},
		{"duplicate slug", url.Values{"title": {"Home"}}, "already in use"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, pages := newAdminEnv(t)
			pages.add("Home", "home", models.PageStatusPublished)

			rec := httptest.NewRecorder()
			h.PageCreate(rec, adminRequest(http.MethodPost, "/admin/pages", tt.form))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body missing %q", tt.wantMsg)
			}
			list, _ := pages.List(t.Context())
			if len(list) != 1 {
				t.Errorf("pages = %d, want 1", len(list))
			}
		})
	}
}

func TestAdminPageEdit(t *testing.T) {
	h, pages := newAdminEnv(t)
	page := pages.add("Home", "home", models.PageStatusDraft)

	req := withChiURLParam(adminRequest(http.MethodGet, "/admin/pages/x/edit", nil), "id", page.ID.String())
	rec := httptest.NewRecorder()
	h.PageEdit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-page-id="`+page.ID.String()+`"`) {
		t.Error("editor shell missing page id")
	}
	if !strings.Contains(body, `data-session-id="sess-1"`) {
		t.Error("editor shell missing session id")
	}
	if h.manager.Len() != 1 {
		t.Errorf("open sessions = %d, want 1", h.manager.Len())
	}

	req = withChiURLParam(adminRequest(http.MethodGet, "/admin/pages/x/edit", nil), "id", uuid.NewString())
	rec = httptest.NewRecorder()
	h.PageEdit(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing page: status = %d, want 404", rec.Code)
	}
}

func TestAdminPublishToggle(t *testing.T) {
	h, pages := newAdminEnv(t)
	page := pages.add("Home", "home", models.PageStatusDraft)

	req := withChiURLParam(adminRequest(http.MethodPost, "/admin/pages/x/publish", url.Values{}), "id", page.ID.String())
	rec := httptest.NewRecorder()
	h.PagePublish(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/?notice=published" {
		t.Fatalf("publish: %d to %q", rec.Code, rec.Header().Get("Location"))
	}
	if p, _ := pages.FindByID(t.Context(), page.ID); !p.IsPublished() {
		t.Error("page not published")
	}

	req = withChiURLParam(adminRequest(http.MethodPost, "/admin/pages/x/unpublish", url.Values{}), "id", page.ID.String())
	rec = httptest.NewRecorder()
	h.PageUnpublish(rec, req)
	if p, _ := pages.FindByID(t.Context(), page.ID); p.IsPublished() {
		t.Error("page still published")
	}

	req = withChiURLParam(adminRequest(http.MethodPost, "/admin/pages/x/publish", url.Values{}), "id", uuid.NewString())
	rec = httptest.NewRecorder()
	h.PagePublish(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing page: status = %d, want 404", rec.Code)
	}
}
