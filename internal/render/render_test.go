// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/session"
)

// helperSession returns a session.Data suitable for rendering admin templates.
func helperSession() *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@pagecraft.local",
		DisplayName: "Test User",
		Role:        "admin",
	}
}

// serve runs Page behind the CSRF middleware so the token lands in the
// request context the way it does in the server.
func serve(t *testing.T, rn *Renderer, name string, data *PageData, sess *session.Data) *httptest.ResponseRecorder {
	t.Helper()
	h := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rn.Page(w, r, name, data)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, sess))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func csrfCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		rn, err := New(dev)
		if err != nil {
			t.Fatalf("New(%v): %v", dev, err)
		}
		for _, name := range []string{"login", "pages", "editor"} {
			if _, ok := rn.templates[name]; !ok {
				t.Errorf("New(%v): template %q not loaded", dev, name)
			}
		}
		if _, ok := rn.templates["base"]; ok {
			t.Error("base layout should not be a page of its own")
		}
	}
}

func TestPageLogin(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}

	rec := serve(t, rn, "login", &PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": "Invalid email or password.", "Email": "x@example.com"},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, `class="topbar"`) {
		t.Error("login should render without the admin layout")
	}
	for _, want := range []string{"Invalid email or password.", `value="x@example.com"`} {
		if !strings.Contains(body, want) {
			t.Errorf("login missing %q", want)
		}
	}
	token := csrfCookie(rec)
	if token == "" || !strings.Contains(body, `value="`+token+`"`) {
		t.Error("login form does not carry the CSRF token")
	}
}

func TestPagePagesList(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatal(err)
	}
	sess := helperSession()

	rec := serve(t, rn, "pages", &PageData{
		Title:   "Pages",
		Section: "pages",
		Data: map[string]any{
			"Pages": []models.Page{
				{ID: uuid.New(), Title: "Home", Slug: "home", Status: models.PageStatusPublished, Version: 4, UpdatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)},
				{ID: uuid.New(), Title: "Contact", Slug: "contact", Status: models.PageStatusDraft, Version: 1},
			},
		},
	}, sess)

	body := rec.Body.String()
	for _, want := range []string{
		"Home", "/contact", "2026-05-01 09:30",
		"Unpublish", `action="/admin/logout"`, "Test User",
		`class="nav-link active"`, "development",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("pages list missing %q", want)
		}
	}
	if token := csrfCookie(rec); !strings.Contains(body, `<meta name="csrf-token" content="`+token+`">`) {
		t.Error("layout missing the CSRF meta tag")
	}
}

func TestPageFlashes(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(t, rn, "pages", &PageData{
		Title:   "Pages",
		Flashes: []Flash{{Type: "success", Message: "Page <b>published</b>."}},
		Data:    map[string]any{},
	}, helperSession())

	body := rec.Body.String()
	if !strings.Contains(body, `class="flash flash-success"`) {
		t.Error("flash not rendered")
	}
	if !strings.Contains(body, "Page &lt;b&gt;published&lt;/b&gt;.") {
		t.Error("flash message not escaped")
	}
}

func TestPagePagesListHidesPublishForEditors(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	sess := helperSession()
	sess.Role = "editor"

	rec := serve(t, rn, "pages", &PageData{
		Title: "Pages",
		Data: map[string]any{
			"Pages": []models.Page{{ID: uuid.New(), Title: "Home", Slug: "home", Status: models.PageStatusPublished}},
		},
	}, sess)

	body := rec.Body.String()
	if !strings.Contains(body, "/edit") {
		t.Error("edit link missing")
	}
	if strings.Contains(body, "Unpublish") {
		t.Error("editors should not see publish controls")
	}
}

func TestPageEmptyList(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(t, rn, "pages", &PageData{Title: "Pages", Data: map[string]any{}}, helperSession())
	if !strings.Contains(rec.Body.String(), "No pages yet.") {
		t.Error("empty state missing")
	}
	if strings.Contains(rec.Body.String(), "development") {
		t.Error("production layout shows the dev badge")
	}
}

func TestPageEditorShell(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	page := &models.Page{ID: uuid.New(), Title: "Home", Slug: "home"}

	rec := serve(t, rn, "editor", &PageData{
		Title: "Edit Home",
		Data:  map[string]any{"Page": page, "SessionID": "sess-42"},
	}, helperSession())

	body := rec.Body.String()
	for _, want := range []string{
		`data-page-id="` + page.ID.String() + `"`,
		`data-session-id="sess-42"`,
		"/static/js/editor.js",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("editor shell missing %q", want)
		}
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(t, rn, "nonexistent", &PageData{}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
