// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pagecraft/internal/models"
)

type fakePageCache struct {
	pages map[string][]byte
	sets  int
}

func (f *fakePageCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	b, ok := f.pages[slug]
	return b, ok
}

func (f *fakePageCache) Set(ctx context.Context, slug string, html []byte) {
	f.pages[slug] = html
	f.sets++
}

type fakeSettings map[string]string

func (f fakeSettings) Get(_ context.Context, key, fallback string) (string, error) {
	if v, ok := f[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func newPublicEnv(t *testing.T) (*Public, *fakePages, *fakePageCache) {
	t.Helper()
	pages := newFakePages()
	pages.add("Home", "home", models.PageStatusPublished,
		models.Block{ID: "a", Type: models.BlockHero, Content: map[string]any{"title": "Welcome home"}, Settings: models.DefaultSettings(), IsVisible: true},
		models.Block{ID: "b", Type: models.BlockCTA, Content: map[string]any{"title": "Hidden offer"}, Settings: models.DefaultSettings(), IsVisible: false},
	)
	pages.add("Secret", "secret", models.PageStatusDraft)

	cache := &fakePageCache{pages: map[string][]byte{}}
	settings := fakeSettings{models.SettingSiteName: "Acme Plumbing"}
	return NewPublic(pages, fakeRefs{}, settings, cache, newTestRenderer(t)), pages, cache
}

func TestPublicHomepage(t *testing.T) {
	h, _, cache := newPublicEnv(t)

	rec := httptest.NewRecorder()
	h.Homepage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Welcome home") {
		t.Error("visible block missing")
	}
	if strings.Contains(body, "Hidden offer") {
		t.Error("hidden block rendered on the live page")
	}
	if !strings.Contains(body, "Acme Plumbing") {
		t.Error("site name missing")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

func TestPublicPageServedFromCache(t *testing.T) {
	h, _, cache := newPublicEnv(t)
	cache.pages["about"] = []byte("<p>cached about</p>")

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/about", nil), "slug", "about")
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "<p>cached about</p>" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestPublicPageNotFound(t *testing.T) {
	h, _, cache := newPublicEnv(t)

	for _, slug := range []string{"secret", "nowhere"} {
		req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/"+slug, nil), "slug", slug)
		rec := httptest.NewRecorder()
		h.Page(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", slug, rec.Code)
		}
	}
	if cache.sets != 0 {
		t.Errorf("404s were cached %d times", cache.sets)
	}
}

func TestPublicWithoutCache(t *testing.T) {
	pages := newFakePages()
	pages.add("Home", "home", models.PageStatusPublished)
	h := NewPublic(pages, nil, nil, nil, newTestRenderer(t))

	rec := httptest.NewRecorder()
	h.Homepage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}
