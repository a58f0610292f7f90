// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: in-memory fakes for
// the editor stack, and the PostgreSQL/Valkey environment used by the auth
// integration tests, which are skipped when those services are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"pagecraft/internal/bridge"
	"pagecraft/internal/database"
	"pagecraft/internal/editor"
	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/preview"
	"pagecraft/internal/render"
	"pagecraft/internal/session"
	"pagecraft/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

// fakePages is an in-memory page and block store. It satisfies
// editor.Persister, BlockStore, PageDirectory, Publisher and PublishedPages.
type fakePages struct {
	mu      sync.Mutex
	pages   map[uuid.UUID]*models.Page
	blocks  map[uuid.UUID][]models.Block
	saves   int
	saveErr error
}

func newFakePages() *fakePages {
	return &fakePages{
		pages:  make(map[uuid.UUID]*models.Page),
		blocks: make(map[uuid.UUID][]models.Block),
	}
}

func (f *fakePages) add(title, slug string, status models.PageStatus, list ...models.Block) *models.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Page{ID: uuid.New(), Title: title, Slug: slug, Status: status, Version: 1, UpdatedAt: time.Now()}
	f.pages[p.ID] = p
	f.blocks[p.ID] = list
	return p
}

func (f *fakePages) List(ctx context.Context) ([]models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Page
	for _, p := range f.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePages) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePages) FindPublishedBySlug(ctx context.Context, slug string) (*models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.Slug == slug && p.IsPublished() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePages) SlugExists(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePages) Create(ctx context.Context, title, slug string) (*models.Page, error) {
	return f.add(title, slug, models.PageStatusDraft), nil
}

func (f *fakePages) LoadBlocks(ctx context.Context, pageID uuid.UUID) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pages[pageID]; !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, bridge.ErrPageNotFound)
	}
	out := make([]models.Block, len(f.blocks[pageID]))
	for i, b := range f.blocks[pageID] {
		out[i] = b.Clone()
	}
	return out, nil
}

func (f *fakePages) LoadSnapshot(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	list, err := f.LoadBlocks(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(list)
}

func (f *fakePages) SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	p, ok := f.pages[pageID]
	if !ok {
		return fmt.Errorf("page %s: %w", pageID, bridge.ErrPageNotFound)
	}
	f.blocks[pageID] = list
	p.Version++
	f.saves++
	return nil
}

func (f *fakePages) Publish(ctx context.Context, pageID uuid.UUID) error {
	return f.setStatus(pageID, models.PageStatusPublished)
}

func (f *fakePages) Unpublish(ctx context.Context, pageID uuid.UUID) error {
	return f.setStatus(pageID, models.PageStatusDraft)
}

func (f *fakePages) setStatus(id uuid.UUID, status models.PageStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return fmt.Errorf("page %s: %w", id, bridge.ErrPageNotFound)
	}
	p.Status = status
	return nil
}

func (f *fakePages) stored(id uuid.UUID) []models.Block {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks[id]
}

// fakeRefs returns fixed reference data.
type fakeRefs struct{}

func (fakeRefs) Reference(ctx context.Context) (models.ReferenceData, error) {
	return models.ReferenceData{
		Services: []models.Service{{ID: uuid.New(), Slug: "repairs", Title: "Repairs", Summary: "Fixed fast."}},
		Testimonials: []models.Testimonial{
			{ID: uuid.New(), Author: "Dana", Quote: "Great work.", Rating: 5, Location: "Springfield"},
		},
		Locations: []models.Location{{ID: uuid.New(), Slug: "downtown", Name: "Downtown", Phone: "555-0100"}},
	}, nil
}

// newTestRenderer compiles the preview templates.
func newTestRenderer(t *testing.T) *preview.Renderer {
	t.Helper()
	r, err := preview.New(quietLogger())
	if err != nil {
		t.Fatalf("preview.New: %v", err)
	}
	return r
}

// newTestManager builds an editor manager over pages with deterministic
// session ids.
func newTestManager(t *testing.T, pages editor.Persister) *editor.Manager {
	t.Helper()
	n := 0
	sessionIDs := func() string {
		n++
		return fmt.Sprintf("sess-%d", n)
	}
	cfg := editor.DefaultConfig()
	cfg.PreviewDebounce = time.Hour
	m := editor.NewManager(pages, fakeRefs{}, newTestRenderer(t), nil, cfg, quietLogger(), editor.WithIDs(sessionIDs, nil))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Shutdown(ctx)
	})
	return m
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --------------------------------------------------------------------------
// Integration environment
// --------------------------------------------------------------------------

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pagecraft")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pagecraft")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// authEnv holds the dependencies of the auth integration tests.
type authEnv struct {
	Sessions  *session.Store
	UserStore *store.UserStore
	Auth      *Auth
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	return &authEnv{
		Sessions:  sessions,
		UserStore: users,
		Auth:      NewAuth(renderer, sessions, users),
	}
}
