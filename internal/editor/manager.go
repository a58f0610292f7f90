// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/metrics"
	"pagecraft/internal/models"
	"pagecraft/internal/preview"
)

// ReferenceSource supplies the services, testimonials and locations some
// blocks display.
type ReferenceSource interface {
	Reference(ctx context.Context) (models.ReferenceData, error)
}

// Config tunes editing sessions.
type Config struct {
	PreviewDebounce time.Duration // quiet period before a preview sync
	IdleTimeout     time.Duration // sessions unused this long are reaped
	SaveEvery       time.Duration // sustained save rate per session
	SaveBurst       int
	SaveTimeout     time.Duration
	APIBase         string // URL prefix of the session API
}

// DefaultConfig returns the settings used when config leaves them unset.
func DefaultConfig() Config {
	return Config{
		PreviewDebounce: 400 * time.Millisecond,
		IdleTimeout:     2 * time.Hour,
		SaveEvery:       2 * time.Second,
		SaveBurst:       3,
		SaveTimeout:     30 * time.Second,
		APIBase:         "/admin/api/editor",
	}
}

// Manager keeps the open editing sessions.
type Manager struct {
	persister Persister
	refs      ReferenceSource
	renderer  *preview.Renderer
	sink      PreviewSink
	cfg       Config
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	now          func() time.Time
	newSessionID func() string
	newBlockID   func() string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithIDs replaces the session and block id generators, for tests.
func WithIDs(session, block func() string) ManagerOption {
	return func(m *Manager) {
		m.newSessionID = session
		m.newBlockID = block
	}
}

// NewManager creates a session manager. sink may be nil, in which case
// previews are only rendered on request.
func NewManager(p Persister, refs ReferenceSource, r *preview.Renderer, sink PreviewSink, cfg Config, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PreviewDebounce <= 0 {
		cfg.PreviewDebounce = def.PreviewDebounce
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = def.SaveEvery
	}
	if cfg.SaveBurst <= 0 {
		cfg.SaveBurst = def.SaveBurst
	}
	if cfg.APIBase == "" {
		cfg.APIBase = def.APIBase
	}

	m := &Manager{
		persister:    p,
		refs:         refs,
		renderer:     r,
		sink:         sink,
		cfg:          cfg,
		logger:       logger,
		sessions:     make(map[string]*Session),
		now:          time.Now,
		newSessionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts editing a page, or resumes the session the same user already
// has open on it. The draft is seeded from the stored blocks; stored data
// that cannot be decoded yields an empty draft, while a failed read is
// returned as an error.
func (m *Manager) Open(ctx context.Context, pageID uuid.UUID, userID *uuid.UUID) (*Session, error) {
	m.mu.Lock()
	existing := m.findLocked(pageID, userID)
	m.mu.Unlock()
	if existing != nil {
		return existing, nil
	}

	snapshot, err := m.persister.LoadSnapshot(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", pageID, err)
	}

	var ref models.ReferenceData
	if m.refs != nil {
		ref, err = m.refs.Reference(ctx)
		if err != nil {
			m.logger.Warn("reference data unavailable, preview will show placeholders", "error", err)
			ref = models.ReferenceData{}
		}
	}

	s := newSession(pageID, userID, sessionDeps{
		persister:    m.persister,
		sink:         m.sink,
		renderer:     m.renderer,
		ref:          ref,
		cfg:          m.cfg,
		now:          m.now,
		logger:       m.logger,
		newBlockID:   m.newBlockID,
		newSessionID: m.newSessionID,
	})
	s.load(snapshot)

	// A concurrent Open for the same page and user may have won while
	// this one was loading.
	m.mu.Lock()
	if existing := m.findLocked(pageID, userID); existing != nil {
		m.mu.Unlock()
		s.close()
		return existing, nil
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.EditorSessions.Inc()
	m.logger.Info("editor session opened", "session", s.ID, "page", pageID)
	return s, nil
}

func (m *Manager) findLocked(pageID uuid.UUID, userID *uuid.UUID) *Session {
	for _, s := range m.sessions {
		if s.PageID == pageID && sameUser(s.UserID, userID) {
			return s
		}
	}
	return nil
}

func sameUser(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close ends a session. A session with unsaved changes is only closed when
// force is set; otherwise Close returns ErrUnsavedChanges and the session
// stays open.
func (m *Manager) Close(id string, force bool) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if !force && s.Dirty() {
		m.mu.Unlock()
		return fmt.Errorf("close session %s: %w", id, ErrUnsavedChanges)
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.close()
	metrics.EditorSessions.Dec()
	m.logger.Info("editor session closed", "session", id, "forced", force)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the idle timeout, discarding
// any unsaved changes, and returns how many it closed.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		if s.Dirty() {
			m.logger.Warn("reaping idle session with unsaved changes", "session", s.ID, "page", s.PageID)
		}
		s.close()
		metrics.EditorSessions.Dec()
	}
	return len(stale)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Reap(); n > 0 {
				m.logger.Info("reaped idle editor sessions", "count", n)
			}
		}
	}
}

// Shutdown waits for in-flight saves of every open session, or until ctx
// is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, s := range open {
			s.WaitSaves()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
