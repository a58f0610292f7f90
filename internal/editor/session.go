// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor runs block editing sessions. A Session owns one page
// draft together with the inserter, properties panel and preview that
// work on it, and talks to persistence on explicit saves. HTTP handlers
// reach sessions through a Manager.
package editor

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"pagecraft/internal/blocks"
	"pagecraft/internal/debounce"
	"pagecraft/internal/draft"
	"pagecraft/internal/metrics"
	"pagecraft/internal/models"
	"pagecraft/internal/palette"
	"pagecraft/internal/preview"
	"pagecraft/internal/properties"
)

var (
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrUnsavedChanges       = errors.New("unsaved changes")
	ErrSaveThrottled        = errors.New("saving too often")
	ErrSessionNotFound      = errors.New("editor session not found")
	ErrBlockNotFound        = errors.New("block not found")
)

// Persister loads and stores the block list of a page.
type Persister interface {
	// LoadSnapshot returns the stored blocks of a page as JSON.
	LoadSnapshot(ctx context.Context, pageID uuid.UUID) ([]byte, error)
	// SaveBlocks replaces the stored blocks of a page.
	SaveBlocks(ctx context.Context, pageID uuid.UUID, list []models.Block, userID *uuid.UUID) error
}

// PreviewSink receives the debounced edit-mode preview of a session.
type PreviewSink interface {
	PutPreview(ctx context.Context, sessionID string, html []byte) error
}

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a non-blocking message for the editor UI.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

const maxNotices = 20

// State is a snapshot of a session for the editor UI.
type State struct {
	SessionID string         `json:"sessionId"`
	PageID    uuid.UUID      `json:"pageId"`
	Blocks    []models.Block `json:"blocks"`
	Selected  string         `json:"selected,omitempty"`
	Hovered   string         `json:"hovered,omitempty"`
	Device    models.Device  `json:"device"`
	Dirty     bool           `json:"dirty"`
	Revision  uint64         `json:"revision"`
	Saving    int            `json:"saving"`
	Palette   palette.State  `json:"palette"`
}

// SaveTicket tracks one save running in the background.
type SaveTicket struct {
	Revision uint64

	done  chan struct{}
	err   error
	clean bool
}

// Wait blocks until the save finishes or ctx is done. It returns the
// persistence error, if any.
func (t *SaveTicket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clean reports whether the finished save left the draft clean. It is
// false when the save failed or the draft changed while it ran.
func (t *SaveTicket) Clean() bool {
	select {
	case <-t.done:
		return t.clean
	default:
		return false
	}
}

// Session is one page being edited. All methods are safe for concurrent
// use; they serialize on the session so the draft keeps a single writer.
type Session struct {
	ID     string
	PageID uuid.UUID
	UserID *uuid.UUID

	mu       sync.Mutex
	draft    *draft.Store
	inserter *palette.Inserter
	panel    *properties.Panel
	renderer *preview.Renderer
	ref      models.ReferenceData
	notices  []Notice
	lastUsed time.Time
	saving   int
	lastSave *SaveTicket
	closed   bool

	persister   Persister
	sink        PreviewSink
	previewSync *debounce.Debouncer
	limiter     *rate.Limiter
	saveTimeout time.Duration
	apiBase     string
	now         func() time.Time
	logger      *slog.Logger
	unsubscribe func()
	inflight    sync.WaitGroup
}

type sessionDeps struct {
	persister    Persister
	sink         PreviewSink
	renderer     *preview.Renderer
	ref          models.ReferenceData
	cfg          Config
	now          func() time.Time
	logger       *slog.Logger
	newBlockID   func() string
	newSessionID func() string
}

func newSession(pageID uuid.UUID, userID *uuid.UUID, deps sessionDeps) *Session {
	id := deps.newSessionID()
	logger := deps.logger.With("session", id, "page", pageID)

	opts := []draft.Option{draft.WithLogger(logger)}
	if deps.newBlockID != nil {
		opts = append(opts, draft.WithIDGenerator(deps.newBlockID))
	}
	store := draft.New(opts...)

	s := &Session{
		ID:          id,
		PageID:      pageID,
		UserID:      userID,
		draft:       store,
		inserter:    palette.NewInserter(store),
		panel:       properties.New(store),
		renderer:    deps.renderer,
		ref:         deps.ref,
		lastUsed:    deps.now(),
		persister:   deps.persister,
		sink:        deps.sink,
		limiter:     rate.NewLimiter(rate.Every(deps.cfg.SaveEvery), deps.cfg.SaveBurst),
		saveTimeout: deps.cfg.SaveTimeout,
		apiBase:     deps.cfg.APIBase + "/" + id,
		now:         deps.now,
		logger:      logger,
	}
	s.previewSync = debounce.New(deps.cfg.PreviewDebounce, s.syncPreview)
	s.unsubscribe = store.Subscribe(s.onEvent)
	return s
}

// onEvent runs under s.mu, inside whichever store call published it.
func (s *Session) onEvent(e draft.Event) {
	metrics.EditorOperations.WithLabelValues(string(e.Op)).Inc()
	if e.Mutation() {
		s.logger.Debug("draft changed", "op", e.Op, "block", e.BlockID, "revision", e.Revision)
	}
	if e.Op == draft.OpSaved || s.sink == nil {
		return
	}
	s.previewSync.Trigger()
}

func (s *Session) lock() {
	s.mu.Lock()
	s.lastUsed = s.now()
}

// load seeds the draft from a stored snapshot. Undecodable data leaves an
// empty draft.
func (s *Session) load(snapshot []byte) {
	s.lock()
	defer s.mu.Unlock()
	if len(snapshot) == 0 {
		s.draft.Load(nil)
		return
	}
	s.draft.LoadJSON(snapshot)
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		SessionID: s.ID,
		PageID:    s.PageID,
		Blocks:    s.draft.Blocks(),
		Selected:  s.draft.Selected(),
		Hovered:   s.draft.Hovered(),
		Device:    s.draft.Device(),
		Dirty:     s.draft.Dirty(),
		Revision:  s.draft.Revision(),
		Saving:    s.saving,
		Palette:   s.inserter.State(),
	}
}

// Dirty reports whether the draft has unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Dirty()
}

// OwnedBy reports whether userID opened the session.
func (s *Session) OwnedBy(userID *uuid.UUID) bool {
	return sameUser(s.UserID, userID)
}

// LastUsed returns when the session last served a call.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// AddBlock inserts a block of type t at position at. See draft.Store.AddBlock.
func (s *Session) AddBlock(t models.BlockType, at int) (models.Block, error) {
	s.lock()
	defer s.mu.Unlock()
	if at == palette.EndOfPage {
		at = s.draft.Len()
	}
	return s.draft.AddBlock(t, at)
}

// DeleteBlock removes a block. Deleting cannot be undone, so it is refused
// with ErrConfirmationRequired unless confirmed is set. Deleting a block
// that does not exist is a no-op.
func (s *Session) DeleteBlock(id string, confirmed bool) error {
	s.lock()
	defer s.mu.Unlock()
	if s.draft.Index(id) < 0 {
		return nil
	}
	if !confirmed {
		return fmt.Errorf("delete block %s: %w", id, ErrConfirmationRequired)
	}
	s.draft.DeleteBlock(id)
	return nil
}

// DuplicateBlock copies a block in place. A missing id returns
// ErrBlockNotFound.
func (s *Session) DuplicateBlock(id string) (models.Block, error) {
	s.lock()
	defer s.mu.Unlock()
	b, ok := s.draft.DuplicateBlock(id)
	if !ok {
		return models.Block{}, fmt.Errorf("duplicate %s: %w", id, ErrBlockNotFound)
	}
	return b, nil
}

// ToggleVisibility flips whether a block is shown on the live site.
func (s *Session) ToggleVisibility(id string) {
	s.lock()
	defer s.mu.Unlock()
	s.draft.ToggleBlockVisibility(id)
}

// UpdateContent shallow-merges partial into a block's content.
func (s *Session) UpdateContent(id string, partial map[string]any) {
	s.lock()
	defer s.mu.Unlock()
	s.draft.UpdateBlockContent(id, partial)
}

// UpdateBlock patches a block's settings or visibility.
func (s *Session) UpdateBlock(id string, p draft.Patch) {
	s.lock()
	defer s.mu.Unlock()
	s.draft.UpdateBlock(id, p)
}

// Reorder applies a drop of sourceID onto targetID.
func (s *Session) Reorder(sourceID, targetID string) bool {
	s.lock()
	defer s.mu.Unlock()
	return s.draft.ReorderBlocks(sourceID, targetID)
}

// MoveTo applies a drop of id at an absolute index.
func (s *Session) MoveTo(id string, index int) bool {
	s.lock()
	defer s.mu.Unlock()
	return s.draft.MoveBlockTo(id, index)
}

// Select sets the selection cursor; "" clears it.
func (s *Session) Select(id string) {
	s.lock()
	defer s.mu.Unlock()
	s.draft.SelectBlock(id)
}

// Hover sets the hover cursor; "" clears it.
func (s *Session) Hover(id string) {
	s.lock()
	defer s.mu.Unlock()
	s.draft.HoverBlock(id)
}

// SetDevice switches the preview viewport. It reports whether d is valid.
func (s *Session) SetDevice(d models.Device) bool {
	s.lock()
	defer s.mu.Unlock()
	return s.draft.SetDevice(d)
}

// OpenPalette opens the inserter at position, or at the end for
// palette.EndOfPage.
func (s *Session) OpenPalette(position int) palette.State {
	s.lock()
	defer s.mu.Unlock()
	s.inserter.Open(position)
	return s.inserter.State()
}

// FilterPalette updates the inserter's search and category.
func (s *Session) FilterPalette(query string, category blocks.Category) palette.State {
	s.lock()
	defer s.mu.Unlock()
	s.inserter.SetQuery(query)
	s.inserter.SetCategory(category)
	return s.inserter.State()
}

// Palette returns the inserter state.
func (s *Session) Palette() palette.State {
	s.lock()
	defer s.mu.Unlock()
	return s.inserter.State()
}

// ChoosePalette inserts a block from the open inserter and closes it.
func (s *Session) ChoosePalette(t models.BlockType) (models.Block, error) {
	s.lock()
	defer s.mu.Unlock()
	return s.inserter.Choose(t)
}

// ClosePalette dismisses the inserter.
func (s *Session) ClosePalette() {
	s.lock()
	defer s.mu.Unlock()
	s.inserter.Close()
}

// Properties returns the properties form for the selected block.
func (s *Session) Properties() properties.Form {
	s.lock()
	defer s.mu.Unlock()
	return s.panel.Form()
}

// SetField writes one content field of the selected block.
func (s *Session) SetField(name string, value any) error {
	s.lock()
	defer s.mu.Unlock()
	return s.panel.SetField(name, value)
}

// SetSetting writes one presentation setting of the selected block.
func (s *Session) SetSetting(name, value string) error {
	s.lock()
	defer s.mu.Unlock()
	return s.panel.SetSetting(name, value)
}

// ListAction names a list editor operation.
type ListAction string

const (
	ListAppend   ListAction = "append"
	ListRemove   ListAction = "remove"
	ListMoveUp   ListAction = "up"
	ListMoveDown ListAction = "down"
	ListSet      ListAction = "set"
)

// EditList applies a list editor operation to a list field of the
// selected block. sub and value are only used by ListSet.
func (s *Session) EditList(field string, action ListAction, index int, sub string, value any) error {
	s.lock()
	defer s.mu.Unlock()
	switch action {
	case ListAppend:
		return s.panel.AppendItem(field)
	case ListRemove:
		return s.panel.RemoveItem(field, index)
	case ListMoveUp:
		return s.panel.MoveItem(field, index, properties.Up)
	case ListMoveDown:
		return s.panel.MoveItem(field, index, properties.Down)
	case ListSet:
		return s.panel.SetItemField(field, index, sub, value)
	}
	return fmt.Errorf("list action %q: %w", action, properties.ErrInvalidValue)
}

// Preview renders the draft in edit mode.
func (s *Session) Preview() (template.HTML, error) {
	s.lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Session) renderLocked() (template.HTML, error) {
	return s.renderer.Render(s.draft.Blocks(), preview.Options{
		Mode:       preview.ModeEdit,
		Device:     s.draft.Device(),
		SelectedID: s.draft.Selected(),
		HoveredID:  s.draft.Hovered(),
		Ref:        s.ref,
		SelectURL:  s.apiBase + "/select",
		HoverURL:   s.apiBase + "/hover",
	})
}

// syncPreview runs on the debouncer's goroutine.
func (s *Session) syncPreview() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	html, err := s.renderLocked()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("preview sync render failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.PutPreview(ctx, s.ID, []byte(html)); err != nil {
		s.logger.Warn("preview sync failed", "error", err)
		return
	}
	metrics.PreviewSyncs.Inc()
}

// Save persists the current draft in the background and returns at once;
// editing continues while it runs. Saves of one session commit in the
// order they were issued, so storage always ends on the newest snapshot.
// Saves are rate limited per session. A successful save clears the dirty
// flag unless the draft changed after the snapshot was taken; a failed
// save leaves the draft dirty and queues an error notice.
func (s *Session) Save(ctx context.Context) (*SaveTicket, error) {
	s.lock()
	if !s.limiter.Allow() {
		s.mu.Unlock()
		metrics.EditorSaves.WithLabelValues("throttled").Inc()
		return nil, ErrSaveThrottled
	}
	list, rev := s.draft.Snapshot()
	t := &SaveTicket{Revision: rev, done: make(chan struct{})}
	prev := s.lastSave
	s.lastSave = t
	s.saving++
	s.mu.Unlock()

	// The detached preview should show what is being saved.
	s.previewSync.Flush()

	s.inflight.Add(1)
	go s.runSave(context.WithoutCancel(ctx), t, prev, list)
	return t, nil
}

// runSave waits for prev, the save issued just before t, so commits never
// overtake each other.
func (s *Session) runSave(ctx context.Context, t, prev *SaveTicket, list []models.Block) {
	defer s.inflight.Done()
	defer close(t.done)

	if prev != nil {
		<-prev.done
	}
	if s.saveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.saveTimeout)
		defer cancel()
	}
	err := s.persister.SaveBlocks(ctx, s.PageID, list, s.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving--
	if s.lastSave == t {
		s.lastSave = nil
	}
	if err != nil {
		t.err = err
		metrics.EditorSaves.WithLabelValues("error").Inc()
		s.logger.Error("draft save failed", "revision", t.Revision, "error", err)
		s.notifyLocked(NoticeError, "Saving failed. Your changes are still here, please try again.")
		return
	}
	t.clean = s.draft.MarkSaved(t.Revision)
	metrics.EditorSaves.WithLabelValues("ok").Inc()
	s.logger.Info("draft saved", "revision", t.Revision, "blocks", len(list), "clean", t.clean)
	s.notifyLocked(NoticeInfo, "Page saved.")
}

func (s *Session) notifyLocked(level NoticeLevel, msg string) {
	s.notices = append(s.notices, Notice{Level: level, Message: msg, At: s.now()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// Notices drains the queued notices.
func (s *Session) Notices() []Notice {
	s.lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// LeaveWarning returns the message to show before navigating away, or ""
// when there is nothing to lose.
func (s *Session) LeaveWarning() string {
	s.lock()
	defer s.mu.Unlock()
	if !s.draft.Dirty() {
		return ""
	}
	return "You have unsaved changes. Leave without saving?"
}

// WaitSaves blocks until every save started so far has finished.
func (s *Session) WaitSaves() {
	s.inflight.Wait()
}

// previewDropper is implemented by sinks that can forget a session's
// preview once the session is gone.
type previewDropper interface {
	DropPreview(ctx context.Context, sessionID string) error
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.unsubscribe()
	s.mu.Unlock()
	s.previewSync.Stop()

	if d, ok := s.sink.(previewDropper); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.DropPreview(ctx, s.ID); err != nil {
			s.logger.Warn("drop preview failed", "error", err)
		}
	}
}
