// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package draft holds the in-memory draft of a page being edited: the
// ordered block list, the selection and hover cursors, the preview device
// and the dirty flag. A Store is the only place draft state is mutated;
// the palette, properties panel and preview read from it and write through
// its operations.
//
// A Store has exactly one writer and is not safe for concurrent use. The
// editor session serializes access to it.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"pagecraft/internal/blocks"
	"pagecraft/internal/models"
)

// ErrUnknownBlockType is returned by AddBlock for a type that has no
// registry definition.
var ErrUnknownBlockType = errors.New("unknown block type")

// Patch carries the top-level block fields UpdateBlock may change. Nil
// fields are left untouched; id, type and content are never patched.
type Patch struct {
	Settings  *models.Settings `json:"settings,omitempty"`
	IsVisible *bool            `json:"isVisible,omitempty"`
}

// Store is the single source of truth for one page draft.
type Store struct {
	blocks   []models.Block
	selected string
	hovered  string
	device   models.Device
	dirty    bool
	revision uint64

	newID  func() string
	logger *slog.Logger

	subs    map[int]func(Event)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides how fresh block ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for recovered load failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty draft.
func New(opts ...Option) *Store {
	s := &Store{
		device: models.DeviceDesktop,
		newID:  uuid.NewString,
		logger: slog.Default(),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the draft wholesale and clears selection, hover and the
// dirty flag. Malformed input (a block without id or type, or duplicate
// ids) leaves an empty draft instead of failing.
func (s *Store) Load(list []models.Block) {
	normalized, err := normalize(list)
	if err != nil {
		s.logger.Warn("draft load rejected, starting empty", "error", err, "blocks", len(list))
		normalized = nil
	}
	s.blocks = normalized
	s.selected = ""
	s.hovered = ""
	s.dirty = false
	s.revision++
	s.publish(Event{Op: OpLoad, Revision: s.revision})
}

// LoadJSON decodes a snapshot and loads it. Both a bare block array and an
// object with a "blocks" array are accepted. Undecodable input loads an
// empty draft.
func (s *Store) LoadJSON(data []byte) {
	list, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("draft snapshot undecodable, starting empty", "error", err)
		list = nil
	}
	s.Load(list)
}

// DecodeSnapshot parses a block snapshot in either accepted shape.
func DecodeSnapshot(data []byte) ([]models.Block, error) {
	var list []models.Block
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Blocks []models.Block `json:"blocks"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode draft snapshot: %w", err)
	}
	return wrapped.Blocks, nil
}

func normalize(list []models.Block) ([]models.Block, error) {
	seen := make(map[string]bool, len(list))
	out := make([]models.Block, 0, len(list))
	for i, b := range list {
		if b.ID == "" {
			return nil, fmt.Errorf("block %d has no id", i)
		}
		if b.Type == "" {
			return nil, fmt.Errorf("block %s has no type", b.ID)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate block id %s", b.ID)
		}
		seen[b.ID] = true

		b = b.Clone()
		if b.Content == nil {
			b.Content = map[string]any{}
		}
		b.Settings = b.Settings.Normalize()
		b.Position = len(out)
		out = append(out, b)
	}
	return out, nil
}

// AddBlock inserts a new block of type t at position at, clamped to
// [0, Len()], and selects it.
func (s *Store) AddBlock(t models.BlockType, at int) (models.Block, error) {
	def, ok := blocks.Lookup(t)
	if !ok {
		return models.Block{}, fmt.Errorf("add block %q: %w", t, ErrUnknownBlockType)
	}

	b := models.Block{
		ID:        s.freshID(),
		Type:      t,
		Content:   def.DefaultContent(),
		Settings:  models.DefaultSettings(),
		IsVisible: true,
	}
	at = clamp(at, 0, len(s.blocks))
	s.blocks = insertAt(s.blocks, at, b)
	s.selected = b.ID
	s.commit(OpAdd, b.ID)
	return b.Clone(), nil
}

// DeleteBlock removes a block and clears any cursor that pointed at it.
func (s *Store) DeleteBlock(id string) {
	i := indexOf(s.blocks, id)
	if i < 0 {
		return
	}
	next := make([]models.Block, 0, len(s.blocks)-1)
	next = append(next, s.blocks[:i]...)
	next = append(next, s.blocks[i+1:]...)
	s.blocks = next

	if s.selected == id {
		s.selected = ""
	}
	if s.hovered == id {
		s.hovered = ""
	}
	s.commit(OpDelete, id)
}

// DuplicateBlock inserts a deep copy of a block right after it, under a
// new id, and selects the copy. It returns the copy and whether the source
// existed.
func (s *Store) DuplicateBlock(id string) (models.Block, bool) {
	i := indexOf(s.blocks, id)
	if i < 0 {
		return models.Block{}, false
	}
	clone := s.blocks[i].Clone()
	clone.ID = s.freshID()
	s.blocks = insertAt(s.blocks, i+1, clone)
	s.selected = clone.ID
	s.commit(OpDuplicate, clone.ID)
	return clone.Clone(), true
}

// ToggleBlockVisibility flips whether a block is shown on the live site.
func (s *Store) ToggleBlockVisibility(id string) {
	i := indexOf(s.blocks, id)
	if i < 0 {
		return
	}
	s.blocks[i].IsVisible = !s.blocks[i].IsVisible
	s.commit(OpToggleVisibility, id)
}

// ReorderBlocks applies a drag from sourceID onto targetID. See Reorder.
// It reports whether the order changed; a no-op leaves dirty untouched.
func (s *Store) ReorderBlocks(sourceID, targetID string) bool {
	next, ok := Reorder(s.blocks, sourceID, targetID)
	if !ok {
		return false
	}
	s.blocks = next
	s.commit(OpReorder, sourceID)
	return true
}

// MoveBlockTo moves a block to an absolute index, for drops at the start
// or end of the page. It reports whether the order changed.
func (s *Store) MoveBlockTo(id string, index int) bool {
	next, ok := MoveTo(s.blocks, id, index)
	if !ok {
		return false
	}
	s.blocks = next
	s.commit(OpReorder, id)
	return true
}

// UpdateBlockContent shallow-merges partial into a block's content. Keys
// the block type does not declare are stored as given.
func (s *Store) UpdateBlockContent(id string, partial map[string]any) {
	i := indexOf(s.blocks, id)
	if i < 0 || len(partial) == 0 {
		return
	}
	content := models.CloneContent(s.blocks[i].Content)
	if content == nil {
		content = make(map[string]any, len(partial))
	}
	for k, v := range models.CloneContent(partial) {
		content[k] = v
	}
	s.blocks[i].Content = content
	s.commit(OpUpdateContent, id)
}

// UpdateBlock merges top-level fields other than id, type and content.
func (s *Store) UpdateBlock(id string, p Patch) {
	i := indexOf(s.blocks, id)
	if i < 0 || (p.Settings == nil && p.IsVisible == nil) {
		return
	}
	if p.Settings != nil {
		s.blocks[i].Settings = p.Settings.Normalize()
	}
	if p.IsVisible != nil {
		s.blocks[i].IsVisible = *p.IsVisible
	}
	s.commit(OpUpdate, id)
}

// SelectBlock sets the selection cursor. An empty or unknown id clears it.
// Hover is left alone.
func (s *Store) SelectBlock(id string) {
	if indexOf(s.blocks, id) < 0 {
		id = ""
	}
	if s.selected == id {
		return
	}
	s.selected = id
	s.publish(Event{Op: OpSelect, BlockID: id, Revision: s.revision})
}

// HoverBlock sets the hover cursor. An empty or unknown id clears it.
// Selection is left alone.
func (s *Store) HoverBlock(id string) {
	if indexOf(s.blocks, id) < 0 {
		id = ""
	}
	if s.hovered == id {
		return
	}
	s.hovered = id
	s.publish(Event{Op: OpHover, BlockID: id, Revision: s.revision})
}

// SetDevice switches the simulated preview viewport. Block data is never
// affected and the draft does not become dirty.
func (s *Store) SetDevice(d models.Device) bool {
	if !models.ValidDevice(d) {
		return false
	}
	if s.device != d {
		s.device = d
		s.publish(Event{Op: OpDevice, Revision: s.revision})
	}
	return true
}

// MarkSaved clears the dirty flag if rev is still the current revision,
// i.e. nothing changed since the snapshot that was persisted. It reports
// whether the draft is now clean.
func (s *Store) MarkSaved(rev uint64) bool {
	if rev != s.revision {
		return false
	}
	if s.dirty {
		s.dirty = false
		s.publish(Event{Op: OpSaved, Revision: rev})
	}
	return true
}

// Blocks returns a deep copy of the ordered block list with Position set
// to each block's index.
func (s *Store) Blocks() []models.Block {
	out := make([]models.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b.Clone()
		out[i].Position = i
	}
	return out
}

// Snapshot returns the block list together with the revision it reflects.
func (s *Store) Snapshot() ([]models.Block, uint64) {
	return s.Blocks(), s.revision
}

// Block returns a copy of the block with the given id.
func (s *Store) Block(id string) (models.Block, bool) {
	i := indexOf(s.blocks, id)
	if i < 0 {
		return models.Block{}, false
	}
	b := s.blocks[i].Clone()
	b.Position = i
	return b, true
}

// Index returns the position of a block, or -1.
func (s *Store) Index(id string) int { return indexOf(s.blocks, id) }

// Len returns the number of blocks, hidden ones included.
func (s *Store) Len() int { return len(s.blocks) }

// Selected returns the selected block id, or "".
func (s *Store) Selected() string { return s.selected }

// Hovered returns the hovered block id, or "".
func (s *Store) Hovered() string { return s.hovered }

// Device returns the current preview viewport.
func (s *Store) Device() models.Device { return s.device }

// Dirty reports whether the draft has unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// Revision is a counter bumped by every mutation.
func (s *Store) Revision() uint64 { return s.revision }

func (s *Store) freshID() string {
	for {
		id := s.newID()
		if id != "" && indexOf(s.blocks, id) < 0 {
			return id
		}
	}
}

func (s *Store) commit(op Op, id string) {
	s.dirty = true
	s.revision++
	s.publish(Event{Op: op, BlockID: id, Revision: s.revision})
}
