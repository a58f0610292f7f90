// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package palette is the block inserter: a searchable catalog of block
// types and the transient state of one open insert dialog.
package palette

import (
	"fmt"
	"strings"

	"pagecraft/internal/blocks"
	"pagecraft/internal/models"
)

// EndOfPage as an insert position appends the new block after the last one.
const EndOfPage = -1

// Entry is one insertable block type as shown in the palette.
type Entry struct {
	Type        models.BlockType `json:"type"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Category    blocks.Category  `json:"category"`
}

// Catalog returns every insertable block type in registry order.
func Catalog() []Entry {
	defs := blocks.Catalog()
	out := make([]Entry, len(defs))
	for i, d := range defs {
		out[i] = Entry{Type: d.Type, Label: d.Label, Description: d.Description, Category: d.Category}
	}
	return out
}

// Filter returns the catalog entries matching query and category. The
// query is a case-insensitive substring of the label, description or type;
// an empty query or category matches everything.
func Filter(query string, category blocks.Category) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Entry
	for _, e := range Catalog() {
		if category != "" && e.Category != category {
			continue
		}
		if q != "" && !e.matches(q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (e Entry) matches(q string) bool {
	return strings.Contains(strings.ToLower(e.Label), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		strings.Contains(strings.ToLower(string(e.Type)), q)
}

// Categories returns the palette categories in display order, leaving out
// any that have no block types.
func Categories() []blocks.Category {
	used := make(map[blocks.Category]bool)
	for _, e := range Catalog() {
		used[e.Category] = true
	}
	out := make([]blocks.Category, 0, len(blocks.Categories))
	for _, c := range blocks.Categories {
		if used[c] {
			out = append(out, c)
		}
	}
	return out
}

// Adder is the part of the draft store the inserter writes through.
type Adder interface {
	AddBlock(t models.BlockType, at int) (models.Block, error)
	Len() int
}

// State is a snapshot of an inserter for rendering.
type State struct {
	Open     bool            `json:"open"`
	Position int             `json:"position"`
	Query    string          `json:"query"`
	Category blocks.Category `json:"category"`
	Results  []Entry         `json:"results"`
}

// Inserter holds the search and filter of one insert dialog. Nothing it
// holds outlives the dialog: Close resets everything.
type Inserter struct {
	store    Adder
	open     bool
	position int
	query    string
	category blocks.Category
}

// NewInserter binds an inserter to a draft.
func NewInserter(store Adder) *Inserter {
	return &Inserter{store: store, position: EndOfPage}
}

// Open shows the dialog for inserting at position, or at the end of the
// page for EndOfPage. The query and category start empty.
func (in *Inserter) Open(position int) {
	in.open = true
	in.position = position
	in.query = ""
	in.category = ""
}

// SetQuery updates the free-text search.
func (in *Inserter) SetQuery(q string) { in.query = q }

// SetCategory restricts results to one category. An empty category
// removes the restriction.
func (in *Inserter) SetCategory(c blocks.Category) { in.category = c }

// Results returns the entries matching the current search and category.
func (in *Inserter) Results() []Entry { return Filter(in.query, in.category) }

// IsOpen reports whether the dialog is showing.
func (in *Inserter) IsOpen() bool { return in.open }

// State returns a snapshot of the dialog.
func (in *Inserter) State() State {
	return State{
		Open:     in.open,
		Position: in.position,
		Query:    in.query,
		Category: in.category,
		Results:  in.Results(),
	}
}

// Choose inserts a block of type t at the dialog's position and closes it.
// The dialog stays open when the insert fails.
func (in *Inserter) Choose(t models.BlockType) (models.Block, error) {
	at := in.position
	if at < 0 {
		at = in.store.Len()
	}
	b, err := in.store.AddBlock(t, at)
	if err != nil {
		return models.Block{}, fmt.Errorf("insert %s: %w", t, err)
	}
	in.Close()
	return b, nil
}

// Close hides the dialog and resets its search, category and position.
func (in *Inserter) Close() {
	in.open = false
	in.position = EndOfPage
	in.query = ""
	in.category = ""
}
