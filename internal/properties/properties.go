// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package properties builds the edit form for the selected block from the
// block registry's field schema and writes field edits back into the
// draft.
package properties

import (
	"errors"
	"fmt"

	"pagecraft/internal/blocks"
	"pagecraft/internal/draft"
	"pagecraft/internal/models"
)

var (
	ErrNoSelection  = errors.New("no block selected")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Draft is the part of the draft store the panel reads and writes.
type Draft interface {
	Selected() string
	Block(id string) (models.Block, bool)
	UpdateBlockContent(id string, partial map[string]any)
	UpdateBlock(id string, p draft.Patch)
}

// Setting names accepted by SetSetting.
const (
	SettingPadding    = "padding"
	SettingBackground = "background"
	SettingMaxWidth   = "maxWidth"
)

// Direction moves a list item towards the start or end of its list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// FieldView is one editable field together with its current value. List
// fields carry one row of sub-field views per item.
type FieldView struct {
	blocks.Field
	Value any           `json:"value"`
	Items [][]FieldView `json:"items,omitempty"`
}

// Form is what the panel shows. Empty is set when nothing is selected;
// Unknown when the selected block's type has no registry definition, in
// which case only the settings are editable.
type Form struct {
	Empty     bool             `json:"empty"`
	Unknown   bool             `json:"unknown"`
	BlockID   string           `json:"blockId,omitempty"`
	Type      models.BlockType `json:"type,omitempty"`
	Label     string           `json:"label,omitempty"`
	IsVisible bool             `json:"isVisible"`
	Fields    []FieldView      `json:"fields,omitempty"`
	Settings  []FieldView      `json:"settings,omitempty"`
}

// Panel edits whichever block the draft has selected.
type Panel struct {
	draft Draft
}

// New returns a panel bound to a draft.
func New(d Draft) *Panel {
	return &Panel{draft: d}
}

// Form returns the form for the current selection.
func (p *Panel) Form() Form {
	b, ok := p.selected()
	if !ok {
		return Form{Empty: true}
	}

	form := Form{
		BlockID:   b.ID,
		Type:      b.Type,
		Label:     string(b.Type),
		IsVisible: b.IsVisible,
		Settings:  settingViews(b.Settings),
	}
	def, ok := blocks.Lookup(b.Type)
	if !ok {
		form.Unknown = true
		return form
	}
	form.Label = def.Label
	form.Fields = fieldViews(def.Fields, b.Content)
	return form
}

// SetField coerces value to the kind of the named field and stores it in
// the selected block's content.
func (p *Panel) SetField(name string, value any) error {
	b, def, err := p.selectedDefinition()
	if err != nil {
		return err
	}
	f, ok := def.Field(name)
	if !ok {
		return fmt.Errorf("%s field %q: %w", b.Type, name, ErrUnknownField)
	}
	v, err := Coerce(f, value)
	if err != nil {
		return fmt.Errorf("%s field %q: %w", b.Type, name, err)
	}
	p.draft.UpdateBlockContent(b.ID, map[string]any{name: v})
	return nil
}

// SetSetting changes one presentation setting of the selected block. The
// value must be one of the setting's options.
func (p *Panel) SetSetting(name, value string) error {
	b, ok := p.selected()
	if !ok {
		return ErrNoSelection
	}
	s := b.Settings
	switch name {
	case SettingPadding:
		if !models.ValidPadding(models.Padding(value)) {
			return fmt.Errorf("padding %q: %w", value, ErrInvalidValue)
		}
		s.Padding = models.Padding(value)
	case SettingBackground:
		if !models.ValidBackground(models.Background(value)) {
			return fmt.Errorf("background %q: %w", value, ErrInvalidValue)
		}
		s.Background = models.Background(value)
	case SettingMaxWidth:
		if !models.ValidMaxWidth(models.MaxWidth(value)) {
			return fmt.Errorf("max width %q: %w", value, ErrInvalidValue)
		}
		s.MaxWidth = models.MaxWidth(value)
	default:
		return fmt.Errorf("setting %q: %w", name, ErrUnknownField)
	}
	p.draft.UpdateBlock(b.ID, draft.Patch{Settings: &s})
	return nil
}

// AppendItem adds an item with the field's item defaults to the end of a
// list field.
func (p *Panel) AppendItem(field string) error {
	return p.editList(field, func(f blocks.Field, items []any) ([]any, error) {
		return append(items, f.NewItem()), nil
	})
}

// RemoveItem deletes the item at index from a list field.
func (p *Panel) RemoveItem(field string, index int) error {
	return p.editList(field, func(_ blocks.Field, items []any) ([]any, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("item %d: %w", index, ErrInvalidValue)
		}
		out := make([]any, 0, len(items)-1)
		out = append(out, items[:index]...)
		return append(out, items[index+1:]...), nil
	})
}

// MoveItem swaps the item at index with its neighbour in direction dir.
// Moving the first item up or the last item down changes nothing.
func (p *Panel) MoveItem(field string, index int, dir Direction) error {
	return p.editList(field, func(_ blocks.Field, items []any) ([]any, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("item %d: %w", index, ErrInvalidValue)
		}
		var other int
		switch dir {
		case Up:
			other = index - 1
		case Down:
			other = index + 1
		default:
			return nil, fmt.Errorf("direction %q: %w", dir, ErrInvalidValue)
		}
		if other < 0 || other >= len(items) {
			return nil, nil
		}
		items[index], items[other] = items[other], items[index]
		return items, nil
	})
}

// SetItemField sets one sub-field of one item of a list field.
func (p *Panel) SetItemField(field string, index int, sub string, value any) error {
	return p.editList(field, func(f blocks.Field, items []any) ([]any, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("item %d: %w", index, ErrInvalidValue)
		}
		sf, ok := f.ItemField(sub)
		if !ok {
			return nil, fmt.Errorf("item field %q: %w", sub, ErrUnknownField)
		}
		v, err := Coerce(sf, value)
		if err != nil {
			return nil, fmt.Errorf("item field %q: %w", sub, err)
		}
		item, _ := items[index].(map[string]any)
		if item == nil {
			item = map[string]any{}
		}
		item[sub] = v
		items[index] = item
		return items, nil
	})
}

// editList applies fn to a copy of a list field's items and stores the
// result. A nil result with a nil error means nothing changed.
func (p *Panel) editList(field string, fn func(blocks.Field, []any) ([]any, error)) error {
	b, def, err := p.selectedDefinition()
	if err != nil {
		return err
	}
	f, ok := def.Field(field)
	if !ok || f.Kind != blocks.KindList {
		return fmt.Errorf("%s list %q: %w", b.Type, field, ErrUnknownField)
	}
	// Block returns a deep copy, so the items can be edited in place.
	items, err := fn(f, listItems(b.Content[field]))
	if err != nil {
		return fmt.Errorf("%s list %q: %w", b.Type, field, err)
	}
	if items == nil {
		return nil
	}
	p.draft.UpdateBlockContent(b.ID, map[string]any{field: items})
	return nil
}

func (p *Panel) selected() (models.Block, bool) {
	id := p.draft.Selected()
	if id == "" {
		return models.Block{}, false
	}
	return p.draft.Block(id)
}

func (p *Panel) selectedDefinition() (models.Block, blocks.Definition, error) {
	b, ok := p.selected()
	if !ok {
		return models.Block{}, blocks.Definition{}, ErrNoSelection
	}
	def, ok := blocks.Lookup(b.Type)
	if !ok {
		return b, blocks.Definition{}, fmt.Errorf("block type %q has no fields: %w", b.Type, ErrUnknownField)
	}
	return b, def, nil
}

func fieldViews(fields []blocks.Field, content map[string]any) []FieldView {
	out := make([]FieldView, len(fields))
	for i, f := range fields {
		v := FieldView{Field: f, Value: content[f.Name]}
		if f.Kind == blocks.KindList {
			items := listItems(content[f.Name])
			v.Value = items
			v.Items = make([][]FieldView, len(items))
			for j, it := range items {
				m, _ := it.(map[string]any)
				v.Items[j] = fieldViews(f.ItemFields, m)
			}
		}
		out[i] = v
	}
	return out
}

func settingViews(s models.Settings) []FieldView {
	padding := blocks.Field{Name: SettingPadding, Label: "Padding", Kind: blocks.KindSelect}
	for _, o := range models.PaddingOptions {
		padding.Options = append(padding.Options, blocks.Option{Value: string(o), Label: string(o)})
	}
	background := blocks.Field{Name: SettingBackground, Label: "Background", Kind: blocks.KindSelect}
	for _, o := range models.BackgroundOptions {
		background.Options = append(background.Options, blocks.Option{Value: string(o), Label: string(o)})
	}
	width := blocks.Field{Name: SettingMaxWidth, Label: "Max width", Kind: blocks.KindSelect}
	for _, o := range models.MaxWidthOptions {
		width.Options = append(width.Options, blocks.Option{Value: string(o), Label: string(o)})
	}
	return []FieldView{
		{Field: padding, Value: string(s.Padding)},
		{Field: background, Value: string(s.Background)},
		{Field: width, Value: string(s.MaxWidth)},
	}
}

// listItems normalizes a stored list value to []any. Anything that is not
// a list reads as empty.
func listItems(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	}
	return []any{}
}
