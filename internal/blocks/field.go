// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

// FieldKind selects the editor widget used for a content field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindNumber   FieldKind = "number"
	KindBoolean  FieldKind = "boolean"
	KindImage    FieldKind = "image"
	KindList     FieldKind = "list"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one editable key of a block's content payload.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Help        string    `json:"help,omitempty"`

	// Select fields.
	Options []Option `json:"options,omitempty"`

	// Number fields. Both bounds are inclusive.
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`

	// List fields: the shape of one repeated item and the values a newly
	// appended item starts with.
	ItemFields   []Field               `json:"itemFields,omitempty"`
	ItemDefaults func() map[string]any `json:"-"`
	ItemLabel    string                `json:"itemLabel,omitempty"`
}

// HasOption reports whether v is one of the field's select options.
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// ItemField returns the list item sub-field with the given name.
func (f Field) ItemField(name string) (Field, bool) {
	for _, sub := range f.ItemFields {
		if sub.Name == name {
			return sub, true
		}
	}
	return Field{}, false
}

// NewItem returns the content of a freshly appended list item.
func (f Field) NewItem() map[string]any {
	if f.ItemDefaults != nil {
		return f.ItemDefaults()
	}
	item := make(map[string]any, len(f.ItemFields))
	for _, sub := range f.ItemFields {
		switch sub.Kind {
		case KindBoolean:
			item[sub.Name] = false
		case KindNumber:
			n := 0
			if sub.Min != nil {
				n = *sub.Min
			}
			item[sub.Name] = n
		case KindSelect:
			if len(sub.Options) > 0 {
				item[sub.Name] = sub.Options[0].Value
			} else {
				item[sub.Name] = ""
			}
		default:
			item[sub.Name] = ""
		}
	}
	return item
}

func text(name, label, placeholder string) Field {
	return Field{Name: name, Label: label, Kind: KindText, Placeholder: placeholder}
}

func textarea(name, label, placeholder string) Field {
	return Field{Name: name, Label: label, Kind: KindTextarea, Placeholder: placeholder}
}

func image(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindImage, Help: "Upload an image or paste a URL."}
}

func boolean(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindBoolean}
}

func number(name, label string, min, max int) Field {
	return Field{Name: name, Label: label, Kind: KindNumber, Min: &min, Max: &max}
}

func choice(name, label string, opts ...Option) Field {
	return Field{Name: name, Label: label, Kind: KindSelect, Options: opts}
}

func list(name, label, itemLabel string, defaults func() map[string]any, items ...Field) Field {
	return Field{
		Name:         name,
		Label:        label,
		Kind:         KindList,
		ItemLabel:    itemLabel,
		ItemFields:   items,
		ItemDefaults: defaults,
	}
}

func opt(value, label string) Option {
	return Option{Value: value, Label: label}
}
