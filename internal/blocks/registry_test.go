// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"testing"

	"pagecraft/internal/models"
)

// TestEveryBlockTypeRegistered fails when a block type constant is added
// without a registry entry.
func TestEveryBlockTypeRegistered(t *testing.T) {
	for _, bt := range models.AllBlockTypes {
		d, ok := Lookup(bt)
		if !ok {
			t.Errorf("block type %q has no definition", bt)
			continue
		}
		if d.Label == "" || d.Description == "" {
			t.Errorf("block type %q is missing palette metadata", bt)
		}
		if d.Category == "" {
			t.Errorf("block type %q has no category", bt)
		}
	}
	if len(registry) != len(models.AllBlockTypes) {
		t.Errorf("registry has %d entries, want %d", len(registry), len(models.AllBlockTypes))
	}
}

// TestFieldsHaveDefaults checks that every schema field has a value in the
// default content, so a new block renders fully in the properties panel.
func TestFieldsHaveDefaults(t *testing.T) {
	for _, d := range Catalog() {
		content := d.DefaultContent()
		for _, f := range d.Fields {
			v, ok := content[f.Name]
			if !ok {
				t.Errorf("%s: field %q has no default", d.Type, f.Name)
				continue
			}
			if f.Kind == KindSelect {
				s, _ := v.(string)
				if !f.HasOption(s) {
					t.Errorf("%s: default %q for %q is not an option", d.Type, s, f.Name)
				}
			}
			if f.Kind == KindList {
				if _, ok := v.([]any); !ok {
					t.Errorf("%s: default for list %q is %T, want []any", d.Type, f.Name, v)
				}
			}
		}
	}
}

func TestTestimonialsDefaults(t *testing.T) {
	c := DefaultContent(models.BlockTestimonials)
	if c["layout"] != "grid" {
		t.Errorf("layout: got %v, want grid", c["layout"])
	}
	if c["maxItems"] != 3 {
		t.Errorf("maxItems: got %v, want 3", c["maxItems"])
	}
	if c["showRating"] != true {
		t.Errorf("showRating: got %v, want true", c["showRating"])
	}
}

func TestDefaultContentIsFreshCopy(t *testing.T) {
	a := DefaultContent(models.BlockFAQ)
	a["items"].([]any)[0].(map[string]any)["question"] = "mutated"

	b := DefaultContent(models.BlockFAQ)
	if b["items"].([]any)[0].(map[string]any)["question"] == "mutated" {
		t.Error("default content shares nested state between calls")
	}
}

func TestUnknownType(t *testing.T) {
	if Known("carousel_3d") {
		t.Error("unexpected known type")
	}
	if DefaultContent("carousel_3d") != nil {
		t.Error("expected nil defaults for unknown type")
	}
}

func TestCatalogOrder(t *testing.T) {
	cat := Catalog()
	if len(cat) != len(models.AllBlockTypes) {
		t.Fatalf("catalog size: got %d, want %d", len(cat), len(models.AllBlockTypes))
	}
	for i, d := range cat {
		if d.Type != models.AllBlockTypes[i] {
			t.Errorf("catalog[%d]: got %q, want %q", i, d.Type, models.AllBlockTypes[i])
		}
	}
}

func TestFieldNewItem(t *testing.T) {
	d, _ := Lookup(models.BlockFAQ)
	f, ok := d.Field("items")
	if !ok {
		t.Fatal("faq has no items field")
	}
	item := f.NewItem()
	if item["question"] != "New question" {
		t.Errorf("question: got %v", item["question"])
	}

	// Without explicit defaults the item is derived from the sub-fields.
	bare := Field{Kind: KindList, ItemFields: []Field{
		text("name", "Name", ""),
		boolean("active", "Active"),
		number("count", "Count", 2, 9),
		choice("size", "Size", opt("s", "S"), opt("l", "L")),
	}}
	got := bare.NewItem()
	if got["name"] != "" || got["active"] != false || got["count"] != 2 || got["size"] != "s" {
		t.Errorf("derived item: got %+v", got)
	}
}
