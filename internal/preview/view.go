// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package preview

import (
	"html/template"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"pagecraft/internal/markdown"
	"pagecraft/internal/models"
)

// Content wraps a block's content payload with lookups that never fail.
// Templates use these so a half-filled block still renders.
type Content map[string]any

// Str returns the string at key, or fallback when it is missing or blank.
func (c Content) Str(key, fallback string) string {
	switch v := c[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return fallback
}

// Has reports whether key holds a non-blank string.
func (c Content) Has(key string) bool {
	return c.Str(key, "") != ""
}

// Int returns the number at key, or fallback.
func (c Content) Int(key string, fallback int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// Bool returns the boolean at key, or fallback.
func (c Content) Bool(key string, fallback bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return fallback
}

// Items returns the list at key as content items. Entries that are not
// objects are skipped.
func (c Content) Items(key string) []Content {
	var raw []any
	switch v := c[key].(type) {
	case []any:
		raw = v
	case []map[string]any:
		for _, m := range v {
			raw = append(raw, m)
		}
	}
	out := make([]Content, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Content(m))
		}
	}
	return out
}

// blockView is the data every block template executes against.
type blockView struct {
	ID       string
	Type     models.BlockType
	C        Content
	Settings models.Settings
	Edit     bool
	Ref      models.ReferenceData
}

// Markdown renders the Markdown at key as sanitized HTML.
func (v blockView) Markdown(key string) template.HTML {
	src := v.C.Str(key, "")
	if src == "" {
		return ""
	}
	out, err := markdown.ToHTML(src)
	if err != nil {
		slog.Warn("preview markdown failed", "block", v.ID, "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(out)
}

// Services returns the reference services capped at the block's maxItems.
func (v blockView) Services() []models.Service {
	return limit(v.Ref.Services, v.C.Int("maxItems", 6))
}

// Testimonials returns the reference testimonials capped at maxItems.
func (v blockView) Testimonials() []models.Testimonial {
	return limit(v.Ref.Testimonials, v.C.Int("maxItems", 3))
}

// Locations returns the reference locations capped at maxItems.
func (v blockView) Locations() []models.Location {
	return limit(v.Ref.Locations, v.C.Int("maxItems", 6))
}

// Columns returns the grid column count as a CSS class suffix.
func (v blockView) Columns(fallback string) string {
	switch c := v.C.Str("columns", fallback); c {
	case "2", "3", "4":
		return c
	}
	return fallback
}

func limit[T any](items []T, n int) []T {
	if n < 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// stars renders a 0..5 rating as filled and empty stars.
func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func iconGlyph(name string) string {
	switch name {
	case "check":
		return "✓"
	case "star":
		return "★"
	case "clock":
		return "◷"
	case "shield":
		return "⛨"
	case "wrench":
		return "🔧"
	case "bolt":
		return "⚡"
	case "home":
		return "⌂"
	}
	return "•"
}

func inc(i int) int { return i + 1 }

// PrimaryLocation returns the first reference location, used for the
// business contact details.
func (v blockView) PrimaryLocation() *models.Location {
	if len(v.Ref.Locations) == 0 {
		return nil
	}
	return &v.Ref.Locations[0]
}

// telURL builds a tel: link from a display phone number.
func telURL(phone string) template.URL {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "#"
	}
	return template.URL("tel:" + b.String())
}
