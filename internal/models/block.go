// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// BlockType tags a block variant. The set is closed; the blocks registry
// holds one definition per constant below.
type BlockType string

const (
	BlockHero         BlockType = "hero"
	BlockServicesGrid BlockType = "services_grid"
	BlockTestimonials BlockType = "testimonials"
	BlockFAQ          BlockType = "faq"
	BlockStatsGrid    BlockType = "stats_grid"
	BlockTextBlock    BlockType = "text_block"
	BlockFeatures     BlockType = "features"
	BlockProcessSteps BlockType = "process_steps"
	BlockCTA          BlockType = "cta"
	BlockLocations    BlockType = "locations"
	BlockImageText    BlockType = "image_text"
	BlockContactForm  BlockType = "contact_form"
)

// AllBlockTypes lists every block variant in catalog order.
var AllBlockTypes = []BlockType{
	BlockHero,
	BlockServicesGrid,
	BlockTestimonials,
	BlockFAQ,
	BlockStatsGrid,
	BlockTextBlock,
	BlockFeatures,
	BlockProcessSteps,
	BlockCTA,
	BlockLocations,
	BlockImageText,
	BlockContactForm,
}

// Padding is the vertical spacing scale applied around a block.
type Padding string

const (
	PaddingNone Padding = "none"
	PaddingSM   Padding = "sm"
	PaddingMD   Padding = "md"
	PaddingLG   Padding = "lg"
	PaddingXL   Padding = "xl"
)

// Background is the background treatment of a block section.
type Background string

const (
	BackgroundWhite    Background = "white"
	BackgroundGray     Background = "gray"
	BackgroundDark     Background = "dark"
	BackgroundGradient Background = "gradient"
)

// MaxWidth constrains the inner width of a block.
type MaxWidth string

const (
	MaxWidthFull      MaxWidth = "full"
	MaxWidthContainer MaxWidth = "container"
	MaxWidthNarrow    MaxWidth = "narrow"
)

var (
	PaddingOptions    = []Padding{PaddingNone, PaddingSM, PaddingMD, PaddingLG, PaddingXL}
	BackgroundOptions = []Background{BackgroundWhite, BackgroundGray, BackgroundDark, BackgroundGradient}
	MaxWidthOptions   = []MaxWidth{MaxWidthFull, MaxWidthContainer, MaxWidthNarrow}
)

// Settings holds the type-independent presentation knobs of a block.
type Settings struct {
	Padding    Padding    `json:"padding"`
	Background Background `json:"background"`
	MaxWidth   MaxWidth   `json:"maxWidth"`
}

// DefaultSettings returns the settings a freshly created block starts with.
func DefaultSettings() Settings {
	return Settings{
		Padding:    PaddingMD,
		Background: BackgroundWhite,
		MaxWidth:   MaxWidthContainer,
	}
}

// Normalize replaces empty or unrecognised values with their defaults.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if !ValidPadding(s.Padding) {
		s.Padding = d.Padding
	}
	if !ValidBackground(s.Background) {
		s.Background = d.Background
	}
	if !ValidMaxWidth(s.MaxWidth) {
		s.MaxWidth = d.MaxWidth
	}
	return s
}

// ValidPadding reports whether p is one of the padding options.
func ValidPadding(p Padding) bool {
	for _, o := range PaddingOptions {
		if o == p {
			return true
		}
	}
	return false
}

// ValidBackground reports whether b is one of the background options.
func ValidBackground(b Background) bool {
	for _, o := range BackgroundOptions {
		if o == b {
			return true
		}
	}
	return false
}

// ValidMaxWidth reports whether m is one of the max-width options.
func ValidMaxWidth(m MaxWidth) bool {
	for _, o := range MaxWidthOptions {
		if o == m {
			return true
		}
	}
	return false
}

// Block is one content unit on a page. Position mirrors the block's index
// in its page and is only meaningful at the persistence and API boundary.
type Block struct {
	ID        string         `json:"id"`
	Type      BlockType      `json:"type"`
	Content   map[string]any `json:"content"`
	Settings  Settings       `json:"settings"`
	IsVisible bool           `json:"isVisible"`
	Position  int            `json:"position"`
}

// Clone returns a deep copy of the block. Nested maps and slices in the
// content payload are copied so edits to the clone never leak back.
func (b Block) Clone() Block {
	b.Content = CloneContent(b.Content)
	return b
}

// CloneContent deep-copies a content payload.
func CloneContent(c map[string]any) map[string]any {
	if c == nil {
		return nil
	}
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneContent(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneContent(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}
