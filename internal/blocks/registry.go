// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks is the vocabulary of page block variants. Each variant is
// a single registry entry carrying its palette metadata, the content a new
// block starts with, and the field schema the properties panel edits.
package blocks

import "pagecraft/internal/models"

// Category groups block types in the palette.
type Category string

const (
	CategoryHeader      Category = "header"
	CategoryContent     Category = "content"
	CategorySocialProof Category = "social_proof"
	CategoryConversion  Category = "conversion"
)

// Categories lists palette categories in display order.
var Categories = []Category{CategoryHeader, CategoryContent, CategorySocialProof, CategoryConversion}

// Definition describes one block variant.
type Definition struct {
	Type        models.BlockType
	Label       string
	Description string
	Category    Category
	Fields      []Field

	defaults func() map[string]any
}

// DefaultContent returns a fresh copy of the content a new block of this
// type starts with.
func (d Definition) DefaultContent() map[string]any {
	if d.defaults == nil {
		return map[string]any{}
	}
	return models.CloneContent(d.defaults())
}

// Field returns the content field with the given name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var registry = map[models.BlockType]Definition{}

func register(d Definition) {
	registry[d.Type] = d
}

// Lookup returns the definition registered for t.
func Lookup(t models.BlockType) (Definition, bool) {
	d, ok := registry[t]
	return d, ok
}

// Known reports whether t is a registered block type.
func Known(t models.BlockType) bool {
	_, ok := registry[t]
	return ok
}

// DefaultContent returns the default content for t, or nil when t is not
// a registered type.
func DefaultContent(t models.BlockType) map[string]any {
	d, ok := registry[t]
	if !ok {
		return nil
	}
	return d.DefaultContent()
}

// Catalog returns all definitions in catalog order.
func Catalog() []Definition {
	out := make([]Definition, 0, len(models.AllBlockTypes))
	for _, t := range models.AllBlockTypes {
		if d, ok := registry[t]; ok {
			out = append(out, d)
		}
	}
	return out
}

var columnOptions = []Option{opt("2", "2 columns"), opt("3", "3 columns"), opt("4", "4 columns")}

func init() {
	register(Definition{
		Type:        models.BlockHero,
		Label:       "Hero",
		Description: "Large headline banner with a call to action button.",
		Category:    CategoryHeader,
		Fields: []Field{
			text("title", "Headline", "Your Trusted Local Experts"),
			textarea("subtitle", "Subheadline", "Fast, friendly service across the region."),
			text("ctaText", "Button text", "Get a Free Quote"),
			text("ctaLink", "Button link", "/contact"),
			text("secondaryCtaText", "Secondary button text", ""),
			text("secondaryCtaLink", "Secondary button link", ""),
			image("backgroundImage", "Background image"),
			choice("alignment", "Alignment", opt("left", "Left"), opt("center", "Center")),
			boolean("showTrustBadges", "Show trust badges"),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":            "Your Trusted Local Experts",
				"subtitle":         "Fast, friendly service across the region.",
				"ctaText":          "Get a Free Quote",
				"ctaLink":          "/contact",
				"secondaryCtaText": "",
				"secondaryCtaLink": "",
				"backgroundImage":  "",
				"alignment":        "center",
				"showTrustBadges":  true,
			}
		},
	})

	register(Definition{
		Type:        models.BlockServicesGrid,
		Label:       "Services Grid",
		Description: "Grid of the services you offer, pulled from the services list.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", "Our Services"),
			textarea("subtitle", "Subtitle", ""),
			choice("columns", "Columns", columnOptions...),
			number("maxItems", "Maximum services", 1, 12),
			boolean("showIcons", "Show icons"),
			text("ctaText", "Link text", "View all services"),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":     "Our Services",
				"subtitle":  "",
				"columns":   "3",
				"maxItems":  6,
				"showIcons": true,
				"ctaText":   "View all services",
			}
		},
	})

	register(Definition{
		Type:        models.BlockTestimonials,
		Label:       "Testimonials",
		Description: "Customer reviews with optional star ratings.",
		Category:    CategorySocialProof,
		Fields: []Field{
			text("title", "Title", "What Our Customers Say"),
			textarea("subtitle", "Subtitle", ""),
			choice("layout", "Layout", opt("grid", "Grid"), opt("carousel", "Carousel"), opt("list", "List")),
			number("maxItems", "Maximum testimonials", 1, 12),
			boolean("showRating", "Show star rating"),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":      "What Our Customers Say",
				"subtitle":   "",
				"layout":     "grid",
				"maxItems":   3,
				"showRating": true,
			}
		},
	})

	register(Definition{
		Type:        models.BlockFAQ,
		Label:       "FAQ",
		Description: "Frequently asked questions with expandable answers.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", "Frequently Asked Questions"),
			textarea("subtitle", "Subtitle", ""),
			list("items", "Questions", "Question",
				func() map[string]any { return map[string]any{"question": "New question", "answer": ""} },
				text("question", "Question", ""),
				textarea("answer", "Answer", ""),
			),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":    "Frequently Asked Questions",
				"subtitle": "",
				"items": []any{
					map[string]any{"question": "Do you offer free estimates?", "answer": "Yes, every estimate is free and without obligation."},
					map[string]any{"question": "Are you licensed and insured?", "answer": "We are fully licensed and insured."},
				},
			}
		},
	})

	register(Definition{
		Type:        models.BlockStatsGrid,
		Label:       "Stats Grid",
		Description: "Row of headline numbers such as years in business.",
		Category:    CategorySocialProof,
		Fields: []Field{
			text("title", "Title", ""),
			choice("columns", "Columns", columnOptions...),
			list("stats", "Stats", "Stat",
				func() map[string]any { return map[string]any{"value": "0", "label": "New stat"} },
				text("value", "Value", "500+"),
				text("label", "Label", "Happy Customers"),
			),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":   "",
				"columns": "4",
				"stats": []any{
					map[string]any{"value": "15+", "label": "Years in Business"},
					map[string]any{"value": "2,000+", "label": "Jobs Completed"},
					map[string]any{"value": "4.9", "label": "Average Rating"},
					map[string]any{"value": "24/7", "label": "Emergency Service"},
				},
			}
		},
	})

	register(Definition{
		Type:        models.BlockTextBlock,
		Label:       "Text Block",
		Description: "Free-form text written in Markdown.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", ""),
			{Name: "body", Label: "Body", Kind: KindTextarea, Help: "Markdown is supported."},
			choice("alignment", "Alignment", opt("left", "Left"), opt("center", "Center")),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":     "",
				"body":      "Start writing here.",
				"alignment": "left",
			}
		},
	})

	register(Definition{
		Type:        models.BlockFeatures,
		Label:       "Features",
		Description: "Reasons to choose you, each with a short description.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", "Why Choose Us"),
			textarea("subtitle", "Subtitle", ""),
			choice("columns", "Columns", columnOptions...),
			list("features", "Features", "Feature",
				func() map[string]any {
					return map[string]any{"title": "New feature", "description": "", "icon": "check"}
				},
				text("title", "Title", ""),
				textarea("description", "Description", ""),
				choice("icon", "Icon", opt("check", "Check"), opt("star", "Star"), opt("clock", "Clock"), opt("shield", "Shield")),
			),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":    "Why Choose Us",
				"subtitle": "",
				"columns":  "3",
				"features": []any{
					map[string]any{"title": "Licensed & Insured", "description": "Peace of mind on every job.", "icon": "shield"},
					map[string]any{"title": "On-Time Arrival", "description": "We respect your schedule.", "icon": "clock"},
					map[string]any{"title": "Satisfaction Guaranteed", "description": "We are not done until you are happy.", "icon": "star"},
				},
			}
		},
	})

	register(Definition{
		Type:        models.BlockProcessSteps,
		Label:       "Process Steps",
		Description: "Numbered steps explaining how working with you goes.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", "How It Works"),
			textarea("subtitle", "Subtitle", ""),
			list("steps", "Steps", "Step",
				func() map[string]any { return map[string]any{"title": "New step", "description": ""} },
				text("title", "Title", ""),
				textarea("description", "Description", ""),
			),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":    "How It Works",
				"subtitle": "",
				"steps": []any{
					map[string]any{"title": "Request a quote", "description": "Tell us about the job."},
					map[string]any{"title": "Schedule a visit", "description": "Pick a time that suits you."},
					map[string]any{"title": "Job done", "description": "We finish on time and clean up."},
				},
			}
		},
	})

	register(Definition{
		Type:        models.BlockCTA,
		Label:       "Call to Action",
		Description: "Banner prompting visitors to call or get in touch.",
		Category:    CategoryConversion,
		Fields: []Field{
			text("title", "Title", "Ready to get started?"),
			textarea("description", "Description", ""),
			text("buttonText", "Button text", "Contact Us"),
			text("buttonLink", "Button link", "/contact"),
			text("phone", "Phone number", ""),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":       "Ready to get started?",
				"description": "Get in touch today for a free, no-obligation quote.",
				"buttonText":  "Contact Us",
				"buttonLink":  "/contact",
				"phone":       "",
			}
		},
	})

	register(Definition{
		Type:        models.BlockLocations,
		Label:       "Locations",
		Description: "Areas you serve, pulled from the locations list.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", "Areas We Serve"),
			textarea("subtitle", "Subtitle", ""),
			number("maxItems", "Maximum locations", 1, 24),
			boolean("showMap", "Show map link"),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":    "Areas We Serve",
				"subtitle": "",
				"maxItems": 6,
				"showMap":  true,
			}
		},
	})

	register(Definition{
		Type:        models.BlockImageText,
		Label:       "Image & Text",
		Description: "Image beside a paragraph, with an optional link.",
		Category:    CategoryContent,
		Fields: []Field{
			text("title", "Title", ""),
			textarea("body", "Body", ""),
			image("image", "Image"),
			text("imageAlt", "Image description", ""),
			choice("imagePosition", "Image position", opt("left", "Left"), opt("right", "Right")),
			text("ctaText", "Link text", ""),
			text("ctaLink", "Link", ""),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":         "About Us",
				"body":          "Tell visitors who you are and what makes you different.",
				"image":         "",
				"imageAlt":      "",
				"imagePosition": "right",
				"ctaText":       "",
				"ctaLink":       "",
			}
		},
	})

	register(Definition{
		Type:        models.BlockContactForm,
		Label:       "Contact Form",
		Description: "Lead capture form with your contact details.",
		Category:    CategoryConversion,
		Fields: []Field{
			text("title", "Title", "Get in Touch"),
			textarea("subtitle", "Subtitle", ""),
			text("submitText", "Submit button text", "Send Message"),
			text("successMessage", "Success message", ""),
			boolean("showPhone", "Show phone number"),
			boolean("showAddress", "Show address"),
		},
		defaults: func() map[string]any {
			return map[string]any{
				"title":          "Get in Touch",
				"subtitle":       "We usually reply within one business day.",
				"submitText":     "Send Message",
				"successMessage": "Thanks! We will be in touch shortly.",
				"showPhone":      true,
				"showAddress":    false,
			}
		},
	})
}
