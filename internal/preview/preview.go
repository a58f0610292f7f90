// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package preview renders a block list to HTML. The public site renders in
// live mode; the editor renders the draft in edit mode, which adds the
// hover and selection highlights and the hooks the canvas script uses to
// route clicks back to the editor session.
//
// Every block type has one embedded template. Types without a template
// fall back to a placeholder, and content lookups fall back to neutral
// defaults, so a draft in any state of completion renders.
package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"pagecraft/internal/blocks"
	"pagecraft/internal/metrics"
	"pagecraft/internal/models"
)

//go:embed templates/*.html templates/blocks/*.html
var templateFS embed.FS

// Mode selects between the public rendering and the editor canvas.
type Mode string

const (
	ModeLive Mode = "live"
	ModeEdit Mode = "edit"
)

// Options controls one render.
type Options struct {
	Mode       Mode
	Device     models.Device
	SelectedID string
	HoveredID  string
	Ref        models.ReferenceData

	// Edit mode: endpoints the canvas script posts clicks and hovers to.
	SelectURL string
	HoverURL  string

	// Page only.
	SiteName string
}

// DeviceWidth returns the simulated viewport width for a device.
func DeviceWidth(d models.Device) string {
	switch d {
	case models.DeviceTablet:
		return "768px"
	case models.DeviceMobile:
		return "375px"
	}
	return "100%"
}

// Renderer holds the compiled block templates. It is safe for concurrent
// use.
type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// New compiles the embedded templates.
func New(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcs := template.FuncMap{
		"stars": stars,
		"icon":  iconGlyph,
		"tel":   telURL,
		"inc":   inc,
	}
	tmpl, err := template.New("preview").Funcs(funcs).ParseFS(templateFS, "templates/*.html", "templates/blocks/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse preview templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

type sectionData struct {
	blockView
	Label    string
	Classes  string
	Inner    template.HTML
	Selected bool
	Hovered  bool
}

type canvasData struct {
	Device    models.Device
	Style     template.CSS
	Edit      bool
	SelectURL string
	HoverURL  string
	Sections  []template.HTML
}

// Render renders the visible blocks in order inside a canvas sized for
// opts.Device. Hidden blocks are skipped here, so callers pass the whole
// draft.
func (r *Renderer) Render(list []models.Block, opts Options) (template.HTML, error) {
	start := time.Now()
	mode := opts.Mode
	if mode != ModeEdit {
		mode = ModeLive
	}
	edit := mode == ModeEdit

	data := canvasData{
		Device:    opts.Device,
		Style:     template.CSS("max-width: " + DeviceWidth(opts.Device) + "; margin: 0 auto;"),
		Edit:      edit,
		SelectURL: opts.SelectURL,
		HoverURL:  opts.HoverURL,
	}
	if !models.ValidDevice(data.Device) {
		data.Device = models.DeviceDesktop
	}

	for _, b := range list {
		if !b.IsVisible {
			continue
		}
		_, known := blocks.Lookup(b.Type)
		if !known && !edit {
			continue
		}
		section, err := r.renderSection(b, opts, edit)
		if err != nil {
			return "", err
		}
		data.Sections = append(data.Sections, section)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "canvas", data); err != nil {
		return "", fmt.Errorf("render canvas: %w", err)
	}
	metrics.PreviewRenderSeconds.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	return template.HTML(buf.String()), nil
}

func (r *Renderer) renderSection(b models.Block, opts Options, edit bool) (template.HTML, error) {
	view := blockView{
		ID:       b.ID,
		Type:     b.Type,
		C:        Content(b.Content),
		Settings: b.Settings.Normalize(),
		Edit:     edit,
		Ref:      opts.Ref,
	}

	label := string(b.Type)
	if def, ok := blocks.Lookup(b.Type); ok {
		label = def.Label
	}

	name := "block_" + string(b.Type)
	if r.tmpl.Lookup(name) == nil {
		name = "block_unknown"
	}
	var inner bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&inner, name, view); err != nil {
		r.logger.Warn("block render failed, using placeholder", "block", b.ID, "type", b.Type, "error", err)
		inner.Reset()
		if err := r.tmpl.ExecuteTemplate(&inner, "block_unknown", view); err != nil {
			return "", fmt.Errorf("render placeholder for %s: %w", b.ID, err)
		}
	}

	classes := []string{
		"pc-pad-" + string(view.Settings.Padding),
		"pc-bg-" + string(view.Settings.Background),
	}
	sd := sectionData{blockView: view, Label: label, Inner: template.HTML(inner.String())}
	if edit {
		classes = append(classes, "pc-block")
		sd.Selected = b.ID == opts.SelectedID
		sd.Hovered = b.ID == opts.HoveredID && !sd.Selected
		if sd.Selected {
			classes = append(classes, "is-selected")
		}
		if sd.Hovered {
			classes = append(classes, "is-hovered")
		}
	}
	sd.Classes = strings.Join(classes, " ")

	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, "section", sd); err != nil {
		return "", fmt.Errorf("render section %s: %w", b.ID, err)
	}
	return template.HTML(out.String()), nil
}

type pageData struct {
	Title    string
	SiteName string
	Body     template.HTML
	Year     int
}

// Page renders the blocks as a complete public HTML document.
func (r *Renderer) Page(title string, list []models.Block, opts Options) ([]byte, error) {
	opts.Mode = ModeLive
	body, err := r.Render(list, opts)
	if err != nil {
		return nil, err
	}
	return r.Wrap(title, opts.SiteName, body)
}

// Wrap places an already rendered canvas in the site document.
func (r *Renderer) Wrap(title, siteName string, body template.HTML) ([]byte, error) {
	if siteName == "" {
		siteName = "Pagecraft"
	}
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "page", pageData{
		Title:    title,
		SiteName: siteName,
		Body:     body,
		Year:     time.Now().Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
