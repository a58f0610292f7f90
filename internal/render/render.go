// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render executes the admin templates: the login screen, the page
// list and the editor shell. Every page except login is laid out by
// base.html.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"pagecraft/internal/middleware"
	"pagecraft/internal/session"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

const (
	templateDir = "templates/admin"
	layoutFile  = "base.html"
)

// PageData is passed to every admin template.
type PageData struct {
	Title     string
	Section   string        // highlighted nav entry
	Session   *session.Data // nil when signed out
	CSRFToken string
	Data      map[string]any
	Flashes   []Flash
}

// Flash is a one-time notice shown above the page content.
type Flash struct {
	Type    string // success, info or error
	Message string
}

type page struct {
	tmpl  *template.Template
	entry string
}

// Renderer holds the parsed admin pages by name.
type Renderer struct {
	templates map[string]page
}

// standalone pages carry their own <html> document.
var standalone = map[string]bool{"login": true}

func funcs(devMode bool) template.FuncMap {
	return template.FuncMap{
		"isDev": func() bool { return devMode },
		"activeClass": func(current, target string) string {
			if current == target {
				return "nav-link active"
			}
			return "nav-link"
		},
		"fmtTime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}
}

// New parses the embedded templates. devMode shows an environment badge
// in the layout.
func New(devMode bool) (*Renderer, error) {
	layout, err := template.New(layoutFile).Funcs(funcs(devMode)).ParseFS(adminFS, path.Join(templateDir, layoutFile))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(adminFS, path.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	rn := &Renderer{templates: make(map[string]page, len(files))}
	for _, file := range files {
		base := path.Base(file)
		if base == layoutFile {
			continue
		}
		name := strings.TrimSuffix(base, ".html")

		var p page
		if standalone[name] {
			p.entry = base
			p.tmpl, err = template.New(base).Funcs(funcs(devMode)).ParseFS(adminFS, file)
		} else {
			p.entry = layoutFile
			p.tmpl, err = template.Must(layout.Clone()).ParseFS(adminFS, file)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", base, err)
		}
		rn.templates[name] = p
	}
	return rn, nil
}

// Page renders the admin page name. The CSRF token always comes from the
// request; the session does too unless the caller supplied one. Output is
// buffered so a failing template yields a clean 500.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	p, ok := rn.templates[name]
	if !ok {
		slog.Error("unknown admin template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, p.entry, data); err != nil {
		slog.Error("render admin template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
