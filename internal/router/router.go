// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// pagecraft server. It organizes routes into public, admin HTML and admin
// API groups with the middleware each needs.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pagecraft/internal/handlers"
	"pagecraft/internal/metrics"
	"pagecraft/internal/middleware"
	"pagecraft/internal/session"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Auth   *handlers.Auth
	Admin  *handlers.Admin
	Blocks *handlers.Blocks
	Editor *handlers.Editor
	Media  *handlers.Media
	Public *handlers.Public
}

// Options tunes the router.
type Options struct {
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool
	// Static holds the admin assets served under /static/. May be nil.
	Static fs.FS
	// LoginLimiter throttles login attempts per IP. May be nil.
	LoginLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request. The session is loaded
	// before the access log so log lines carry the user.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	if sessionStore != nil {
		r.Use(middleware.LoadSession(sessionStore))
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	// Health and metrics: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if opts.Static != nil {
		r.Handle("/static/*", staticHandler(opts.Static))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Auth pages, reachable without a session.
		r.Get("/login", h.Auth.LoginPage)
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(opts.LoginLimiter.Middleware)
			}
			r.Post("/login", h.Auth.LoginSubmit)
		})
		r.Post("/logout", h.Auth.Logout)

		// Admin HTML.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", h.Admin.PagesList)
			r.Route("/pages", func(r chi.Router) {
				r.Get("/", h.Admin.PagesList)
				r.Post("/", h.Admin.PageCreate)
				r.Get("/{id}/edit", h.Admin.PageEdit)
				r.With(middleware.RequireAdmin).Post("/{id}/publish", h.Admin.PagePublish)
				r.With(middleware.RequireAdmin).Post("/{id}/unpublish", h.Admin.PageUnpublish)
			})
			r.Get("/preview/{sid}", h.Editor.DetachedPreview)
		})

		// JSON API for the editor shell.
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAuthAPI)

			r.Get("/reference", h.Blocks.Reference)
			r.Route("/pages/{id}", func(r chi.Router) {
				r.Get("/blocks", h.Blocks.Load)
				r.Put("/blocks", h.Blocks.Save)
				r.Get("/revisions", h.Blocks.Revisions)
			})
			r.Route("/editor", h.Editor.Routes)
			if h.Media != nil {
				r.Post("/media", h.Media.Upload)
			}
		})
	})

	// Public site.
	r.Get("/", h.Public.Homepage)
	r.Get("/{slug}", h.Public.Page)

	return r
}

// staticHandler serves embedded assets with a short cache lifetime.
func staticHandler(assets fs.FS) http.Handler {
	files := http.StripPrefix("/static/", http.FileServerFS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
