// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"pagecraft/internal/session"
)

type contextKey string

// SessionKey carries the *session.Data of a signed-in request.
const SessionKey contextKey = "session"

// LoadSession resolves the session cookie and puts the session into the
// request context. It never rejects a request: anonymous and failed
// lookups both continue without a session.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			switch {
			case err != nil:
				slog.Warn("session lookup failed", "path", r.URL.Path, "error", err)
			case data != nil:
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous visitors of admin pages to the login form.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI is RequireAuth for the editor API, which cannot follow a
// redirect: anonymous calls get a JSON 401.
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			apiError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only admins through. It belongs after RequireAuth or
// RequireAuthAPI.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := SessionFromCtx(r.Context()); sess != nil && sess.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if isAPI(r) {
			apiError(w, http.StatusForbidden, "admin role required")
			return
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

// SessionFromCtx returns the request's session, or nil when signed out.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
