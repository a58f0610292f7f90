// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	CSRFCookieName = "pc_csrf"
	CSRFHeaderName = "X-CSRF-Token" // sent by the editor script
	CSRFFormField  = "csrf_token"   // sent by plain admin forms

	csrfTokenLength = 32
)

type csrfCtxKey struct{}

// NewCSRF guards state-changing requests with a double-submit token: the
// token lives in a cookie the editor script can read, and every request
// other than GET, HEAD and OPTIONS must echo it in the X-CSRF-Token header
// or the csrf_token form field. Templates get the token through
// CSRFTokenFromCtx.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := csrfCookie(r)
			if !ok {
				b := make([]byte, csrfTokenLength)
				if _, err := rand.Read(b); err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				token = hex.EncodeToString(b)
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfCtxKey{}, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sent := r.Header.Get(CSRFHeaderName)
			if sent == "" {
				sent = r.FormValue(CSRFFormField)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(sent)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if isAPI(r) {
				apiError(w, http.StatusForbidden, "csrf token mismatch")
				return
			}
			http.Error(w, "CSRF token mismatch", http.StatusForbidden)
		})
	}
}

// csrfCookie returns the request's token when it has the shape NewCSRF
// issues. Anything else is replaced with a fresh token.
func csrfCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CSRFCookieName)
	if err != nil || len(c.Value) != 2*csrfTokenLength {
		return "", false
	}
	if _, err := hex.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// CSRFTokenFromCtx returns the token stored by NewCSRF, or "" when the
// middleware did not run.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfCtxKey{}).(string)
	return token
}
