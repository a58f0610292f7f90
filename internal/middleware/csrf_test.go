// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// csrfServe runs one request through NewCSRF and reports whether the
// wrapped handler ran and which token it saw.
func csrfServe(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, bool, string) {
	t.Helper()
	var (
		called bool
		seen   string
	)
	h := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = CSRFTokenFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, called, seen
}

// issueCSRF fetches a fresh token cookie the way a browser would on its
// first page load.
func issueCSRF(t *testing.T) *http.Cookie {
	t.Helper()
	rr, _, _ := csrfServe(t, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("no CSRF cookie issued")
	return nil
}

func TestCSRFCookieAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		h := NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/", nil))

		cookies := rr.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != CSRFCookieName {
			t.Fatalf("secure=%v: cookies %+v", secure, cookies)
		}
		c := cookies[0]
		if c.Secure != secure || c.SameSite != http.SameSiteStrictMode || len(c.Value) != 2*csrfTokenLength {
			t.Errorf("secure=%v: cookie %+v", secure, c)
		}
		// The editor script reads the token, so the cookie stays visible to it.
		if c.HttpOnly {
			t.Error("cookie must not be HttpOnly")
		}
	}
}

func TestCSRFReusesExistingToken(t *testing.T) {
	cookie := issueCSRF(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/pages", nil)
	req.AddCookie(cookie)

	rr, called, seen := csrfServe(t, req)
	if !called || seen != cookie.Value {
		t.Errorf("called=%v seen=%q, want %q", called, seen, cookie.Value)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing token should not be reissued")
	}
}

func TestCSRFReplacesMalformedToken(t *testing.T) {
	for _, value := range []string{"short", strings.Repeat("zz", csrfTokenLength)} {
		req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: value})

		rr, _, seen := csrfServe(t, req)
		if seen == value || len(seen) != 2*csrfTokenLength {
			t.Errorf("%q: handler saw %q, want a fresh token", value, seen)
		}
		if len(rr.Result().Cookies()) != 1 {
			t.Errorf("%q: fresh token not issued", value)
		}
	}
}

func TestCSRFSafeMethodsPassThrough(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		_, called, seen := csrfServe(t, httptest.NewRequest(method, "/admin/api/editor/s1", nil))
		if !called || seen == "" {
			t.Errorf("%s: called=%v token=%q", method, called, seen)
		}
	}
}

func TestCSRFUnsafeMethods(t *testing.T) {
	cookie := issueCSRF(t)

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"post with header", http.MethodPost, cookie.Value, http.StatusOK},
		{"patch with header", http.MethodPatch, cookie.Value, http.StatusOK},
		{"delete with header", http.MethodDelete, cookie.Value, http.StatusOK},
		{"put without token", http.MethodPut, "", http.StatusForbidden},
		{"post with wrong token", http.MethodPost, "deadbeef", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/admin/api/editor/s1/save", nil)
			req.AddCookie(cookie)
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr, called, _ := csrfServe(t, req)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if called != (tt.want == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}

func TestCSRFFormField(t *testing.T) {
	cookie := issueCSRF(t)
	form := url.Values{CSRFFormField: {cookie.Value}, "title": {"About"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	rr, called, _ := csrfServe(t, req)
	if rr.Code != http.StatusOK || !called {
		t.Errorf("form token rejected: %d", rr.Code)
	}
}

func TestCSRFRejectionBody(t *testing.T) {
	cookie := issueCSRF(t)

	api := httptest.NewRequest(http.MethodPost, "/admin/api/editor/", nil)
	api.AddCookie(cookie)
	rr, _, _ := csrfServe(t, api)
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("api rejection content type: %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `"error":"csrf token mismatch"`) {
		t.Errorf("api rejection body: %s", rr.Body)
	}

	page := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	page.AddCookie(cookie)
	rr, _, _ = csrfServe(t, page)
	if !strings.Contains(rr.Body.String(), "CSRF token mismatch") {
		t.Errorf("page rejection body: %s", rr.Body)
	}
}

func TestCSRFTokenFromCtxWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CSRFTokenFromCtx(req.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
