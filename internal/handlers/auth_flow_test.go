// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pagecraft/internal/models"
	"pagecraft/internal/session"
)

// createTestUser inserts a throwaway editor account and removes it when the
// test ends.
func createTestUser(t *testing.T, env *authEnv, password string) *models.User {
	t.Helper()
	email := fmt.Sprintf("editor-%d@pagecraft.test", time.Now().UnixNano())
	user, err := env.UserStore.Create(context.Background(), email, password, "Test Editor", models.RoleEditor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.UserStore.Delete(context.Background(), user.ID) })
	return user
}

func loginForm(email, password string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginPageRenders(t *testing.T) {
	env := newAuthEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Error("login form missing password field")
	}
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	env := newAuthEnv(t)
	user := createTestUser(t, env, "s3cret-pass")

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req = req.WithContext(ctxWithSession(req.Context(), testSession(user.ID, user.Email, string(user.Role))))
	rec := httptest.NewRecorder()
	env.Auth.LoginPage(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Errorf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginSuccessCreatesSession(t *testing.T) {
	env := newAuthEnv(t)
	user := createTestUser(t, env, "s3cret-pass")

	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, loginForm(user.Email, "s3cret-pass"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/" {
		t.Errorf("Location = %q, want /admin/", loc)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(cookie)
	data, err := env.Sessions.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	if data == nil || data.UserID != user.ID || data.Email != user.Email {
		t.Errorf("session data = %+v", data)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newAuthEnv(t)
	user := createTestUser(t, env, "s3cret-pass")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", user.Email, "nope"},
		{"unknown email", "nobody@pagecraft.test", "s3cret-pass"},
		{"empty form", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Auth.LoginSubmit(rec, loginForm(tt.email, tt.password))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want the form re-rendered", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
				t.Error("error message missing")
			}
			if sessionCookie(rec) != nil {
				t.Error("failed login set a session cookie")
			}
		})
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	env := newAuthEnv(t)
	user := createTestUser(t, env, "s3cret-pass")

	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, loginForm(user.Email, "s3cret-pass"))
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.Auth.Logout(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
		t.Errorf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(cookie)
	data, _ := env.Sessions.Get(context.Background(), req)
	if data != nil {
		t.Error("session still valid after logout")
	}
}
