// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in users in Valkey. The browser holds only
// a random identifier in an HttpOnly cookie; the user's identity and role
// live server-side under that identifier until the TTL runs out or the
// user signs out.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pagecraft/internal/models"
)

const (
	CookieName = "pc_session"
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"
	idBytes   = 32
)

// Data is what a session remembers about its user.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether the signed-in user holds the admin role.
func (d *Data) IsAdmin() bool {
	return models.Role(d.Role).IsAdmin()
}

// Store creates, resolves and destroys sessions.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore returns a Store on client. secure adds the Secure attribute to
// the cookie and must be set when serving over TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// Create starts a session for data and sets its cookie on w.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) error {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	data.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(w, s.cookie(id, int(s.ttl/time.Second)))
	return nil
}

// Get resolves the session named by the request cookie. It returns nil
// without an error when there is no cookie, the cookie is malformed or
// the session has expired.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := sessionID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Destroy ends the request's session and expires its cookie. The cookie
// is cleared even when Valkey cannot be reached.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	http.SetCookie(w, s.cookie("", -1))
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionID returns the cookie value if it looks like an identifier this
// package issued, so arbitrary input never reaches a Valkey key.
func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != 2*idBytes {
		return "", false
	}
	if _, err := hex.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}
