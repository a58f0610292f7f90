// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache holds the Valkey-backed caches: rendered public pages and
// the per-session editor previews. Valkey is also the session store, so
// every key written here lives under a fixed prefix.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix    = "page:"
	previewKeyPrefix = "preview:"

	pingTimeout = 5 * time.Second
)

// ConnectValkey opens a client for host:port and pings it before
// returning, so a misconfigured server fails startup instead of the first
// request.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}

// deleteMatching removes every key matching pattern, one SCAN page at a
// time, and returns how many were removed. UNLINK frees the values off
// the server's main thread.
func deleteMatching(ctx context.Context, client *redis.Client, pattern string) (int, error) {
	var removed int
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := client.Unlink(ctx, batch...).Result()
		removed += int(n)
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return removed, fmt.Errorf("unlink %s: %w", pattern, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return removed, fmt.Errorf("unlink %s: %w", pattern, err)
	}
	return removed, nil
}
