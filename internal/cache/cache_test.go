// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testClient connects to Valkey database 14, which only this package uses,
// and flushes it before and after each test. Skips if Valkey is unreachable.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       14,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		_ = client.Close()
	})
	return client
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()
	if client.Options().Addr == "" {
		t.Error("client has no address")
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	// Port 1 is reserved; nothing listens there.
	if _, err := ConnectValkey("127.0.0.1", "1", ""); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}

func TestPageCacheRoundTrip(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	if html, ok := pc.Get(ctx, "services"); ok || html != nil {
		t.Fatalf("cold cache: got %q ok=%v", html, ok)
	}

	pc.Set(ctx, "services", []byte("<main>old</main>"))
	pc.Set(ctx, "services", []byte("<main>new</main>"))
	html, ok := pc.Get(ctx, "services")
	if !ok || string(html) != "<main>new</main>" {
		t.Fatalf("Get = %q ok=%v, want the latest render", html, ok)
	}

	ttl := pc.client.TTL(ctx, pageKey("services")).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want (0, 1m]", ttl)
	}
}

func TestPageCacheInvalidatePage(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, "about", []byte("about"))
	pc.Set(ctx, "contact", []byte("contact"))
	pc.InvalidatePage(ctx, "about")

	if _, ok := pc.Get(ctx, "about"); ok {
		t.Error("about still cached")
	}
	if _, ok := pc.Get(ctx, "contact"); !ok {
		t.Error("contact should be untouched")
	}
}

// InvalidateAll must cross several SCAN pages and leave previews alone.
func TestPageCacheInvalidateAll(t *testing.T) {
	client := testClient(t)
	pc := NewPageCache(client, time.Minute)
	previews := NewPreviewCache(client, time.Minute)
	ctx := context.Background()

	const pages = 250
	for i := range pages {
		pc.Set(ctx, fmt.Sprintf("page-%d", i), []byte("x"))
	}
	if err := previews.PutPreview(ctx, "s1", []byte("preview")); err != nil {
		t.Fatalf("PutPreview: %v", err)
	}

	pc.InvalidateAll(ctx)

	if n := client.Keys(ctx, pageKeyPrefix+"*").Val(); len(n) != 0 {
		t.Errorf("%d pages survived InvalidateAll", len(n))
	}
	if _, ok, _ := previews.GetPreview(ctx, "s1"); !ok {
		t.Error("InvalidateAll removed a preview")
	}
}

func TestDeleteMatchingCounts(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	for i := range 7 {
		client.Set(ctx, fmt.Sprintf("%sk%d", previewKeyPrefix, i), "v", time.Minute)
	}
	n, err := deleteMatching(ctx, client, previewKeyPrefix+"*")
	if err != nil {
		t.Fatalf("deleteMatching: %v", err)
	}
	if n != 7 {
		t.Errorf("removed %d keys, want 7", n)
	}
}

func TestNewCachesDefaultTTL(t *testing.T) {
	if pc := NewPageCache(nil, 0); pc.ttl != DefaultPageTTL {
		t.Errorf("page ttl = %v, want %v", pc.ttl, DefaultPageTTL)
	}
	if pc := NewPreviewCache(nil, 0); pc.ttl != DefaultPreviewTTL {
		t.Errorf("preview ttl = %v, want %v", pc.ttl, DefaultPreviewTTL)
	}
}

func TestPreviewCache(t *testing.T) {
	pc := NewPreviewCache(testClient(t), time.Minute)
	ctx := context.Background()

	if _, ok, err := pc.GetPreview(ctx, "s1"); err != nil || ok {
		t.Fatalf("GetPreview before sync: ok=%v err=%v", ok, err)
	}

	for _, html := range []string{"first", "second"} {
		if err := pc.PutPreview(ctx, "s1", []byte(html)); err != nil {
			t.Fatalf("PutPreview: %v", err)
		}
	}
	html, ok, err := pc.GetPreview(ctx, "s1")
	if err != nil || !ok || string(html) != "second" {
		t.Fatalf("GetPreview = %q ok=%v err=%v, want the latest sync", html, ok, err)
	}

	if err := pc.DropPreview(ctx, "s1"); err != nil {
		t.Fatalf("DropPreview: %v", err)
	}
	if _, ok, _ := pc.GetPreview(ctx, "s1"); ok {
		t.Error("preview survived DropPreview")
	}
	if err := pc.DropPreview(ctx, "never-synced"); err != nil {
		t.Errorf("dropping a missing preview: %v", err)
	}
}
