// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the pagecraft server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagecraft/internal/bridge"
	"pagecraft/internal/cache"
	"pagecraft/internal/config"
	"pagecraft/internal/database"
	"pagecraft/internal/editor"
	"pagecraft/internal/handlers"
	"pagecraft/internal/middleware"
	"pagecraft/internal/preview"
	"pagecraft/internal/render"
	"pagecraft/internal/router"
	"pagecraft/internal/session"
	"pagecraft/internal/storage"
	"pagecraft/internal/store"
	"pagecraft/web"
)

// reapInterval is how often idle editor sessions are looked for.
const reapInterval = time.Minute

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(connectCtx, cfg.DSN())
	cancelConnect()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (page cache, preview sync and session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	previewRenderer, err := preview.New(logger)
	if err != nil {
		slog.Error("failed to initialize preview renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	pageStore := store.NewPageStore(db)
	revisionStore := store.NewRevisionStore(db)
	referenceStore := store.NewReferenceStore(db)
	settingStore := store.NewSiteSettingStore(db)
	mediaStore := store.NewMediaStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Caches. Rendered pages may predate this build's templates.
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
	pageCache.InvalidateAll(context.Background())
	previewCache := cache.NewPreviewCache(valkeyClient, cache.DefaultPreviewTTL)

	// S3-compatible object storage is optional; uploads answer 503 without it.
	var objects handlers.ObjectStore
	if cfg.StorageEnabled() {
		storageClient, err := storage.New(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		checkCtx, cancelCheck := context.WithTimeout(context.Background(), 10*time.Second)
		if err := storageClient.Check(checkCtx); err != nil {
			slog.Warn("s3 bucket not reachable, uploads may fail", "bucket", cfg.S3Bucket, "error", err)
		} else {
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
		cancelCheck()
		objects = storageClient
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Persistence bridge and editor sessions.
	pages := bridge.New(pageStore, pageCache, cacheLogStore, logger)
	manager := editor.NewManager(pages, referenceStore, previewRenderer, previewCache, editor.Config{
		PreviewDebounce: cfg.PreviewDebounce,
		IdleTimeout:     cfg.SessionIdle,
		SaveEvery:       cfg.SaveEvery,
		SaveBurst:       cfg.SaveBurst,
		SaveTimeout:     30 * time.Second,
	}, logger)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go manager.Run(runCtx, reapInterval)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	go loginLimiter.Run(runCtx, 5*time.Minute)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	r := router.New(sessionStore, router.Handlers{
		Auth:   handlers.NewAuth(renderer, sessionStore, userStore),
		Admin:  handlers.NewAdmin(renderer, pageStore, pages, manager),
		Blocks: handlers.NewBlocks(pages, referenceStore, revisionStore),
		Editor: handlers.NewEditor(manager, previewCache, previewRenderer),
		Media:  handlers.NewMedia(objects, mediaStore),
		Public: handlers.NewPublic(pageStore, referenceStore, settingStore, pageCache, previewRenderer),
	}, router.Options{
		SecureCookies: secureCookies,
		Static:        static,
		LoginLimiter:  loginLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight draft saves finish before the database goes away.
	stopRun()
	if err := manager.Shutdown(ctx); err != nil {
		slog.Error("editor sessions did not drain", "error", err)
	}

	slog.Info("server stopped gracefully")
}
