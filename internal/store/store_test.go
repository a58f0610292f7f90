// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"pagecraft/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to the test database and migrates it, or skips the
// test when PostgreSQL is unavailable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "pagecraft") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "pagecraft") + "?sslmode=disable"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// removeAfter deletes the rows of table whose column matches one of
// values once the test ends. Other packages share the database, so tests
// clean up only what they created.
func removeAfter(t *testing.T, db *sql.DB, table, column string, values ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, v := range values {
			if _, err := db.Exec("DELETE FROM "+table+" WHERE "+column+" = $1", v); err != nil {
				t.Logf("cleanup %s: %v", table, err)
			}
		}
	})
}
