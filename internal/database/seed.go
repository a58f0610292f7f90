// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pagecraft/internal/blocks"
	"pagecraft/internal/models"
)

// Seed populates the database with initial development data: a default
// admin user, reference records for the data-driven blocks, the site name
// and a published home page. Each part is skipped when it already exists.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedReference(db); err != nil {
		return err
	}
	if err := seedSiteName(db); err != nil {
		return err
	}
	return seedHome(db)
}

func seedSiteName(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO site_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, models.SettingSiteName, "Pagecraft")
	if err != nil {
		return fmt.Errorf("seed site name: %w", err)
	}
	return nil
}

func tableEmpty(db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return false, fmt.Errorf("seed check %s: %w", table, err)
	}
	return count == 0, nil
}

func seedAdmin(db *sql.DB) error {
	empty, err := tableEmpty(db, "users")
	if err != nil || !empty {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@pagecraft.local", string(hash), "Admin", models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@pagecraft.local",
		"password", "admin",
	)
	return nil
}

func seedReference(db *sql.DB) error {
	empty, err := tableEmpty(db, "services")
	if err != nil || !empty {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed reference begin: %w", err)
	}
	defer tx.Rollback()

	services := []models.Service{
		{Slug: "emergency-repairs", Title: "Emergency Repairs", Summary: "Burst pipes and leaks fixed around the clock.", Icon: "bolt"},
		{Slug: "drain-cleaning", Title: "Drain Cleaning", Summary: "Blocked drains cleared without the mess.", Icon: "wrench"},
		{Slug: "water-heaters", Title: "Water Heaters", Summary: "Repair, replacement and yearly servicing.", Icon: "flame"},
	}
	for i, v := range services {
		if _, err := tx.Exec(`INSERT INTO services (slug, title, summary, icon, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			v.Slug, v.Title, v.Summary, v.Icon, i); err != nil {
			return fmt.Errorf("seed service %s: %w", v.Slug, err)
		}
	}

	testimonials := []models.Testimonial{
		{Author: "Dana R.", Quote: "Arrived within the hour and left the kitchen spotless.", Rating: 5, Location: "Springfield"},
		{Author: "Lee K.", Quote: "Fair quote, no surprises on the invoice.", Rating: 5, Location: "Shelbyville"},
		{Author: "Sam P.", Quote: "Friendly crew, would hire again.", Rating: 4, Location: "Springfield"},
	}
	for _, v := range testimonials {
		if _, err := tx.Exec(`INSERT INTO testimonials (author, quote, rating, location) VALUES ($1, $2, $3, $4)`,
			v.Author, v.Quote, v.Rating, v.Location); err != nil {
			return fmt.Errorf("seed testimonial: %w", err)
		}
	}

	locations := []models.Location{
		{Slug: "springfield", Name: "Springfield", Address: "12 Main St, Springfield", Phone: "(555) 010-2000"},
		{Slug: "shelbyville", Name: "Shelbyville", Address: "48 Oak Ave, Shelbyville", Phone: "(555) 010-3000"},
	}
	for i, v := range locations {
		if _, err := tx.Exec(`INSERT INTO locations (slug, name, address, phone, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			v.Slug, v.Name, v.Address, v.Phone, i); err != nil {
			return fmt.Errorf("seed location %s: %w", v.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference commit: %w", err)
	}
	slog.Info("database seeded with reference data")
	return nil
}

// homeBlocks is the block list of the demo home page.
var homeBlocks = []models.BlockType{
	models.BlockHero,
	models.BlockServicesGrid,
	models.BlockTestimonials,
	models.BlockFAQ,
	models.BlockCTA,
}

func seedHome(db *sql.DB) error {
	var exists bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM pages WHERE slug = 'home')`).Scan(&exists); err != nil {
		return fmt.Errorf("seed check home: %w", err)
	}
	if exists {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed home begin: %w", err)
	}
	defer tx.Rollback()

	var pageID uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO pages (slug, title, status, version, published_at)
		VALUES ('home', 'Home', 'published', 1, NOW())
		RETURNING id
	`).Scan(&pageID)
	if err != nil {
		return fmt.Errorf("seed home page: %w", err)
	}

	list := make([]models.Block, 0, len(homeBlocks))
	for i, bt := range homeBlocks {
		b := models.Block{
			ID:        uuid.NewString(),
			Type:      bt,
			Content:   blocks.DefaultContent(bt),
			Settings:  models.DefaultSettings(),
			IsVisible: true,
			Position:  i,
		}
		content, err := json.Marshal(b.Content)
		if err != nil {
			return fmt.Errorf("seed encode %s: %w", bt, err)
		}
		settings, _ := json.Marshal(b.Settings)
		if _, err := tx.Exec(`
			INSERT INTO page_blocks (page_id, block_id, block_type, content, settings, is_visible, position)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		`, pageID, b.ID, b.Type, content, settings, i); err != nil {
			return fmt.Errorf("seed block %s: %w", bt, err)
		}
		list = append(list, b)
	}

	snapshot, _ := json.Marshal(list)
	if _, err := tx.Exec(`INSERT INTO page_revisions (page_id, version, blocks) VALUES ($1, 1, $2)`, pageID, snapshot); err != nil {
		return fmt.Errorf("seed home revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed home commit: %w", err)
	}
	slog.Info("database seeded with demo home page", "page", pageID)
	return nil
}
