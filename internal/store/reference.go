// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"pagecraft/internal/models"
)

// ReferenceStore reads the services, testimonials and locations that
// blocks display. The records are maintained elsewhere; this store never
// writes them.
type ReferenceStore struct {
	db *sql.DB
}

// NewReferenceStore creates a new ReferenceStore.
func NewReferenceStore(db *sql.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// Services returns all services in display order.
func (s *ReferenceStore) Services(ctx context.Context) ([]models.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, title, summary, icon
		FROM services ORDER BY sort_order ASC, title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items := []models.Service{}
	for rows.Next() {
		var v models.Service
		if err := rows.Scan(&v.ID, &v.Slug, &v.Title, &v.Summary, &v.Icon); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Testimonials returns all testimonials, newest first.
func (s *ReferenceStore) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author, quote, rating, location
		FROM testimonials ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	items := []models.Testimonial{}
	for rows.Next() {
		var v models.Testimonial
		if err := rows.Scan(&v.ID, &v.Author, &v.Quote, &v.Rating, &v.Location); err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Locations returns all locations in display order.
func (s *ReferenceStore) Locations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, address, phone
		FROM locations ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	items := []models.Location{}
	for rows.Next() {
		var v models.Location
		if err := rows.Scan(&v.ID, &v.Slug, &v.Name, &v.Address, &v.Phone); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Reference returns all three record sets at once.
func (s *ReferenceStore) Reference(ctx context.Context) (models.ReferenceData, error) {
	var (
		ref models.ReferenceData
		err error
	)
	if ref.Services, err = s.Services(ctx); err != nil {
		return models.ReferenceData{}, err
	}
	if ref.Testimonials, err = s.Testimonials(ctx); err != nil {
		return models.ReferenceData{}, err
	}
	if ref.Locations, err = s.Locations(ctx); err != nil {
		return models.ReferenceData{}, err
	}
	return ref, nil
}
