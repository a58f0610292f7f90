// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Service is an offering listed by the services grid block.
type Service struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	Icon    string    `json:"icon"`
}

// Testimonial is a customer quote shown by the testimonials block.
type Testimonial struct {
	ID       uuid.UUID `json:"id"`
	Author   string    `json:"author"`
	Quote    string    `json:"quote"`
	Rating   int       `json:"rating"`
	Location string    `json:"location"`
}

// Location is a branch or service area shown by the locations block.
type Location struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
}

// ReferenceData bundles the read-only records some blocks render from.
type ReferenceData struct {
	Services     []Service     `json:"services"`
	Testimonials []Testimonial `json:"testimonials"`
	Locations    []Location    `json:"locations"`
}
