// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"pagecraft/internal/blocks"
	"pagecraft/internal/models"
	"pagecraft/internal/properties"
	"pagecraft/internal/slug"
)

// Validation limits for page and editor payloads.
const (
	maxTitleLen = 300
	maxSlugLen  = slug.MaxLen
	maxQueryLen = 100
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs are first path segments routed to something other than a
// public page.
var reservedSlugs = []any{"admin", "static", "health", "metrics"}

// options converts a typed enum list for validation.In.
func options[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var knownBlockType = validation.By(func(v any) error {
	t, _ := v.(models.BlockType)
	if t != "" && !blocks.Known(t) {
		return errors.New("unknown block type")
	}
	return nil
})

// pageForm is the new page form.
type pageForm struct {
	Title string
	Slug  string
}

func (f pageForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&f.Slug,
			validation.Required,
			validation.RuneLength(1, maxSlugLen),
			validation.Match(slugPattern).Error("must be lower-case letters, digits and hyphens"),
			validation.NotIn(reservedSlugs...).Error("is reserved"),
		),
	)
}

// openRequest starts an editor session.
type openRequest struct {
	PageID string `json:"pageId"`
}

func (r openRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required, is.UUID),
	)
}

// addBlockRequest inserts a block. A nil position appends.
type addBlockRequest struct {
	Type     models.BlockType `json:"type"`
	Position *int             `json:"position"`
}

func (r addBlockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, knownBlockType),
	)
}

// reorderRequest is a drop. It names either a target block or an absolute
// index.
type reorderRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Index    *int   `json:"index"`
}

func (r reorderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceID, validation.Required),
		validation.Field(&r.TargetID, validation.When(r.Index == nil, validation.Required.Error("targetId or index is required"))),
	)
}

// settingsPayload carries block settings. Empty values fall back to the
// defaults.
type settingsPayload struct {
	Padding    models.Padding    `json:"padding"`
	Background models.Background `json:"background"`
	MaxWidth   models.MaxWidth   `json:"maxWidth"`
}

func (s settingsPayload) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Padding, validation.In(options(models.PaddingOptions)...)),
		validation.Field(&s.Background, validation.In(options(models.BackgroundOptions)...)),
		validation.Field(&s.MaxWidth, validation.In(options(models.MaxWidthOptions)...)),
	)
}

func (s settingsPayload) settings() models.Settings {
	return models.Settings{Padding: s.Padding, Background: s.Background, MaxWidth: s.MaxWidth}.Normalize()
}

// blockPatchRequest updates top-level block fields.
type blockPatchRequest struct {
	Settings  *settingsPayload `json:"settings"`
	IsVisible *bool            `json:"isVisible"`
}

func (r blockPatchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Settings),
	)
}

// cursorRequest moves the selection or hover cursor; "" clears it.
type cursorRequest struct {
	ID string `json:"id"`
}

type deviceRequest struct {
	Device models.Device `json:"device"`
}

func (r deviceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Device, validation.Required,
			validation.In(models.DeviceDesktop, models.DeviceTablet, models.DeviceMobile)),
	)
}

type paletteOpenRequest struct {
	Position *int `json:"position"`
}

type paletteFilterRequest struct {
	Query    string          `json:"query"`
	Category blocks.Category `json:"category"`
}

func (r paletteFilterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.RuneLength(0, maxQueryLen)),
		validation.Field(&r.Category, validation.In(options(blocks.Categories)...)),
	)
}

type paletteChooseRequest struct {
	Type models.BlockType `json:"type"`
}

func (r paletteChooseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, knownBlockType),
	)
}

type fieldRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (r fieldRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

type settingRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (r settingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required,
			validation.In(properties.SettingPadding, properties.SettingBackground, properties.SettingMaxWidth)),
		validation.Field(&r.Value, validation.Required),
	)
}

type listItemRequest struct {
	Index int    `json:"index"`
	Sub   string `json:"sub"`
	Value any    `json:"value"`
}

func (r listItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Index, validation.Min(0)),
	)
}

// blockList is the body of a full block list save.
type blockList []models.Block

func (l blockList) Validate() error {
	errs := validation.Errors{}
	seen := make(map[string]bool, len(l))
	for i, b := range l {
		key := fmt.Sprint(i)
		err := validation.ValidateStruct(&b,
			validation.Field(&b.ID, validation.Required),
			validation.Field(&b.Type, validation.Required),
		)
		if err != nil {
			errs[key] = err
			continue
		}
		if seen[b.ID] {
			errs[key] = validation.Errors{"id": errors.New("duplicate block id " + b.ID)}
			continue
		}
		seen[b.ID] = true
	}
	return errs.Filter()
}

// normalizeSlug derives a slug from the title when none was given.
func normalizeSlug(title, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = title
	}
	return slug.Generate(raw)
}
