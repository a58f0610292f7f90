// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
)

// maxUploadSize is the largest image accepted for an image field (10 MB).
const maxUploadSize = 10 << 20

// allowedImageTypes maps accepted sniffed MIME types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the blob storage uploads go to.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	Bucket() string
}

// MediaRecorder keeps the metadata of uploaded files.
type MediaRecorder interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
}

// Media accepts image uploads for image fields. The returned URL is what
// the editor writes into the block content.
type Media struct {
	objects ObjectStore
	records MediaRecorder
	now     func() time.Time
}

// NewMedia creates the upload handler. A nil objects store makes every
// upload answer 503.
func NewMedia(objects ObjectStore, records MediaRecorder) *Media {
	return &Media{objects: objects, records: records, now: time.Now}
}

// Upload stores a multipart "file" field in object storage.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if m.objects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "object storage is not configured"})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "file too large, maximum size is 10 MB"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to read file"})
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("file type %q is not allowed", contentType)})
		return
	}

	now := m.now()
	fileID := uuid.NewString()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := m.objects.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "failed to upload file"})
		return
	}

	record := &models.Media{
		Filename:     fileID + ext,
		OriginalName: filepath.Base(header.Filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       m.objects.Bucket(),
		S3Key:        key,
		UploaderID:   sess.UserID,
		URL:          m.objects.FileURL(key),
	}
	if alt := r.FormValue("alt_text"); alt != "" {
		record.AltText = &alt
	}

	created, err := m.records.Create(ctx, record)
	if err != nil {
		slog.Error("media db insert failed", "error", err, "key", key)
		if err := m.objects.Delete(ctx, key); err != nil {
			slog.Warn("s3 cleanup after failed insert failed", "error", err, "key", key)
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to save file metadata"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       created.ID,
		"url":      created.URL,
		"filename": created.OriginalName,
		"type":     created.ContentType,
		"size":     created.SizeBytes,
	})
}
