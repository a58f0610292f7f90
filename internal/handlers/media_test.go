// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

type fakeObjects struct {
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
}

func (f *fakeObjects) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploaded[key] = data
	return nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) FileURL(key string) string { return "https://cdn.example.com/" + key }

func (f *fakeObjects) Bucket() string { return "pagecraft-public" }

type fakeMediaRecords struct {
	created []*models.Media
	err     error
}

func (f *fakeMediaRecords) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *m
	cp.ID = uuid.New()
	f.created = append(f.created, &cp)
	return &cp, nil
}

// pngBytes is the smallest payload http.DetectContentType reports as PNG.
var pngBytes = append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), make([]byte, 32)...)

func uploadRequest(t *testing.T, filename string, data []byte, withSession bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.WriteField("alt_text", "A photo")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if withSession {
		req = req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "a@example.com", "admin")))
	}
	return req
}

func newMediaHandler(objects *fakeObjects, records *fakeMediaRecords) *Media {
	m := NewMedia(objects, records)
	m.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestMediaUpload(t *testing.T) {
	objects := &fakeObjects{uploaded: map[string][]byte{}}
	records := &fakeMediaRecords{}
	h := newMediaHandler(objects, records)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "../../photo.png", pngBytes, true))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	url, _ := resp["url"].(string)
	if !strings.HasPrefix(url, "https://cdn.example.com/media/2026/03/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q", url)
	}
	if resp["filename"] != "photo.png" {
		t.Errorf("filename = %v, want photo.png", resp["filename"])
	}
	if len(objects.uploaded) != 1 {
		t.Errorf("uploaded %d objects", len(objects.uploaded))
	}
	if len(records.created) != 1 || records.created[0].AltText == nil || *records.created[0].AltText != "A photo" {
		t.Errorf("record = %+v", records.created)
	}
	if records.created[0].Bucket != "pagecraft-public" {
		t.Errorf("bucket = %q", records.created[0].Bucket)
	}
}

func TestMediaUploadRejects(t *testing.T) {
	tests := []struct {
		name     string
		objects  *fakeObjects
		records  *fakeMediaRecords
		data     []byte
		session  bool
		wantCode int
	}{
		{"storage not configured", nil, &fakeMediaRecords{}, pngBytes, true, http.StatusServiceUnavailable},
		{"no session", &fakeObjects{uploaded: map[string][]byte{}}, &fakeMediaRecords{}, pngBytes, false, http.StatusUnauthorized},
		{"not an image", &fakeObjects{uploaded: map[string][]byte{}}, &fakeMediaRecords{}, []byte("#!/bin/sh\necho hi\n"), true, http.StatusBadRequest},
		{"svg is not allowed", &fakeObjects{uploaded: map[string][]byte{}}, &fakeMediaRecords{}, []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), true, http.StatusBadRequest},
		{"upload fails", &fakeObjects{uploaded: map[string][]byte{}, uploadErr: errors.New("s3 down")}, &fakeMediaRecords{}, pngBytes, true, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *Media
			if tt.objects == nil {
				h = NewMedia(nil, tt.records)
			} else {
				h = newMediaHandler(tt.objects, tt.records)
			}
			rec := httptest.NewRecorder()
			h.Upload(rec, uploadRequest(t, "file.bin", tt.data, tt.session))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if len(tt.records.created) != 0 {
				t.Error("rejected upload created a media record")
			}
		})
	}
}

func TestMediaUploadCleansUpOnInsertFailure(t *testing.T) {
	objects := &fakeObjects{uploaded: map[string][]byte{}}
	records := &fakeMediaRecords{err: errors.New("db down")}
	h := newMediaHandler(objects, records)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "photo.png", pngBytes, true))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(objects.deleted) != 1 {
		t.Fatalf("deleted = %v, want the uploaded key", objects.deleted)
	}
	if _, ok := objects.uploaded[objects.deleted[0]]; !ok {
		t.Errorf("deleted key %q was never uploaded", objects.deleted[0])
	}
}
