// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/draft"
	"pagecraft/internal/editor"
	"pagecraft/internal/middleware"
	"pagecraft/internal/palette"
	"pagecraft/internal/preview"
)

// PreviewReader returns the last synced preview of a session.
type PreviewReader interface {
	GetPreview(ctx context.Context, sessionID string) ([]byte, bool, error)
}

// Editor serves the JSON API the editor shell talks to. Every gesture on
// the canvas, palette or properties panel is one call; mutating calls
// answer with the new session state so the shell can redraw.
type Editor struct {
	manager  *editor.Manager
	previews PreviewReader
	renderer *preview.Renderer
}

// NewEditor creates the editor API handlers. previews may be nil, in which
// case the detached preview is rendered on request.
func NewEditor(manager *editor.Manager, previews PreviewReader, renderer *preview.Renderer) *Editor {
	return &Editor{manager: manager, previews: previews, renderer: renderer}
}

// Routes mounts the session API.
func (e *Editor) Routes(r chi.Router) {
	r.Post("/", e.Open)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", e.State)
		r.Delete("/", e.Close)

		r.Post("/blocks", e.AddBlock)
		r.Post("/blocks/{bid}/duplicate", e.DuplicateBlock)
		r.Delete("/blocks/{bid}", e.DeleteBlock)
		r.Post("/blocks/{bid}/visibility", e.ToggleVisibility)
		r.Patch("/blocks/{bid}/content", e.UpdateContent)
		r.Patch("/blocks/{bid}", e.UpdateBlock)

		r.Post("/reorder", e.Reorder)
		r.Post("/select", e.Select)
		r.Post("/hover", e.Hover)
		r.Post("/device", e.Device)

		r.Get("/palette", e.Palette)
		r.Post("/palette/open", e.PaletteOpen)
		r.Post("/palette/filter", e.PaletteFilter)
		r.Post("/palette/choose", e.PaletteChoose)
		r.Post("/palette/close", e.PaletteClose)

		r.Get("/properties", e.Properties)
		r.Post("/properties/field", e.SetField)
		r.Post("/properties/setting", e.SetSetting)
		r.Post("/properties/list/{field}/{action}", e.EditList)

		r.Get("/preview", e.Preview)
		r.Post("/save", e.Save)
		r.Get("/leave", e.Leave)
		r.Get("/notices", e.Notices)
	})
}

// callerID returns the signed-in user's id, or nil.
func callerID(r *http.Request) *uuid.UUID {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return nil
	}
	id := sess.UserID
	return &id
}

// session resolves the {sid} URL parameter to a session the caller opened.
// Another user's session answers as not found.
func (e *Editor) session(r *http.Request) (*editor.Session, error) {
	sid := chi.URLParam(r, "sid")
	s, err := e.manager.Get(sid)
	if err != nil {
		return nil, err
	}
	if !s.OwnedBy(callerID(r)) {
		slog.Warn("editor session used by another user", "session", sid)
		return nil, fmt.Errorf("session %s: %w", sid, editor.ErrSessionNotFound)
	}
	return s, nil
}

// withSession resolves the session or writes the error.
func (e *Editor) withSession(w http.ResponseWriter, r *http.Request, fn func(*editor.Session)) {
	s, err := e.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fn(s)
}

// decodeValid decodes a JSON body and runs its validation.
func decodeValid[T interface{ Validate() error }](r *http.Request) (T, error) {
	var req T
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	return req, req.Validate()
}

// Open starts or resumes a session for the signed-in user.
func (e *Editor) Open(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValid[openRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageID := uuid.MustParse(req.PageID)

	s, err := e.manager.Open(r.Context(), pageID, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.State())
}

// State returns the session snapshot.
func (e *Editor) State(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		writeJSON(w, http.StatusOK, s.State())
	})
}

// Close ends the session. Without ?force=true a dirty session answers 409
// with the leave warning.
func (e *Editor) Close(w http.ResponseWriter, r *http.Request) {
	s, err := e.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	force := r.URL.Query().Get("force") == "true"
	warning := s.LeaveWarning()

	if err := e.manager.Close(s.ID, force); err != nil {
		if errorStatus(err) == http.StatusConflict {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":   err.Error(),
				"warning": warning,
			})
			return
		}
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBlock inserts a new block at the requested position, or at the end.
func (e *Editor) AddBlock(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[addBlockRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		at := palette.EndOfPage
		if req.Position != nil {
			at = *req.Position
		}
		b, err := s.AddBlock(req.Type, at)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"block": b, "state": s.State()})
	})
}

// DuplicateBlock copies a block right after itself.
func (e *Editor) DuplicateBlock(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		b, err := s.DuplicateBlock(chi.URLParam(r, "bid"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"block": b, "state": s.State()})
	})
}

// DeleteBlock removes a block. Deleting needs ?confirm=true.
func (e *Editor) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		confirmed := r.URL.Query().Get("confirm") == "true"
		if err := s.DeleteBlock(chi.URLParam(r, "bid"), confirmed); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.State())
	})
}

// ToggleVisibility flips whether a block shows on the live page.
func (e *Editor) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		s.ToggleVisibility(chi.URLParam(r, "bid"))
		writeJSON(w, http.StatusOK, s.State())
	})
}

// UpdateContent merges the posted object into a block's content.
func (e *Editor) UpdateContent(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		var partial map[string]any
		if err := decodeJSON(r, &partial); err != nil {
			writeError(w, r, err)
			return
		}
		s.UpdateContent(chi.URLParam(r, "bid"), partial)
		writeJSON(w, http.StatusOK, s.State())
	})
}

// UpdateBlock patches settings or visibility. Posted settings replace the
// block's settings as a whole; omitted values take their defaults.
func (e *Editor) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[blockPatchRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch := draft.Patch{IsVisible: req.IsVisible}
		if req.Settings != nil {
			settings := req.Settings.settings()
			patch.Settings = &settings
		}
		s.UpdateBlock(chi.URLParam(r, "bid"), patch)
		writeJSON(w, http.StatusOK, s.State())
	})
}

// Reorder applies a drop onto a target block or at an absolute index.
func (e *Editor) Reorder(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[reorderRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var moved bool
		if req.Index != nil {
			moved = s.MoveTo(req.SourceID, *req.Index)
		} else {
			moved = s.Reorder(req.SourceID, req.TargetID)
		}
		writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "state": s.State()})
	})
}

// Select moves the selection cursor. An empty id clears it.
func (e *Editor) Select(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		var req cursorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		s.Select(req.ID)
		writeJSON(w, http.StatusOK, s.State())
	})
}

// Hover moves the hover cursor. An empty id clears it.
func (e *Editor) Hover(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		var req cursorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		s.Hover(req.ID)
		w.WriteHeader(http.StatusNoContent)
	})
}

// Device switches the preview viewport.
func (e *Editor) Device(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[deviceRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.SetDevice(req.Device)
		writeJSON(w, http.StatusOK, s.State())
	})
}

// Palette returns the inserter state.
func (e *Editor) Palette(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		writeJSON(w, http.StatusOK, s.Palette())
	})
}

// PaletteOpen opens the inserter at a position; no position means the end
// of the page.
func (e *Editor) PaletteOpen(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		var req paletteOpenRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		at := palette.EndOfPage
		if req.Position != nil && *req.Position >= 0 {
			at = *req.Position
		}
		writeJSON(w, http.StatusOK, s.OpenPalette(at))
	})
}

// PaletteFilter updates the inserter's search and category.
func (e *Editor) PaletteFilter(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[paletteFilterRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.FilterPalette(req.Query, req.Category))
	})
}

// PaletteChoose inserts the chosen block type and closes the inserter.
func (e *Editor) PaletteChoose(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[paletteChooseRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, err := s.ChoosePalette(req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"block": b, "state": s.State()})
	})
}

// PaletteClose dismisses the inserter.
func (e *Editor) PaletteClose(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		s.ClosePalette()
		writeJSON(w, http.StatusOK, s.Palette())
	})
}

// Properties returns the form for the selected block.
func (e *Editor) Properties(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		writeJSON(w, http.StatusOK, s.Properties())
	})
}

// SetField writes one content field of the selected block.
func (e *Editor) SetField(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[fieldRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.SetField(req.Name, req.Value); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Properties())
	})
}

// SetSetting writes one presentation setting of the selected block.
func (e *Editor) SetSetting(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[settingRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.SetSetting(req.Name, req.Value); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Properties())
	})
}

// EditList runs a list editor action (append, remove, up, down, set) on a
// list field of the selected block.
func (e *Editor) EditList(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		req, err := decodeValid[listItemRequest](r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		action := editor.ListAction(chi.URLParam(r, "action"))
		if err := s.EditList(chi.URLParam(r, "field"), action, req.Index, req.Sub, req.Value); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Properties())
	})
}

// Preview returns the edit-mode canvas HTML of the draft.
func (e *Editor) Preview(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		html, err := s.Preview()
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	})
}

// Save starts a background save and answers 202 at once. With ?wait=true
// it waits for the write and reports whether the draft ended up clean.
func (e *Editor) Save(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		ticket, err := s.Save(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if r.URL.Query().Get("wait") != "true" {
			writeJSON(w, http.StatusAccepted, map[string]any{"revision": ticket.Revision})
			return
		}
		if err := ticket.Wait(r.Context()); err != nil {
			slog.Warn("save failed", "session", s.ID, "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":    "save failed",
				"revision": ticket.Revision,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"revision": ticket.Revision,
			"clean":    ticket.Clean(),
		})
	})
}

// Leave reports whether leaving the editor would lose changes.
func (e *Editor) Leave(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		warning := s.LeaveWarning()
		writeJSON(w, http.StatusOK, map[string]any{
			"dirty":   warning != "",
			"warning": warning,
		})
	})
}

// Notices drains the session's queued notices.
func (e *Editor) Notices(w http.ResponseWriter, r *http.Request) {
	e.withSession(w, r, func(s *editor.Session) {
		notices := s.Notices()
		if notices == nil {
			notices = []editor.Notice{}
		}
		writeJSON(w, http.StatusOK, notices)
	})
}

// DetachedPreview serves the preview pane opened in its own window. It
// shows the last debounced sync, falling back to a fresh render when
// nothing was synced yet.
func (e *Editor) DetachedPreview(w http.ResponseWriter, r *http.Request) {
	s, err := e.session(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sid := s.ID

	var body template.HTML
	if e.previews != nil {
		cached, ok, err := e.previews.GetPreview(r.Context(), sid)
		if err != nil {
			slog.Warn("preview cache read failed", "session", sid, "error", err)
		}
		if ok {
			body = template.HTML(cached)
		}
	}

	if body == "" {
		html, err := s.Preview()
		if err != nil {
			slog.Error("detached preview render failed", "session", sid, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		body = html
	}

	page, err := e.renderer.Wrap("Preview", "", body)
	if err != nil {
		slog.Error("detached preview wrap failed", "session", sid, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Refresh", strconv.Itoa(previewRefreshSeconds))
	w.Write(page)
}

// previewRefreshSeconds is how often the detached preview reloads itself.
const previewRefreshSeconds = 2
