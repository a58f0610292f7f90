// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for pagecraft. Handlers are
// grouped by concern (auth, admin pages, editor API, public site) and
// receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pagecraft/internal/bridge"
	"pagecraft/internal/draft"
	"pagecraft/internal/editor"
	"pagecraft/internal/properties"
)

// maxJSONBody caps editor API request bodies. A full page of blocks is well
// under this.
const maxJSONBody = 1 << 20

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps err to a status code and writes it as JSON. Unexpected
// errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "validation failed",
			Fields: fieldErrors(verrs),
		})
		return
	}

	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorBody{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// errorStatus returns the HTTP status for an error from the editor stack.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, draft.ErrUnknownBlockType),
		errors.Is(err, properties.ErrUnknownField),
		errors.Is(err, properties.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrBlockNotFound),
		errors.Is(err, bridge.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrConfirmationRequired),
		errors.Is(err, editor.ErrUnsavedChanges),
		errors.Is(err, properties.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, editor.ErrSaveThrottled):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// fieldErrors flattens ozzo validation errors into field -> message.
func fieldErrors(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if nested, ok := err.(validation.Errors); ok {
			for sub, msg := range fieldErrors(nested) {
				out[field+"."+sub] = msg
			}
			continue
		}
		out[field] = err.Error()
	}
	return out
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode body: %v: %w", err, errBadRequest)
	}
	return nil
}
