// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// apiPrefix is where the editor's JSON API is mounted.
const apiPrefix = "/admin/api/"

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, apiPrefix)
}

// apiError writes the {"error": msg} body the editor script expects from
// every API failure.
func apiError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
