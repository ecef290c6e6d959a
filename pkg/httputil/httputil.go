// Package httputil centralizes JSON response and error envelope handling so
// handlers stay thin and error translation stays consistent.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
)

// WriteJSON serializes v with the given status. Encoding failures are
// silently dropped; the status line has already been written.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors omit the description so storage details never reach
// clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
