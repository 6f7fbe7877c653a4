// Package handlers implements the HTTP endpoints of the tool proxy.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Error kinds reported in JSON error bodies.
const (
	KindToolNotFound  = "tool_not_found"
	KindBadRequest    = "bad_request"
	KindUpstreamError = "upstream_error"
	KindInternalError = "internal_error"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	WriteError(w, http.StatusMethodNotAllowed, KindBadRequest, "Method not allowed")
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, kind, message string) error {
	return WriteJSON(w, statusCode, ErrorResponse{Error: message, Kind: kind})
}
