// Package handlers exposes the engine's HTTP surface: the analyst ask and
// history endpoints plus health probes.
package handlers

import (
	"encoding/json"
	"net/http"
)

// errorBody is the shape of every non-2xx response: a stable machine-readable
// code plus a human-readable message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorResponse writes a JSON error body with the given status. The encoding
// error is returned for callers that want to log it.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(errorBody{Error: errorCode, Message: message})
}

// WriteJSON encodes data as a JSON response. A 200 status is left to the
// first body write so handlers do not need to set it explicitly.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
