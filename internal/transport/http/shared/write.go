// Package shared holds response helpers used by every HTTP handler so error
// envelopes stay consistent across the API surface.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "veriseq/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every error the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP envelope. Errors that
// carry no domain code map to 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.DomainError
	if errors.As(err, &de) {
		WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorResponse{
			Error:   string(de.Code),
			Message: de.Message,
		})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: string(dErrors.CodeInternal),
	})
}
