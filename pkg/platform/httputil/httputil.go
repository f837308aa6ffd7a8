// Package httputil holds the JSON response helpers shared by every HTTP
// handler and middleware, so error envelopes stay identical across routes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "authgate/pkg/domain-errors"
)

// ErrorResponse is the wire envelope for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP status and envelope.
// Errors without a domain code, and internal errors, are rendered without a
// description so no internal detail leaks to the caller.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: string(dErrors.CodeInternal)}

	if de, ok := dErrors.As(err); ok {
		status = dErrors.ToHTTPStatus(de.Code)
		if status != http.StatusInternalServerError {
			resp = ErrorResponse{Error: string(de.Code), ErrorDescription: de.Message}
		}
	}

	WriteJSON(w, status, resp)
}
