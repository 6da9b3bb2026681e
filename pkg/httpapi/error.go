package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of every non-2xx API response. The error
// object is nested so success payloads and failures never share a shape.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable machine-readable code alongside the
// human-readable message. Meta holds field-level detail for 4xx errors.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// WriteJSON serializes payload with the given status. A nil payload
// writes the status line and headers only.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteError writes the error envelope. An empty message falls back to
// the standard text for the status code.
func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return WriteJSON(w, status, ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Meta:    meta,
		},
	})
}
