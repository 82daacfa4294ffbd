package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/configuration"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteAPIError writes an ErrorEnvelope carrying the request id.
func WriteAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	_ = WriteError(w, status, code, message, map[string]string{
		"request_id": EnsureRequestID(w, r),
	})
}

// EnsureRequestID returns the id assigned by the logging middleware, the one
// sent by the client, or a fresh one echoed back in the response headers.
func EnsureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	if id, ok := composables.UseRequestID(r.Context()); ok {
		return id
	}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}

	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}
