package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/natalia11920/pairpay/pkg/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteError answers with the status and body matching err.
// Internal causes are logged and never sent to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		slog.Error("Request failed", "error", err)
	}
	WriteJSON(w, apperr.HTTPStatus(err), ErrorBody{
		Message: apperr.PublicMessage(err),
		Code:    code,
		Reason:  apperr.ReasonOf(err),
	})
}
