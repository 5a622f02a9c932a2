// Package api exposes the HTTP surface: auth, users, chats/messages, the
// upload directory, and the realtime WebSocket endpoint.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"chatline/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to a status. Server faults are logged
// and answered with a generic message; caller faults echo their reason.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := errors.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewValidation("invalid request body")
	}
	return nil
}
