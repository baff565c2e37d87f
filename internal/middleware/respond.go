package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// deny writes the same error envelope the handlers use. Middleware can't
// import handler, so the shape is repeated here.
func deny(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"error": map[string]string{"code": code, "message": message},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write error response", "error", err)
	}
}
