package engagement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Skylark/internal/core/engagement"
)

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// handleServiceError maps engagement service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engagement.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "A session is required for this action")
	case errors.Is(err, engagement.ErrEmptyPost):
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Post content is required")
	case errors.Is(err, engagement.ErrPostTooLong):
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Post text exceeds the length limit")
	case errors.Is(err, engagement.ErrInvalidBlobRef):
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Image blob reference is invalid")
	default:
		slog.Error("engagement service error", "error", err)
		writeError(w, http.StatusBadGateway, "UpstreamError", "The mutation failed and was reverted")
	}
}
