package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Skylark/internal/core/feeds"
)

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a standardized JSON error response.
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

// handleServiceError maps feed service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feeds.ErrFeedNotResolvable):
		writeError(w, http.StatusBadRequest, "InvalidFeed", "The feed reference could not be resolved")
	case errors.Is(err, feeds.ErrUnsupportedMode):
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Unsupported fetch mode")
	default:
		slog.Error("feed service error", "error", err)
		writeError(w, http.StatusBadGateway, "UpstreamError", "An error occurred while fetching the feed")
	}
}
