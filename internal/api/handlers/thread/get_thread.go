package thread

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"Skylark/internal/core/threads"
)

// GetThreadHandler handles thread decomposition retrieval.
type GetThreadHandler struct {
	service threads.Service
}

// NewGetThreadHandler creates a new thread handler.
func NewGetThreadHandler(service threads.Service) *GetThreadHandler {
	return &GetThreadHandler{service: service}
}

// HandleGetThread retrieves the decomposed thread for a post.
// GET /xrpc/app.skylark.thread.getThread?uri=at://...&depth=10&parentHeight=80
func (h *GetThreadHandler) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	uri := q.Get("uri")
	if uri == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "uri is required")
		return
	}

	depth := parseBound(q.Get("depth"))
	parentHeight := parseBound(q.Get("parentHeight"))

	decomp, err := h.service.Fetch(r.Context(), uri, depth, parentHeight)
	if err != nil {
		slog.Error("thread service error", "uri", uri, "error", err)
		writeError(w, http.StatusBadGateway, "UpstreamError", "An error occurred while fetching the thread")
		return
	}

	// An unresolvable root is a valid outcome, reported as the empty
	// decomposition rather than an error.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"ancestors": decomp.Ancestors,
		"focused":   decomp.Focused,
		"replies":   decomp.Replies,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseBound(raw string) int64 {
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
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
