package feed

import (
	"net/http"
	"strconv"

	"Skylark/internal/core/feeds"
)

// GetFeedHandler handles flat feed retrieval across all fetch modes.
type GetFeedHandler struct {
	service feeds.Service
}

// NewGetFeedHandler creates a new feed handler.
func NewGetFeedHandler(service feeds.Service) *GetFeedHandler {
	return &GetFeedHandler{service: service}
}

// HandleGetFeed retrieves one normalized feed page.
// GET /xrpc/app.skylark.feed.getFeed?mode=author&actor=...&limit=25&cursor=...
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limit int64
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	req := feeds.Request{
		Mode:   feeds.Mode(q.Get("mode")),
		Actor:  q.Get("actor"),
		Feed:   q.Get("feed"),
		Query:  q.Get("q"),
		Limit:  limit,
		Cursor: q.Get("cursor"),
	}
	if req.Mode == "" {
		req.Mode = feeds.ModeFeed
	}

	page, err := h.service.Fetch(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"items":  page.Items,
		"cursor": page.Cursor,
	})
}
