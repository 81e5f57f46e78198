package engagement

import (
	"encoding/json"
	"net/http"

	"Skylark/internal/core/engagement"
	"Skylark/internal/core/posts"
)

// ToggleHandler handles like and repost toggles.
type ToggleHandler struct {
	service engagement.Service
	kind    engagement.Kind
}

// NewToggleHandler creates a toggle handler for one mutation kind.
func NewToggleHandler(service engagement.Service, kind engagement.Kind) *ToggleHandler {
	return &ToggleHandler{service: service, kind: kind}
}

// toggleRequest is the request body for a toggle. RecordURI carries the
// viewer's existing like/repost record when the toggle is an undo.
type toggleRequest struct {
	URI       string `json:"uri"`
	CID       string `json:"cid"`
	RecordURI string `json:"recordUri,omitempty"`
	Count     int64  `json:"count,omitempty"`
}

// HandleToggle flips the viewer's relationship to a single post.
// POST /xrpc/app.skylark.engagement.toggleLike {"uri": ..., "cid": ...}
//
// The HTTP surface is stateless, so the caller supplies the post identity
// and its current relationship; the handler adapts them into a
// single-item view for the reconciler and returns the reconciled item.
func (h *ToggleHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}
	if req.URI == "" || req.CID == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "uri and cid are required")
		return
	}

	item := &posts.PostView{URI: req.URI, CID: req.CID}
	ref := posts.AbsentRef()
	if req.RecordURI != "" {
		ref = posts.CommittedRef(req.RecordURI)
	}
	if h.kind == engagement.KindRepost {
		item.Viewer.Repost = ref
		item.Counts.Reposts = req.Count
	} else {
		item.Viewer.Like = ref
		item.Counts.Likes = req.Count
	}

	view := engagement.NewFeedState([]*posts.PostView{item}, nil)

	var err error
	if h.kind == engagement.KindRepost {
		err = h.service.ToggleRepost(r.Context(), view, req.URI)
	} else {
		err = h.service.ToggleLike(r.Context(), view, req.URI)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"item": view.Items()[0]})
}
