package engagement

import (
	"encoding/json"
	"net/http"

	"Skylark/internal/core/engagement"
)

// CreatePostHandler handles post creation.
type CreatePostHandler struct {
	service engagement.Service
}

// NewCreatePostHandler creates a post creation handler.
func NewCreatePostHandler(service engagement.Service) *CreatePostHandler {
	return &CreatePostHandler{service: service}
}

type createPostRequest struct {
	Text   string              `json:"text"`
	Langs  []string            `json:"langs,omitempty"`
	Images []imageBlobRequest  `json:"images,omitempty"`
	Quote  *strongRefRequest   `json:"quote,omitempty"`
	Reply  *replyTargetRequest `json:"reply,omitempty"`
}

type imageBlobRequest struct {
	CID      string `json:"cid"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Alt      string `json:"alt,omitempty"`
}

type strongRefRequest struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type replyTargetRequest struct {
	Root   strongRefRequest `json:"root"`
	Parent strongRefRequest `json:"parent"`
}

// HandleCreatePost creates a post record from already-uploaded media.
// POST /xrpc/app.skylark.engagement.createPost
func (h *CreatePostHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var body createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	req := engagement.CreatePostRequest{
		Text:  body.Text,
		Langs: body.Langs,
	}
	for _, img := range body.Images {
		req.Images = append(req.Images, engagement.ImageBlob{
			CID:      img.CID,
			MimeType: img.MimeType,
			Size:     img.Size,
			Alt:      img.Alt,
		})
	}
	if body.Quote != nil {
		req.Quote = &engagement.QuoteTarget{URI: body.Quote.URI, CID: body.Quote.CID}
	}
	if body.Reply != nil {
		req.Reply = &engagement.ReplyTarget{
			RootURI:   body.Reply.Root.URI,
			RootCID:   body.Reply.Root.CID,
			ParentURI: body.Reply.Parent.URI,
			ParentCID: body.Reply.Parent.CID,
		}
	}

	uri, cid, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"uri": uri, "cid": cid})
}
