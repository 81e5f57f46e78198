package engagement

import (
	"fmt"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/ipfs/go-cid"
)

// AT Protocol collections this service writes to.
const (
	likeCollection   = "app.bsky.feed.like"
	repostCollection = "app.bsky.feed.repost"
	postCollection   = "app.bsky.feed.post"
)

const strongRefType = "com.atproto.repo.strongRef"

// likeRecord follows the app.bsky.feed.like lexicon.
type likeRecord struct {
	Type      string                    `json:"$type"`
	Subject   *comatproto.RepoStrongRef `json:"subject"`
	CreatedAt string                    `json:"createdAt"`
}

// repostRecord follows the app.bsky.feed.repost lexicon.
type repostRecord struct {
	Type      string                    `json:"$type"`
	Subject   *comatproto.RepoStrongRef `json:"subject"`
	CreatedAt string                    `json:"createdAt"`
}

// postRecord follows the app.bsky.feed.post lexicon. Embed holds one of
// the embed record shapes built by buildEmbed.
type postRecord struct {
	Type      string          `json:"$type"`
	Text      string          `json:"text"`
	CreatedAt string          `json:"createdAt"`
	Langs     []string        `json:"langs,omitempty"`
	Reply     *replyRefRecord `json:"reply,omitempty"`
	Embed     any             `json:"embed,omitempty"`
}

// replyRefRecord anchors a reply to its thread root and direct parent.
type replyRefRecord struct {
	Root   *comatproto.RepoStrongRef `json:"root"`
	Parent *comatproto.RepoStrongRef `json:"parent"`
}

// strongRef builds a versioned record reference.
func strongRef(uri, cidStr string) *comatproto.RepoStrongRef {
	return &comatproto.RepoStrongRef{
		LexiconTypeID: strongRefType,
		Uri:           uri,
		Cid:           cidStr,
	}
}

// blobRef is an already-uploaded blob as it appears inside records.
type blobRef struct {
	Type     string   `json:"$type"`
	Ref      blobLink `json:"ref"`
	MimeType string   `json:"mimeType"`
	Size     int64    `json:"size"`
}

type blobLink struct {
	Link string `json:"$link"`
}

// imagesEmbed follows app.bsky.embed.images.
type imagesEmbed struct {
	Type   string      `json:"$type"`
	Images []imageItem `json:"images"`
}

type imageItem struct {
	Alt   string  `json:"alt,omitempty"`
	Image blobRef `json:"image"`
}

// recordEmbed follows app.bsky.embed.record.
type recordEmbed struct {
	Type   string                    `json:"$type"`
	Record *comatproto.RepoStrongRef `json:"record"`
}

// recordWithMediaEmbed follows app.bsky.embed.recordWithMedia.
type recordWithMediaEmbed struct {
	Type   string      `json:"$type"`
	Record recordEmbed `json:"record"`
	Media  imagesEmbed `json:"media"`
}

// ImageBlob is a caller-uploaded image ready to be embedded: the blob's
// CID, MIME type and size as returned by the upload, plus alt text.
type ImageBlob struct {
	CID      string
	MimeType string
	Size     int64
	Alt      string
}

// QuoteTarget names the post a new post quotes.
type QuoteTarget struct {
	URI string
	CID string
}

// buildEmbed constructs the embed record for a new post from uploaded
// images and an optional quote target: images alone, quote alone, or a
// recordWithMedia wrapper when both are present. This is the inverse of
// the classifier's image/quote extraction. Returns nil when there is
// nothing to embed.
func buildEmbed(images []ImageBlob, quote *QuoteTarget) (any, error) {
	var media *imagesEmbed
	if len(images) > 0 {
		items := make([]imageItem, 0, len(images))
		for _, img := range images {
			if _, err := cid.Decode(img.CID); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidBlobRef, img.CID)
			}
			items = append(items, imageItem{
				Alt: img.Alt,
				Image: blobRef{
					Type:     "blob",
					Ref:      blobLink{Link: img.CID},
					MimeType: img.MimeType,
					Size:     img.Size,
				},
			})
		}
		media = &imagesEmbed{Type: "app.bsky.embed.images", Images: items}
	}

	switch {
	case quote != nil && media != nil:
		return &recordWithMediaEmbed{
			Type: "app.bsky.embed.recordWithMedia",
			Record: recordEmbed{
				Type:   "app.bsky.embed.record",
				Record: strongRef(quote.URI, quote.CID),
			},
			Media: *media,
		}, nil
	case quote != nil:
		return &recordEmbed{
			Type:   "app.bsky.embed.record",
			Record: strongRef(quote.URI, quote.CID),
		}, nil
	case media != nil:
		return media, nil
	default:
		return nil, nil
	}
}
