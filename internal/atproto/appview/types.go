package appview

import "encoding/json"

// Actor is the author summary attached to posts, reposts and likes.
type Actor struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// PostRecord is the stored record inside a post view: the text, its
// rich-text facets and the creation time. Facets are forwarded opaquely;
// this engine never interprets segment offsets.
type PostRecord struct {
	Text      string          `json:"text"`
	CreatedAt string          `json:"createdAt"`
	Facets    json.RawMessage `json:"facets,omitempty"`
}

// ViewerState carries the requesting viewer's relationship to a post.
// Like/Repost hold the AT-URI of the viewer's own like/repost record
// when set.
type ViewerState struct {
	Like   *string `json:"like,omitempty"`
	Repost *string `json:"repost,omitempty"`
}

// ImageView is a resolved image in an images embed.
type ImageView struct {
	Thumb    string `json:"thumb,omitempty"`
	Fullsize string `json:"fullsize,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// ExternalView is a resolved external link card.
type ExternalView struct {
	URI         string `json:"uri"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Thumb       string `json:"thumb,omitempty"`
}

// EmbedRecord is the quoted-record side of a record or recordWithMedia
// embed. For record#view the viewRecord fields sit directly on this
// struct; for recordWithMedia#view they are nested one level down in
// Record. Both shapes decode into the same type so callers check both
// depths.
type EmbedRecord struct {
	Record *EmbedRecord `json:"record,omitempty"`

	URI    string      `json:"uri,omitempty"`
	CID    string      `json:"cid,omitempty"`
	Author *Actor      `json:"author,omitempty"`
	Value  *PostRecord `json:"value,omitempty"`
}

// Embed is a tolerant union over the resolved embed views the AppView
// returns (images, video, external, record, recordWithMedia). Fields that
// do not apply to the tagged variant are simply zero; nothing here
// enforces exclusivity.
type Embed struct {
	Type string `json:"$type,omitempty"`

	// images#view
	Images []ImageView `json:"images,omitempty"`

	// video#view
	Playlist  string `json:"playlist,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Alt       string `json:"alt,omitempty"`
	CID       string `json:"cid,omitempty"`

	// external#view
	External *ExternalView `json:"external,omitempty"`

	// record#view and recordWithMedia#view
	Record *EmbedRecord `json:"record,omitempty"`
	Media  *Embed       `json:"media,omitempty"`
}

// Post is a hydrated post view. Unresolvable posts (notFound/blocked
// placeholders) decode into the same type with only URI populated.
type Post struct {
	URI         string       `json:"uri"`
	CID         string       `json:"cid,omitempty"`
	Author      *Actor       `json:"author,omitempty"`
	Record      *PostRecord  `json:"record,omitempty"`
	Embed       *Embed       `json:"embed,omitempty"`
	ReplyCount  int64        `json:"replyCount,omitempty"`
	RepostCount int64        `json:"repostCount,omitempty"`
	LikeCount   int64        `json:"likeCount,omitempty"`
	IndexedAt   string       `json:"indexedAt,omitempty"`
	Viewer      *ViewerState `json:"viewer,omitempty"`
}

// ReasonRepost marks a feed entry as a feed-level repost wrapper.
type ReasonRepost struct {
	Type      string `json:"$type,omitempty"`
	By        *Actor `json:"by,omitempty"`
	IndexedAt string `json:"indexedAt,omitempty"`
}

// reasonRepostType is the lexicon tag for repost reasons on feed items.
const reasonRepostType = "app.bsky.feed.defs#reasonRepost"

// IsRepost reports whether the reason is tagged as a repost reason.
func (r *ReasonRepost) IsRepost() bool {
	return r != nil && r.Type == reasonRepostType
}

// ReplyRef is the reply context on a feed item, linking the entry to its
// parent and thread root. Parent may decode from a notFound/blocked
// placeholder, in which case only its URI is set.
type ReplyRef struct {
	Root   *Post `json:"root,omitempty"`
	Parent *Post `json:"parent,omitempty"`
}

// FeedItem is one entry of a feed response: a post plus optional repost
// reason and reply context.
type FeedItem struct {
	Post   *Post         `json:"post,omitempty"`
	Reason *ReasonRepost `json:"reason,omitempty"`
	Reply  *ReplyRef     `json:"reply,omitempty"`
}

// FeedResponse is one page of a paginated feed. A nil Cursor signals end
// of stream; cursors are opaque and must be passed back unmodified.
type FeedResponse struct {
	Feed   []*FeedItem `json:"feed"`
	Cursor *string     `json:"cursor,omitempty"`
}

// SearchResponse is one page of searchPosts results. Search results are
// bare post views without the feed-item wrapper.
type SearchResponse struct {
	Posts  []*Post `json:"posts"`
	Cursor *string `json:"cursor,omitempty"`
}

// ThreadNode is one node of a recursively-nested getPostThread response.
// Resolvable nodes carry Post; notFoundPost/blockedPost variants carry
// only the bare URI with the matching flag set.
type ThreadNode struct {
	Type     string        `json:"$type,omitempty"`
	Post     *Post         `json:"post,omitempty"`
	Parent   *ThreadNode   `json:"parent,omitempty"`
	Replies  []*ThreadNode `json:"replies,omitempty"`
	URI      string        `json:"uri,omitempty"`
	NotFound bool          `json:"notFound,omitempty"`
	Blocked  bool          `json:"blocked,omitempty"`
}

// threadResponse wraps the root node of a getPostThread response.
type threadResponse struct {
	Thread *ThreadNode `json:"thread"`
}

// likeEntry is one entry of a getLikes response.
type likeEntry struct {
	Actor *Actor `json:"actor"`
}

// likesResponse is the body of a getLikes response.
type likesResponse struct {
	Likes  []likeEntry `json:"likes"`
	Cursor *string     `json:"cursor,omitempty"`
}

// resolveHandleResponse is the body of a resolveHandle response.
type resolveHandleResponse struct {
	DID string `json:"did"`
}

// createRecordResponse is the body of a createRecord response.
type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}
