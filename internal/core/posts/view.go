// Package posts defines the canonical post representation this engine
// produces from heterogeneous AppView responses, and the pure transforms
// that operate on it: normalization, embed classification, and immutable
// tree updates.
package posts

import (
	"encoding/json"
	"time"
)

// Author is a normalized actor summary.
type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Counts holds a post's public engagement counters.
type Counts struct {
	Likes   int64 `json:"likes"`
	Reposts int64 `json:"reposts"`
	Replies int64 `json:"replies"`
}

// ViewerRefState distinguishes the three states of the viewer's
// relationship to a post for one mutation kind.
type ViewerRefState int

const (
	// RefAbsent means the viewer has no like/repost on the post.
	RefAbsent ViewerRefState = iota

	// RefPending means an optimistic mutation is in flight and no real
	// record URI exists yet.
	RefPending

	// RefCommitted means the viewer's record exists and its URI is known.
	RefCommitted
)

// ViewerRef is the viewer's relationship to a post for one mutation kind
// as a tagged value. The zero value is absent. A pending ref is a
// distinguished placeholder and never carries a URI, so it cannot be
// mistaken for a committed record reference.
type ViewerRef struct {
	state ViewerRefState
	uri   string
}

// AbsentRef returns the absent relationship.
func AbsentRef() ViewerRef { return ViewerRef{} }

// PendingRef returns the in-flight placeholder relationship.
func PendingRef() ViewerRef { return ViewerRef{state: RefPending} }

// CommittedRef returns a committed relationship holding the record URI.
func CommittedRef(uri string) ViewerRef {
	return ViewerRef{state: RefCommitted, uri: uri}
}

// State returns the tag of the relationship.
func (r ViewerRef) State() ViewerRefState { return r.state }

// Set reports whether the relationship is pending or committed, i.e. the
// viewer currently counts as having the like/repost.
func (r ViewerRef) Set() bool { return r.state != RefAbsent }

// URI returns the committed record URI. The second return is false for
// absent and pending refs.
func (r ViewerRef) URI() (string, bool) {
	if r.state != RefCommitted {
		return "", false
	}
	return r.uri, true
}

// MarshalJSON encodes the relationship as a tagged object: null for
// absent, {"state":"pending"} for in flight, {"state":"committed",
// "uri":...} once the record reference is known.
func (r ViewerRef) MarshalJSON() ([]byte, error) {
	switch r.state {
	case RefCommitted:
		return json.Marshal(struct {
			State string `json:"state"`
			URI   string `json:"uri"`
		}{"committed", r.uri})
	case RefPending:
		return json.Marshal(struct {
			State string `json:"state"`
		}{"pending"})
	default:
		return []byte("null"), nil
	}
}

// Viewer groups the viewer's like and repost relationships to a post.
type Viewer struct {
	Like   ViewerRef `json:"like"`
	Repost ViewerRef `json:"repost"`
}

// Image is a displayable image facet.
type Image struct {
	Thumb    string `json:"thumb,omitempty"`
	Fullsize string `json:"fullsize,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// Video is a displayable video facet.
type Video struct {
	Playlist  string `json:"playlist,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Alt       string `json:"alt,omitempty"`
	CID       string `json:"cid,omitempty"`
}

// External is an external link preview facet.
type External struct {
	URI         string `json:"uri"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Thumb       string `json:"thumb,omitempty"`
}

// Quote is a quoted-post facet.
type Quote struct {
	URI       string    `json:"uri"`
	CID       string    `json:"cid,omitempty"`
	Author    *Author   `json:"author,omitempty"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// PostView is the canonical post representation. It is produced only by
// the normalizer; after being returned it is owned by the caller, and
// tree updates replace nodes rather than mutating them in place.
type PostView struct {
	// URI and CID together identify a post revision. The URI is stable;
	// the CID is required to target the revision for like/repost.
	URI string `json:"uri"`
	CID string `json:"cid,omitempty"`

	Author    *Author         `json:"author,omitempty"`
	Text      string          `json:"text,omitempty"`
	Facets    json.RawMessage `json:"facets,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`

	Counts Counts `json:"counts"`
	Viewer Viewer `json:"viewer"`

	// Embed facets, each optional. Well-formed input populates at most
	// one, but nothing here enforces that.
	Quote    *Quote    `json:"quote,omitempty"`
	Images   []Image   `json:"images,omitempty"`
	Video    *Video    `json:"video,omitempty"`
	External *External `json:"external,omitempty"`

	// RepostedBy is set only when this entry is a feed-level repost
	// wrapper; RepostedAt is the repost's index time.
	RepostedBy *Author   `json:"repostedBy,omitempty"`
	RepostedAt time.Time `json:"repostedAt,omitzero"`

	// Parent is the single-level reply context from a feed item wrapper.
	Parent *PostView `json:"parent,omitempty"`

	// Children is the ordered reply forest for thread-shaped sources;
	// empty for flat-list items.
	Children []*PostView `json:"children,omitempty"`

	// Likers is lazily populated after an explicit fetch.
	Likers []Author `json:"likers,omitempty"`
}
