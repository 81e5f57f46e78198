package posts

import (
	"encoding/json"
	"time"

	"Skylark/internal/atproto/appview"
)

// FromPost normalizes a bare post view. Returns nil when the post has no
// resolvable URI (blocked or missing placeholders decode to a bare URI,
// deleted ones to nothing at all). Never fails: malformed fields degrade
// to zero values, not errors.
func FromPost(p *appview.Post) *PostView {
	if p == nil || p.URI == "" {
		return nil
	}

	pv := &PostView{
		URI:    p.URI,
		CID:    p.CID,
		Author: fromActor(p.Author),
		Counts: Counts{
			Likes:   p.LikeCount,
			Reposts: p.RepostCount,
			Replies: p.ReplyCount,
		},
	}

	if p.Record != nil {
		pv.Text = p.Record.Text
		pv.Facets = p.Record.Facets
		pv.CreatedAt = parseTime(p.Record.CreatedAt)
	}

	if p.Viewer != nil {
		if p.Viewer.Like != nil {
			pv.Viewer.Like = CommittedRef(*p.Viewer.Like)
		}
		if p.Viewer.Repost != nil {
			pv.Viewer.Repost = CommittedRef(*p.Viewer.Repost)
		}
	}

	facets := classifyEmbed(p.Embed)
	pv.Quote = facets.quote
	pv.Images = facets.images
	pv.Video = facets.video
	pv.External = facets.external

	return pv
}

// FromFeedItem normalizes a feed-item wrapper: the underlying post plus
// its optional repost reason and single-level reply context. Returns nil
// when the wrapped post is unresolvable.
func FromFeedItem(it *appview.FeedItem) *PostView {
	if it == nil {
		return nil
	}

	pv := FromPost(it.Post)
	if pv == nil {
		return nil
	}

	if it.Reason.IsRepost() {
		pv.RepostedBy = fromActor(it.Reason.By)
		pv.RepostedAt = parseTime(it.Reason.IndexedAt)
	}

	// The wrapper carries at most the direct parent; the parent's own
	// context is not present in the payload and is not walked further.
	if it.Reply != nil {
		pv.Parent = FromPost(it.Reply.Parent)
	}

	return pv
}

// FromThreadNode normalizes a nested thread node, recursively normalizing
// its reply forest into Children and dropping unresolvable entries.
// Returns nil for notFound/blocked nodes, which carry no post payload.
func FromThreadNode(n *appview.ThreadNode) *PostView {
	if n == nil {
		return nil
	}

	pv := FromPost(n.Post)
	if pv == nil {
		return nil
	}

	if len(n.Replies) > 0 {
		children := make([]*PostView, 0, len(n.Replies))
		for _, reply := range n.Replies {
			if child := FromThreadNode(reply); child != nil {
				children = append(children, child)
			}
		}
		pv.Children = children
	}

	return pv
}

// nodeProbe detects which upstream shape a raw node arrived in: entries
// with a nested "post" field are wrappers (feed items or thread nodes),
// everything else is a bare post object.
type nodeProbe struct {
	Post    json.RawMessage `json:"post"`
	Replies json.RawMessage `json:"replies"`
}

// DecodeNode normalizes a raw JSON node of any of the three upstream
// shapes. The shape is decided once at this boundary; nothing downstream
// carries the ambiguity. Malformed input yields nil rather than an error.
func DecodeNode(raw json.RawMessage) *PostView {
	var probe nodeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}

	switch {
	case len(probe.Post) > 0 && len(probe.Replies) > 0:
		var node appview.ThreadNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil
		}
		return FromThreadNode(&node)

	case len(probe.Post) > 0:
		var item appview.FeedItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil
		}
		return FromFeedItem(&item)

	default:
		var post appview.Post
		if err := json.Unmarshal(raw, &post); err != nil {
			return nil
		}
		return FromPost(&post)
	}
}

func fromActor(a *appview.Actor) *Author {
	if a == nil {
		return nil
	}
	return &Author{
		DID:         a.DID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
	}
}

// parseTime parses an RFC3339 timestamp, returning the zero time on
// failure so normalization stays total.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
