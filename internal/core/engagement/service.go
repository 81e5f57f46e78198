// Package engagement reconciles local-first like/repost toggles against
// the remote repository: apply an optimistic transform to the caller's
// view, issue the record create or delete, then commit the real reference
// or revert by refreshing the whole view. It also owns one-shot post
// creation, including embed construction from uploaded media.
package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/rivo/uniseg"

	"Skylark/internal/atproto/appview"
	"Skylark/internal/core/posts"
)

// Kind selects which viewer relationship a toggle flips.
type Kind string

const (
	KindLike   Kind = "like"
	KindRepost Kind = "repost"
)

// maxPostGraphemes is the post length limit in grapheme clusters.
const maxPostGraphemes = 300

// likersPageSize is how many recent likers are fetched and attached after
// a successful like.
const likersPageSize = 6

// CreatePostRequest carries everything needed to create a post. Images
// must already be uploaded; only their blob references are passed here.
type CreatePostRequest struct {
	Text   string
	Langs  []string
	Images []ImageBlob
	Quote  *QuoteTarget
	Reply  *ReplyTarget
}

// ReplyTarget anchors a new post as a reply.
type ReplyTarget struct {
	RootURI   string
	RootCID   string
	ParentURI string
	ParentCID string
}

// Service applies optimistic mutations to caller-held views and
// reconciles them with the remote repository.
//
// Concurrent toggles on the same target are not serialized: the last
// remote response to land wins. Callers wanting stricter semantics must
// impose their own supersession policy.
type Service interface {
	// ToggleLike flips the viewer's like on the post at uri within view.
	// Missing target, missing CID or missing session make it a no-op.
	// A remote failure reverts the view via Refresh and returns the error.
	ToggleLike(ctx context.Context, view ViewState, uri string) error

	// ToggleRepost behaves like ToggleLike for the repost relationship.
	ToggleRepost(ctx context.Context, view ViewState, uri string) error

	// CreatePost creates a post record and returns its URI and CID.
	CreatePost(ctx context.Context, req CreatePostRequest) (uri string, cid string, err error)
}

type reconciler struct {
	client appview.Client
	logger *slog.Logger
}

var _ Service = (*reconciler)(nil)

// NewService creates a mutation reconciliation service over the given
// client.
func NewService(client appview.Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &reconciler{client: client, logger: logger}
}

func (r *reconciler) ToggleLike(ctx context.Context, view ViewState, uri string) error {
	return r.toggle(ctx, view, uri, KindLike)
}

func (r *reconciler) ToggleRepost(ctx context.Context, view ViewState, uri string) error {
	return r.toggle(ctx, view, uri, KindRepost)
}

// intent describes one toggle in flight. It is created when the toggle
// starts, consumed by the commit step, and discarded afterwards.
type intent struct {
	targetURI string
	targetCID string
	prior     posts.ViewerRef
	kind      Kind
}

func (r *reconciler) toggle(ctx context.Context, view ViewState, uri string, kind Kind) error {
	// Preconditions: a session and a CID to target. Either missing makes
	// the toggle a silent no-op; the surface is expected to have the
	// action disabled already.
	if r.client.DID() == "" {
		r.logger.Debug("toggle skipped, no session", "kind", kind, "uri", uri)
		return nil
	}

	pv := view.Lookup(uri)
	if pv == nil || pv.CID == "" {
		r.logger.Debug("toggle skipped, target unusable", "kind", kind, "uri", uri)
		return nil
	}

	in := intent{
		targetURI: uri,
		targetCID: pv.CID,
		prior:     viewerRef(pv, kind),
		kind:      kind,
	}

	// Optimistic step, visible to the caller before any remote call.
	view.Update(uri, optimisticTransform(in))

	if in.prior.Set() {
		return r.commitDelete(ctx, view, in)
	}
	return r.commitCreate(ctx, view, in)
}

func (r *reconciler) commitCreate(ctx context.Context, view ViewState, in intent) error {
	record := map[Kind]any{
		KindLike: &likeRecord{
			Type:      likeCollection,
			Subject:   strongRef(in.targetURI, in.targetCID),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		KindRepost: &repostRecord{
			Type:      repostCollection,
			Subject:   strongRef(in.targetURI, in.targetCID),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}[in.kind]

	rkey := syntax.NewTIDNow(0).String()
	refURI, _, err := r.client.CreateRecord(ctx, collectionFor(in.kind), rkey, record)
	if err != nil {
		return r.revert(ctx, view, in, err)
	}

	view.Update(in.targetURI, commitCreateTransform(in.kind, refURI))

	// The surface shows "liked by" summaries, so attach a short liker
	// list after a successful like. Best effort: a failure here leaves
	// the committed state untouched.
	if in.kind == KindLike {
		if likers, err := r.client.GetLikes(ctx, in.targetURI, likersPageSize); err == nil {
			view.Update(in.targetURI, attachLikersTransform(likers))
		} else {
			r.logger.Debug("liker fetch failed", "uri", in.targetURI, "error", err)
		}
	}

	return nil
}

func (r *reconciler) commitDelete(ctx context.Context, view ViewState, in intent) error {
	refURI, ok := in.prior.URI()
	if !ok {
		// The prior state was the pending placeholder: a toggle raced an
		// uncommitted one and there is no record to delete. Converge on
		// the server instead of guessing.
		return r.revert(ctx, view, in, fmt.Errorf("toggle %s on %s: prior state pending", in.kind, in.targetURI))
	}

	parsed, err := syntax.ParseATURI(refURI)
	if err != nil {
		return r.revert(ctx, view, in, fmt.Errorf("parse %s record uri: %w", in.kind, err))
	}

	if err := r.client.DeleteRecord(ctx, collectionFor(in.kind), parsed.RecordKey().String()); err != nil {
		return r.revert(ctx, view, in, err)
	}

	view.Update(in.targetURI, commitDeleteTransform(in.kind, r.client.DID()))
	return nil
}

// revert discards the optimistic transform by re-running the retrieval
// for the active view rather than applying a precise inverse patch. That
// trades a full reload on error for guaranteed convergence with the
// server. The original failure is returned either way.
func (r *reconciler) revert(ctx context.Context, view ViewState, in intent, cause error) error {
	r.logger.Warn("mutation failed, refreshing view",
		"kind", in.kind, "uri", in.targetURI, "error", cause)

	if err := view.Refresh(ctx); err != nil {
		r.logger.Error("revert refresh failed", "uri", in.targetURI, "error", err)
	}
	return fmt.Errorf("%s %s: %w", in.kind, in.targetURI, cause)
}

func (r *reconciler) CreatePost(ctx context.Context, req CreatePostRequest) (string, string, error) {
	if r.client.DID() == "" {
		return "", "", ErrNoSession
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Images) == 0 && req.Quote == nil {
		return "", "", ErrEmptyPost
	}
	if uniseg.GraphemeClusterCount(text) > maxPostGraphemes {
		return "", "", ErrPostTooLong
	}

	embed, err := buildEmbed(req.Images, req.Quote)
	if err != nil {
		return "", "", err
	}

	record := &postRecord{
		Type:      postCollection,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Langs:     req.Langs,
		Embed:     embed,
	}
	if req.Reply != nil {
		record.Reply = &replyRefRecord{
			Root:   strongRef(req.Reply.RootURI, req.Reply.RootCID),
			Parent: strongRef(req.Reply.ParentURI, req.Reply.ParentCID),
		}
	}

	rkey := syntax.NewTIDNow(0).String()
	uri, cid, err := r.client.CreateRecord(ctx, postCollection, rkey, record)
	if err != nil {
		return "", "", fmt.Errorf("create post: %w", err)
	}

	r.logger.Info("post created", "uri", uri)
	return uri, cid, nil
}

func collectionFor(kind Kind) string {
	if kind == KindRepost {
		return repostCollection
	}
	return likeCollection
}

func viewerRef(pv *posts.PostView, kind Kind) posts.ViewerRef {
	if kind == KindRepost {
		return pv.Viewer.Repost
	}
	return pv.Viewer.Like
}

// optimisticTransform flips the count and viewer state locally: a set
// relationship loses one and clears, an absent one gains one and becomes
// the pending placeholder until the real reference arrives.
func optimisticTransform(in intent) posts.TransformFunc {
	return func(pv *posts.PostView) *posts.PostView {
		next := *pv
		if in.prior.Set() {
			setViewerRef(&next, in.kind, posts.AbsentRef())
			setCount(&next, in.kind, countFor(pv, in.kind)-1)
		} else {
			setViewerRef(&next, in.kind, posts.PendingRef())
			setCount(&next, in.kind, countFor(pv, in.kind)+1)
		}
		return &next
	}
}

// commitCreateTransform replaces the pending placeholder with the real
// record reference returned by the remote call.
func commitCreateTransform(kind Kind, refURI string) posts.TransformFunc {
	return func(pv *posts.PostView) *posts.PostView {
		next := *pv
		setViewerRef(&next, kind, posts.CommittedRef(refURI))
		return &next
	}
}

// commitDeleteTransform clears the viewer state and prunes the viewer
// from any locally-cached liker list.
func commitDeleteTransform(kind Kind, viewerDID string) posts.TransformFunc {
	return func(pv *posts.PostView) *posts.PostView {
		next := *pv
		setViewerRef(&next, kind, posts.AbsentRef())
		if kind == KindLike && len(pv.Likers) > 0 {
			likers := make([]posts.Author, 0, len(pv.Likers))
			for _, a := range pv.Likers {
				if a.DID != viewerDID {
					likers = append(likers, a)
				}
			}
			next.Likers = likers
		}
		return &next
	}
}

// attachLikersTransform attaches a freshly fetched liker list.
func attachLikersTransform(actors []*appview.Actor) posts.TransformFunc {
	return func(pv *posts.PostView) *posts.PostView {
		next := *pv
		likers := make([]posts.Author, 0, len(actors))
		for _, a := range actors {
			likers = append(likers, posts.Author{
				DID:         a.DID,
				Handle:      a.Handle,
				DisplayName: a.DisplayName,
				Avatar:      a.Avatar,
			})
		}
		next.Likers = likers
		return &next
	}
}

func countFor(pv *posts.PostView, kind Kind) int64 {
	if kind == KindRepost {
		return pv.Counts.Reposts
	}
	return pv.Counts.Likes
}

// setCount writes a count back, clamped so decrements never go negative.
func setCount(pv *posts.PostView, kind Kind, n int64) {
	if n < 0 {
		n = 0
	}
	if kind == KindRepost {
		pv.Counts.Reposts = n
	} else {
		pv.Counts.Likes = n
	}
}

func setViewerRef(pv *posts.PostView, kind Kind, ref posts.ViewerRef) {
	if kind == KindRepost {
		pv.Viewer.Repost = ref
	} else {
		pv.Viewer.Like = ref
	}
}
