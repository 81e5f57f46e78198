// Package feeds retrieves flat post sequences from the AppView across the
// four flat fetch modes (author, timeline, feed, search), normalizes each
// page into canonical PostViews and forwards the continuation cursor
// untouched.
package feeds

import (
	"context"
	"log/slog"
	"strings"

	"Skylark/internal/atproto/appview"
	"Skylark/internal/core/posts"
)

// Mode selects which retrieval endpoint a fetch dispatches to.
type Mode string

const (
	// ModeAuthor fetches an actor's own feed, replies excluded.
	ModeAuthor Mode = "author"

	// ModeTimeline fetches the authenticated user's home timeline.
	ModeTimeline Mode = "timeline"

	// ModeFeed fetches a feed generator's output.
	ModeFeed Mode = "feed"

	// ModeSearch fetches post search results.
	ModeSearch Mode = "search"
)

// authorFeedFilter excludes reply posts from author feeds upstream.
const authorFeedFilter = "posts_no_replies"

// defaultLimit is the page size used when a request does not set one.
const defaultLimit = 25

// Request carries the parameters of one page fetch. Cursor is the opaque
// continuation token of the previous page, empty for the first page.
type Request struct {
	Mode   Mode
	Actor  string
	Feed   string
	Query  string
	Limit  int64
	Cursor string
}

// Page is one normalized page of a feed. An empty Cursor signals end of
// stream; callers accumulate Items append-only across pages.
type Page struct {
	Items  []*posts.PostView
	Cursor string
}

// Service retrieves normalized feed pages.
type Service interface {
	// Fetch dispatches on req.Mode and returns one normalized page.
	// Branches whose required parameter is missing return an empty page
	// rather than an error; an unresolvable feed reference returns
	// ErrFeedNotResolvable.
	Fetch(ctx context.Context, req Request) (*Page, error)
}

type feedService struct {
	client appview.Client
	logger *slog.Logger
}

var _ Service = (*feedService)(nil)

// NewService creates a feed retrieval service over the given client.
func NewService(client appview.Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &feedService{client: client, logger: logger}
}

func (s *feedService) Fetch(ctx context.Context, req Request) (*Page, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	switch req.Mode {
	case ModeAuthor:
		return s.fetchAuthor(ctx, req.Actor, limit, req.Cursor)
	case ModeTimeline:
		return s.fetchTimeline(ctx, limit, req.Cursor)
	case ModeFeed:
		return s.fetchFeed(ctx, req.Feed, limit, req.Cursor)
	case ModeSearch:
		return s.fetchSearch(ctx, req.Query, limit, req.Cursor)
	default:
		return nil, ErrUnsupportedMode
	}
}

func (s *feedService) fetchAuthor(ctx context.Context, actor string, limit int64, cursor string) (*Page, error) {
	if actor == "" {
		return &Page{}, nil
	}

	resp, err := s.client.GetAuthorFeed(ctx, actor, authorFeedFilter, limit, cursor)
	if err != nil {
		return nil, err
	}

	// The upstream filter excludes replies already; reposts of replies
	// still come through and are kept. Drop any reply that slips past.
	items := make([]*appview.FeedItem, 0, len(resp.Feed))
	for _, it := range resp.Feed {
		if it.Reply != nil && !it.Reason.IsRepost() {
			continue
		}
		items = append(items, it)
	}

	return s.buildPage(items, resp.Cursor), nil
}

func (s *feedService) fetchTimeline(ctx context.Context, limit int64, cursor string) (*Page, error) {
	// Timeline needs a session; without one the page is silently empty.
	if s.client.DID() == "" {
		return &Page{}, nil
	}

	resp, err := s.client.GetTimeline(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}
	return s.buildPage(resp.Feed, resp.Cursor), nil
}

func (s *feedService) fetchFeed(ctx context.Context, feedRef string, limit int64, cursor string) (*Page, error) {
	if feedRef == "" {
		feedRef = DefaultFeedURI
	}

	feedURI, err := s.resolveFeedURI(ctx, feedRef)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GetFeed(ctx, feedURI, limit, cursor)
	if err != nil {
		return nil, err
	}
	return s.buildPage(resp.Feed, resp.Cursor), nil
}

func (s *feedService) fetchSearch(ctx context.Context, query string, limit int64, cursor string) (*Page, error) {
	if strings.TrimSpace(query) == "" {
		return &Page{}, nil
	}

	resp, err := s.client.SearchPosts(ctx, query, limit, cursor)
	if err != nil {
		return nil, err
	}

	// Search results are bare post views; wrap them into the feed-item
	// shape so the whole engine normalizes through one path.
	items := make([]*appview.FeedItem, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		items = append(items, &appview.FeedItem{Post: p})
	}
	return s.buildPage(items, resp.Cursor), nil
}

// buildPage normalizes a raw item sequence, dropping unresolvable
// entries, and carries the upstream cursor through unmodified.
func (s *feedService) buildPage(items []*appview.FeedItem, cursor *string) *Page {
	page := &Page{Items: make([]*posts.PostView, 0, len(items))}
	for _, it := range items {
		if pv := posts.FromFeedItem(it); pv != nil {
			page.Items = append(page.Items, pv)
		}
	}
	if cursor != nil {
		page.Cursor = *cursor
	}
	return page
}
