// Package appview provides read and write access to an AT Protocol AppView.
// It wraps indigo's xrpc.Client behind a narrow interface so the engine's
// services can issue feed, thread and record calls without knowing how the
// transport or authentication is set up.
package appview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultHost is the public Bluesky AppView endpoint, used when no host is
// configured.
const DefaultHost = "https://public.api.bsky.app"

// Client is the remote collaborator this engine consumes: paginated feed
// retrieval in its several modes, nested thread retrieval, liker listing,
// handle resolution, and record create/delete for mutations.
//
// Implementations may be anonymous; authenticated calls (GetTimeline,
// CreateRecord, DeleteRecord) require a non-empty DID().
type Client interface {
	// GetAuthorFeed returns one page of an actor's feed. The filter value
	// is forwarded to the AppView (e.g. "posts_no_replies").
	GetAuthorFeed(ctx context.Context, actor, filter string, limit int64, cursor string) (*FeedResponse, error)

	// GetTimeline returns one page of the authenticated user's home timeline.
	GetTimeline(ctx context.Context, limit int64, cursor string) (*FeedResponse, error)

	// GetFeed returns one page of a feed generator's output, addressed by
	// the generator's AT-URI.
	GetFeed(ctx context.Context, feed string, limit int64, cursor string) (*FeedResponse, error)

	// SearchPosts returns one page of post search results.
	SearchPosts(ctx context.Context, query string, limit int64, cursor string) (*SearchResponse, error)

	// GetPostThread returns the nested thread view rooted at uri, bounded
	// by depth reply levels downward and parentHeight ancestor levels upward.
	GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*ThreadNode, error)

	// GetLikes returns up to limit actors who liked the post at uri.
	GetLikes(ctx context.Context, uri string, limit int64) ([]*Actor, error)

	// ResolveHandle resolves a handle to its DID.
	ResolveHandle(ctx context.Context, handle string) (string, error)

	// CreateRecord creates a record in the authenticated user's repository
	// and returns the record URI and CID.
	CreateRecord(ctx context.Context, collection, rkey string, record any) (uri string, cid string, err error)

	// DeleteRecord deletes a record from the authenticated user's repository.
	DeleteRecord(ctx context.Context, collection, rkey string) error

	// DID returns the authenticated user's DID, or "" for anonymous clients.
	DID() string
}

// client implements Client over indigo's xrpc.Client.
type client struct {
	xrpc   *xrpc.Client
	logger *slog.Logger
}

var _ Client = (*client)(nil)

// userAgent identifies this engine to the AppView.
var userAgent = "Skylark/1.0"

// NewClient creates an AppView client for the given host. Auth may be nil
// for anonymous access. The underlying HTTP client retries transient
// failures with backoff.
func NewClient(host string, auth *xrpc.AuthInfo, logger *slog.Logger) Client {
	if host == "" {
		host = DefaultHost
	}
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &client{
		xrpc: &xrpc.Client{
			Client:    rc.StandardClient(),
			Host:      host,
			Auth:      auth,
			UserAgent: &userAgent,
		},
		logger: logger,
	}
}

// NewClientWithHTTP creates an AppView client with a caller-supplied HTTP
// client. This is primarily for testing against httptest servers.
func NewClientWithHTTP(host string, auth *xrpc.AuthInfo, httpClient *http.Client, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &client{
		xrpc: &xrpc.Client{
			Client:    httpClient,
			Host:      host,
			Auth:      auth,
			UserAgent: &userAgent,
		},
		logger: logger,
	}
}

// wrapXRPCError inspects an error from xrpc.Do and wraps it with our typed
// errors so callers can use errors.Is() regardless of transport details.
func wrapXRPCError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var xe *xrpc.Error
	if errors.As(err, &xe) {
		switch xe.StatusCode {
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w: %v", operation, ErrBadRequest, xe)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %v", operation, ErrUnauthorized, xe)
		case http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", operation, ErrForbidden, xe)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", operation, ErrNotFound, xe)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %v", operation, ErrRateLimited, xe)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func (c *client) GetAuthorFeed(ctx context.Context, actor, filter string, limit int64, cursor string) (*FeedResponse, error) {
	params := map[string]interface{}{
		"actor": actor,
		"limit": limit,
	}
	if filter != "" {
		params["filter"] = filter
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var out FeedResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.getAuthorFeed", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "getAuthorFeed")
	}
	return &out, nil
}

func (c *client) GetTimeline(ctx context.Context, limit int64, cursor string) (*FeedResponse, error) {
	params := map[string]interface{}{
		"limit": limit,
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var out FeedResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.getTimeline", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "getTimeline")
	}
	return &out, nil
}

func (c *client) GetFeed(ctx context.Context, feed string, limit int64, cursor string) (*FeedResponse, error) {
	params := map[string]interface{}{
		"feed":  feed,
		"limit": limit,
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var out FeedResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.getFeed", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "getFeed")
	}
	return &out, nil
}

func (c *client) SearchPosts(ctx context.Context, query string, limit int64, cursor string) (*SearchResponse, error) {
	params := map[string]interface{}{
		"q":     query,
		"limit": limit,
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var out SearchResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.searchPosts", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "searchPosts")
	}
	return &out, nil
}

func (c *client) GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*ThreadNode, error) {
	params := map[string]interface{}{
		"uri":          uri,
		"depth":        depth,
		"parentHeight": parentHeight,
	}

	var out threadResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.getPostThread", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "getPostThread")
	}
	return out.Thread, nil
}

func (c *client) GetLikes(ctx context.Context, uri string, limit int64) ([]*Actor, error) {
	params := map[string]interface{}{
		"uri":   uri,
		"limit": limit,
	}

	var out likesResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "app.bsky.feed.getLikes", params, nil, &out); err != nil {
		return nil, wrapXRPCError(err, "getLikes")
	}

	actors := make([]*Actor, 0, len(out.Likes))
	for _, like := range out.Likes {
		if like.Actor != nil {
			actors = append(actors, like.Actor)
		}
	}
	return actors, nil
}

func (c *client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	params := map[string]interface{}{
		"handle": handle,
	}

	var out resolveHandleResponse
	if err := c.xrpc.Do(ctx, xrpc.Query, "", "com.atproto.identity.resolveHandle", params, nil, &out); err != nil {
		return "", wrapXRPCError(err, "resolveHandle")
	}
	return out.DID, nil
}

func (c *client) CreateRecord(ctx context.Context, collection, rkey string, record any) (string, string, error) {
	if c.DID() == "" {
		return "", "", fmt.Errorf("createRecord: %w: no authenticated session", ErrUnauthorized)
	}

	body := map[string]interface{}{
		"repo":       c.DID(),
		"collection": collection,
		"rkey":       rkey,
		"record":     record,
	}

	var out createRecordResponse
	if err := c.xrpc.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.repo.createRecord", nil, body, &out); err != nil {
		return "", "", wrapXRPCError(err, "createRecord")
	}

	c.logger.Debug("record created", "collection", collection, "uri", out.URI)
	return out.URI, out.CID, nil
}

func (c *client) DeleteRecord(ctx context.Context, collection, rkey string) error {
	if c.DID() == "" {
		return fmt.Errorf("deleteRecord: %w: no authenticated session", ErrUnauthorized)
	}

	body := map[string]interface{}{
		"repo":       c.DID(),
		"collection": collection,
		"rkey":       rkey,
	}

	if err := c.xrpc.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.repo.deleteRecord", nil, body, nil); err != nil {
		return wrapXRPCError(err, "deleteRecord")
	}

	c.logger.Debug("record deleted", "collection", collection, "rkey", rkey)
	return nil
}

func (c *client) DID() string {
	if c.xrpc.Auth == nil {
		return ""
	}
	return c.xrpc.Auth.Did
}
