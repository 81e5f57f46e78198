package appview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, auth *xrpc.AuthInfo, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(srv.URL, auth, srv.Client(), nil)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func TestGetAuthorFeed_DecodesFeedPage(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
		assert.Equal(t, "did:plc:alice", r.URL.Query().Get("actor"))
		assert.Equal(t, "posts_no_replies", r.URL.Query().Get("filter"))
		assert.Equal(t, "30", r.URL.Query().Get("limit"))

		writeJSON(w, `{
			"cursor": "next-page",
			"feed": [{
				"post": {
					"uri": "at://did:plc:alice/app.bsky.feed.post/3k",
					"cid": "bafy1",
					"author": {"did": "did:plc:alice", "handle": "alice.test"},
					"record": {"text": "hello", "createdAt": "2026-08-01T12:00:00Z"},
					"likeCount": 3,
					"viewer": {"like": "at://did:plc:me/app.bsky.feed.like/3kl"}
				},
				"reason": {
					"$type": "app.bsky.feed.defs#reasonRepost",
					"by": {"did": "did:plc:bob", "handle": "bob.test"}
				}
			}]
		}`)
	})

	page, err := client.GetAuthorFeed(context.Background(), "did:plc:alice", "posts_no_replies", 30, "")
	require.NoError(t, err)

	require.NotNil(t, page.Cursor)
	assert.Equal(t, "next-page", *page.Cursor)
	require.Len(t, page.Feed, 1)

	item := page.Feed[0]
	assert.Equal(t, "at://did:plc:alice/app.bsky.feed.post/3k", item.Post.URI)
	assert.Equal(t, "hello", item.Post.Record.Text)
	assert.Equal(t, int64(3), item.Post.LikeCount)
	require.NotNil(t, item.Post.Viewer.Like)
	assert.True(t, item.Reason.IsRepost())
}

func TestGetAuthorFeed_CursorForwarded(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opaque-cursor", r.URL.Query().Get("cursor"))
		writeJSON(w, `{"feed": []}`)
	})

	page, err := client.GetAuthorFeed(context.Background(), "did:plc:alice", "", 25, "opaque-cursor")
	require.NoError(t, err)
	assert.Nil(t, page.Cursor)
	assert.Empty(t, page.Feed)
}

func TestGetPostThread_DecodesNestedNodes(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.getPostThread", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("depth"))
		assert.Equal(t, "80", r.URL.Query().Get("parentHeight"))

		writeJSON(w, `{
			"thread": {
				"$type": "app.bsky.feed.defs#threadViewPost",
				"post": {"uri": "at://did:plc:a/app.bsky.feed.post/focus", "cid": "bafyf"},
				"parent": {
					"$type": "app.bsky.feed.defs#notFoundPost",
					"uri": "at://did:plc:x/app.bsky.feed.post/gone",
					"notFound": true
				},
				"replies": [{
					"$type": "app.bsky.feed.defs#threadViewPost",
					"post": {"uri": "at://did:plc:b/app.bsky.feed.post/r1", "cid": "bafyr"}
				}]
			}
		}`)
	})

	root, err := client.GetPostThread(context.Background(), "at://did:plc:a/app.bsky.feed.post/focus", 10, 80)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "bafyf", root.Post.CID)

	require.NotNil(t, root.Parent)
	assert.True(t, root.Parent.NotFound)
	assert.Nil(t, root.Parent.Post)

	require.Len(t, root.Replies, 1)
	assert.Equal(t, "at://did:plc:b/app.bsky.feed.post/r1", root.Replies[0].Post.URI)
}

func TestGetLikes_DropsEntriesWithoutActor(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"likes": [
			{"actor": {"did": "did:plc:bob", "handle": "bob.test"}},
			{}
		]}`)
	})

	actors, err := client.GetLikes(context.Background(), "at://did:plc:a/app.bsky.feed.post/3k", 6)
	require.NoError(t, err)
	require.Len(t, actors, 1)
	assert.Equal(t, "did:plc:bob", actors[0].DID)
}

func TestResolveHandle(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.identity.resolveHandle", r.URL.Path)
		assert.Equal(t, "alice.test", r.URL.Query().Get("handle"))
		writeJSON(w, `{"did": "did:plc:alice"}`)
	})

	did, err := client.ResolveHandle(context.Background(), "alice.test")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice", did)
}

func TestWrapXRPCError_MapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tc := range cases {
		client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			io.WriteString(w, `{"error":"Oops","message":"nope"}`)
		})

		_, err := client.GetPostThread(context.Background(), "at://x", 10, 80)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestCreateRecord_SendsRepoAndRecord(t *testing.T) {
	auth := &xrpc.AuthInfo{Did: "did:plc:me", AccessJwt: "jwt"}
	client := newTestClient(t, auth, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/xrpc/com.atproto.repo.createRecord", r.URL.Path)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"did:plc:me"`, string(body["repo"]))
		assert.JSONEq(t, `"app.bsky.feed.like"`, string(body["collection"]))
		assert.Contains(t, string(body["record"]), `"app.bsky.feed.like"`)

		writeJSON(w, `{"uri": "at://did:plc:me/app.bsky.feed.like/3kl", "cid": "bafyl"}`)
	})

	record := map[string]any{"$type": "app.bsky.feed.like"}
	uri, cid, err := client.CreateRecord(context.Background(), "app.bsky.feed.like", "3kl", record)
	require.NoError(t, err)
	assert.Equal(t, "at://did:plc:me/app.bsky.feed.like/3kl", uri)
	assert.Equal(t, "bafyl", cid)
}

func TestCreateRecord_AnonymousRejected(t *testing.T) {
	called := false
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, _, err := client.CreateRecord(context.Background(), "app.bsky.feed.like", "3kl", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, called)
}

func TestDeleteRecord(t *testing.T) {
	auth := &xrpc.AuthInfo{Did: "did:plc:me", AccessJwt: "jwt"}
	client := newTestClient(t, auth, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.repo.deleteRecord", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "3kl", body["rkey"])
		writeJSON(w, `{}`)
	})

	require.NoError(t, client.DeleteRecord(context.Background(), "app.bsky.feed.like", "3kl"))
}
