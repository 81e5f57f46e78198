package threads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Skylark/internal/atproto/appview"
)

// stubClient implements appview.Client with a pluggable thread response.
type stubClient struct {
	appview.Client

	thread    *appview.ThreadNode
	threadErr error

	gotURI          string
	gotDepth        int64
	gotParentHeight int64
}

func (s *stubClient) GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*appview.ThreadNode, error) {
	s.gotURI = uri
	s.gotDepth = depth
	s.gotParentHeight = parentHeight
	return s.thread, s.threadErr
}

func post(uri string) *appview.Post {
	return &appview.Post{URI: uri, CID: "bafy"}
}

func TestFetch_UnresolvableRootYieldsEmptyDecomposition(t *testing.T) {
	for name, thread := range map[string]*appview.ThreadNode{
		"nil root":      nil,
		"notFound root": {NotFound: true, URI: "at://did:plc:gone/app.bsky.feed.post/x"},
		"blocked root":  {Blocked: true, URI: "at://did:plc:blocked/app.bsky.feed.post/x"},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(&stubClient{thread: thread}, nil)

			decomp, err := svc.Fetch(context.Background(), "at://did:plc:gone/app.bsky.feed.post/x", 0, 0)
			require.NoError(t, err)
			assert.Empty(t, decomp.Ancestors)
			assert.Nil(t, decomp.Focused)
			assert.Empty(t, decomp.Replies)
		})
	}
}

func TestFetch_TransportFailureIsAnError(t *testing.T) {
	svc := NewService(&stubClient{threadErr: errors.New("connection reset")}, nil)

	decomp, err := svc.Fetch(context.Background(), "at://did:plc:a/app.bsky.feed.post/x", 0, 0)
	require.Error(t, err)
	assert.Nil(t, decomp)
}

func TestFetch_DefaultBounds(t *testing.T) {
	client := &stubClient{thread: &appview.ThreadNode{Post: post("at://did:plc:a/app.bsky.feed.post/x")}}
	svc := NewService(client, nil)

	_, err := svc.Fetch(context.Background(), "at://did:plc:a/app.bsky.feed.post/x", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultDepth), client.gotDepth)
	assert.Equal(t, int64(DefaultParentHeight), client.gotParentHeight)
}

func TestFetch_AncestorsOldestFirstWithGapsSkipped(t *testing.T) {
	// Chain upward from the focused post: parent -> (blocked gap) -> root.
	root := &appview.ThreadNode{Post: post("at://did:plc:a/app.bsky.feed.post/oldest")}
	gap := &appview.ThreadNode{Blocked: true, URI: "at://did:plc:blocked/app.bsky.feed.post/mid", Parent: root}
	parent := &appview.ThreadNode{Post: post("at://did:plc:a/app.bsky.feed.post/parent"), Parent: gap}
	focused := &appview.ThreadNode{Post: post("at://did:plc:a/app.bsky.feed.post/focused"), Parent: parent}

	svc := NewService(&stubClient{thread: focused}, nil)

	decomp, err := svc.Fetch(context.Background(), "at://did:plc:a/app.bsky.feed.post/focused", 0, 0)
	require.NoError(t, err)

	require.Len(t, decomp.Ancestors, 2)
	assert.Equal(t, "at://did:plc:a/app.bsky.feed.post/oldest", decomp.Ancestors[0].URI)
	assert.Equal(t, "at://did:plc:a/app.bsky.feed.post/parent", decomp.Ancestors[1].URI)
}

func TestFetch_FocusedAndReplies(t *testing.T) {
	focused := &appview.ThreadNode{
		Post: post("at://did:plc:a/app.bsky.feed.post/focused"),
		Replies: []*appview.ThreadNode{
			{
				Post: post("at://did:plc:b/app.bsky.feed.post/r1"),
				Replies: []*appview.ThreadNode{
					{Post: post("at://did:plc:c/app.bsky.feed.post/r1a")},
				},
			},
			{NotFound: true, URI: "at://did:plc:gone/app.bsky.feed.post/r2"},
		},
	}

	svc := NewService(&stubClient{thread: focused}, nil)

	decomp, err := svc.Fetch(context.Background(), "at://did:plc:a/app.bsky.feed.post/focused", 0, 0)
	require.NoError(t, err)

	require.NotNil(t, decomp.Focused)
	assert.Equal(t, "at://did:plc:a/app.bsky.feed.post/focused", decomp.Focused.URI)

	// Unresolvable replies are dropped; nested replies live inside the
	// normalized children.
	require.Len(t, decomp.Replies, 1)
	require.Len(t, decomp.Replies[0].Children, 1)
	assert.Equal(t, "at://did:plc:c/app.bsky.feed.post/r1a", decomp.Replies[0].Children[0].URI)

	// The replies bucket is the focused post's child forest.
	assert.Equal(t, decomp.Focused.Children, decomp.Replies)
}
