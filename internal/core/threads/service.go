// Package threads fetches a recursively-nested thread view and decomposes
// it into the three parts a thread surface renders: the ancestor chain,
// the focused post, and the reply forest.
package threads

import (
	"context"
	"fmt"
	"log/slog"

	"Skylark/internal/atproto/appview"
	"Skylark/internal/core/posts"
)

// Default bounds for the nested thread request.
const (
	DefaultDepth        = 10
	DefaultParentHeight = 80
)

// Decomposition is the three-way split of a thread response.
//
// Ancestors are ordered root-most first: the oldest ancestor at index 0,
// the focused post's direct parent last. Focused is nil only when the
// requested post could not be resolved (blocked, deleted or not found);
// in that case Ancestors and Replies are empty too.
type Decomposition struct {
	Ancestors []*posts.PostView
	Focused   *posts.PostView
	Replies   []*posts.PostView
}

// Service retrieves and decomposes post threads.
type Service interface {
	// Fetch requests the thread rooted at uri, bounded by depth reply
	// levels downward and parentHeight ancestor levels upward. An
	// unresolvable root yields the empty decomposition with a nil error;
	// transport failures yield an error so callers can tell "thread not
	// found" from "request failed".
	Fetch(ctx context.Context, uri string, depth, parentHeight int64) (*Decomposition, error)
}

type threadService struct {
	client appview.Client
	logger *slog.Logger
}

var _ Service = (*threadService)(nil)

// NewService creates a thread retrieval service over the given client.
func NewService(client appview.Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &threadService{client: client, logger: logger}
}

func (s *threadService) Fetch(ctx context.Context, uri string, depth, parentHeight int64) (*Decomposition, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if parentHeight <= 0 {
		parentHeight = DefaultParentHeight
	}

	root, err := s.client.GetPostThread(ctx, uri, depth, parentHeight)
	if err != nil {
		return nil, fmt.Errorf("fetch thread %s: %w", uri, err)
	}

	// A root without a resolvable post is a valid outcome (blocked or
	// deleted content), distinct from a failed request.
	if root == nil || root.Post == nil || root.Post.URI == "" {
		s.logger.Debug("thread root unresolvable", "uri", uri)
		return &Decomposition{}, nil
	}

	focused := posts.FromThreadNode(root)

	return &Decomposition{
		Ancestors: collectAncestors(root),
		Focused:   focused,
		Replies:   focused.Children,
	}, nil
}

// collectAncestors follows the parent chain upward until the pointer runs
// out. Nodes without a post payload (a blocked ancestor, say) are gaps:
// skipped, while the walk continues past them. The collected chain is
// reversed so ordering is oldest ancestor first.
func collectAncestors(root *appview.ThreadNode) []*posts.PostView {
	var chain []*posts.PostView
	for n := root.Parent; n != nil; n = n.Parent {
		if pv := posts.FromPost(n.Post); pv != nil {
			chain = append(chain, pv)
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
