package engagement

import (
	"context"

	"Skylark/internal/core/posts"
	"Skylark/internal/core/threads"
)

// ViewState is the post collection the calling surface currently holds.
// Mutations look targets up in it, apply optimistic and committed
// transforms through it, and fall back to a full refresh on failure.
// State lives in the caller's single-threaded store; implementations do
// no locking.
type ViewState interface {
	// Lookup returns the current view of the post, or nil.
	Lookup(uri string) *posts.PostView

	// Update applies fn to the post everywhere it appears.
	Update(uri string, fn posts.TransformFunc)

	// Refresh re-runs the retrieval that produced this view, replacing
	// its contents with the server's current state.
	Refresh(ctx context.Context) error
}

// FeedState adapts a flat, ordered post list. Updates are a direct
// replace by URI, no tree walk involved.
type FeedState struct {
	items  []*posts.PostView
	reload func(ctx context.Context) ([]*posts.PostView, error)
}

var _ ViewState = (*FeedState)(nil)

// NewFeedState wraps a flat item list. reload re-fetches the whole list
// and may be nil when the caller never needs failure recovery.
func NewFeedState(items []*posts.PostView, reload func(ctx context.Context) ([]*posts.PostView, error)) *FeedState {
	return &FeedState{items: items, reload: reload}
}

// Items returns the current list.
func (f *FeedState) Items() []*posts.PostView { return f.items }

func (f *FeedState) Lookup(uri string) *posts.PostView {
	for _, pv := range f.items {
		if pv.URI == uri {
			return pv
		}
	}
	return nil
}

func (f *FeedState) Update(uri string, fn posts.TransformFunc) {
	for i, pv := range f.items {
		if pv.URI == uri {
			f.items[i] = fn(pv)
		}
	}
}

func (f *FeedState) Refresh(ctx context.Context) error {
	if f.reload == nil {
		return nil
	}
	items, err := f.reload(ctx)
	if err != nil {
		return err
	}
	f.items = items
	return nil
}

// ThreadState adapts a thread decomposition. Lookups search the three
// buckets (focused post, ancestors, reply forest); updates go through the
// immutable tree transform and the decomposition is replaced atomically.
type ThreadState struct {
	decomp *threads.Decomposition
	reload func(ctx context.Context) (*threads.Decomposition, error)
}

var _ ViewState = (*ThreadState)(nil)

// NewThreadState wraps a thread decomposition. reload re-fetches the
// thread and may be nil.
func NewThreadState(decomp *threads.Decomposition, reload func(ctx context.Context) (*threads.Decomposition, error)) *ThreadState {
	return &ThreadState{decomp: decomp, reload: reload}
}

// Decomposition returns the current decomposition.
func (t *ThreadState) Decomposition() *threads.Decomposition { return t.decomp }

func (t *ThreadState) Lookup(uri string) *posts.PostView {
	if t.decomp == nil {
		return nil
	}
	if t.decomp.Focused != nil && t.decomp.Focused.URI == uri {
		return t.decomp.Focused
	}
	for _, pv := range t.decomp.Ancestors {
		if pv.URI == uri {
			return pv
		}
	}
	return lookupForest(t.decomp.Replies, uri)
}

func lookupForest(nodes []*posts.PostView, uri string) *posts.PostView {
	for _, pv := range nodes {
		if pv.URI == uri {
			return pv
		}
		if found := lookupForest(pv.Children, uri); found != nil {
			return found
		}
	}
	return nil
}

func (t *ThreadState) Update(uri string, fn posts.TransformFunc) {
	if t.decomp == nil {
		return
	}

	next := &threads.Decomposition{
		Ancestors: posts.UpdateForest(t.decomp.Ancestors, uri, fn),
		Focused:   t.decomp.Focused,
		Replies:   t.decomp.Replies,
	}

	// The replies bucket is the focused post's child forest, so walking
	// the focused tree covers both and keeps the two views consistent.
	if t.decomp.Focused != nil {
		next.Focused = posts.UpdateNode(t.decomp.Focused, uri, fn)
		next.Replies = next.Focused.Children
	} else {
		next.Replies = posts.UpdateForest(t.decomp.Replies, uri, fn)
	}

	t.decomp = next
}

func (t *ThreadState) Refresh(ctx context.Context) error {
	if t.reload == nil {
		return nil
	}
	decomp, err := t.reload(ctx)
	if err != nil {
		return err
	}
	t.decomp = decomp
	return nil
}
