package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree returns a small three-level tree:
//
//	root
//	├── a
//	│   └── a1
//	└── b
func buildTree() *PostView {
	return &PostView{
		URI: "at://t/root",
		Children: []*PostView{
			{
				URI:      "at://t/a",
				Children: []*PostView{{URI: "at://t/a1"}},
			},
			{URI: "at://t/b"},
		},
	}
}

func bumpLikes(pv *PostView) *PostView {
	next := *pv
	next.Counts.Likes++
	return &next
}

func TestUpdateNode_NoMatchIsReferenceStable(t *testing.T) {
	root := buildTree()
	got := UpdateNode(root, "at://t/missing", bumpLikes)
	assert.Same(t, root, got)
}

func TestUpdateNode_MatchAtRoot(t *testing.T) {
	root := buildTree()
	got := UpdateNode(root, "at://t/root", bumpLikes)

	require.NotSame(t, root, got)
	assert.Equal(t, int64(1), got.Counts.Likes)
	assert.Equal(t, int64(0), root.Counts.Likes)
}

func TestUpdateNode_DeepMatchCopiesOnlyThePath(t *testing.T) {
	root := buildTree()
	got := UpdateNode(root, "at://t/a1", bumpLikes)

	// The root and the matched branch are new values.
	require.NotSame(t, root, got)
	require.NotSame(t, root.Children[0], got.Children[0])
	assert.Equal(t, int64(1), got.Children[0].Children[0].Counts.Likes)

	// The sibling subtree is untouched and shared.
	assert.Same(t, root.Children[1], got.Children[1])

	// The original tree is unchanged.
	assert.Equal(t, int64(0), root.Children[0].Children[0].Counts.Likes)
}

func TestUpdateNode_NilRoot(t *testing.T) {
	assert.Nil(t, UpdateNode(nil, "at://t/x", bumpLikes))
}

func TestUpdateForest_NoMatchReturnsSameSlice(t *testing.T) {
	forest := []*PostView{{URI: "at://t/a"}, {URI: "at://t/b"}}
	got := UpdateForest(forest, "at://t/missing", bumpLikes)

	// Same backing slice, same elements.
	require.Len(t, got, 2)
	assert.Same(t, forest[0], got[0])
	assert.Same(t, forest[1], got[1])
	if &forest[0] != &got[0] {
		t.Fatal("expected the input slice back when nothing matched")
	}
}

func TestUpdateForest_MatchReplacesOnlyThatElement(t *testing.T) {
	forest := []*PostView{{URI: "at://t/a"}, {URI: "at://t/b"}, {URI: "at://t/c"}}
	got := UpdateForest(forest, "at://t/b", bumpLikes)

	assert.Same(t, forest[0], got[0])
	assert.NotSame(t, forest[1], got[1])
	assert.Same(t, forest[2], got[2])
	assert.Equal(t, int64(1), got[1].Counts.Likes)
	assert.Equal(t, int64(0), forest[1].Counts.Likes)
}

func TestUpdateForest_TransformReceivesFullNode(t *testing.T) {
	forest := []*PostView{buildTree()}
	var seen *PostView
	UpdateForest(forest, "at://t/a", func(pv *PostView) *PostView {
		seen = pv
		return pv
	})

	require.NotNil(t, seen)
	assert.Equal(t, "at://t/a", seen.URI)
	require.Len(t, seen.Children, 1)
}
