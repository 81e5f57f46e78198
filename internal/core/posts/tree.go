package posts

// TransformFunc receives the matched node and returns its replacement.
// The replacement must be a new value when fields change; callers are
// responsible for carrying over fields they want preserved.
type TransformFunc func(*PostView) *PostView

// UpdateNode applies fn to the node identified by targetURI anywhere in
// the tree rooted at root, and returns the new root. Only the matched
// node and the chain of ancestors above it are reallocated; every
// untouched subtree is returned reference-identical, which keeps the
// operation cheap for large, mostly-unaffected trees. When targetURI does
// not occur, root itself is returned.
func UpdateNode(root *PostView, targetURI string, fn TransformFunc) *PostView {
	if root == nil {
		return nil
	}

	if root.URI == targetURI {
		return fn(root)
	}

	children := UpdateForest(root.Children, targetURI, fn)
	if sameForest(children, root.Children) {
		return root
	}

	next := *root
	next.Children = children
	return &next
}

// UpdateForest maps UpdateNode over an ordered sequence of roots,
// treating each element independently. The input slice is returned
// unchanged when no element matched.
func UpdateForest(nodes []*PostView, targetURI string, fn TransformFunc) []*PostView {
	var out []*PostView
	for i, node := range nodes {
		updated := UpdateNode(node, targetURI, fn)
		if updated == node {
			if out != nil {
				out[i] = updated
			}
			continue
		}
		if out == nil {
			out = make([]*PostView, len(nodes))
			copy(out, nodes[:i])
		}
		out[i] = updated
	}
	if out == nil {
		return nodes
	}
	return out
}

// sameForest reports whether two forests are the same slice with the same
// elements, i.e. nothing below was replaced.
func sameForest(a, b []*PostView) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
