package util

type (
	// PathTree stores values keyed by hierarchical string paths and can
	// detach a whole subtree in one operation. The scheduler keys an
	// execution's timers under a shared prefix so a finishing execution
	// drops them all at once.
	PathTree[T any] struct {
		root pathNode[T]
	}

	pathNode[T any] struct {
		leaf     *T
		children map[string]*pathNode[T]
	}
)

// NewPathTree creates an empty path index
func NewPathTree[T any]() *PathTree[T] {
	return &PathTree[T]{}
}

// Insert stores a value at the path, replacing any value already there
func (t *PathTree[T]) Insert(path []string, v T) {
	n := &t.root
	for _, seg := range path {
		n = n.child(seg)
	}
	n.leaf = &v
}

// Remove drops the value stored at the exact path and prunes branches
// left empty by its removal
func (t *PathTree[T]) Remove(path []string) {
	chain := make([]*pathNode[T], 0, len(path)+1)
	n := &t.root
	chain = append(chain, n)
	for _, seg := range path {
		next := n.children[seg]
		if next == nil {
			return
		}
		n = next
		chain = append(chain, n)
	}
	n.leaf = nil
	for i := len(chain) - 1; i > 0; i-- {
		cur := chain[i]
		if cur.leaf != nil || len(cur.children) > 0 {
			break
		}
		delete(chain[i-1].children, path[i-1])
	}
}

// Detach removes the subtree under the prefix and returns every value it
// held. A nil prefix empties the whole tree.
func (t *PathTree[T]) Detach(prefix []string) []T {
	if len(prefix) == 0 {
		res := t.root.gather(nil)
		t.root = pathNode[T]{}
		return res
	}
	parent := &t.root
	for _, seg := range prefix[:len(prefix)-1] {
		if parent = parent.children[seg]; parent == nil {
			return nil
		}
	}
	last := prefix[len(prefix)-1]
	sub := parent.children[last]
	if sub == nil {
		return nil
	}
	delete(parent.children, last)
	return sub.gather(nil)
}

func (n *pathNode[T]) child(seg string) *pathNode[T] {
	if n.children == nil {
		n.children = map[string]*pathNode[T]{}
	}
	next := n.children[seg]
	if next == nil {
		next = &pathNode[T]{}
		n.children[seg] = next
	}
	return next
}

func (n *pathNode[T]) gather(dst []T) []T {
	if n.leaf != nil {
		dst = append(dst, *n.leaf)
	}
	for _, child := range n.children {
		dst = child.gather(dst)
	}
	return dst
}
