package dom

import "iter"

// WalkOptions prune a walk. Nil funcs prune nothing.
type WalkOptions struct {
	SkipSelf     func(*Node) bool // Excludes a node from the walk. Its descendants are still visited.
	SkipChildren func(*Node) bool // Excludes a node's descendants from the walk.
}

// Walker yields the nodes of a subtree in pre-order (document order), never leaving the subtree. The root itself is subject to SkipSelf.
//
// A Walker is single-pass and not restartable. The tree must not be mutated while walking.
type Walker struct {
	root    *Node
	next    *Node
	descend bool
	opts    WalkOptions
}

// NewWalker returns a Walker over root's subtree.
func NewWalker(root *Node, opts WalkOptions) *Walker {
	w := &Walker{root: root, next: root, descend: true, opts: opts}
	if root != nil && w.skipSelf(root) {
		w.advance()
	}
	return w
}

// Next returns the next node, or (nil, false) when the walk is done.
func (w *Walker) Next() (*Node, bool) {
	if w.next == nil {
		return nil, false
	}
	n := w.next
	w.advance()
	return n, true
}

// Done reports whether Next would return false.
func (w *Walker) Done() bool {
	return w.next == nil
}

// All yields the remaining nodes.
func (w *Walker) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n, ok := w.Next(); ok; n, ok = w.Next() {
			if !yield(n) {
				return
			}
		}
	}
}

// ToList returns the remaining nodes.
func (w *Walker) ToList() []*Node {
	var out []*Node
	for n := range w.All() {
		out = append(out, n)
	}
	return out
}

// ForEach calls fn for each remaining node.
func (w *Walker) ForEach(fn func(*Node)) {
	for n := range w.All() {
		fn(n)
	}
}

// Some reports whether fn returns true for any remaining node. It stops at the first match.
func (w *Walker) Some(fn func(*Node) bool) bool {
	for n := range w.All() {
		if fn(n) {
			return true
		}
	}
	return false
}

// Reduce folds the remaining nodes of w into an accumulator.
func Reduce[T any](w *Walker, init T, fn func(acc T, n *Node) T) T {
	acc := init
	for n := range w.All() {
		acc = fn(acc, n)
	}
	return acc
}

func (w *Walker) skipSelf(n *Node) bool {
	return w.opts.SkipSelf != nil && w.opts.SkipSelf(n)
}

func (w *Walker) skipChildren(n *Node) bool {
	return w.opts.SkipChildren != nil && w.opts.SkipChildren(n)
}

// advance moves w.next to the next node that is neither already visited nor skipped.
func (w *Walker) advance() {
	for {
		w.step()
		if w.next == nil {
			return
		}
		if !w.descend {
			// Back at an ancestor that was already visited (or skipped).
			continue
		}
		if w.skipSelf(w.next) {
			continue
		}
		return
	}
}

// step moves one position in pre-order without consulting SkipSelf.
func (w *Walker) step() {
	n := w.next
	switch {
	case w.descend && n.FirstChild != nil && !w.skipChildren(n):
		w.next = n.FirstChild
	case n == w.root:
		w.next = nil
	case n.NextSibling != nil:
		w.next = n.NextSibling
		w.descend = true
	default:
		w.next = n.Parent
		w.descend = false
	}
}
