package visualdiff

import "github.com/codalotl/visualdiff/internal/dom"

// moveRemovedBeforeAdded moves every removed node in front of the added siblings that immediately precede it, so a replacement always reads old, then new.
func (r *reconciler) moveRemovedBeforeAdded() {
	for _, n := range r.removed.list() {
		for prev := n.PrevSibling; prev != nil && r.added.has(prev); prev = n.PrevSibling {
			n.Parent.InsertBefore(n, prev)
		}
	}
}

// markUp marks removed, added and (unless disabled) modified nodes.
func (r *reconciler) markUp() {
	for _, n := range r.removed.list() {
		r.markNode(n, "del", r.cfg.removedClass)
	}
	for _, n := range r.added.list() {
		r.markNode(n, "ins", r.cfg.addedClass)
	}
	if r.cfg.skipModified {
		return
	}
	for _, n := range r.modified.list() {
		r.markNode(n, "ins", r.cfg.modifiedClass)
	}
}

// markNode adds class to an element. Other nodes are wrapped in a tag element carrying class, reusing the wrapper of an immediately preceding node with the
// same class.
func (r *reconciler) markNode(n *dom.Node, tag, class string) {
	if n.Type == dom.ElementNode {
		n.AddClass(class)
		return
	}
	if prev := n.PrevSibling; prev != nil && r.markers[prev] == class {
		prev.AppendChild(n)
		return
	}
	w := dom.NewElement(tag, dom.Attribute{Key: "class", Val: class})
	n.Parent.InsertBefore(w, n)
	w.AppendChild(n)
	r.markers[w] = class
}
