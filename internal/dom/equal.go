package dom

import "slices"

// Equal reports whether a and b are equal.
//
// Shallow equality compares type, data and the attribute set (attribute order is ignored). Fragments and documents are always shallowly equal to nodes of the same
// type. If deep is true, children are also compared pairwise, recursively.
func Equal(a, b *Node, deep bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TextNode, CommentNode:
		if a.Data != b.Data {
			return false
		}
	case ElementNode:
		if a.Data != b.Data || !sameAttributes(a.Attr, b.Attr) {
			return false
		}
	case FragmentNode, DocumentNode:
	}
	if !deep {
		return true
	}
	ca, cb := a.FirstChild, b.FirstChild
	for ca != nil && cb != nil {
		if !Equal(ca, cb, true) {
			return false
		}
		ca, cb = ca.NextSibling, cb.NextSibling
	}
	return ca == nil && cb == nil
}

func sameAttributes(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}

// Ancestors returns the ancestors of node, nearest first, up to and including root. If node is root, or root is not an ancestor, the chain stops at root or at
// the top of node's tree respectively.
func Ancestors(node, root *Node) []*Node {
	var out []*Node
	if node == root {
		return out
	}
	for p := node.Parent; p != nil; p = p.Parent {
		out = append(out, p)
		if p == root {
			break
		}
	}
	return out
}

// AncestorCount returns len(Ancestors(node, root)) without allocating.
func AncestorCount(node, root *Node) int {
	if node == root {
		return 0
	}
	n := 0
	for p := node.Parent; p != nil; p = p.Parent {
		n++
		if p == root {
			break
		}
	}
	return n
}
