package dom

import (
	"strings"
	"unicode/utf8"
)

// NodeType is the closed set of node kinds a tree can hold.
type NodeType int

const (
	TextNode NodeType = iota + 1
	ElementNode
	CommentNode
	FragmentNode
	DocumentNode
)

func (t NodeType) String() string {
	switch t {
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case CommentNode:
		return "comment"
	case FragmentNode:
		return "fragment"
	case DocumentNode:
		return "document"
	}
	return "unknown"
}

// Attribute is a single element attribute. Keys are lower case.
type Attribute struct {
	Key string
	Val string
}

// Node is a node in an ordered tree.
//
// Data holds the character data of text and comment nodes, and the lower-case tag name of element nodes. It is empty for fragments and documents.
//
// Invariants:
//   - Parent, FirstChild, LastChild, PrevSibling and NextSibling are mutually consistent. Use AppendChild, InsertBefore and RemoveChild to change them.
//   - Only ElementNode, FragmentNode and DocumentNode have children.
type Node struct {
	Type NodeType
	Data string
	Attr []Attribute

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// NewText returns a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewElement returns a detached element named tag (lower-cased) with a copy of attrs.
func NewElement(tag string, attrs ...Attribute) *Node {
	n := &Node{Type: ElementNode, Data: strings.ToLower(tag)}
	if len(attrs) > 0 {
		n.Attr = append([]Attribute(nil), attrs...)
	}
	return n
}

// NewComment returns a detached comment node.
func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

// NewFragment returns an empty fragment.
func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

// NewDocument returns an empty document.
func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

// Name returns the tag name of an element, or a '#'-prefixed name for other node types.
func (n *Node) Name() string {
	switch n.Type {
	case ElementNode:
		return n.Data
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case FragmentNode:
		return "#document-fragment"
	case DocumentNode:
		return "#document"
	}
	return "#unknown"
}

// IsElement reports whether n is an element named tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == ElementNode && n.Data == tag
}

// Len is the number of units n contributes to a serialized tree: the rune length of a text node, 1 for anything else.
func (n *Node) Len() int {
	if n.Type == TextNode {
		return utf8.RuneCountInString(n.Data)
	}
	return 1
}

// AppendChild adds c as the last child of n. If c is attached elsewhere, it is detached first.
func (n *Node) AppendChild(c *Node) {
	n.InsertBefore(c, nil)
}

// InsertBefore inserts c as a child of n, immediately before ref. If ref is nil, c is appended. If c is attached elsewhere, it is detached first.
//
// It panics if ref is not nil and not a child of n.
func (n *Node) InsertBefore(c, ref *Node) {
	if ref != nil && ref.Parent != n {
		panic("dom: InsertBefore called with a reference node that is not a child")
	}
	if c == ref {
		return
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	var prev *Node
	if ref != nil {
		prev = ref.PrevSibling
		ref.PrevSibling = c
	} else {
		prev = n.LastChild
		n.LastChild = c
	}
	if prev != nil {
		prev.NextSibling = c
	} else {
		n.FirstChild = c
	}
	c.Parent = n
	c.PrevSibling = prev
	c.NextSibling = ref
}

// RemoveChild detaches c from n. It panics if c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("dom: RemoveChild called for a non-child node")
	}
	if n.FirstChild == c {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	}
	if n.LastChild == c {
		n.LastChild = c.PrevSibling
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Children returns the children of n as a new slice.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildElements returns the element children of n.
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a detached copy of n. If deep is true, descendants are copied too.
func (n *Node) Clone(deep bool) *Node {
	c := &Node{Type: n.Type, Data: n.Data}
	if len(n.Attr) > 0 {
		c.Attr = append([]Attribute(nil), n.Attr...)
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.AppendChild(child.Clone(true))
		}
	}
	return c
}

// Attribute returns the value of attribute key.
func (n *Node) Attribute(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute sets attribute key to val, appending it if absent.
func (n *Node) SetAttribute(key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, Attribute{Key: key, Val: val})
}

// HasClass reports whether cls is one of the space separated tokens of n's class attribute.
func (n *Node) HasClass(cls string) bool {
	v, ok := n.Attribute("class")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == cls {
			return true
		}
	}
	return false
}

// AddClass adds cls to n's class attribute unless already present.
func (n *Node) AddClass(cls string) {
	if cls == "" || n.HasClass(cls) {
		return
	}
	v, ok := n.Attribute("class")
	if !ok || strings.TrimSpace(v) == "" {
		n.SetAttribute("class", cls)
		return
	}
	n.SetAttribute("class", v+" "+cls)
}

// TextContent returns the concatenated data of every text node in n's subtree (n included).
func (n *Node) TextContent() string {
	var b strings.Builder
	var visit func(*Node)
	visit = func(m *Node) {
		if m.Type == TextNode {
			b.WriteString(m.Data)
			return
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// Contains reports whether d is n or a descendant of n.
func (n *Node) Contains(d *Node) bool {
	for ; d != nil; d = d.Parent {
		if d == n {
			return true
		}
	}
	return false
}
