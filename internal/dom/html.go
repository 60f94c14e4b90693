package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses r as the contents of an HTML <body> and returns the result as a fragment. Doctype nodes are dropped.
func ParseHTML(r io.Reader) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	frag := NewFragment()
	for _, hn := range nodes {
		if n := FromHTML(hn); n != nil {
			frag.AppendChild(n)
		}
	}
	return frag, nil
}

// MustParseHTML is like ParseHTML on a string, but panics on error. It is intended for tests and fixed inputs.
func MustParseHTML(s string) *Node {
	n, err := ParseHTML(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return n
}

// FromHTML converts an x/net/html tree into a Node tree. It returns nil for node types without a counterpart (doctypes, raw nodes).
func FromHTML(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.TextNode:
		n = NewText(hn.Data)
	case html.CommentNode:
		n = NewComment(hn.Data)
	case html.DocumentNode:
		n = NewDocument()
	case html.ElementNode:
		n = &Node{Type: ElementNode, Data: hn.Data}
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.Attr = append(n.Attr, Attribute{Key: key, Val: a.Val})
		}
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if cn := FromHTML(c); cn != nil {
			n.AppendChild(cn)
		}
	}
	return n
}

// ToHTML converts n into an x/net/html tree. A fragment converts to a document node holding the fragment's children.
func ToHTML(n *Node) *html.Node {
	var hn *html.Node
	switch n.Type {
	case TextNode:
		hn = &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		hn = &html.Node{Type: html.CommentNode, Data: n.Data}
	case FragmentNode, DocumentNode:
		hn = &html.Node{Type: html.DocumentNode}
	case ElementNode:
		hn = &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: atom.Lookup([]byte(n.Data))}
		for _, a := range n.Attr {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	default:
		panic(fmt.Sprintf("dom: unknown node type %d", n.Type))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		hn.AppendChild(ToHTML(c))
	}
	return hn
}

// Render writes n as HTML. Fragments and documents render their children only.
func Render(w io.Writer, n *Node) error {
	if n.Type == FragmentNode || n.Type == DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(w, ToHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, ToHTML(n))
}

// RenderString is Render into a string. Rendering into memory cannot fail for well formed trees; an error is rendered inline.
func RenderString(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return fmt.Sprintf("%s<!-- render error: %v -->", buf.String(), err)
	}
	return buf.String()
}
