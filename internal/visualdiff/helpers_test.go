package visualdiff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/visualdiff/internal/dom"
)

// diffHTML parses both inputs, diffs them and renders the result.
func diffHTML(t *testing.T, oldHTML, newHTML string, opts *Options) string {
	t.Helper()
	return dom.RenderString(Diff(dom.MustParseHTML(oldHTML), dom.MustParseHTML(newHTML), opts))
}

// snapshot is a parent-free copy of a tree, so trees can be compared with cmp.Diff.
type snapshot struct {
	Type     dom.NodeType
	Data     string
	Attr     []dom.Attribute
	Children []snapshot
}

func snap(n *dom.Node) snapshot {
	s := snapshot{Type: n.Type, Data: n.Data, Attr: n.Attr}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.Children = append(s.Children, snap(c))
	}
	return s
}

// textWithout returns the text of n, leaving out subtrees of elements carrying class.
func textWithout(n *dom.Node, class string) string {
	if n.Type == dom.TextNode {
		return n.Data
	}
	if n.Type == dom.ElementNode && n.HasClass(class) {
		return ""
	}
	s := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s += textWithout(c, class)
	}
	return s
}

// requireInvariantPanic runs fn and requires it to panic with an error wrapping ErrInvariant.
func requireInvariantPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		v := recover()
		require.NotNil(t, v, "expected a panic")
		err, ok := v.(error)
		require.True(t, ok, "panic value is not an error: %v", v)
		require.True(t, errors.Is(err, ErrInvariant), "unexpected panic: %v", err)
	}()
	fn()
}
