package visualdiff

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/codalotl/visualdiff/internal/diff"
	"github.com/codalotl/visualdiff/internal/dom"
)

// nameOverrides makes elements that should diff as the same node serialize to the same marker.
var nameOverrides = map[string]string{
	"th": "td",
}

// nodeName is n's name after nameOverrides.
func nodeName(n *dom.Node) string {
	name := n.Name()
	if o, ok := nameOverrides[name]; ok {
		return o
	}
	return name
}

// sentinel returns the node marker for a node name.
func sentinel(name string) rune {
	return diff.SentinelFirst + rune(xxhash.Sum64String(name)%uint64(diff.SentinelCount))
}

// serialize flattens root into a string: text nodes contribute their data, every other walked node contributes one marker rune.
func serialize(root *dom.Node, cfg *config) string {
	var b strings.Builder
	dom.NewWalker(root, cfg.walkOptions()).ForEach(func(n *dom.Node) {
		if n.Type == dom.TextNode {
			b.WriteString(n.Data)
			return
		}
		b.WriteRune(sentinel(nodeName(n)))
	})
	return b.String()
}
