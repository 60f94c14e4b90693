package visualdiff

import (
	"unicode/utf8"

	"github.com/codalotl/visualdiff/internal/diff"
	"github.com/codalotl/visualdiff/internal/dom"
)

// reconciler replays a text diff of two serialized trees against the trees themselves, building the output tree.
//
// Three cursors move in lockstep: the current op (opIdx, opPos), the current old node (oldNode, oldPos) and the current new node (newNode, newPos). Positions
// are in runes; each step advances every involved cursor by the same amount. Non-text nodes are one rune long (their marker).
type reconciler struct {
	cfg   *config
	depth int // Table nesting depth of this diff; 0 for a top-level call.

	oldRoot, newRoot     *dom.Node
	oldWalker, newWalker *dom.Walker

	ops   []diff.DiffOp
	opIdx int
	opPos int
	opLen int

	oldNode                 *dom.Node // nil when the old walker is exhausted.
	oldPos, oldByte, oldLen int
	newNode                 *dom.Node // nil when the new walker is exhausted.
	newPos, newByte, newLen int

	root               *dom.Node // Output fragment.
	oldOut, newOut     *dom.Node // Where the next old/new node is appended.
	oldDepth, newDepth int       // Depth of oldOut/newOut; root is 0.
	openRemoved        *dom.Node // First node of the removed run being written, if any.
	openAdded          *dom.Node // First node of the added run being written, if any.

	removed  *nodeSet
	added    *nodeSet
	modified *nodeSet

	formatting      map[*dom.Node][]*dom.Node // Output text node -> formatting elements of its source node, outermost first.
	formattingOrder []*dom.Node

	markers map[*dom.Node]string // Marker wrappers created by markUp -> their class.

	equalTables []tablePair
	equalRows   map[*dom.Node]rowPair
}

// tablePair is an output table written as common, with its sources.
type tablePair struct {
	out, old, new *dom.Node
}

// rowPair holds the sources of an output row written as common.
type rowPair struct {
	old, new *dom.Node
}

func newReconciler(oldRoot, newRoot *dom.Node, cfg *config, depth int) *reconciler {
	root := dom.NewFragment()
	r := &reconciler{
		cfg:        cfg,
		depth:      depth,
		oldRoot:    oldRoot,
		newRoot:    newRoot,
		oldWalker:  dom.NewWalker(oldRoot, cfg.walkOptions()),
		newWalker:  dom.NewWalker(newRoot, cfg.walkOptions()),
		root:       root,
		oldOut:     root,
		newOut:     root,
		removed:    newNodeSet(),
		added:      newNodeSet(),
		modified:   newNodeSet(),
		formatting: map[*dom.Node][]*dom.Node{},
		markers:    map[*dom.Node]string{},
		equalRows:  map[*dom.Node]rowPair{},
	}
	r.ops = cfg.diffText(serialize(oldRoot, cfg), serialize(newRoot, cfg))
	r.loadOp()
	r.nextOld()
	r.nextNew()
	return r
}

// run consumes every op.
func (r *reconciler) run() {
	for r.opIdx < len(r.ops) {
		switch op := r.ops[r.opIdx].Op; op {
		case diff.OpEqual:
			r.equal()
		case diff.OpInsert:
			r.insert()
		case diff.OpDelete:
			r.delete()
		default:
			panic(invariant("unknown diff op %v", op))
		}
	}
	if r.oldNode != nil {
		panic(invariant("old tree not exhausted at the end of the diff (at %s)", r.oldNode.Name()))
	}
	if r.newNode != nil {
		panic(invariant("new tree not exhausted at the end of the diff (at %s)", r.newNode.Name()))
	}
}

func (r *reconciler) delete() {
	if r.oldNode == nil {
		panic(invariant("old tree exhausted during a delete op"))
	}
	r.prepareOldOutput()
	n := min(r.opLen-r.opPos, r.oldLen-r.oldPos)
	r.appendOldChild(r.oldPiece(n))
	r.advanceOp(n)
	r.advanceOld(n)
}

func (r *reconciler) insert() {
	if r.newNode == nil {
		panic(invariant("new tree exhausted during an insert op"))
	}
	r.prepareNewOutput()
	n := min(r.opLen-r.opPos, r.newLen-r.newPos)
	r.appendNewChild(r.newPiece(n))
	r.advanceOp(n)
	r.advanceNew(n)
}

func (r *reconciler) equal() {
	if r.oldNode == nil || r.newNode == nil {
		panic(invariant("tree exhausted during an equal op"))
	}
	r.prepareOldOutput()
	r.prepareNewOutput()
	n := min(r.opLen-r.opPos, r.oldLen-r.oldPos, r.newLen-r.newPos)

	oldIsText := r.oldNode.Type == dom.TextNode
	newIsText := r.newNode.Type == dom.TextNode
	switch {
	case oldIsText && newIsText && r.oldOut == r.newOut:
		r.appendCommonChild(r.newPiece(n))
	case !oldIsText && !newIsText && r.oldOut == r.newOut && r.canMerge(r.oldNode, r.newNode):
		r.appendCommonChild(r.newPiece(n))
	default:
		r.appendOldChild(r.oldPiece(n))
		r.appendNewChild(r.newPiece(n))
	}
	r.advanceOp(n)
	r.advanceOld(n)
	r.advanceNew(n)
}

// canMerge reports whether two non-text nodes that serialized to equal markers can be written as one common node.
func (r *reconciler) canMerge(oldNode, newNode *dom.Node) bool {
	if nodeName(oldNode) == nodeName(newNode) && !r.cfg.skipChildren(oldNode) && !r.cfg.skipChildren(newNode) {
		return true
	}
	return r.cfg.compareNodes(oldNode, newNode) != Different
}

// oldPiece returns a detached output node for the next n runes of the old node. Nodes whose children are skipped are copied with their content.
func (r *reconciler) oldPiece(n int) *dom.Node {
	if r.oldNode.Type != dom.TextNode {
		return r.oldNode.Clone(r.cfg.skipChildren(r.oldNode))
	}
	end := byteOffset(r.oldNode.Data, r.oldByte, n)
	return dom.NewText(r.oldNode.Data[r.oldByte:end])
}

func (r *reconciler) newPiece(n int) *dom.Node {
	if r.newNode.Type != dom.TextNode {
		return r.newNode.Clone(r.cfg.skipChildren(r.newNode))
	}
	end := byteOffset(r.newNode.Data, r.newByte, n)
	return dom.NewText(r.newNode.Data[r.newByte:end])
}

// byteOffset returns the byte offset n runes after from in s.
func byteOffset(s string, from, n int) int {
	i := from
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

func (r *reconciler) prepareOldOutput() {
	depth := r.nodeDepth(r.oldNode, r.oldRoot)
	for r.oldDepth > depth {
		if r.oldOut == r.openRemoved {
			r.openRemoved = nil
		}
		r.oldOut = r.oldOut.Parent
		r.oldDepth--
	}
	if r.oldDepth != depth {
		panic(invariant("old output at depth %d, node %s needs depth %d", r.oldDepth, r.oldNode.Name(), depth))
	}
}

func (r *reconciler) prepareNewOutput() {
	depth := r.nodeDepth(r.newNode, r.newRoot)
	for r.newDepth > depth {
		if r.newOut == r.openAdded {
			r.openAdded = nil
		}
		r.newOut = r.newOut.Parent
		r.newDepth--
	}
	if r.newDepth != depth {
		panic(invariant("new output at depth %d, node %s needs depth %d", r.newDepth, r.newNode.Name(), depth))
	}
}

// appendCommonChild writes a node present in both trees.
func (r *reconciler) appendCommonChild(node *dom.Node) {
	if r.oldOut != r.newOut || r.openRemoved != nil || r.openAdded != nil {
		panic(invariant("common node written while the output pointers diverge"))
	}
	if node.Type == dom.TextNode {
		oldChain := r.formattingChain(r.oldNode, r.oldRoot)
		newChain := r.formattingChain(r.newNode, r.newRoot)
		r.setFormatting(node, newChain)
		if !r.sameFormatting(oldChain, newChain) {
			r.modified.add(node)
		}
	} else {
		if r.cfg.compareNodes(r.oldNode, r.newNode) != Identical {
			r.modified.add(node)
		}
		switch nodeName(r.oldNode) {
		case "table":
			r.equalTables = append(r.equalTables, tablePair{out: node, old: r.oldNode, new: r.newNode})
		case "tr":
			r.equalRows[node] = rowPair{old: r.oldNode, new: r.newNode}
		}
	}
	r.newOut.AppendChild(node)
	r.oldOut, r.newOut = node, node
	r.oldDepth++
	r.newDepth++
}

// appendOldChild writes a node present only in the old tree.
func (r *reconciler) appendOldChild(node *dom.Node) {
	if r.openRemoved == nil {
		r.openRemoved = node
		r.removed.add(node)
	}
	if node.Type == dom.TextNode {
		r.setFormatting(node, r.formattingChain(r.oldNode, r.oldRoot))
	}
	r.oldOut.AppendChild(node)
	r.oldOut = node
	r.oldDepth++
}

// appendNewChild writes a node present only in the new tree.
func (r *reconciler) appendNewChild(node *dom.Node) {
	if r.openAdded == nil {
		r.openAdded = node
		r.added.add(node)
	}
	if node.Type == dom.TextNode {
		r.setFormatting(node, r.formattingChain(r.newNode, r.newRoot))
	}
	r.newOut.AppendChild(node)
	r.newOut = node
	r.newDepth++
}

func (r *reconciler) loadOp() {
	r.opPos = 0
	r.opLen = 0
	if r.opIdx < len(r.ops) {
		r.opLen = r.ops[r.opIdx].Len()
	}
}

func (r *reconciler) advanceOp(n int) {
	r.opPos += n
	switch {
	case r.opPos == r.opLen:
		r.opIdx++
		r.loadOp()
	case r.opPos > r.opLen:
		panic(invariant("op %d overrun", r.opIdx))
	}
}

func (r *reconciler) advanceOld(n int) {
	r.oldPos += n
	if r.oldNode.Type == dom.TextNode {
		r.oldByte = byteOffset(r.oldNode.Data, r.oldByte, n)
	}
	switch {
	case r.oldPos == r.oldLen:
		r.nextOld()
	case r.oldPos > r.oldLen:
		panic(invariant("old node %s overrun", r.oldNode.Name()))
	}
}

func (r *reconciler) advanceNew(n int) {
	r.newPos += n
	if r.newNode.Type == dom.TextNode {
		r.newByte = byteOffset(r.newNode.Data, r.newByte, n)
	}
	switch {
	case r.newPos == r.newLen:
		r.nextNew()
	case r.newPos > r.newLen:
		panic(invariant("new node %s overrun", r.newNode.Name()))
	}
}

func (r *reconciler) nextOld() {
	r.oldNode = nextNonEmpty(r.oldWalker)
	r.oldPos, r.oldByte, r.oldLen = 0, 0, 0
	if r.oldNode != nil {
		r.oldLen = r.oldNode.Len()
	}
}

func (r *reconciler) nextNew() {
	r.newNode = nextNonEmpty(r.newWalker)
	r.newPos, r.newByte, r.newLen = 0, 0, 0
	if r.newNode != nil {
		r.newLen = r.newNode.Len()
	}
}

// nextNonEmpty returns the next walked node, skipping empty text nodes (they serialize to nothing).
func nextNonEmpty(w *dom.Walker) *dom.Node {
	for {
		n, ok := w.Next()
		if !ok {
			return nil
		}
		if n.Type == dom.TextNode && n.Data == "" {
			continue
		}
		return n
	}
}

// nodeDepth is the number of structural (non skipSelf) ancestors of n, up to and including root.
func (r *reconciler) nodeDepth(n, root *dom.Node) int {
	depth := 0
	for _, a := range dom.Ancestors(n, root) {
		if !r.cfg.skipSelf(a) {
			depth++
		}
	}
	return depth
}

// formattingChain returns the formatting ancestors of n up to and including root, outermost first.
func (r *reconciler) formattingChain(n, root *dom.Node) []*dom.Node {
	var chain []*dom.Node
	for _, a := range dom.Ancestors(n, root) {
		if r.cfg.isFormatting(a) {
			chain = append(chain, a)
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (r *reconciler) sameFormatting(a, b []*dom.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if r.cfg.compareNodes(a[i], b[i]) != Identical {
			return false
		}
	}
	return true
}

func (r *reconciler) setFormatting(text *dom.Node, chain []*dom.Node) {
	if _, ok := r.formatting[text]; !ok {
		r.formattingOrder = append(r.formattingOrder, text)
	}
	r.formatting[text] = chain
}

// forget drops everything recorded about n's subtree. n itself is included only if self is true.
func (r *reconciler) forget(n *dom.Node, self bool) {
	dom.NewWalker(n, dom.WalkOptions{}).ForEach(func(m *dom.Node) {
		if m == n && !self {
			return
		}
		r.removed.remove(m)
		r.added.remove(m)
		r.modified.remove(m)
		delete(r.formatting, m)
	})
}
