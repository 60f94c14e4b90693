package visualdiff

import (
	"github.com/codalotl/visualdiff/internal/diff"
	"github.com/codalotl/visualdiff/internal/dom"
)

// Default marker classes.
const (
	DefaultAddedClass    = "vdd-added"
	DefaultRemovedClass  = "vdd-removed"
	DefaultModifiedClass = "vdd-modified"
)

// DefaultMaxTableDepth bounds how many tables deep cell-by-cell realignment recurses. Deeper tables are shown as a whole removed table plus a whole added table.
const DefaultMaxTableDepth = 16

// CompareResult is the outcome of comparing two nodes.
type CompareResult int

const (
	Identical CompareResult = iota // The nodes are interchangeable.
	Similar                        // The nodes differ, but the new node can stand in for the old one (shown as modified).
	Different                      // The nodes must be shown as a removal and an addition.
)

func (c CompareResult) String() string {
	switch c {
	case Identical:
		return "identical"
	case Similar:
		return "similar"
	case Different:
		return "different"
	}
	return "unknown"
}

// Options configure Diff. The zero value (and nil) selects every default.
//
// Predicate overrides return ok == false to fall back to the default for a node.
type Options struct {
	AddedClass    string // Class for added content. Default DefaultAddedClass.
	RemovedClass  string // Class for removed content. Default DefaultRemovedClass.
	ModifiedClass string // Class for content whose formatting or attributes changed. Default DefaultModifiedClass.

	IgnoreCase   bool // Compare text ignoring letter case. Only used by the default DiffText.
	SkipModified bool // Do not mark modified content.

	// SkipChildren treats an element as atomic (ex: img, video). Text and comment nodes never have their children walked, regardless of the override.
	SkipChildren func(n *dom.Node) (skip, ok bool)

	// SkipSelf treats an element (or text node) as transparent: it is not part of the structure, but its descendants are. Elements that are skipped this way
	// are formatting (ex: strong, em) and are reapplied around text. Comments, fragments and documents are always skipped.
	SkipSelf func(n *dom.Node) (skip, ok bool)

	// CompareNodes compares an old node with a new node.
	CompareNodes func(oldNode, newNode *dom.Node) (result CompareResult, ok bool)

	// DiffText replaces the text diff. It must return ops satisfying the invariants of package diff.
	DiffText diff.Func

	// MaxTableDepth bounds table realignment recursion. Default DefaultMaxTableDepth.
	MaxTableDepth int
}

// skipChildrenTags are component elements whose content is not diffed.
var skipChildrenTags = map[string]bool{
	"img":    true,
	"video":  true,
	"iframe": true,
	"object": true,
	"svg":    true,
}

// skipSelfTags are formatting elements.
var skipSelfTags = map[string]bool{
	"bdo": true, "bdi": true, "q": true, "cite": true, "code": true, "data": true, "time": true, "var": true, "dfn": true, "abbr": true,
	"strong": true, "em": true, "big": true, "small": true, "mark": true, "sub": true, "sup": true, "samp": true, "kbd": true,
	"b": true, "i": true, "s": true, "u": true, "span": true,
}

// config is Options resolved into total functions. It is read-only once built and shared by recursive calls.
type config struct {
	addedClass    string
	removedClass  string
	modifiedClass string
	skipModified  bool
	maxTableDepth int
	ignoreCase    bool

	skipChildrenFn func(*dom.Node) (bool, bool)
	skipSelfFn     func(*dom.Node) (bool, bool)
	compareFn      func(a, b *dom.Node) (CompareResult, bool)
	diffTextFn     diff.Func
}

func newConfig(opts *Options) *config {
	if opts == nil {
		opts = &Options{}
	}
	c := &config{
		addedClass:     opts.AddedClass,
		removedClass:   opts.RemovedClass,
		modifiedClass:  opts.ModifiedClass,
		skipModified:   opts.SkipModified,
		maxTableDepth:  opts.MaxTableDepth,
		ignoreCase:     opts.IgnoreCase,
		skipChildrenFn: opts.SkipChildren,
		skipSelfFn:     opts.SkipSelf,
		compareFn:      opts.CompareNodes,
		diffTextFn:     opts.DiffText,
	}
	if c.addedClass == "" {
		c.addedClass = DefaultAddedClass
	}
	if c.removedClass == "" {
		c.removedClass = DefaultRemovedClass
	}
	if c.modifiedClass == "" {
		c.modifiedClass = DefaultModifiedClass
	}
	if c.maxTableDepth <= 0 {
		c.maxTableDepth = DefaultMaxTableDepth
	}
	return c
}

func (c *config) skipChildren(n *dom.Node) bool {
	switch n.Type {
	case dom.ElementNode:
		if c.skipChildrenFn != nil {
			if v, ok := c.skipChildrenFn(n); ok {
				return v
			}
		}
		return skipChildrenTags[n.Data]
	case dom.FragmentNode, dom.DocumentNode:
		if c.skipChildrenFn != nil {
			if v, ok := c.skipChildrenFn(n); ok {
				return v
			}
		}
		return false
	case dom.TextNode, dom.CommentNode:
		return true
	}
	return true
}

func (c *config) skipSelf(n *dom.Node) bool {
	switch n.Type {
	case dom.TextNode:
		if c.skipSelfFn != nil {
			if v, ok := c.skipSelfFn(n); ok {
				return v
			}
		}
		return false
	case dom.ElementNode:
		if c.skipSelfFn != nil {
			if v, ok := c.skipSelfFn(n); ok {
				return v
			}
		}
		return skipSelfTags[n.Data]
	case dom.CommentNode, dom.FragmentNode, dom.DocumentNode:
		return true
	}
	return true
}

func (c *config) compareNodes(a, b *dom.Node) CompareResult {
	if c.compareFn != nil {
		if v, ok := c.compareFn(a, b); ok {
			return v
		}
	}
	// The content of a node with skipped children is never diffed, so it is part of the node's identity.
	deep := a.Type == dom.ElementNode && (c.skipChildren(a) || c.skipChildren(b))
	if dom.Equal(a, b, deep) {
		return Identical
	}
	return Different
}

func (c *config) diffText(oldText, newText string) []diff.DiffOp {
	if c.diffTextFn == nil {
		return diff.DiffText(oldText, newText, &diff.Options{IgnoreCase: c.ignoreCase}).Ops
	}
	ops := c.diffTextFn(oldText, newText)
	if err := diff.Check(oldText, newText, ops, &diff.Options{IgnoreCase: c.ignoreCase}); err != nil {
		panic(invariant("DiffText returned an invalid diff: %v", err))
	}
	return ops
}

func (c *config) walkOptions() dom.WalkOptions {
	return dom.WalkOptions{SkipSelf: c.skipSelf, SkipChildren: c.skipChildren}
}

// isFormatting reports whether n is a formatting element: an element that is skipped itself but whose children are walked.
func (c *config) isFormatting(n *dom.Node) bool {
	return n.Type == dom.ElementNode && c.skipSelf(n)
}
