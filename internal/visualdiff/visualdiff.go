package visualdiff

import (
	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/simplelogger"
)

// Diff returns a new fragment showing the differences between oldRoot and newRoot. Content present in both is written once; removed content is marked with
// opts.RemovedClass, added content with opts.AddedClass, and content whose formatting or attributes changed with opts.ModifiedClass.
//
// Elements are marked by adding the class to their class attribute. Text is marked by wrapping it in <del> (removed) or <ins> (added, modified) carrying the
// class.
//
// Neither input is modified, and no input node is reachable from the result. Diff panics with an error wrapping ErrInvariant if its internal state becomes
// inconsistent, which indicates a bug or an opts.DiffText that violates its contract.
func Diff(oldRoot, newRoot *dom.Node, opts *Options) *dom.Node {
	return diffNodes(oldRoot, newRoot, newConfig(opts), 0)
}

func diffNodes(oldRoot, newRoot *dom.Node, cfg *config, depth int) *dom.Node {
	r := newReconciler(oldRoot, newRoot, cfg, depth)
	if simplelogger.Enabled() {
		simplelogger.Log("visualdiff: depth %d: %d ops", depth, len(r.ops))
	}
	r.run()
	r.moveRemovedBeforeAdded()
	r.realignTables()
	r.markUp()
	r.applyFormatting()
	if simplelogger.Enabled() {
		simplelogger.Log("visualdiff: depth %d: %d removed, %d added, %d modified", depth, r.removed.len(), r.added.len(), r.modified.len())
	}
	return r.root
}
