// Package diff computes text diffs between an "old" and a "new" string as an ordered list of Equal/Insert/Delete operations.
//
// Representation: A Diff holds the complete OldText/NewText and an ordered slice of ops that, when concatenated, reconstruct both sides. Each op has an Op:
//   - OpEqual: unchanged region (OldText and NewText have the same length in runes; they are byte-equal unless the diff ignored case)
//   - OpInsert: text present only in the new side (OldText == "")
//   - OpDelete: text present only in the old side (NewText == "")
//
// Invariants:
//   - concat(ops.OldText) == Diff.OldText
//   - concat(ops.NewText) == Diff.NewText
//   - No op is empty.
//   - Adjacent ops never share the same Op.
//
// Granularity: DiffText diffs by characters followed by a semantic cleanup (changes are grouped into word-ish chunks); DiffWords diffs by Unicode words. Both
// are policy choices and may evolve. Consumers should rely on the invariants above rather than any particular chunking.
//
// Node markers: Callers may embed characters of the Unicode Private Use Area (see IsSentinel) as stand-ins for tree nodes. Both diff functions shift a changed
// run that ends in the same marker as the preceding unchanged text so that the run starts with that marker instead (see CleanUpNodeMarkers). This makes an
// inserted or deleted node start at the node's own marker.
//
// Getting a diff:
//
//	d := diff.DiffText(oldText, newText, nil)
//	for _, op := range d.Ops { ... }
package diff
