// Package visualdiff computes a visual diff of two document trees: a third tree in which unchanged content appears once and inserted, removed and reformatted
// content is explicitly marked, ready to be rendered for a reader.
//
// How it works:
//  1. Both trees are serialized to strings. Text contributes its characters; every structural node contributes one marker rune derived from its tag name.
//     Formatting elements (strong, em, ...) contribute nothing, and the content of component elements (img, video, ...) is not serialized.
//  2. The strings are diffed with package diff.
//  3. The diff is replayed against both trees in lockstep, writing common nodes once and old-only/new-only nodes separately. Formatting is recorded per text
//     node and compared, so a text whose formatting changed is marked as modified.
//  4. Removed nodes are moved before added neighbors; common tables get their columns realigned (or are shown as a whole old table plus a whole new table
//     when their shape is not supported); everything is marked; formatting is reapplied around text.
//
// The result is a best-effort display, not a minimal edit script.
package visualdiff
