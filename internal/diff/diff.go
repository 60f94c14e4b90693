package diff

import (
	"strings"
	"unicode/utf8"
)

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Diff is a diff from old text to new text.
//
// Invariants:
//   - concat(Ops.OldText) == OldText
//   - concat(Ops.NewText) == NewText
type Diff struct {
	OldText string   // Entire original text.
	NewText string   // Entire revised text.
	Ops     []DiffOp // Ordered ops that cover the whole diff and reconstruct OldText/NewText.
}

// DiffOp is a contiguous run of text with a single operation.
//
// Operations:
//   - OpEqual: OldText and NewText are non-empty and have the same rune length
//   - OpInsert: OldText=="" && NewText!=""
//   - OpDelete: OldText!="" && NewText==""
type DiffOp struct {
	Op      Op
	OldText string
	NewText string
}

// Equal returns an OpEqual op for text present on both sides.
func Equal(text string) DiffOp { return DiffOp{Op: OpEqual, OldText: text, NewText: text} }

// Insert returns an OpInsert op.
func Insert(text string) DiffOp { return DiffOp{Op: OpInsert, NewText: text} }

// Delete returns an OpDelete op.
func Delete(text string) DiffOp { return DiffOp{Op: OpDelete, OldText: text} }

// Text returns the text op covers: NewText for equal and insert ops, OldText for deletes.
func (o DiffOp) Text() string {
	if o.Op == OpDelete {
		return o.OldText
	}
	return o.NewText
}

// Len is the length of op in runes.
func (o DiffOp) Len() int {
	return utf8.RuneCountInString(o.Text())
}

// Options tune DiffText and DiffWords. A nil *Options is the zero value.
type Options struct {
	// IgnoreCase compares text after simple per-rune lower casing. Equal ops keep the original text of each side.
	IgnoreCase bool
}

func (o *Options) ignoreCase() bool {
	return o != nil && o.IgnoreCase
}

// Func computes ops from oldText to newText. Implementations must honor the Diff invariants.
type Func func(oldText, newText string) []DiffOp

// String renders ops compactly for debugging and tests: "=abc" for equal, "+abc" for insert, "-abc" for delete, joined by "|".
func String(ops []DiffOp) string {
	var parts []string
	for _, op := range ops {
		switch op.Op {
		case OpEqual:
			parts = append(parts, "="+op.NewText)
		case OpInsert:
			parts = append(parts, "+"+op.NewText)
		case OpDelete:
			parts = append(parts, "-"+op.OldText)
		}
	}
	return strings.Join(parts, "|")
}

// merge concatenates adjacent ops with the same Op and drops empty ops.
func merge(ops []DiffOp) []DiffOp {
	out := make([]DiffOp, 0, len(ops))
	for _, op := range ops {
		if op.OldText == "" && op.NewText == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Op == op.Op {
			out[n-1].OldText += op.OldText
			out[n-1].NewText += op.NewText
			continue
		}
		out = append(out, op)
	}
	return out
}
