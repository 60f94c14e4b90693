package diff

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffText diffs oldText to newText by characters, returning a Diff.
//
// Policy: a character diff followed by a semantic cleanup, so that short coincidental equalities inside a larger change are folded into the change (ex: "one"
// -> "two" is a delete of "one" and an insert of "two", not an edit around a shared "o"). Node markers are then shifted by CleanUpNodeMarkers.
func DiffText(oldText, newText string, opts *Options) Diff {
	dmp := diffmatchpatch.New()

	a, b := escapeInvalid(oldText), escapeInvalid(newText)
	if opts.ignoreCase() {
		a, b = foldCase(oldText), foldCase(newText)
	}
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ops := restoreText(diffs, oldText, newText, opts.ignoreCase())
	ops = CleanUpNodeMarkers(ops)

	diff := Diff{OldText: oldText, NewText: newText, Ops: ops}
	if err := diff.validate(opts.ignoreCase()); err != nil {
		panic(fmt.Errorf("DiffText: validate failed with %v", err))
	}
	return diff
}

// restoreText maps diffmatchpatch diffs computed on (possibly case folded) text back onto the original texts by rune counts. An equality whose original
// texts differ anyway becomes a delete and an insert.
func restoreText(diffs []diffmatchpatch.Diff, oldText, newText string, ignoreCase bool) []DiffOp {
	var ops []DiffOp
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		var o, nw string
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o, oldText = splitRunes(oldText, n)
			nw, newText = splitRunes(newText, n)
			if o == nw || ignoreCase && foldCase(o) == foldCase(nw) {
				ops = append(ops, DiffOp{Op: OpEqual, OldText: o, NewText: nw})
			} else {
				ops = append(ops, Delete(o), Insert(nw))
			}
		case diffmatchpatch.DiffDelete:
			o, oldText = splitRunes(oldText, n)
			ops = append(ops, Delete(o))
		case diffmatchpatch.DiffInsert:
			nw, newText = splitRunes(newText, n)
			ops = append(ops, Insert(nw))
		}
	}
	return merge(ops)
}

// splitRunes splits s after n runes. Invalid bytes count as one rune each, matching a []rune conversion, and are preserved byte for byte.
func splitRunes(s string, n int) (string, string) {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}

// foldCase lower-cases s rune by rune, so the result has the same rune count as s. Invalid bytes are kept distinct (see escapeInvalid).
func foldCase(s string) string {
	return strings.Map(unicode.ToLower, escapeInvalid(s))
}

// invalidByteBase maps invalid UTF-8 bytes (0x80-0xFF) onto U+10FF80-U+10FFFF, the end of Supplementary Private Use Area-B.
const invalidByteBase = 0x10FF00

// escapeInvalid replaces each byte of s that is not part of valid UTF-8 with its own rune, so that different invalid bytes stay different and every invalid
// byte still counts as one rune. diffmatchpatch would otherwise turn them all into U+FFFD.
func escapeInvalid(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(rune(invalidByteBase + int(s[i])))
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
