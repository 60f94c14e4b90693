package diff

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffWords diffs oldText to newText by Unicode words (UAX #29 word boundaries), returning a Diff. Whitespace and punctuation runs are their own tokens, and every
// node marker is a token by itself.
//
// Whole words are never split: a changed word is deleted and re-inserted as a unit.
func DiffWords(oldText, newText string, opts *Options) Diff {
	oldTokens := tokenize(oldText)
	newTokens := tokenize(newText)

	// Map each distinct token to a rune, like DiffLinesToRunes does for lines:
	index := map[string]int{}
	encode := func(tokens []string) []rune {
		out := make([]rune, len(tokens))
		for i, tok := range tokens {
			key := tok
			if opts.ignoreCase() {
				key = foldCase(tok)
			}
			idx, ok := index[key]
			if !ok {
				idx = len(index)
				index[key] = idx
			}
			out[i] = indexRune(idx)
		}
		return out
	}
	rOld := encode(oldTokens)
	rNew := encode(newTokens)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(rOld, rNew, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var ops []DiffOp
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, DiffOp{Op: OpEqual, OldText: strings.Join(oldTokens[:n], ""), NewText: strings.Join(newTokens[:n], "")})
			oldTokens, newTokens = oldTokens[n:], newTokens[n:]
		case diffmatchpatch.DiffDelete:
			ops = append(ops, Delete(strings.Join(oldTokens[:n], "")))
			oldTokens = oldTokens[n:]
		case diffmatchpatch.DiffInsert:
			ops = append(ops, Insert(strings.Join(newTokens[:n], "")))
			newTokens = newTokens[n:]
		}
	}
	ops = CleanUpNodeMarkers(merge(ops))

	diff := Diff{OldText: oldText, NewText: newText, Ops: ops}
	if err := diff.validate(opts.ignoreCase()); err != nil {
		panic(fmt.Errorf("DiffWords: validate failed with %v", err))
	}
	return diff
}

// indexRune maps a token index to a rune, stepping over the surrogate range, which does not survive a round trip through a Go string.
func indexRune(i int) rune {
	if i >= 0xD800 {
		i += 0x800
	}
	return rune(i)
}

// tokenize splits s into UAX #29 words. Node markers are split out into single-rune tokens.
func tokenize(s string) []string {
	var out []string
	seg := words.FromString(s)
	for seg.Next() {
		out = append(out, splitSentinels(seg.Value())...)
	}
	return out
}

func splitSentinels(tok string) []string {
	if !strings.ContainsFunc(tok, IsSentinel) {
		return []string{tok}
	}
	var out []string
	start := 0
	for i, r := range tok {
		if !IsSentinel(r) {
			continue
		}
		if start < i {
			out = append(out, tok[start:i])
		}
		out = append(out, string(r))
		start = i + len(string(r))
	}
	if start < len(tok) {
		out = append(out, tok[start:])
	}
	return out
}
