package diff

import "unicode/utf8"

// Node markers are drawn from the Basic Multilingual Plane Private Use Area.
const (
	SentinelFirst rune = '\uE000'
	SentinelLast  rune = '\uF8FF'
)

// SentinelCount is the number of distinct node markers.
const SentinelCount = int(SentinelLast-SentinelFirst) + 1

// IsSentinel reports whether r is in the node marker range.
func IsSentinel(r rune) bool {
	return r >= SentinelFirst && r <= SentinelLast
}

// CleanUpNodeMarkers shifts node markers across change boundaries.
//
// For every Equal, Insert|Delete, Equal triple where the first Equal and the changed op end in the same marker, the marker is moved from the end of the first
// Equal to the front of the changed op, and the changed op's own trailing marker moves to the front of the following Equal. The shift repeats while the
// condition holds. An Equal that becomes empty is dropped. Markers of different values are never crossed.
//
// Ex: writing <p> for the marker of a paragraph, "=A<p>|+x<p>|=y" becomes "=A|+<p>x|=<p>y": the inserted paragraph now starts at its own marker.
func CleanUpNodeMarkers(ops []DiffOp) []DiffOp {
	ops = append([]DiffOp(nil), ops...)
	for i := 0; i+2 < len(ops); {
		eq, changed, next := &ops[i], &ops[i+1], &ops[i+2]
		if eq.Op != OpEqual || changed.Op == OpEqual || next.Op != OpEqual {
			i++
			continue
		}
		marker, ok := lastRune(eq.NewText)
		if !ok || !IsSentinel(marker) {
			i++
			continue
		}
		if r, _ := lastRune(eq.OldText); r != marker {
			i++
			continue
		}
		if r, _ := lastRune(changed.Text()); r != marker {
			i++
			continue
		}

		m := string(marker)
		eq.OldText = eq.OldText[:len(eq.OldText)-len(m)]
		eq.NewText = eq.NewText[:len(eq.NewText)-len(m)]
		if changed.Op == OpInsert {
			changed.NewText = m + changed.NewText[:len(changed.NewText)-len(m)]
		} else {
			changed.OldText = m + changed.OldText[:len(changed.OldText)-len(m)]
		}
		next.OldText = m + next.OldText
		next.NewText = m + next.NewText

		if eq.NewText == "" {
			ops = append(ops[:i], ops[i+1:]...)
			if i > 0 {
				i--
			}
		}
	}
	return merge(ops)
}

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}
