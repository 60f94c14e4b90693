package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Check validates that ops is a correct diff from oldText to newText, as produced by a Func. Equal ops may differ by letter case only when opts.IgnoreCase is set.
func Check(oldText, newText string, ops []DiffOp, opts *Options) error {
	return Diff{OldText: oldText, NewText: newText, Ops: ops}.validate(opts.ignoreCase())
}

// validate checks the Diff invariants and returns an error on the first violation.
func (d Diff) validate(ignoreCase bool) error {
	var oldConcat, newConcat strings.Builder
	for i, op := range d.Ops {
		switch op.Op {
		case OpEqual:
			if op.OldText == "" || op.NewText == "" {
				return fmt.Errorf("op[%d]: OpEqual requires OldText!=\"\" and NewText!=\"\"", i)
			}
			if ignoreCase {
				if foldCase(op.OldText) != foldCase(op.NewText) || utf8.RuneCountInString(op.OldText) != utf8.RuneCountInString(op.NewText) {
					return fmt.Errorf("op[%d]: OpEqual requires OldText and NewText to be equal ignoring case", i)
				}
			} else if op.OldText != op.NewText {
				return fmt.Errorf("op[%d]: OpEqual requires OldText==NewText", i)
			}
		case OpInsert:
			if op.OldText != "" || op.NewText == "" {
				return fmt.Errorf("op[%d]: OpInsert requires OldText==\"\" and NewText!=\"\"", i)
			}
		case OpDelete:
			if op.OldText == "" || op.NewText != "" {
				return fmt.Errorf("op[%d]: OpDelete requires OldText!=\"\" and NewText==\"\"", i)
			}
		default:
			return fmt.Errorf("op[%d]: unknown Op %d", i, op.Op)
		}
		if i > 0 && d.Ops[i-1].Op == op.Op {
			return fmt.Errorf("op[%d]: adjacent ops share Op %v", i, op.Op)
		}

		oldConcat.WriteString(op.OldText)
		newConcat.WriteString(op.NewText)
	}

	if d.OldText != oldConcat.String() {
		return fmt.Errorf("diff: ops do not reconstruct OldText")
	}
	if d.NewText != newConcat.String() {
		return fmt.Errorf("diff: ops do not reconstruct NewText")
	}
	return nil
}
