package render

import (
	"fmt"
	"io"

	"github.com/codalotl/visualdiff/internal/dom"
)

// HTML writes frag as HTML followed by a newline.
func HTML(w io.Writer, frag *dom.Node) error {
	if err := dom.Render(w, frag); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
