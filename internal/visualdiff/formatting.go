package visualdiff

import "github.com/codalotl/visualdiff/internal/dom"

// applyFormatting wraps every recorded text node in clones of its formatting elements, outermost first. A text node joins its previous sibling instead when that
// sibling is equal to the formatting element, so runs of equally formatted text share one wrapper.
func (r *reconciler) applyFormatting() {
	for _, text := range r.formattingOrder {
		chain, ok := r.formatting[text]
		if !ok || text.Parent == nil {
			continue
		}
		for _, f := range chain {
			if prev := text.PrevSibling; prev != nil && dom.Equal(prev, f, false) {
				prev.AppendChild(text)
				continue
			}
			w := f.Clone(false)
			text.Parent.InsertBefore(w, text)
			w.AppendChild(text)
		}
	}
}
