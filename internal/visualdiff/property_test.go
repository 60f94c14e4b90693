package visualdiff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/codalotl/visualdiff/internal/dom"
)

var (
	words       = []string{"alpha", "beta", "gamma", "delta", "x", "yz", "héllo", "日本"}
	formatTags  = []string{"strong", "em", "code", "span"}
	imageSource = []string{"a.png", "b.png"}
)

// genInline draws inline content: text, formatting and (outside formatting) images. Adjacent items never share an outer formatting tag, so
// rendering the content back after a diff reproduces it exactly.
func genInline(t *rapid.T, depth int) string {
	var b strings.Builder
	n := rapid.IntRange(0, 4).Draw(t, "inlineCount")
	lastTag := ""
	for range n {
		kind := rapid.IntRange(0, 2).Draw(t, "inlineKind")
		switch {
		case kind == 1 && depth < 2:
			tag := rapid.SampledFrom(formatTags).Draw(t, "formatTag")
			if tag == lastTag {
				continue
			}
			inner := rapid.SampledFrom(words).Draw(t, "formatWord")
			if depth < 1 && rapid.Bool().Draw(t, "nested") {
				inner += genInline(t, depth+1)
			}
			b.WriteString("<" + tag + ">" + inner + "</" + tag + ">")
			lastTag = tag
		case kind == 2 && depth == 0:
			b.WriteString(`<img src="` + rapid.SampledFrom(imageSource).Draw(t, "src") + `">`)
			lastTag = ""
		default:
			b.WriteString(rapid.SampledFrom(words).Draw(t, "word") + " ")
			lastTag = ""
		}
	}
	return b.String()
}

// genHTML draws a fragment of paragraphs, divs, tables and lists.
func genHTML(t *rapid.T) string {
	var b strings.Builder
	n := rapid.IntRange(0, 4).Draw(t, "blockCount")
	for range n {
		switch rapid.IntRange(0, 3).Draw(t, "blockKind") {
		case 0:
			b.WriteString("<p>" + genInline(t, 0) + "</p>")
		case 1:
			b.WriteString("<div>" + genInline(t, 0) + "</div>")
		case 2:
			b.WriteString(genTable(t))
		default:
			b.WriteString("<ul>")
			for range rapid.IntRange(1, 3).Draw(t, "itemCount") {
				b.WriteString("<li>" + genInline(t, 0) + "</li>")
			}
			b.WriteString("</ul>")
		}
	}
	return b.String()
}

// genTable draws a table with an optional header row and one or more bodies. All rows have the same number of cells.
func genTable(t *rapid.T) string {
	cols := rapid.IntRange(1, 3).Draw(t, "columns")
	row := func(cell string) string {
		s := "<tr>"
		for range cols {
			s += "<" + cell + ">" + genInline(t, 0) + "</" + cell + ">"
		}
		return s + "</tr>"
	}

	var b strings.Builder
	b.WriteString("<table>")
	if rapid.Bool().Draw(t, "thead") {
		b.WriteString("<thead>" + row("th") + "</thead>")
	}
	for range rapid.IntRange(1, 2).Draw(t, "bodyCount") {
		b.WriteString("<tbody>")
		for range rapid.IntRange(1, 3).Draw(t, "rowCount") {
			b.WriteString(row(rapid.SampledFrom([]string{"td", "td", "th"}).Draw(t, "cell")))
		}
		b.WriteString("</tbody>")
	}
	b.WriteString("</table>")
	return b.String()
}

func TestDiff_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldHTML := genHTML(t)
		newHTML := genHTML(t)
		oldRoot := dom.MustParseHTML(oldHTML)
		newRoot := dom.MustParseHTML(newHTML)
		oldBefore := snap(oldRoot)
		newBefore := snap(newRoot)

		out := Diff(oldRoot, newRoot, nil)

		if d := cmp.Diff(oldBefore, snap(oldRoot)); d != "" {
			t.Fatalf("old tree mutated (-before +after):\n%s", d)
		}
		if d := cmp.Diff(newBefore, snap(newRoot)); d != "" {
			t.Fatalf("new tree mutated (-before +after):\n%s", d)
		}

		// Dropping removed content leaves the new text; dropping added content leaves the old text.
		if got, want := textWithout(out, DefaultRemovedClass), newRoot.TextContent(); got != want {
			t.Fatalf("text without removed content = %q, want %q", got, want)
		}
		if got, want := textWithout(out, DefaultAddedClass), oldRoot.TextContent(); got != want {
			t.Fatalf("text without added content = %q, want %q", got, want)
		}

		// Realigned tables keep every row as wide as the others.
		dom.NewWalker(out, dom.WalkOptions{}).ForEach(func(n *dom.Node) {
			if !n.IsElement("table") || !validTable(n, false) {
				return
			}
			rows := tableRows(n)
			for _, r := range rows[1:] {
				if len(rowCells(r)) != len(rowCells(rows[0])) {
					t.Fatalf("uneven table rows in %s", dom.RenderString(n))
				}
			}
		})
	})
}

func TestDiff_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := dom.MustParseHTML(genHTML(t))
		want := dom.RenderString(root)
		got := dom.RenderString(Diff(root, root.Clone(true), nil))
		if got != want {
			t.Fatalf("diff of identical trees:\n got %s\nwant %s", got, want)
		}
	})
}
