package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/visualdiff"
)

// TermOptions control Terminal.
type TermOptions struct {
	Width int  // Wrap lines to this many columns. 0 disables wrapping.
	Color bool // Emit ANSI colors. Without colors, markers are not visible except through content.

	// Marker classes, as passed to visualdiff.Diff. Empty means the visualdiff default.
	AddedClass    string
	RemovedClass  string
	ModifiedClass string
}

type style int

const (
	stylePlain style = iota
	styleRemoved
	styleAdded
	styleModified
)

// span is a run of text in one style.
type span struct {
	text  string
	style style
}

// blockTags start and end a line.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "table": true, "tr": true, "thead": true, "tbody": true, "tfoot": true,
	"caption": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true, "pre": true,
	"figure": true, "section": true, "article": true, "header": true, "footer": true, "hr": true, "dl": true, "dt": true, "dd": true,
}

// Terminal writes a readable text rendition of a diff result to w: block elements on their own lines, removed content red and crossed out, added content green,
// modified content yellow.
func Terminal(w io.Writer, frag *dom.Node, opts TermOptions) error {
	t := &terminal{opts: opts}
	if t.opts.AddedClass == "" {
		t.opts.AddedClass = visualdiff.DefaultAddedClass
	}
	if t.opts.RemovedClass == "" {
		t.opts.RemovedClass = visualdiff.DefaultRemovedClass
	}
	if t.opts.ModifiedClass == "" {
		t.opts.ModifiedClass = visualdiff.DefaultModifiedClass
	}
	t.visit(frag, stylePlain)
	t.breakLine()

	var b strings.Builder
	for _, line := range t.lines {
		for _, wrapped := range wrap(line, opts.Width) {
			for _, s := range wrapped {
				b.WriteString(colorize(s, opts.Color))
			}
			b.WriteString("\n")
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("render terminal: %w", err)
	}
	return nil
}

// TerminalWidth returns the column count of f if it is a terminal.
func TerminalWidth(f *os.File) (int, bool) {
	if f == nil {
		return 0, false
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

type terminal struct {
	opts  TermOptions
	lines [][]span
	cur   []span
}

func (t *terminal) visit(n *dom.Node, st style) {
	switch n.Type {
	case dom.TextNode:
		t.write(collapseSpace(n.Data), st)
		return
	case dom.CommentNode:
		return
	case dom.ElementNode:
		st = t.styleOf(n, st)
	}

	block := n.Type == dom.ElementNode && blockTags[n.Data]
	if block {
		t.breakLine()
	}
	switch {
	case n.IsElement("li"):
		t.write("- ", st)
	case n.IsElement("td"), n.IsElement("th"):
		if n.PrevSibling != nil {
			t.write(" | ", stylePlain)
		}
	case n.IsElement("br"):
		t.breakLine()
	case n.IsElement("img"):
		t.write(imageLabel(n), st)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.visit(c, st)
	}
	if block {
		t.breakLine()
	}
}

func (t *terminal) styleOf(n *dom.Node, inherited style) style {
	switch {
	case n.HasClass(t.opts.RemovedClass):
		return styleRemoved
	case n.HasClass(t.opts.AddedClass):
		return styleAdded
	case n.HasClass(t.opts.ModifiedClass):
		return styleModified
	}
	return inherited
}

func (t *terminal) write(text string, st style) {
	if text == "" {
		return
	}
	// Spaces at the start of a line are layout.
	if len(t.cur) == 0 {
		text = strings.TrimLeft(text, " ")
		if text == "" {
			return
		}
	}
	if last := len(t.cur) - 1; last >= 0 && t.cur[last].style == st {
		t.cur[last].text += text
		return
	}
	t.cur = append(t.cur, span{text: text, style: st})
}

func (t *terminal) breakLine() {
	if len(t.cur) == 0 {
		return
	}
	trimLineEnd(t.cur)
	t.lines = append(t.lines, t.cur)
	t.cur = nil
}

func imageLabel(n *dom.Node) string {
	if alt, ok := n.Attribute("alt"); ok && alt != "" {
		return "[image: " + alt + "]"
	}
	if src, ok := n.Attribute("src"); ok {
		return "[image: " + src + "]"
	}
	return "[image]"
}

// collapseSpace replaces each run of whitespace with one space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// wrap breaks line into lines at most width columns wide, breaking after spaces. Words wider than width get a line of their own.
func wrap(line []span, width int) [][]span {
	if width <= 0 {
		return [][]span{line}
	}
	var out [][]span
	var cur []span
	col := 0
	for _, s := range line {
		for _, word := range strings.SplitAfter(s.text, " ") {
			if word == "" {
				continue
			}
			w := runewidth.StringWidth(strings.TrimRight(word, " "))
			if col > 0 && col+w > width {
				trimLineEnd(cur)
				out = append(out, cur)
				cur, col = nil, 0
			}
			if col == 0 {
				word = strings.TrimLeft(word, " ")
				if word == "" {
					continue
				}
			}
			if last := len(cur) - 1; last >= 0 && cur[last].style == s.style {
				cur[last].text += word
			} else {
				cur = append(cur, span{text: word, style: s.style})
			}
			col += runewidth.StringWidth(word)
		}
	}
	if len(cur) > 0 {
		trimLineEnd(cur)
		out = append(out, cur)
	}
	return out
}

func trimLineEnd(line []span) {
	if len(line) > 0 {
		line[len(line)-1].text = strings.TrimRight(line[len(line)-1].text, " ")
	}
}

func colorFor(st style) *color.Color {
	switch st {
	case styleRemoved:
		return color.New(color.FgRed, color.CrossedOut)
	case styleAdded:
		return color.New(color.FgGreen)
	case styleModified:
		return color.New(color.FgYellow)
	}
	return nil
}

func colorize(s span, enabled bool) string {
	c := colorFor(s.style)
	if c == nil || !enabled || s.text == "" {
		return s.text
	}
	c.EnableColor()
	return c.Sprint(s.text)
}
