// Package docload reads documents from HTML or Markdown into dom fragments ready to be diffed.
package docload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/simplelogger"
)

// Stdin is the path Load reads from standard input.
const Stdin = "-"

// Format is the syntax of a document.
type Format int

const (
	FormatHTML Format = iota
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	}
	return "unknown"
}

// FormatOf guesses the format of path from its extension. Anything not Markdown is HTML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatHTML
}

// ParseHTML parses r as the contents of a <body>. Whitespace-only text inside table and list structure is removed.
func ParseHTML(r io.Reader) (*dom.Node, error) {
	frag, err := dom.ParseHTML(r)
	if err != nil {
		return nil, err
	}
	normalize(frag, false)
	return frag, nil
}

// ParseMarkdown renders src (GitHub Flavored Markdown) to HTML and parses the result. Besides the normalization done by ParseHTML, the line breaks goldmark
// emits between top-level blocks are removed.
func ParseMarkdown(src []byte) (*dom.Node, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	frag, err := dom.ParseHTML(&buf)
	if err != nil {
		return nil, err
	}
	normalize(frag, true)
	return frag, nil
}

// Parse parses src in the given format.
func Parse(src []byte, format Format) (*dom.Node, error) {
	if format == FormatMarkdown {
		return ParseMarkdown(src)
	}
	return ParseHTML(bytes.NewReader(src))
}

// Load reads and parses the document at path. Path Stdin reads os.Stdin as HTML.
func Load(path string) (*dom.Node, error) {
	return LoadFrom(path, os.Stdin)
}

// LoadFrom is Load with an explicit reader for Stdin.
func LoadFrom(path string, stdin io.Reader) (*dom.Node, error) {
	var src []byte
	var err error
	if path == Stdin {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	format := FormatOf(path)
	simplelogger.Log("docload: %s: %d bytes as %v", path, len(src), format)
	frag, err := Parse(src, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return frag, nil
}

// structureTags are elements whose whitespace-only text children are layout, not content.
var structureTags = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
	"ul": true, "ol": true,
}

// normalize removes whitespace-only text children of structure elements, and of root itself if topLevel.
func normalize(root *dom.Node, topLevel bool) {
	var visit func(n *dom.Node, strip bool)
	visit = func(n *dom.Node, strip bool) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			switch {
			case c.Type == dom.TextNode && strip && strings.TrimSpace(c.Data) == "":
				n.RemoveChild(c)
			case c.Type == dom.ElementNode:
				visit(c, structureTags[c.Data])
			}
			c = next
		}
	}
	visit(root, topLevel)
}
