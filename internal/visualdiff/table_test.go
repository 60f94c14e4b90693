package visualdiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/simplelogger"
)

func TestDiff_Tables(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{
			name: "add cell",
			old:  "<table><tbody><tr><td>one</td><td>two</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>one</td><td>two</td><td>three</td></tr></tbody></table>",
			want: `<table><tbody><tr><td>one</td><td>two</td><td class="vdd-added">three</td></tr></tbody></table>`,
		},
		{
			name: "td becomes th",
			old:  "<table><tbody><tr><td>one</td></tr></tbody></table>",
			new:  "<table><tbody><tr><th>one</th></tr></tbody></table>",
			want: `<table><tbody><tr><th class="vdd-modified">one</th></tr></tbody></table>`,
		},
		{
			name: "add row",
			old:  "<table><tbody><tr><td>one</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>one</td></tr><tr><td>two</td></tr></tbody></table>",
			want: `<table><tbody><tr><td>one</td></tr><tr class="vdd-added"><td>two</td></tr></tbody></table>`,
		},
		{
			name: "values swapped between cells",
			old:  "<table><tbody><tr><td>one</td><td>two</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>two</td><td>one</td></tr></tbody></table>",
			want: `<table><tbody><tr>` +
				`<td><del class="vdd-removed">one</del><ins class="vdd-added">two</ins></td>` +
				`<td><del class="vdd-removed">two</del><ins class="vdd-added">one</ins></td>` +
				`</tr></tbody></table>`,
		},
		{
			name: "add column",
			old:  "<table><tbody><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>a</td><td>b</td><td>x</td></tr><tr><td>c</td><td>d</td><td>y</td></tr></tbody></table>",
			want: `<table><tbody>` +
				`<tr><td>a</td><td>b</td><td class="vdd-added">x</td></tr>` +
				`<tr><td>c</td><td>d</td><td class="vdd-added">y</td></tr>` +
				`</tbody></table>`,
		},
		{
			name: "remove column and add row",
			old:  "<table><tbody><tr><td>a</td><td>b</td><td>x</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></tbody></table>",
			want: `<table><tbody>` +
				`<tr><td>a</td><td>b</td><td class="vdd-removed">x</td></tr>` +
				`<tr class="vdd-added"><td>c</td><td>d</td><td class="vdd-removed"></td></tr>` +
				`</tbody></table>`,
		},
		{
			name: "colspan falls back to whole tables",
			old:  `<table><tbody><tr><td colspan="2">one</td></tr></tbody></table>`,
			new:  "<table><tbody><tr><td>one</td></tr></tbody></table>",
			want: `<table class="vdd-removed"><tbody><tr><td colspan="2">one</td></tr></tbody></table>` +
				`<table class="vdd-added"><tbody><tr><td>one</td></tr></tbody></table>`,
		},
		{
			name: "colspan in the new table falls back to whole tables",
			old:  "<table><tbody><tr><td>one</td></tr></tbody></table>",
			new:  `<table><tbody><tr><td colspan="2">one</td></tr></tbody></table>`,
			want: `<table class="vdd-removed"><tbody><tr><td>one</td></tr></tbody></table>` +
				`<table class="vdd-added"><tbody><tr><td colspan="2">one</td></tr></tbody></table>`,
		},
		{
			name: "header row moved into the body",
			old:  "<table><thead><tr><td>a</td></tr></thead><tbody><tr><td>b</td></tr></tbody></table>",
			new:  "<table><tbody><tr><td>a</td></tr><tr><td>b</td></tr></tbody></table>",
			want: `<table>` +
				`<thead class="vdd-removed"><tr><td>a</td></tr></thead>` +
				`<tbody class="vdd-removed"><tr><td>b</td></tr></tbody>` +
				`<tbody class="vdd-added"><tr><td>a</td></tr><tr><td>b</td></tr></tbody>` +
				`</table>`,
		},
		{
			name: "empty tbody falls back to whole tables",
			old:  "<table><tbody></tbody></table>",
			new:  "<table><tbody><tr><td>one</td></tr></tbody></table>",
			want: `<table class="vdd-removed"><tbody></tbody></table>` +
				`<table class="vdd-added"><tbody><tr><td>one</td></tr></tbody></table>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diffHTML(t, tt.old, tt.new, nil))
		})
	}
}

func TestDiff_TableDepthBound(t *testing.T) {
	oldRoot := dom.MustParseHTML("<table><tbody><tr><td>one</td></tr></tbody></table>")
	newRoot := dom.MustParseHTML("<table><tbody><tr><td>one</td><td>two</td></tr></tbody></table>")
	cfg := newConfig(&Options{MaxTableDepth: 2})

	// Within the bound, the table is realigned:
	out := diffNodes(oldRoot, newRoot, cfg, 1)
	assert.Equal(t, `<table><tbody><tr><td>one</td><td class="vdd-added">two</td></tr></tbody></table>`, dom.RenderString(out))

	// At the bound, it is replaced as a whole:
	out = diffNodes(oldRoot, newRoot, cfg, 2)
	assert.Equal(t,
		`<table class="vdd-removed"><tbody><tr><td>one</td></tr></tbody></table>`+
			`<table class="vdd-added"><tbody><tr><td>one</td><td>two</td></tr></tbody></table>`,
		dom.RenderString(out))
}

func TestDiff_TableFallbackIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualdiff.log")
	t.Setenv(simplelogger.EnvVar, path)

	diffHTML(t, "<table><tbody><tr><td>one</td></tr></tbody></table>", `<table><tbody><tr><td colspan="2">one</td></tr></tbody></table>`, nil)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "visualdiff: table shape not supported, replacing\n")
}

func TestValidTable(t *testing.T) {
	tests := []struct {
		name          string
		html          string
		valid         bool
		validUnsized  bool // Valid without column verification.
		buildManually func() *dom.Node
	}{
		{name: "simple", html: "<table><tbody><tr><td>1</td></tr></tbody></table>", valid: true, validUnsized: true},
		{name: "caption and sections", html: "<table><caption>c</caption><thead><tr><th>h</th></tr></thead><tbody><tr><td>1</td></tr></tbody><tfoot><tr><td>f</td></tr></tfoot></table>", valid: true, validUnsized: true},
		{name: "empty thead", html: "<table><thead></thead><tbody><tr><td>1</td></tr></tbody></table>", valid: true, validUnsized: true},
		{name: "no rows", html: "<table></table>"},
		{name: "empty tbody", html: "<table><tbody></tbody></table>"},
		{name: "empty row", html: "<table><tbody><tr></tr></tbody></table>"},
		{name: "colspan", html: `<table><tbody><tr><td colspan="2">1</td></tr></tbody></table>`},
		{name: "rowspan one", html: `<table><tbody><tr><td rowspan="1">1</td></tr></tbody></table>`, valid: true, validUnsized: true},
		{name: "caption after body", html: "<table><tbody><tr><td>1</td></tr></tbody><caption>c</caption></table>"},
		{name: "colgroup", html: "<table><colgroup></colgroup><tbody><tr><td>1</td></tr></tbody></table>"},
		{name: "uneven rows", html: "<table><tbody><tr><td>1</td></tr><tr><td>1</td><td>2</td></tr></tbody></table>", validUnsized: true},
		{
			name:         "bare rows",
			valid:        true,
			validUnsized: true,
			buildManually: func() *dom.Node {
				table := dom.NewElement("table")
				tr := dom.NewElement("tr")
				td := dom.NewElement("td")
				td.AppendChild(dom.NewText("1"))
				tr.AppendChild(td)
				table.AppendChild(tr)
				return table
			},
		},
		{
			name: "comment in row",
			buildManually: func() *dom.Node {
				table := dom.MustParseHTML("<table><tbody><tr><td>1</td></tr></tbody></table>").FirstChild
				tr := table.FirstChild.FirstChild
				tr.AppendChild(dom.NewComment("c"))
				return table
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var table *dom.Node
			if tt.buildManually != nil {
				table = tt.buildManually()
			} else {
				table = dom.MustParseHTML(tt.html).FirstChild
			}
			assert.Equal(t, tt.valid, validTable(table, true))
			assert.Equal(t, tt.validUnsized, validTable(table, false))
		})
	}
}
