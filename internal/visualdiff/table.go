package visualdiff

import (
	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/simplelogger"
)

// realignTables fixes the column structure of every table that was written as common.
func (r *reconciler) realignTables() {
	for _, t := range r.equalTables {
		// Tables inside a rebuilt row or a replaced table are gone from the output.
		if !r.root.Contains(t.out) {
			continue
		}
		r.realignTable(t)
	}
}

func (r *reconciler) realignTable(t tablePair) {
	switch {
	case r.depth >= r.cfg.maxTableDepth:
		simplelogger.Log("visualdiff: table nested %d deep, replacing", r.depth)
		r.replaceTable(t)
		return
	case !validTable(t.old, true) || !validTable(t.new, true) || !validTable(t.out, false):
		simplelogger.Log("visualdiff: table shape not supported, replacing")
		r.replaceTable(t)
		return
	}

	columns := r.columns(t)
	for _, row := range tableRows(t.out) {
		switch r.rowState(row, t.out) {
		case 1:
			r.padRow(row, columns, -1, r.removed)
		case -1:
			r.padRow(row, columns, 1, r.added)
		default:
			pair, ok := r.equalRows[row]
			if ok && !r.rowMatches(row, columns) {
				r.rebuildRow(row, pair, columns)
			}
		}
	}
}

// replaceTable swaps an output table for the whole old table (removed) followed by the whole new table (added).
func (r *reconciler) replaceTable(t tablePair) {
	r.forget(t.out, true)
	oldTable := t.old.Clone(true)
	newTable := t.new.Clone(true)
	parent := t.out.Parent
	parent.InsertBefore(oldTable, t.out)
	parent.InsertBefore(newTable, t.out)
	parent.RemoveChild(t.out)
	r.removed.add(oldTable)
	r.added.add(newTable)
}

// columns derives the column vector of a table: per column, -1 if it exists only in the old table, +1 if only in the new table, 0 if in both.
func (r *reconciler) columns(t tablePair) []int {
	var outRow *dom.Node
	var pair rowPair
	for _, row := range tableRows(t.out) {
		if p, ok := r.equalRows[row]; ok {
			outRow, pair = row, p
			break
		}
	}
	if outRow == nil {
		// A common table can have no common row: when a section changes (ex: thead replaced by tbody), every row lands in a removed or an added section.
		// Both sources are valid, so each has a first row.
		pair = rowPair{old: tableRows(t.old)[0], new: tableRows(t.new)[0]}
	}

	oldCells := rowCells(pair.old)
	newCells := rowCells(pair.new)
	maxCount := max(len(oldCells), len(newCells))
	minCount := min(len(oldCells), len(newCells))

	if outRow != nil {
		if cells := rowCells(outRow); len(cells) == maxCount {
			columns := make([]int, len(cells))
			for i, c := range cells {
				columns[i] = r.cellState(c)
			}
			return columns
		}
	}

	// Assume the columns that differ in count sit right after the longest run of equal leading cells.
	prefix := 0
	for prefix < minCount && dom.Equal(oldCells[prefix], newCells[prefix], true) {
		prefix++
	}
	sign := 1
	if len(oldCells) > len(newCells) {
		sign = -1
	}
	columns := make([]int, 0, maxCount)
	for range prefix {
		columns = append(columns, 0)
	}
	for range maxCount - minCount {
		columns = append(columns, sign)
	}
	for range minCount - prefix {
		columns = append(columns, 0)
	}
	return columns
}

func (r *reconciler) cellState(n *dom.Node) int {
	switch {
	case r.added.has(n):
		return 1
	case r.removed.has(n):
		return -1
	}
	return 0
}

// rowState is +1 if row is inside an added subtree of table, -1 if inside a removed one, 0 otherwise.
func (r *reconciler) rowState(row, table *dom.Node) int {
	for n := row; n != nil && n != table; n = n.Parent {
		if s := r.cellState(n); s != 0 {
			return s
		}
	}
	return 0
}

// padRow inserts an empty cell at every column whose state is want, recording each filler in set.
func (r *reconciler) padRow(row *dom.Node, columns []int, want int, set *nodeSet) {
	cell := row.FirstChild
	for _, c := range columns {
		if c == want {
			filler := dom.NewElement("td")
			row.InsertBefore(filler, cell)
			set.add(filler)
			continue
		}
		if cell != nil {
			cell = cell.NextSibling
		}
	}
}

func (r *reconciler) rowMatches(row *dom.Node, columns []int) bool {
	cells := rowCells(row)
	if len(cells) != len(columns) {
		return false
	}
	for i, c := range cells {
		if r.cellState(c) != columns[i] {
			return false
		}
	}
	return true
}

// rebuildRow replaces the cells of a common row with a cell-by-cell diff of its sources, following columns.
func (r *reconciler) rebuildRow(row *dom.Node, pair rowPair, columns []int) {
	r.forget(row, false)
	row.RemoveChildren()

	oldCells := rowCells(pair.old)
	newCells := rowCells(pair.new)
	appendClone := func(cell *dom.Node, set *nodeSet) {
		c := cell.Clone(true)
		row.AppendChild(c)
		set.add(c)
	}

	oi, ni := 0, 0
	for _, c := range columns {
		switch {
		case c < 0:
			if oi < len(oldCells) {
				appendClone(oldCells[oi], r.removed)
			}
			oi++
		case c > 0:
			if ni < len(newCells) {
				appendClone(newCells[ni], r.added)
			}
			ni++
		default:
			switch {
			case oi < len(oldCells) && ni < len(newCells):
				frag := diffNodes(oldCells[oi], newCells[ni], r.cfg, r.depth+1)
				for frag.FirstChild != nil {
					row.AppendChild(frag.FirstChild)
				}
			case oi < len(oldCells):
				appendClone(oldCells[oi], r.removed)
			case ni < len(newCells):
				appendClone(newCells[ni], r.added)
			}
			oi++
			ni++
		}
	}
}

// validTable reports whether table has a shape that columns can be realigned in:
//
//	caption? thead? (tbody+ | tr+) tfoot?
//
// Sections only hold rows; rows hold at least one td/th; no cell spans more than one row or column; every tbody is non-empty. If verifyColumns is true, every row
// must also have the same number of cells.
func validTable(table *dom.Node, verifyColumns bool) bool {
	children := table.Children()
	i := 0
	if i < len(children) && children[i].IsElement("caption") {
		i++
	}
	if i < len(children) && children[i].IsElement("thead") {
		if !validSection(children[i], false) {
			return false
		}
		i++
	}
	bodies := 0
	for i < len(children) && children[i].IsElement("tbody") {
		if !validSection(children[i], true) {
			return false
		}
		i++
		bodies++
	}
	if bodies == 0 {
		for i < len(children) && children[i].IsElement("tr") {
			if !validRow(children[i]) {
				return false
			}
			i++
			bodies++
		}
	}
	if bodies == 0 {
		return false
	}
	if i < len(children) && children[i].IsElement("tfoot") {
		if !validSection(children[i], false) {
			return false
		}
		i++
	}
	if i != len(children) {
		return false
	}
	if verifyColumns {
		rows := tableRows(table)
		width := len(rowCells(rows[0]))
		for _, row := range rows[1:] {
			if len(rowCells(row)) != width {
				return false
			}
		}
	}
	return true
}

func validSection(section *dom.Node, nonEmpty bool) bool {
	if nonEmpty && section.FirstChild == nil {
		return false
	}
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if !c.IsElement("tr") || !validRow(c) {
			return false
		}
	}
	return true
}

func validRow(row *dom.Node) bool {
	if row.FirstChild == nil {
		return false
	}
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if !c.IsElement("td") && !c.IsElement("th") {
			return false
		}
		for _, key := range []string{"colspan", "rowspan"} {
			if v, ok := c.Attribute(key); ok && v != "1" {
				return false
			}
		}
	}
	return true
}

// tableRows returns the rows of table in document order, including rows inside sections.
func tableRows(table *dom.Node) []*dom.Node {
	var rows []*dom.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.IsElement("tr"):
			rows = append(rows, c)
		case c.IsElement("thead"), c.IsElement("tbody"), c.IsElement("tfoot"):
			for row := c.FirstChild; row != nil; row = row.NextSibling {
				if row.IsElement("tr") {
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

func rowCells(row *dom.Node) []*dom.Node {
	var cells []*dom.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.IsElement("td") || c.IsElement("th") {
			cells = append(cells, c)
		}
	}
	return cells
}
