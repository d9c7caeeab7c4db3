package adf

import (
	"strings"
	"unicode/utf8"
)

var cellReplacer = strings.NewReplacer("\n", " ", "|", "\\|")

// table renders a pipe table when the structure allows one: every row has
// the same number of cells and the first row is made of header cells.
// Anything else becomes a bulleted list with one bullet per row, since a
// malformed pipe table reads worse than a list.
func (w *walk) table(n *Node, st state) string {
	var rows [][]string
	header, regular := false, true
	cols := -1

	cellSt := st.next()
	cellSt.flat = true

	for _, row := range n.Content {
		if row == nil {
			continue
		}

		var cells []string
		allHeader := len(row.Content) > 0
		switch {
		case !w.r.guard.allow(st.depth):
			cells = []string{w.cutOff()}
			allHeader = false
		case row.Type != KindTableRow:
			regular = false
			cells = []string{w.cell(row, st)}
			allHeader = false
		default:
			for _, c := range row.Content {
				if c == nil {
					continue
				}
				if c.Type != KindTableHeader {
					allHeader = false
				}
				cells = append(cells, w.cell(c, cellSt))
			}
		}

		if len(rows) == 0 {
			header = allHeader
		}
		if cols < 0 {
			cols = len(cells)
		} else if cols != len(cells) {
			regular = false
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return ""
	}
	if regular && header && cols > 0 {
		return pipeTable(rows, cols)
	}

	w.warn(WarningIrregularTable, KindTable, "table without a regular header row rendered as a list")
	return rowList(rows)
}

func (w *walk) cell(c *Node, st state) string {
	if !w.r.guard.allow(st.depth) {
		return w.cutOff()
	}

	var text string
	switch {
	case c.Type == KindTableCell || c.Type == KindTableHeader:
		inner := st.next()
		text = w.blocks(c.Content, inner, false)
	case isInlineKind(c.Type):
		text = w.inline(c, st)
	default:
		text = w.block(c, st)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(cellReplacer.Replace(text)), " "))
}

func pipeTable(rows [][]string, cols int) string {
	widths := make([]int, cols)
	for j := range widths {
		widths[j] = 3
	}
	for _, row := range rows {
		for j, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[j] {
				widths[j] = n
			}
		}
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("|")
		for j, cell := range row {
			padding := widths[j] - utf8.RuneCountInString(cell)
			b.WriteString(" " + cell + strings.Repeat(" ", padding) + " |")
		}

		if i == 0 {
			b.WriteString("\n|")
			for _, width := range widths {
				b.WriteString(strings.Repeat("-", width+2) + "|")
			}
		}
	}
	return b.String()
}

func rowList(rows [][]string) string {
	var items []string
	for _, row := range rows {
		var cells []string
		for _, cell := range row {
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			items = append(items, "- "+strings.Join(cells, " | "))
		}
	}
	return strings.Join(items, "\n")
}
