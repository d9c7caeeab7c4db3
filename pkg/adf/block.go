package adf

import (
	"strconv"
	"strings"
)

// maxListStart keeps ordered list numbers within what CommonMark accepts.
const maxListStart = 999999999

func (w *walk) block(n *Node, st state) string {
	if !w.r.guard.allow(st.depth) {
		return w.cutOff()
	}

	inner := st.next()
	inner.midLine = false
	inner.before, inner.after = 0, 0

	switch n.Type {
	case KindDoc, KindTableRow, KindTableHeader, KindTableCell:
		return w.blocks(n.Content, inner, false)
	case KindListItem:
		return w.blocks(n.Content, inner, true)
	case KindParagraph:
		return trimBreaks(w.inlines(n.Content, inner))
	case KindHeading:
		return w.heading(n, inner)
	case KindBulletList:
		return w.list(n, inner, false)
	case KindOrderedList:
		return w.list(n, inner, true)
	case KindBlockquote:
		return w.blockquote(n, inner)
	case KindCodeBlock:
		return w.codeBlock(n, inner)
	case KindRule:
		return "---"
	case KindTable:
		return w.table(n, inner)
	default:
		return w.unknownBlock(n, inner)
	}
}

func (w *walk) heading(n *Node, st state) string {
	level, ok := attrInt(n.Attrs, "level")
	if !ok || level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}

	st.flat = true
	text := strings.TrimSpace(w.inlines(n.Content, st))
	prefix := strings.Repeat("#", level)
	if text == "" {
		return prefix
	}
	// A trailing '#' would be read as a closing sequence unless it is
	// already escaped.
	if body, ok := strings.CutSuffix(text, "#"); ok {
		if run := len(body) - len(strings.TrimRight(body, "\\")); run%2 == 0 {
			text = body + "\\#"
		}
	}
	return prefix + " " + text
}

func (w *walk) list(n *Node, st state, ordered bool) string {
	num := 1
	if ordered {
		num = listStart(n.Attrs)
	}

	var items []string
	for _, item := range n.Content {
		if item == nil {
			continue
		}
		marker := "-"
		if ordered {
			marker = strconv.Itoa(num) + "."
			num++
		}
		items = append(items, indentItem(marker, w.listItem(item, st)))
	}
	return strings.Join(items, "\n")
}

// listItem renders an item body without its marker; the list adds it.
func (w *walk) listItem(item *Node, st state) string {
	if isInlineKind(item.Type) {
		return trimBreaks(w.inline(item, st))
	}
	return w.block(item, st)
}

func listStart(attrs map[string]interface{}) int {
	for _, key := range []string{"order", "start"} {
		if v, ok := attrInt(attrs, key); ok && v >= 0 {
			if v > maxListStart {
				return maxListStart
			}
			return v
		}
	}
	return 1
}

// indentItem puts marker in front of the first line of body and indents the
// remaining lines by the marker width, which is what nests sub-lists and
// keeps continuation paragraphs inside the item.
func indentItem(marker, body string) string {
	if strings.TrimSpace(body) == "" {
		return marker
	}

	pad := strings.Repeat(" ", len(marker)+1)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(marker + " " + lines[0])
	for _, line := range lines[1:] {
		b.WriteString("\n")
		if line != "" {
			b.WriteString(pad + line)
		}
	}
	return b.String()
}

func (w *walk) blockquote(n *Node, st state) string {
	body := w.blocks(n.Content, st, false)
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return prefixLines(body, "> ", ">")
}

func prefixLines(body, prefix, blank string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// codeBlock fences the plain text of its children. Nothing inside is escaped
// or mark-rendered.
func (w *walk) codeBlock(n *Node, st state) string {
	var body strings.Builder
	w.plainText(n.Content, st, &body)
	text := strings.TrimRight(StripControl(body.String()), "\n")

	fence := "```"
	if run := longestRun(text, '`'); run >= 3 {
		fence = strings.Repeat("`", run+1)
	}

	open := fence + infoString(attrString(n.Attrs, "language"))
	if text == "" {
		return open + "\n" + fence
	}
	return open + "\n" + text + "\n" + fence
}

func (w *walk) plainText(nodes []*Node, st state, b *strings.Builder) {
	for _, child := range nodes {
		if child == nil {
			continue
		}
		if !w.r.guard.allow(st.depth) {
			b.WriteString(w.cutOff())
			return
		}
		switch child.Type {
		case KindText:
			b.WriteString(child.Text)
		case KindHardBreak:
			b.WriteString("\n")
		default:
			w.plainText(child.Content, st.next(), b)
		}
	}
}

// infoString keeps the first word of a language attribute; backticks would
// end the fence early.
func infoString(language string) string {
	fields := strings.Fields(StripControl(language))
	if len(fields) == 0 {
		return ""
	}
	return strings.ReplaceAll(fields[0], "`", "")
}

// unknownBlock degrades a node this renderer has no rule for. Children that
// look like blocks are laid out as blocks, anything else as one paragraph.
func (w *walk) unknownBlock(n *Node, st state) string {
	w.warnUnknown(n.Type)

	if len(n.Content) > 0 {
		for _, child := range n.Content {
			if blockShaped(child) {
				return w.blocks(n.Content, st, false)
			}
		}
		return trimBreaks(w.inlines(n.Content, st))
	}
	if cardURL(n.Attrs) != "" {
		return w.card(n)
	}
	return leafText(n)
}
