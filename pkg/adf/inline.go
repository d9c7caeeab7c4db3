package adf

import (
	"strings"
	"unicode/utf8"
)

// cardLabelLimit caps the visible label of a card link, in runes.
const cardLabelLimit = 60

const hardBreak = "\\\n"

func (w *walk) inline(n *Node, st state) string {
	if !w.r.guard.allow(st.depth) {
		return w.cutOff()
	}

	switch n.Type {
	case KindText:
		return w.text(n, st)
	case KindHardBreak:
		if st.flat {
			return " "
		}
		return hardBreak
	case KindMention:
		return mention(n)
	case KindEmoji:
		return emoji(n)
	case KindInlineCard:
		return w.card(n)
	default:
		return w.unknownInline(n, st)
	}
}

func mention(n *Node) string {
	label := attrString(n.Attrs, "text")
	if strings.TrimSpace(label) == "" {
		label = attrString(n.Attrs, "id")
	}
	label = strings.TrimPrefix(strings.TrimSpace(label), "@")
	if label == "" {
		return ""
	}
	return "@" + escape(label, false)
}

func emoji(n *Node) string {
	if text := attrString(n.Attrs, "text"); text != "" {
		return StripControl(text)
	}
	return StripControl(attrString(n.Attrs, "shortName"))
}

// card renders smart links as plain Markdown links labelled with their URL.
func (w *walk) card(n *Node) string {
	raw := cardURL(n.Attrs)
	if raw == "" {
		return leafText(n)
	}
	href, ok := sanitizeHref(raw)
	if !ok {
		w.warn(WarningInvalidLink, n.Type, "card without a usable url rendered as plain text")
		return escape(raw, false)
	}
	return "[" + escape(truncate(raw, cardLabelLimit), false) + "](" + href + ")"
}

func cardURL(attrs map[string]interface{}) string {
	if u := attrString(attrs, "url"); u != "" {
		return u
	}
	if data, ok := attrs["data"].(map[string]interface{}); ok {
		return attrString(data, "url")
	}
	return ""
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// unknownInline degrades a node this renderer has no rule for: its children
// are concatenated, and a childless node falls back to its text attribute.
func (w *walk) unknownInline(n *Node, st state) string {
	if !isBlockKind(n.Type) {
		w.warnUnknown(n.Type)
	}
	if len(n.Content) > 0 {
		return w.inlines(n.Content, st.next())
	}
	if cardURL(n.Attrs) != "" {
		return w.card(n)
	}
	return leafText(n)
}

// leafText is the best-effort text of a childless node.
func leafText(n *Node) string {
	if text := attrString(n.Attrs, "text"); text != "" {
		return escape(text, false)
	}
	if n.Text != "" {
		return escape(n.Text, false)
	}
	return ""
}

func (w *walk) warnUnknown(kind string) {
	if kind == "" {
		w.warn(WarningUnknownNode, "", "node without a type")
		return
	}
	w.warn(WarningUnknownNode, kind, "unsupported node rendered through its content")
}

// trimBreaks drops hard breaks and newlines that would dangle at the end of
// a block. Escaped text always carries backslashes in pairs, so an odd
// trailing run ends in a break.
func trimBreaks(s string) string {
	for {
		s = strings.TrimRight(s, "\n")
		run := len(s) - len(strings.TrimRight(s, "\\"))
		if run%2 == 0 {
			return s
		}
		s = s[:len(s)-1]
	}
}
