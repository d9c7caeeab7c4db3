package adf

import (
	"strings"
	"unicode"
)

// Escape makes literal text safe to embed in Markdown. Characters that would
// otherwise start emphasis, strikethrough, code spans, links or inline HTML
// are backslash-escaped, and
// so are block markers (#, -, +, >, "1.") at the start of a line. Control
// characters other than newline and tab are dropped.
func Escape(text string) string {
	return escape(text, true)
}

// escape is Escape for text that may continue a line already started, in
// which case the first line gets no block-marker escaping.
func escape(text string, lineStart bool) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		escapeLine(&b, line, i > 0 || lineStart)
	}
	return b.String()
}

func escapeLine(b *strings.Builder, line string, lineStart bool) {
	marker := -1
	if lineStart {
		marker = orderedMarker(line)
	}

	for i, r := range line {
		if isStripped(r) {
			continue
		}
		switch r {
		case '\\', '*', '_', '`', '[', ']', '~', '<':
			b.WriteByte('\\')
		case '#', '-', '+', '>':
			if lineStart {
				b.WriteByte('\\')
			}
		default:
			if i == marker {
				b.WriteByte('\\')
			}
		}
		b.WriteRune(r)
		if !unicode.IsSpace(r) {
			lineStart = false
		}
	}
}

// orderedMarker returns the byte offset of the '.' or ')' in a leading
// "123." list marker, or -1.
func orderedMarker(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	digits := i
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == digits || i-digits > 9 || i >= len(line) {
		return -1
	}
	if line[i] != '.' && line[i] != ')' {
		return -1
	}
	return i
}

// StripControl removes control characters but keeps newlines and tabs.
func StripControl(text string) string {
	if strings.IndexFunc(text, isStripped) < 0 {
		return text
	}
	return strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, text)
}

func isStripped(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.IsControl(r)
}
