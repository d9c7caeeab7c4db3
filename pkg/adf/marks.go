package adf

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// MarkKind enumerates the marks the renderer understands. The order of the
// constants is the wrap order, innermost first, so output does not depend
// on the order marks arrive in.
type MarkKind int

const (
	MarkCode MarkKind = iota
	MarkStrong
	MarkEm
	MarkStrike
	MarkUnderline
	MarkLink
)

var markNames = map[string]MarkKind{
	"code":      MarkCode,
	"strong":    MarkStrong,
	"em":        MarkEm,
	"strike":    MarkStrike,
	"underline": MarkUnderline,
	"link":      MarkLink,
}

// decorativeMarks carry presentation Markdown cannot express; they are
// dropped without a warning.
var decorativeMarks = mapset.NewSet(
	"textColor",
	"backgroundColor",
	"alignment",
	"indentation",
	"border",
	"annotation",
	"subsup",
	"fragment",
	"breakout",
	"dataConsumer",
)

// ParseMarkKind maps an ADF mark type to its kind.
func ParseMarkKind(name string) (MarkKind, bool) {
	k, ok := markNames[name]
	return k, ok
}

func (k MarkKind) String() string {
	for name, kind := range markNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// activeMarks is the de-duplicated set of marks on one text run.
type activeMarks struct {
	kinds mapset.Set[MarkKind]
	href  string
}

func (a activeMarks) has(k MarkKind) bool {
	return a.kinds.Contains(k)
}

func (w *walk) collectMarks(marks []*Mark) activeMarks {
	active := activeMarks{kinds: mapset.NewThreadUnsafeSet[MarkKind]()}
	for _, m := range marks {
		if m == nil {
			continue
		}
		kind, ok := ParseMarkKind(m.Type)
		if !ok {
			if !decorativeMarks.Contains(m.Type) {
				w.warn(WarningUnknownMark, m.Type, "unsupported mark ignored")
			}
			continue
		}
		if kind == MarkLink && active.href == "" {
			active.href = attrString(m.Attrs, "href")
		}
		active.kinds.Add(kind)
	}
	return active
}

// text renders a text run: escaped unless it is code, then wrapped in its
// marks from the innermost outwards.
func (w *walk) text(n *Node, st state) string {
	active := w.collectMarks(n.Marks)

	var s string
	if active.has(MarkCode) {
		s = codeSpan(StripControl(n.Text))
	} else {
		s = escape(n.Text, !st.midLine)
	}
	if st.flat {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	return w.wrap(s, active, st.before, st.after)
}

// wrap applies the marks around s. before and after are the runes rendered
// next to the run, or zero at the edge of the block.
func (w *walk) wrap(s string, active activeMarks, before, after rune) string {
	lead, core, trail := splitSpace(s)
	if core == "" {
		return s
	}
	if lead != "" {
		before = ' '
	}
	if trail != "" {
		after = ' '
	}

	href, linked := "", false
	if active.has(MarkLink) {
		if href, linked = sanitizeHref(active.href); !linked {
			w.warn(WarningInvalidLink, "link", "link mark without a usable href rendered as plain text")
		}
	}
	underline := active.has(MarkUnderline) && w.r.underline == UnderlineHTML
	if linked || underline {
		// Inner delimiters then sit against "[" or "<u>".
		before, after = '[', ']'
	}

	if active.has(MarkStrong) {
		core = delimit(core, "**", "strong", before, after)
	}
	if active.has(MarkEm) {
		core = delimit(core, "*", "em", before, after)
	}
	if active.has(MarkStrike) {
		core = delimit(core, "~~", "del", before, after)
	}
	if underline {
		core = "<u>" + core + "</u>"
	}
	if linked {
		core = "[" + core + "](" + href + ")"
	}
	return lead + core + trail
}

// delimit wraps core in delim when the delimiters would be left- and
// right-flanking in place. A delimiter next to punctuation inside and a
// letter outside cannot open or close emphasis, so the HTML tag is used.
func delimit(core, delim, tag string, before, after rune) string {
	first, _ := utf8.DecodeRuneInString(core)
	last, _ := utf8.DecodeLastRuneInString(core)
	if (isPunct(first) && !isBoundary(before)) || (isPunct(last) && !isBoundary(after)) {
		return "<" + tag + ">" + core + "</" + tag + ">"
	}
	return delim + core + delim
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isBoundary(r rune) bool {
	return r == 0 || unicode.IsSpace(r) || isPunct(r)
}

// decorated reports whether marks put delimiters or tags around a run.
func (w *walk) decorated(marks []*Mark) bool {
	for _, m := range marks {
		if m == nil {
			continue
		}
		kind, ok := ParseMarkKind(m.Type)
		switch {
		case !ok:
		case kind == MarkUnderline:
			if w.r.underline == UnderlineHTML {
				return true
			}
		case kind == MarkLink:
			if _, valid := sanitizeHref(attrString(m.Attrs, "href")); valid {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// markKey identifies the marks of a run for merging. Decorative marks do
// not count; unmarked runs have an empty key.
func markKey(marks []*Mark) string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, m := range marks {
		if m == nil || decorativeMarks.Contains(m.Type) {
			continue
		}
		if m.Type == "link" {
			set.Add("link:" + attrString(m.Attrs, "href"))
			continue
		}
		set.Add(m.Type)
	}
	keys := set.ToSlice()
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}

// splitSpace separates surrounding whitespace so that emphasis delimiters
// hug the text, which CommonMark requires.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

// codeSpan fences text in more backticks than it contains in a row.
func codeSpan(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")

	fence := strings.Repeat("`", longestRun(text, '`')+1)
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.TrimSpace(text) != "") {
		text = " " + text + " "
	}
	return fence + text + fence
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

var hrefReplacer = strings.NewReplacer("(", "%28", ")", "%29")

// sanitizeHref accepts absolute URLs with a host, mailto/tel URIs and
// same-document or root-relative references.
func sanitizeHref(raw string) (string, bool) {
	href := strings.TrimSpace(raw)
	if href == "" || strings.IndexFunc(href, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '<' || r == '>'
	}) >= 0 {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "":
		if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#") {
			return "", false
		}
	case "mailto", "tel":
		if u.Opaque == "" {
			return "", false
		}
	case "javascript", "data", "vbscript":
		return "", false
	default:
		if u.Host == "" {
			return "", false
		}
	}
	return hrefReplacer.Replace(href), true
}
