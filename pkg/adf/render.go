// Package adf converts Atlassian Document Format trees to Markdown and
// coerces loosely shaped input into valid ADF documents.
package adf

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// UnderlineMode selects how the underline mark is written, since Markdown
// has no native underline.
type UnderlineMode int

const (
	// UnderlineHTML wraps underlined text in <u></u>.
	UnderlineHTML UnderlineMode = iota
	// UnderlineOmit drops the underline mark.
	UnderlineOmit
)

// WarningType categorizes conversion warnings.
type WarningType string

const (
	WarningUnknownNode    WarningType = "unknown_node"
	WarningUnknownMark    WarningType = "unknown_mark"
	WarningDepthExceeded  WarningType = "depth_exceeded"
	WarningInvalidLink    WarningType = "invalid_link"
	WarningIrregularTable WarningType = "irregular_table"
)

// Warning represents a non-fatal issue encountered during conversion.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}

// Result holds the output of a conversion.
type Result struct {
	Markdown string    `json:"markdown"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxDepth bounds recursion. Non-positive values keep the default.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		r.guard = newDepthGuard(depth)
	}
}

// WithUnderline sets how underline marks are rendered.
func WithUnderline(mode UnderlineMode) Option {
	return func(r *Renderer) {
		r.underline = mode
	}
}

// WithPlaceholder sets the text emitted where the depth guard stops descending.
func WithPlaceholder(placeholder string) Option {
	return func(r *Renderer) {
		r.placeholder = placeholder
	}
}

// Renderer turns ADF trees into Markdown. It is immutable once built and
// safe for concurrent use.
type Renderer struct {
	guard       depthGuard
	underline   UnderlineMode
	placeholder string
}

// NewRenderer creates a renderer with the given options applied over the defaults.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		guard:       newDepthGuard(DefaultMaxDepth),
		underline:   UnderlineHTML,
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render converts an ADF node to Markdown using the default renderer.
func Render(node *Node) string {
	return defaultRenderer.Render(node).Markdown
}

// RenderJSON converts a raw ADF payload to Markdown. Invalid JSON yields "".
func RenderJSON(raw []byte) string {
	return defaultRenderer.RenderJSON(raw).Markdown
}

// RenderValue converts any field value a remote API may hand back: a
// document, a node, raw JSON, a decoded JSON object or plain text.
func RenderValue(v interface{}) string {
	return defaultRenderer.RenderValue(v).Markdown
}

// Render converts node to Markdown. A bare node is treated as the only child
// of a document.
func (r *Renderer) Render(node *Node) Result {
	if node == nil {
		return Result{}
	}

	root := node
	if root.Type != KindDoc {
		root = &Node{Type: KindDoc, Content: []*Node{node}}
	}

	w := &walk{r: r, warned: mapset.NewThreadUnsafeSet[string]()}
	out := w.blocks(root.Content, state{depth: 1}, false)

	return Result{Markdown: finish(out), Warnings: w.warnings}
}

// RenderJSON decodes raw leniently and renders it.
func (r *Renderer) RenderJSON(raw []byte) Result {
	return r.Render(Parse(raw))
}

// RenderValue renders v according to its dynamic type. Plain strings are
// rendered as their coerced document, so they come back escaped.
func (r *Renderer) RenderValue(v interface{}) Result {
	switch t := v.(type) {
	case nil:
		return Result{}
	case *Node:
		return r.Render(t)
	case Node:
		return r.Render(&t)
	case *Document:
		return r.Render(t.Root())
	case Document:
		return r.Render(t.Root())
	case json.RawMessage:
		return r.renderLoose(Parse(t), t)
	case []byte:
		return r.renderLoose(Parse(t), t)
	case string:
		if looksLikeJSONObject(t) {
			return r.renderLoose(Parse([]byte(t)), []byte(t))
		}
		return r.Render(Coerce(t).Root())
	case map[string]interface{}:
		return r.renderLoose(FromValue(t), t)
	}
	return Result{}
}

// renderLoose renders n when it looks like ADF, meaning it has a type or
// children. Anything else is coerced from the original value, so unrelated
// JSON comes back as text instead of vanishing.
func (r *Renderer) renderLoose(n *Node, orig interface{}) Result {
	if n != nil && (n.Type != "" || len(n.Content) > 0) {
		return r.Render(n)
	}
	return r.Render(Coerce(orig).Root())
}

// finish leaves non-empty output with exactly one trailing blank line.
func finish(out string) string {
	out = strings.TrimRight(out, "\n")
	if strings.TrimSpace(out) == "" {
		return ""
	}
	return out + "\n\n"
}

// walk carries the bookkeeping of a single Render call.
type walk struct {
	r        *Renderer
	warnings []Warning
	warned   mapset.Set[string]
}

// state is threaded by value through the recursion.
type state struct {
	depth int
	// flat is set where line breaks cannot survive (headings, table cells).
	flat bool
	// midLine is set when inline output continues a line already started.
	midLine bool
	// before and after are the runes rendered next to an inline node; zero
	// stands for the edge of the block.
	before, after rune
}

func (s state) next() state {
	s.depth++
	return s
}

func (w *walk) warn(kind WarningType, nodeType, message string) {
	if !w.warned.Add(string(kind) + "/" + nodeType) {
		return
	}
	w.warnings = append(w.warnings, Warning{Type: kind, NodeType: nodeType, Message: message})
}

func (w *walk) cutOff() string {
	w.warn(WarningDepthExceeded, "", "maximum nesting depth exceeded, deeper content omitted")
	return w.r.placeholder
}

// blocks renders a sequence of sibling blocks. Inline siblings are gathered
// into implicit paragraphs. In tight mode a list directly follows the block
// before it, which keeps nested lists attached to their item.
func (w *walk) blocks(children []*Node, st state, tight bool) string {
	type part struct {
		text string
		list bool
	}

	var parts []part
	var run []*Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if text := trimBreaks(w.inlines(run, st)); strings.TrimSpace(text) != "" {
			parts = append(parts, part{text: text})
		}
		run = nil
	}

	for _, child := range children {
		if child == nil {
			continue
		}
		if isInlineKind(child.Type) {
			run = append(run, child)
			continue
		}
		flush()
		if text := w.block(child, st); text != "" {
			parts = append(parts, part{text: text, list: interruptsParagraph(child)})
		}
	}
	flush()

	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			if tight && p.list {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(p.text)
	}
	return b.String()
}

// interruptsParagraph reports whether a list may follow a paragraph on the
// next line. An ordered list only can when it starts at 1.
func interruptsParagraph(n *Node) bool {
	switch n.Type {
	case KindBulletList:
		return true
	case KindOrderedList:
		return listStart(n.Attrs) == 1
	}
	return false
}

// inlines concatenates sibling inline nodes. Text runs see the runes just
// outside them so that emphasis delimiters can be checked for flanking.
func (w *walk) inlines(children []*Node, st state) string {
	children = mergeRuns(children)

	var b strings.Builder
	for i, child := range children {
		if child == nil {
			continue
		}
		cst := st
		if b.Len() > 0 {
			out := b.String()
			cst.midLine = !strings.HasSuffix(out, "\n")
			cst.before, _ = utf8.DecodeLastRuneInString(out)
		}
		if r, ok := w.leadingRune(children[i+1:]); ok {
			cst.after = r
		}
		b.WriteString(w.inline(child, cst))
	}
	return b.String()
}

// leadingRune approximates the first rune the given siblings render to.
// Unknown nodes count as a letter, which keeps delimiters conservative.
func (w *walk) leadingRune(siblings []*Node) (rune, bool) {
	for _, n := range siblings {
		if n == nil {
			continue
		}
		switch n.Type {
		case KindText:
			if w.decorated(n.Marks) {
				return '*', true
			}
			if r, _ := utf8.DecodeRuneInString(StripControl(n.Text)); r != utf8.RuneError {
				return r, true
			}
			continue
		case KindHardBreak:
			return '\n', true
		case KindMention:
			if mention(n) == "" {
				continue
			}
			return '@', true
		case KindEmoji:
			if r, _ := utf8.DecodeRuneInString(emoji(n)); r != utf8.RuneError {
				return r, true
			}
			continue
		case KindInlineCard:
			if _, ok := sanitizeHref(cardURL(n.Attrs)); ok {
				return '[', true
			}
		}
		return 'a', true
	}
	return 0, false
}

// mergeRuns joins neighbouring text runs that carry the same marks, so that
// "**a**" followed by "**b**" becomes "**ab**". The input is left untouched.
func mergeRuns(children []*Node) []*Node {
	var out []*Node
	lastKey := ""
	for _, child := range children {
		if child == nil {
			continue
		}
		key := ""
		if child.Type == KindText {
			key = markKey(child.Marks)
		}
		if key != "" && key == lastKey {
			prev := out[len(out)-1]
			out[len(out)-1] = &Node{Type: KindText, Text: prev.Text + child.Text, Marks: prev.Marks}
			continue
		}
		out = append(out, child)
		lastKey = key
	}
	return out
}

func looksLikeJSONObject(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}
