package adf

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// blankLines separates paragraphs in plain text.
var blankLines = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// Coerce returns a valid document for input, which may be nil, plain text,
// raw JSON, a decoded JSON object, a node or a document. A valid *Document is
// returned as is; everything else is copied into a new document. No Markdown
// parsing happens: text is kept literally, split into paragraphs on blank
// lines.
func Coerce(input interface{}) *Document {
	switch v := input.(type) {
	case nil:
		return NewDocument()
	case *Document:
		if v == nil {
			return NewDocument()
		}
		if v.Valid() {
			return v
		}
		return repair(v)
	case Document:
		if v.Valid() {
			return &v
		}
		return repair(&v)
	case *Node:
		if v == nil {
			return NewDocument()
		}
		return fromNode(v)
	case Node:
		return fromNode(&v)
	case string:
		return FromText(v)
	case json.RawMessage:
		return fromJSON(v)
	case []byte:
		return fromJSON(v)
	case map[string]interface{}:
		return fromObject(v)
	case fmt.Stringer:
		return FromText(v.String())
	}
	return FromText(fmt.Sprint(input))
}

// FromText wraps literal text in paragraphs, one per blank-line separated
// chunk. Text without blank lines becomes a single verbatim text node.
func FromText(text string) *Document {
	if strings.TrimSpace(text) == "" {
		return NewDocument()
	}

	var blocks []*Node
	for _, chunk := range blankLines.Split(text, -1) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		blocks = append(blocks, Paragraph(&Node{Type: KindText, Text: chunk}))
	}
	return NewDocument(blocks...)
}

// Paragraph wraps inline nodes in a paragraph.
func Paragraph(inline ...*Node) *Node {
	return &Node{Type: KindParagraph, Content: inline}
}

func repair(d *Document) *Document {
	version := d.Version
	if version == 0 {
		version = DocumentVersion
	}
	doc := NewDocument(normalize(cloneAll(d.Content))...)
	doc.Version = version
	return doc
}

func fromJSON(raw []byte) *Document {
	if !gjson.ValidBytes(raw) {
		return FromText(string(raw))
	}

	r := gjson.ParseBytes(raw)
	switch {
	case r.IsObject():
		n := Parse(raw)
		if isDocShape(r) {
			return &Document{Version: n.Version, Type: KindDoc, Content: n.Content}
		}
		if n.Type == "" && n.Content == nil && n.Text == "" {
			return FromText(strings.TrimSpace(string(raw)))
		}
		return fromNode(n)
	case r.Type == gjson.String:
		return FromText(r.Str)
	case r.Type == gjson.Null:
		return NewDocument()
	}
	return FromText(string(raw))
}

// isDocShape checks the document invariant on raw JSON.
func isDocShape(r gjson.Result) bool {
	return r.Get("type").Str == KindDoc &&
		r.Get("version").Type == gjson.Number && r.Get("version").Num != 0 &&
		r.Get("content").IsArray()
}

func fromObject(obj map[string]interface{}) *Document {
	n := FromValue(obj)
	if _, isArray := obj["content"].([]interface{}); isArray && n.Type == KindDoc && n.Version != 0 {
		return &Document{Version: n.Version, Type: KindDoc, Content: n.Content}
	}
	if n.Type == "" && n.Content == nil && n.Text == "" {
		return FromText(stringify(obj))
	}
	return fromNode(n)
}

// fromNode wraps a possibly partial tree. Doc-shaped and untyped nodes hand
// over their content; typed nodes become the only block of a new document.
func fromNode(n *Node) *Document {
	switch {
	case n.Type == KindDoc || n.Type == "":
		if n.Content != nil {
			doc := NewDocument(normalize(cloneAll(n.Content))...)
			if n.Type == KindDoc && n.Version != 0 {
				doc.Version = n.Version
			}
			return doc
		}
		if n.Text != "" {
			return FromText(n.Text)
		}
		if n.Type == KindDoc {
			return NewDocument()
		}
		return FromText(stringify(n))
	case isInlineKind(n.Type):
		return NewDocument(Paragraph(n.Clone()))
	default:
		return NewDocument(n.Clone())
	}
}

func cloneAll(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n.Clone())
		}
	}
	return out
}

// normalize groups runs of inline nodes found at the top level into
// paragraphs so the result only holds blocks.
func normalize(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	var run []*Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if isInlineKind(n.Type) {
			run = append(run, n)
			continue
		}
		if len(run) > 0 {
			out = append(out, Paragraph(run...))
			run = nil
		}
		out = append(out, n)
	}
	if len(run) > 0 {
		out = append(out, Paragraph(run...))
	}
	return out
}

func stringify(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
