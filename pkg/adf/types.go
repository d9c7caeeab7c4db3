package adf

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Block node kinds
const (
	KindDoc         = "doc"
	KindParagraph   = "paragraph"
	KindHeading     = "heading"
	KindBulletList  = "bulletList"
	KindOrderedList = "orderedList"
	KindListItem    = "listItem"
	KindBlockquote  = "blockquote"
	KindCodeBlock   = "codeBlock"
	KindRule        = "rule"
	KindTable       = "table"
	KindTableRow    = "tableRow"
	KindTableHeader = "tableHeader"
	KindTableCell   = "tableCell"
)

// Inline node kinds
const (
	KindText       = "text"
	KindHardBreak  = "hardBreak"
	KindMention    = "mention"
	KindEmoji      = "emoji"
	KindInlineCard = "inlineCard"
)

// DocumentVersion is the only ADF version the remote side accepts.
const DocumentVersion = 1

// Node represents an ADF node
type Node struct {
	Type    string                 `json:"type"`
	Version int                    `json:"version,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []*Mark                `json:"marks,omitempty"`
	Content []*Node                `json:"content,omitempty"`
}

// Mark represents formatting marks in ADF
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Document is the root of an ADF tree. Unlike Node, its content is always
// serialised, even when empty.
type Document struct {
	Version int     `json:"version"`
	Type    string  `json:"type"`
	Content []*Node `json:"content"`
}

// NewDocument returns a valid document owning the given blocks.
func NewDocument(blocks ...*Node) *Document {
	if blocks == nil {
		blocks = []*Node{}
	}
	return &Document{Version: DocumentVersion, Type: KindDoc, Content: blocks}
}

// Valid reports whether d satisfies the document invariant.
func (d *Document) Valid() bool {
	return d != nil && d.Type == KindDoc && d.Version != 0 && d.Content != nil
}

// Root returns d as a doc node for rendering.
func (d *Document) Root() *Node {
	if d == nil {
		return nil
	}
	return &Node{Type: KindDoc, Version: d.Version, Content: d.Content}
}

// JSON returns the wire form of d.
func (d *Document) JSON() string {
	b, err := json.Marshal(d)
	if err != nil {
		return `{"version":1,"type":"doc","content":[]}`
	}
	return string(b)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:    n.Type,
		Version: n.Version,
		Text:    n.Text,
		Attrs:   cloneAttrs(n.Attrs),
	}
	if n.Marks != nil {
		c.Marks = make([]*Mark, 0, len(n.Marks))
		for _, m := range n.Marks {
			if m == nil {
				continue
			}
			c.Marks = append(c.Marks, &Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)})
		}
	}
	if n.Content != nil {
		c.Content = make([]*Node, 0, len(n.Content))
		for _, child := range n.Content {
			if child != nil {
				c.Content = append(c.Content, child.Clone())
			}
		}
	}
	return c
}

func cloneAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneAttrs(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func isBlockKind(kind string) bool {
	switch kind {
	case KindDoc, KindParagraph, KindHeading, KindBulletList, KindOrderedList,
		KindListItem, KindBlockquote, KindCodeBlock, KindRule, KindTable,
		KindTableRow, KindTableHeader, KindTableCell:
		return true
	}
	return false
}

func isInlineKind(kind string) bool {
	switch kind {
	case KindText, KindHardBreak, KindMention, KindEmoji, KindInlineCard:
		return true
	}
	return false
}

// blockShaped reports whether n should be laid out as a block when it shows
// up among the children of an unknown container.
func blockShaped(n *Node) bool {
	if n == nil {
		return false
	}
	if isBlockKind(n.Type) {
		return true
	}
	return !isInlineKind(n.Type) && len(n.Content) > 0
}

func attrString(attrs map[string]interface{}, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}

// attrInt reads a numeric attribute. JSON numbers arrive as float64, but
// hand-built trees use ints, so both are accepted along with json.Number and
// numeric strings.
func attrInt(attrs map[string]interface{}, key string) (int, bool) {
	switch v := attrs[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case float32:
		return attrInt(map[string]interface{}{key: float64(v)}, key)
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
