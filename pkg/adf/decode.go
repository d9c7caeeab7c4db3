package adf

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
)

// maxDecodeDepth bounds how deep the decoders follow content arrays. It sits
// well above DefaultMaxDepth so the renderer, not the decoder, decides where
// output is cut off.
const maxDecodeDepth = 512

// Parse decodes an ADF payload without trusting its shape. Fields of the
// wrong JSON type are ignored rather than failing the whole document, and a
// present but empty content array decodes to a non-nil empty slice. It
// returns nil when raw is not a JSON object.
func Parse(raw []byte) *Node {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	return nodeFromResult(gjson.ParseBytes(raw), 0)
}

func nodeFromResult(r gjson.Result, depth int) *Node {
	if !r.IsObject() || depth > maxDecodeDepth {
		return nil
	}

	n := &Node{}
	if t := r.Get("type"); t.Type == gjson.String {
		n.Type = t.Str
	}
	if v := r.Get("version"); v.Type == gjson.Number {
		n.Version = clampInt(v.Num)
	}
	if t := r.Get("text"); t.Type == gjson.String {
		n.Text = t.Str
	}
	if a := r.Get("attrs"); a.IsObject() {
		n.Attrs, _ = a.Value().(map[string]interface{})
	}
	if m := r.Get("marks"); m.IsArray() {
		m.ForEach(func(_, mark gjson.Result) bool {
			if mk := markFromResult(mark); mk != nil {
				n.Marks = append(n.Marks, mk)
			}
			return true
		})
	}
	if c := r.Get("content"); c.IsArray() {
		n.Content = []*Node{}
		c.ForEach(func(_, child gjson.Result) bool {
			if cn := nodeFromResult(child, depth+1); cn != nil {
				n.Content = append(n.Content, cn)
			}
			return true
		})
	}
	return n
}

func markFromResult(r gjson.Result) *Mark {
	t := r.Get("type")
	if !r.IsObject() || t.Type != gjson.String {
		return nil
	}
	m := &Mark{Type: t.Str}
	if a := r.Get("attrs"); a.IsObject() {
		m.Attrs, _ = a.Value().(map[string]interface{})
	}
	return m
}

// FromValue builds a node from a generic decoded JSON value, as produced by
// encoding/json into interface{} or handed over in tool arguments. It
// returns nil for anything that is not an object.
func FromValue(v interface{}) *Node {
	return nodeFromValue(v, 0)
}

func nodeFromValue(v interface{}, depth int) *Node {
	obj, ok := v.(map[string]interface{})
	if !ok || depth > maxDecodeDepth {
		return nil
	}

	n := &Node{}
	n.Type, _ = obj["type"].(string)
	n.Text, _ = obj["text"].(string)
	if version, ok := numberValue(obj["version"]); ok {
		n.Version = clampInt(version)
	}
	if attrs, ok := obj["attrs"].(map[string]interface{}); ok {
		n.Attrs = cloneAttrs(attrs)
	}
	if marks, ok := obj["marks"].([]interface{}); ok {
		for _, raw := range marks {
			m, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			kind, ok := m["type"].(string)
			if !ok {
				continue
			}
			mark := &Mark{Type: kind}
			if attrs, ok := m["attrs"].(map[string]interface{}); ok {
				mark.Attrs = cloneAttrs(attrs)
			}
			n.Marks = append(n.Marks, mark)
		}
	}
	if content, ok := obj["content"].([]interface{}); ok {
		n.Content = make([]*Node, 0, len(content))
		for _, raw := range content {
			if child := nodeFromValue(raw, depth+1); child != nil {
				n.Content = append(n.Content, child)
			}
		}
	}
	return n
}

func numberValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func clampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
