package adf

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestCoerce(t *testing.T) {
	hello := NewDocument(para(txt("hello")))

	tests := []struct {
		name string
		in   interface{}
		want *Document
	}{
		{"nil", nil, NewDocument()},
		{"nil document", (*Document)(nil), NewDocument()},
		{"nil node", (*Node)(nil), NewDocument()},
		{"empty string", "", NewDocument()},
		{"blank string", " \n\t\n", NewDocument()},
		{"plain text", "hello", hello},
		{"text keeps markdown literally", "**not bold**", NewDocument(para(txt("**not bold**")))},
		{"single newlines stay in one paragraph", "a\nb", NewDocument(para(txt("a\nb")))},
		{
			"blank lines split paragraphs",
			"first\n\nsecond\r\n  \r\nthird",
			NewDocument(para(txt("first")), para(txt("second")), para(txt("third"))),
		},
		{"stringer", label("x"), NewDocument(para(txt("label:x")))},
		{"number", 42, NewDocument(para(txt("42")))},
		{"raw json text", []byte(`"hello"`), hello},
		{"raw json null", json.RawMessage(`null`), NewDocument()},
		{"invalid json", []byte(`{"type":`), NewDocument(para(txt(`{"type":`)))},
		{"unrelated object", []byte(`{"foo":"bar"}`), NewDocument(para(txt(`{"foo":"bar"}`)))},
		{"unrelated map", map[string]interface{}{"foo": "bar"}, NewDocument(para(txt(`{"foo":"bar"}`)))},
		{
			"raw document",
			[]byte(`{"version":1,"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`),
			hello,
		},
		{
			"document map",
			map[string]interface{}{
				"version": float64(1),
				"type":    "doc",
				"content": []interface{}{
					map[string]interface{}{
						"type":    "paragraph",
						"content": []interface{}{map[string]interface{}{"type": "text", "text": "hello"}},
					},
				},
			},
			hello,
		},
		{
			"doc without version",
			map[string]interface{}{
				"type":    "doc",
				"content": []interface{}{map[string]interface{}{"type": "text", "text": "hello"}},
			},
			hello,
		},
		{"doc without content", map[string]interface{}{"type": "doc"}, NewDocument()},
		{"untyped with text", map[string]interface{}{"text": "hello"}, hello},
		{
			"single block",
			map[string]interface{}{"type": "rule"},
			NewDocument(&Node{Type: KindRule}),
		},
		{"inline node", &Node{Type: KindText, Text: "hello"}, hello},
		{"node value", Node{Type: KindText, Text: "hello"}, hello},
		{
			"unknown block kind is kept",
			[]byte(`{"type":"panel","content":[{"type":"paragraph","content":[]}]}`),
			NewDocument(&Node{Type: "panel", Content: []*Node{{Type: KindParagraph, Content: []*Node{}}}}),
		},
		{
			"document with version zero",
			&Document{Type: KindDoc, Content: []*Node{txt("hello")}},
			hello,
		},
		{
			"document value",
			Document{Version: 1, Type: KindDoc, Content: []*Node{para(txt("hello"))}},
			hello,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Coerce(tc.in)
			if !got.Valid() {
				t.Fatalf("Coerce returned an invalid document: %+v", got)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceKeepsValidDocument(t *testing.T) {
	d := NewDocument(para(txt("same")))
	if got := Coerce(d); got != d {
		t.Fatalf("valid document was copied")
	}
}

func TestCoerceDoesNotAlias(t *testing.T) {
	in := &Node{Type: KindDoc, Version: 1, Content: []*Node{para(txt("orig"))}}
	got := Coerce(in)
	got.Content[0].Content[0].Text = "changed"
	if in.Content[0].Content[0].Text != "orig" {
		t.Fatalf("input was modified through the result")
	}

	attrs := map[string]interface{}{"level": float64(2)}
	obj := map[string]interface{}{"type": "heading", "attrs": attrs}
	Coerce(obj).Content[0].Attrs["level"] = float64(5)
	if attrs["level"] != float64(2) {
		t.Fatalf("map input was modified through the result")
	}
}

func TestCoerceAgreesAcrossForms(t *testing.T) {
	raw := []byte(`{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Title"}]}]}`)
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatal(err)
	}

	fromBytes := Coerce(raw)
	fromMap := Coerce(obj)
	if diff := cmp.Diff(fromBytes, fromMap); diff != "" {
		t.Fatalf("bytes and map disagree (-bytes +map):\n%s", diff)
	}
	if got := Render(fromMap.Root()); got != "## Title\n\n" {
		t.Fatalf("render = %q", got)
	}
}

func TestTextSurvivesRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello world\n\n"},
		{"one\n\ntwo", "one\n\ntwo\n\n"},
		{"5 * 3 = 15_000 `x`", "5 \\* 3 = 15\\_000 \\`x\\`\n\n"},
		{"# not a heading", "\\# not a heading\n\n"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Render(Coerce(tc.in).Root()); got != tc.want {
			t.Errorf("Render(Coerce(%q)) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentJSON(t *testing.T) {
	if got := NewDocument().JSON(); got != `{"version":1,"type":"doc","content":[]}` {
		t.Fatalf("empty document JSON = %s", got)
	}
	got := FromText("hi").JSON()
	want := `{"version":1,"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`
	if got != want {
		t.Fatalf("JSON = %s", got)
	}
}
