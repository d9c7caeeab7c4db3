package adf

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Node
	}{
		{"invalid", `{"type":`, nil},
		{"array", `[1,2]`, nil},
		{"scalar", `"doc"`, nil},
		{"empty object", `{}`, &Node{}},
		{
			"wrong field types are ignored",
			`{"type":7,"text":["x"],"version":"1","attrs":"none","marks":{},"content":"nope"}`,
			&Node{},
		},
		{
			"empty content stays non-nil",
			`{"type":"paragraph","content":[]}`,
			&Node{Type: KindParagraph, Content: []*Node{}},
		},
		{
			"non-object children are dropped",
			`{"type":"paragraph","content":[null,1,{"type":"text","text":"a"}]}`,
			&Node{Type: KindParagraph, Content: []*Node{{Type: KindText, Text: "a"}}},
		},
		{
			"marks without a type are dropped",
			`{"type":"text","text":"a","marks":[{"attrs":{}},{"type":"link","attrs":{"href":"https://x.io"}}]}`,
			&Node{Type: KindText, Text: "a", Marks: []*Mark{{Type: "link", Attrs: map[string]interface{}{"href": "https://x.io"}}}},
		},
		{
			"attrs keep json values",
			`{"type":"heading","version":1,"attrs":{"level":2,"id":"x"}}`,
			&Node{Type: KindHeading, Version: 1, Attrs: map[string]interface{}{"level": float64(2), "id": "x"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse([]byte(tc.raw))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromValue(t *testing.T) {
	if got := FromValue("text"); got != nil {
		t.Fatalf("FromValue(string) = %+v", got)
	}

	got := FromValue(map[string]interface{}{
		"type":    "paragraph",
		"version": 3,
		"content": []interface{}{
			"junk",
			map[string]interface{}{
				"type":  "text",
				"text":  "hi",
				"marks": []interface{}{map[string]interface{}{"type": "strong"}, 5},
			},
		},
	})
	want := &Node{
		Type:    KindParagraph,
		Version: 3,
		Content: []*Node{{Type: KindText, Text: "hi", Marks: []*Mark{{Type: "strong"}}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRendersLevelFromString(t *testing.T) {
	raw := `{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":"2"},"content":[{"type":"text","text":"T"}]}]}`
	if got := RenderJSON([]byte(raw)); got != "## T\n\n" {
		t.Fatalf("RenderJSON = %q", got)
	}
}

func TestParseBoundsNesting(t *testing.T) {
	depth := 2000
	raw := strings.Repeat(`{"type":"blockquote","content":[`, depth) + strings.Repeat(`]}`, depth)

	n := Parse([]byte(raw))
	if n == nil {
		t.Fatalf("Parse returned nil")
	}
	levels := 0
	for n != nil && len(n.Content) > 0 {
		n = n.Content[0]
		levels++
	}
	if levels > maxDecodeDepth {
		t.Fatalf("decoded %d levels, want at most %d", levels, maxDecodeDepth)
	}

	res := NewRenderer().RenderJSON([]byte(raw))
	if len(res.Warnings) != 1 || res.Warnings[0].Type != WarningDepthExceeded {
		t.Fatalf("warnings = %+v", res.Warnings)
	}
}

func TestAttrInt(t *testing.T) {
	attrs := map[string]interface{}{
		"f":   float64(3),
		"i":   4,
		"s":   "5",
		"bad": "five",
		"b":   true,
	}
	for key, want := range map[string]int{"f": 3, "i": 4, "s": 5} {
		if got, ok := attrInt(attrs, key); !ok || got != want {
			t.Errorf("attrInt(%q) = %d, %v", key, got, ok)
		}
	}
	for _, key := range []string{"bad", "b", "missing"} {
		if _, ok := attrInt(attrs, key); ok {
			t.Errorf("attrInt(%q) should fail", key)
		}
	}
}
