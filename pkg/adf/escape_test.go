package adf

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a*b_c`d", "a\\*b\\_c\\`d"},
		{"[link](x)", "\\[link\\](x)"},
		{"~~gone~~ <b>x</b>", "\\~\\~gone\\~\\~ \\<b>x\\</b>"},
		{"~/notes", "\\~/notes"},
		{"back\\slash", "back\\\\slash"},
		{"# not a heading", "\\# not a heading"},
		{"- not a bullet", "\\- not a bullet"},
		{"+ not a bullet", "\\+ not a bullet"},
		{"> not a quote", "\\> not a quote"},
		{"1. not a list", "1\\. not a list"},
		{"12) not a list", "12\\) not a list"},
		{"  - indented", "  \\- indented"},
		{"a - b > c # d", "a - b > c # d"},
		{"2024.01.01", "2024\\.01.01"},
		{"version 2.0", "version 2.0"},
		{"first\n# second", "first\n\\# second"},
		{"null\x00byte\x07bell", "nullbytebell"},
		{"line\r\nnext", "line\nnext"},
		{"tab\there", "tab\there"},
		{"emoji 😄 stays", "emoji 😄 stays"},
	}

	for _, tc := range tests {
		if got := Escape(tc.in); got != tc.want {
			t.Errorf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeMidLine(t *testing.T) {
	if got := escape("- continues", false); got != "- continues" {
		t.Fatalf("mid-line escape = %q", got)
	}
	if got := escape("x\n- next", false); got != "x\n\\- next" {
		t.Fatalf("second line escape = %q", got)
	}
}

func TestStripControl(t *testing.T) {
	if got := StripControl("a\x00b\nc\td\x1b"); got != "ab\nc\td" {
		t.Fatalf("StripControl = %q", got)
	}
	in := "unchanged"
	if got := StripControl(in); got != in {
		t.Fatalf("StripControl(%q) = %q", in, got)
	}
}
