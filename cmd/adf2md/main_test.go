package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRunRender(t *testing.T) {
	logger, hook := test.NewNullLogger()

	var out bytes.Buffer
	in := strings.NewReader(`{"type":"doc","version":1,"content":[{"type":"panel","content":[{"type":"paragraph","content":[{"type":"text","text":"hi","marks":[{"type":"em"}]}]}]}]}`)
	opts := options{mode: "render", input: "-", maxDepth: 64, underline: "html", warnings: true}

	if err := run(opts, in, &out, logger); err != nil {
		t.Fatal(err)
	}
	if out.String() != "*hi*\n\n" {
		t.Fatalf("output = %q", out.String())
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("log entries = %+v", hook.Entries)
	}
}

func TestRunCoerceFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("first\n\nsecond"), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(options{mode: "coerce", input: path}, nil, &out, logger); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type": "doc"`, `"text": "first"`, `"text": "second"`} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %s:\n%s", want, out.String())
		}
	}
}

func TestRunErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for _, opts := range []options{
		{mode: "translate", input: "-"},
		{mode: "render", input: "-", underline: "blink"},
		{mode: "render", input: filepath.Join(t.TempDir(), "missing.json"), underline: "html"},
	} {
		if err := run(opts, strings.NewReader("x"), io.Discard, logger); err == nil {
			t.Errorf("%+v: expected an error", opts)
		}
	}
}
