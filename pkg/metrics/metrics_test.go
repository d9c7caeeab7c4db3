package metrics

import (
	"testing"

	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRender(t *testing.T) {
	before := testutil.ToFloat64(RenderTotal)
	warnBefore := testutil.ToFloat64(RenderWarnings.WithLabelValues(string(adf.WarningUnknownNode)))

	ObserveRender(adf.Result{
		Markdown: "text\n\n",
		Warnings: []adf.Warning{{Type: adf.WarningUnknownNode, NodeType: "panel"}},
	})

	if got := testutil.ToFloat64(RenderTotal) - before; got != 1 {
		t.Fatalf("render counter moved by %v, want 1", got)
	}
	if got := testutil.ToFloat64(RenderWarnings.WithLabelValues(string(adf.WarningUnknownNode))) - warnBefore; got != 1 {
		t.Fatalf("warning counter moved by %v, want 1", got)
	}
}

func TestObserveCoerce(t *testing.T) {
	before := testutil.ToFloat64(CoerceTotal.WithLabelValues("text"))
	ObserveCoerce("text")
	ObserveCoerce("text")
	if got := testutil.ToFloat64(CoerceTotal.WithLabelValues("text")) - before; got != 2 {
		t.Fatalf("coerce counter moved by %v, want 2", got)
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	UpdateSystemMetrics()
	if testutil.ToFloat64(SystemGoroutines) < 1 {
		t.Fatalf("goroutine gauge not set")
	}
}
