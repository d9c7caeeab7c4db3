package util

import (
	"context"
	"errors"
	"testing"

	"github.com/athapong/adf-mcp/pkg/metrics"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return text.Text
}

func TestErrorGuardConvertsErrors(t *testing.T) {
	h := ErrorGuard(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	before := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("guard_error", "error"))
	res, err := h(context.Background(), call("guard_error", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || resultText(t, res) != "Error: boom" {
		t.Fatalf("result = %+v", res)
	}
	if got := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("guard_error", "error")) - before; got != 1 {
		t.Fatalf("error counter moved by %v", got)
	}
}

func TestErrorGuardRecoversPanics(t *testing.T) {
	h := ErrorGuard(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("bad input")
	})

	res, err := h(context.Background(), call("guard_panic", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || resultText(t, res) != "Panic: bad input" {
		t.Fatalf("result = %+v", res)
	}
}

func TestErrorGuardPassesResults(t *testing.T) {
	var seen string
	h := ErrorGuard(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		seen = RequestID(ctx)
		return mcp.NewToolResultText("fine"), nil
	})

	before := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("guard_ok", "ok"))
	res, err := h(context.Background(), call("guard_ok", nil))
	if err != nil || res.IsError || resultText(t, res) != "fine" {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
	if seen == "" {
		t.Fatalf("request id not set")
	}
	if got := testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("guard_ok", "ok")) - before; got != 1 {
		t.Fatalf("ok counter moved by %v", got)
	}
}

func TestAdaptLegacyHandler(t *testing.T) {
	h := AdaptLegacyHandler(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(arguments["name"].(string)), nil
	})
	res, err := h(context.Background(), call("legacy", map[string]interface{}{"name": "x"}))
	if err != nil || resultText(t, res) != "x" {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
}
