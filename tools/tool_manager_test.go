package tools

import (
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func manage(t *testing.T, args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := toolManagerHandler(args)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res, res.Content[0].(mcp.TextContent).Text
}

func TestToolManagerList(t *testing.T) {
	t.Setenv("ENABLE_TOOLS", "")
	_, got := manage(t, map[string]interface{}{"action": "list"})
	if !strings.Contains(got, "- jira (Jira issue management) [enabled]") || !strings.Contains(got, "All tools are enabled") {
		t.Fatalf("list = %q", got)
	}

	t.Setenv("ENABLE_TOOLS", "adf, confluence")
	_, got = manage(t, map[string]interface{}{"action": "list"})
	for _, want := range []string{"[disabled]", "- adf\n- confluence\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("list missing %q: %q", want, got)
		}
	}
}

func TestToolManagerEnableDisable(t *testing.T) {
	t.Setenv("ENABLE_TOOLS", "adf")

	if res, got := manage(t, map[string]interface{}{"action": "enable", "tool_name": "jira"}); res.IsError {
		t.Fatalf("enable failed: %s", got)
	}
	if got := os.Getenv("ENABLE_TOOLS"); got != "adf,jira" {
		t.Fatalf("ENABLE_TOOLS = %q", got)
	}

	manage(t, map[string]interface{}{"action": "disable", "tool_name": "adf"})
	if got := os.Getenv("ENABLE_TOOLS"); got != "jira" {
		t.Fatalf("ENABLE_TOOLS = %q", got)
	}

	t.Setenv("ENABLE_TOOLS", "")
	manage(t, map[string]interface{}{"action": "disable", "tool_name": "confluence"})
	if got := os.Getenv("ENABLE_TOOLS"); got != "adf,jira" {
		t.Fatalf("disabling from all enabled: ENABLE_TOOLS = %q", got)
	}
}

func TestToolManagerErrors(t *testing.T) {
	t.Setenv("ENABLE_TOOLS", "")
	for _, args := range []map[string]interface{}{
		{"action": 1},
		{"action": "enable"},
		{"action": "enable", "tool_name": "gitlab"},
		{"action": "reboot"},
	} {
		if res, got := manage(t, args); !res.IsError {
			t.Errorf("%v: expected an error result, got %q", args, got)
		}
	}
}

func TestEnabledToolsets(t *testing.T) {
	t.Setenv("ENABLE_TOOLS", " jira ,,adf")
	enabled, all := EnabledToolsets()
	if all || !enabled.Contains("jira") || !enabled.Contains("adf") || enabled.Cardinality() != 2 {
		t.Fatalf("enabled = %v, all = %v", enabled, all)
	}
}
