package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestSummarizeIssueHandler(t *testing.T) {
	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"issue_key": "PROJ-9"}

	res, err := summarizeIssueHandler(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Description != "Summary of PROJ-9" || len(res.Messages) != 1 {
		t.Fatalf("result = %+v", res)
	}
	text := res.Messages[0].Content.(mcp.TextContent).Text
	if !strings.Contains(text, "jira_get_issue") || !strings.Contains(text, "PROJ-9") {
		t.Fatalf("prompt = %q", text)
	}

	req.Params.Arguments = nil
	if _, err := summarizeIssueHandler(context.Background(), req); err == nil {
		t.Fatalf("missing issue_key should fail")
	}
}
