package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterIssuePrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("summarize_issue",
		mcp.WithPromptDescription("Summarize a Jira issue and its discussion"),
		mcp.WithArgument("issue_key", mcp.ArgumentDescription("The Jira issue to summarize (e.g., PROJ-123)")),
	)
	s.AddPrompt(prompt, summarizeIssueHandler)
}

func summarizeIssueHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	issueKey := request.Params.Arguments["issue_key"]
	if issueKey == "" {
		return nil, fmt.Errorf("issue_key argument is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summary of %s", issueKey),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Use jira_get_issue to fetch %s. Summarize the problem from its description, the current status and who owns it, then list the decisions and open questions raised in the comments. Mention any conversion warnings at the end.", issueKey),
				},
			},
		},
	}, nil
}
