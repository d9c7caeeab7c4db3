package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/athapong/adf-mcp/services"
	"github.com/athapong/adf-mcp/util"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// RegisterJiraTool registers the Jira tools to the server
func RegisterJiraTool(s *server.MCPServer) {
	jiraGetIssueTool := mcp.NewTool("jira_get_issue",
		mcp.WithDescription("Retrieve a Jira issue with its status, people, description, environment, comments and available transitions. Rich text is returned as Markdown"),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("The unique identifier of the Jira issue (e.g., KP-2, PROJ-123)")),
	)

	jiraCreateIssueTool := mcp.NewTool("jira_create_issue",
		mcp.WithDescription("Create a new Jira issue with specified details. Returns the created issue's key, ID, and URL"),
		mcp.WithString("project_key", mcp.Required(), mcp.Description("Project identifier where the issue will be created (e.g., KP, PROJ)")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Brief title or headline of the issue")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Detailed explanation of the issue, as plain text or an ADF document")),
		mcp.WithString("issue_type", mcp.Required(), mcp.Description("Type of issue to create (common types: Bug, Task, Story, Epic)")),
	)

	jiraUpdateIssueTool := mcp.NewTool("jira_update_issue",
		mcp.WithDescription("Modify an existing Jira issue's details. Supports partial updates - only specified fields will be changed"),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("The unique identifier of the issue to update (e.g., KP-2)")),
		mcp.WithString("summary", mcp.Description("New title for the issue (optional)")),
		mcp.WithString("description", mcp.Description("New description, as plain text or an ADF document (optional)")),
	)

	jiraAddCommentTool := mcp.NewTool("jira_add_comment",
		mcp.WithDescription("Add a comment to a Jira issue"),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("The issue to comment on (e.g., KP-123)")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment text, as plain text or an ADF document")),
	)

	s.AddTool(jiraGetIssueTool, util.ErrorGuard(jiraIssueHandler))
	s.AddTool(jiraCreateIssueTool, util.ErrorGuard(jiraCreateIssueHandler))
	s.AddTool(jiraUpdateIssueTool, util.ErrorGuard(jiraUpdateIssueHandler))
	s.AddTool(jiraAddCommentTool, util.ErrorGuard(jiraAddCommentHandler))
}

func jiraIssueHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client := services.JiraClient()

	issueKey, ok := request.Params.Arguments["issue_key"].(string)
	if !ok {
		return nil, fmt.Errorf("issue_key argument is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	_, response, err := client.Issue.Get(ctx, issueKey, []string{"*all"}, []string{"transitions"})
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to get issue: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to get issue: %v", err)
	}

	result, err := formatIssue(ctx, defaultRenderer(), response.Bytes.Bytes())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(result), nil
}

// formatIssue renders the raw issue payload. Rich text fields are read as raw
// JSON so that nodes the client models do not know about still reach the
// renderer.
func formatIssue(ctx context.Context, renderer *adf.Renderer, raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("invalid issue payload")
	}
	issue := gjson.ParseBytes(raw)
	fields := issue.Get("fields")

	var warnings []adf.Warning
	richText := func(field gjson.Result) string {
		if !field.Exists() || field.Type == gjson.Null {
			return "(empty)\n"
		}
		var res adf.Result
		if field.IsObject() {
			res = renderDocument(ctx, renderer, []byte(field.Raw))
		} else {
			res = renderDocument(ctx, renderer, field.String())
		}
		warnings = append(warnings, res.Warnings...)
		if res.Markdown == "" {
			return "(empty)\n"
		}
		return res.Markdown
	}

	orDefault := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Key: %s\n", issue.Get("key").String()))
	result.WriteString(fmt.Sprintf("Summary: %s\n", fields.Get("summary").String()))
	result.WriteString(fmt.Sprintf("Type: %s\n", orDefault(fields.Get("issuetype.name").String(), "Unknown")))
	result.WriteString(fmt.Sprintf("Status: %s\n", orDefault(fields.Get("status.name").String(), "Unknown")))
	result.WriteString(fmt.Sprintf("Reporter: %s\n", orDefault(fields.Get("reporter.displayName").String(), "Unassigned")))
	result.WriteString(fmt.Sprintf("Assignee: %s\n", orDefault(fields.Get("assignee.displayName").String(), "Unassigned")))
	result.WriteString(fmt.Sprintf("Priority: %s\n", orDefault(fields.Get("priority.name").String(), "None")))
	result.WriteString(fmt.Sprintf("Created: %s\n", fields.Get("created").String()))
	result.WriteString(fmt.Sprintf("Updated: %s\n", fields.Get("updated").String()))

	result.WriteString("\nDescription:\n")
	result.WriteString(richText(fields.Get("description")))

	if env := fields.Get("environment"); env.Exists() && env.Type != gjson.Null {
		result.WriteString("\nEnvironment:\n")
		result.WriteString(richText(env))
	}

	if subtasks := fields.Get("subtasks").Array(); len(subtasks) > 0 {
		result.WriteString("\nSubtasks:\n")
		for _, subtask := range subtasks {
			result.WriteString(fmt.Sprintf("- %s: %s\n", subtask.Get("key").String(), subtask.Get("fields.summary").String()))
		}
	}

	if comments := fields.Get("comment.comments").Array(); len(comments) > 0 {
		result.WriteString(fmt.Sprintf("\nComments (%d):\n", len(comments)))
		for _, comment := range comments {
			result.WriteString("----------------------------------------\n")
			result.WriteString(fmt.Sprintf("%s at %s:\n",
				orDefault(comment.Get("author.displayName").String(), "Unknown"),
				comment.Get("created").String(),
			))
			result.WriteString(richText(comment.Get("body")))
		}
	}

	if transitions := issue.Get("transitions").Array(); len(transitions) > 0 {
		result.WriteString("\nAvailable Transitions:\n")
		for _, transition := range transitions {
			result.WriteString(fmt.Sprintf("- %s (ID: %s)\n", transition.Get("name").String(), transition.Get("id").String()))
		}
	}

	result.WriteString(formatWarnings(warnings))
	return result.String(), nil
}

func jiraCreateIssueHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.JiraClient()

	projectKey, ok := arguments["project_key"].(string)
	if !ok {
		return nil, fmt.Errorf("project_key argument is required")
	}

	summary, ok := arguments["summary"].(string)
	if !ok {
		return nil, fmt.Errorf("summary argument is required")
	}

	description, ok := arguments["description"]
	if !ok {
		return nil, fmt.Errorf("description argument is required")
	}

	issueType, ok := arguments["issue_type"].(string)
	if !ok {
		return nil, fmt.Errorf("issue_type argument is required")
	}

	body, err := toCommentNode(documentArgument(description))
	if err != nil {
		return nil, err
	}

	payload := &models.IssueScheme{
		Fields: &models.IssueFieldsScheme{
			Summary:     summary,
			Project:     &models.ProjectScheme{Key: projectKey},
			Description: body,
			IssueType:   &models.IssueTypeScheme{Name: issueType},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	issue, response, err := client.Issue.Create(ctx, payload, nil)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to create issue: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to create issue: %v", err)
	}

	result := fmt.Sprintf("Issue created successfully!\nKey: %s\nID: %s\nURL: %s", issue.Key, issue.ID, issue.Self)
	return mcp.NewToolResultText(result), nil
}

func jiraUpdateIssueHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.JiraClient()

	issueKey, ok := arguments["issue_key"].(string)
	if !ok {
		return nil, fmt.Errorf("issue_key argument is required")
	}

	payload := &models.IssueScheme{
		Fields: &models.IssueFieldsScheme{},
	}

	if summary, ok := arguments["summary"].(string); ok && summary != "" {
		payload.Fields.Summary = summary
	}

	if description, ok := arguments["description"]; ok && description != nil && description != "" {
		body, err := toCommentNode(documentArgument(description))
		if err != nil {
			return nil, err
		}
		payload.Fields.Description = body
	}

	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	response, err := client.Issue.Update(ctx, issueKey, true, payload, nil, nil)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to update issue: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to update issue: %v", err)
	}

	return mcp.NewToolResultText("Issue updated successfully!"), nil
}

func jiraAddCommentHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.JiraClient()

	issueKey, ok := arguments["issue_key"].(string)
	if !ok {
		return nil, fmt.Errorf("issue_key argument is required")
	}

	text, ok := arguments["body"]
	if !ok {
		return nil, fmt.Errorf("body argument is required")
	}

	body, err := toCommentNode(documentArgument(text))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	comment, response, err := client.Issue.Comment.Add(ctx, issueKey, &models.CommentPayloadScheme{Body: body}, nil)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to add comment: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to add comment: %v", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Comment added successfully!\nID: %s", comment.ID)), nil
}

// documentArgument coerces a tool argument into a document. Strings holding
// a JSON object are read as ADF; any other string is literal text.
func documentArgument(v interface{}) *adf.Document {
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
			return coerceDocument([]byte(trimmed))
		}
	}
	return coerceDocument(v)
}

// toCommentNode converts a document into the client's ADF model.
func toCommentNode(doc *adf.Document) (*models.CommentNodeScheme, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal ADF body")
	}
	node := &models.CommentNodeScheme{}
	if err := json.Unmarshal(raw, node); err != nil {
		return nil, errors.Wrap(err, "failed to convert ADF body")
	}
	return node, nil
}
