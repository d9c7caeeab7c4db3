package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/athapong/adf-mcp/util"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Toolset is a group of tools enabled together through ENABLE_TOOLS.
type Toolset struct {
	Name        string
	Description string
}

// Toolsets lists every group main.go knows how to register.
var Toolsets = []Toolset{
	{"adf", "ADF to Markdown conversion, text to ADF, ADF diff"},
	{"jira", "Jira issue management"},
	{"confluence", "Confluence page management"},
}

// EnabledToolsets parses ENABLE_TOOLS. An empty value enables everything.
func EnabledToolsets() (mapset.Set[string], bool) {
	enabled := mapset.NewSet[string]()
	for _, name := range strings.Split(os.Getenv("ENABLE_TOOLS"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			enabled.Add(name)
		}
	}
	return enabled, enabled.Cardinality() == 0
}

func RegisterToolManagerTool(s *server.MCPServer) {
	tool := mcp.NewTool("tool_manager",
		mcp.WithDescription("Manage MCP tools - enable or disable tools"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform: list, enable, disable")),
		mcp.WithString("tool_name", mcp.Description("Tool name to enable/disable")),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(toolManagerHandler)))
}

func toolManagerHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	action, ok := arguments["action"].(string)
	if !ok {
		return mcp.NewToolResultError("action must be a string"), nil
	}

	enabled, allEnabled := EnabledToolsets()

	switch action {
	case "list":
		var response strings.Builder
		response.WriteString("Available tools:\n")
		response.WriteString("- tool_manager (Tool management) [enabled]\n")
		for _, t := range Toolsets {
			status := "disabled"
			if allEnabled || enabled.Contains(t.Name) {
				status = "enabled"
			}
			response.WriteString(fmt.Sprintf("- %s (%s) [%s]\n", t.Name, t.Description, status))
		}
		response.WriteString("\n")

		response.WriteString("Currently enabled tools:\n")
		if allEnabled {
			response.WriteString("All tools are enabled (ENABLE_TOOLS is empty)\n")
		} else {
			for _, name := range mapset.Sorted(enabled) {
				response.WriteString(fmt.Sprintf("- %s\n", name))
			}
		}
		return mcp.NewToolResultText(response.String()), nil

	case "enable", "disable":
		toolName, ok := arguments["tool_name"].(string)
		if !ok || toolName == "" {
			return mcp.NewToolResultError("tool_name is required for enable/disable actions"), nil
		}
		if !isToolset(toolName) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown tool: %s", toolName)), nil
		}

		if allEnabled {
			for _, t := range Toolsets {
				enabled.Add(t.Name)
			}
		}
		if action == "enable" {
			enabled.Add(toolName)
		} else {
			enabled.Remove(toolName)
		}

		os.Setenv("ENABLE_TOOLS", strings.Join(mapset.Sorted(enabled), ","))

		return mcp.NewToolResultText(fmt.Sprintf("Successfully %sd tool: %s (takes effect on restart)", action, toolName)), nil

	default:
		return mcp.NewToolResultError("Invalid action. Use 'list', 'enable', or 'disable'"), nil
	}
}

func isToolset(name string) bool {
	for _, t := range Toolsets {
		if t.Name == name {
			return true
		}
	}
	return false
}
