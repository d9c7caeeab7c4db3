package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/athapong/adf-mcp/pkg/metrics"
	"github.com/athapong/adf-mcp/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	"github.com/sirupsen/logrus"
)

// RegisterADFTools registers the conversion tools to the server
func RegisterADFTools(s *server.MCPServer) {
	renderTool := mcp.NewTool("adf_to_markdown",
		mcp.WithDescription("Convert an Atlassian Document Format (ADF) document to Markdown. Unsupported content degrades to its text and is listed as a warning"),
		mcp.WithString("document", mcp.Required(), mcp.Description("ADF document as JSON (a doc node, or any single node)")),
		mcp.WithNumber("max_depth", mcp.Description("Maximum nesting depth to render (default 64)")),
		mcp.WithString("underline", mcp.Description("How to render underline: html (default) or omit")),
		mcp.WithNumber("max_tokens", mcp.Description("Truncate the Markdown to this many tokens (optional)")),
	)
	s.AddTool(renderTool, util.ErrorGuard(adfToMarkdownHandler))

	coerceTool := mcp.NewTool("text_to_adf",
		mcp.WithDescription("Wrap plain text in a valid ADF document, one paragraph per blank-line separated block. Text is kept literally"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Plain text to wrap")),
	)
	s.AddTool(coerceTool, util.ErrorGuard(textToADFHandler))

	diffTool := mcp.NewTool("adf_diff",
		mcp.WithDescription("Compare two ADF documents by their Markdown rendering"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Original ADF document as JSON")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Changed ADF document as JSON")),
	)
	s.AddTool(diffTool, util.ErrorGuard(adfDiffHandler))
}

func adfToMarkdownHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	document, ok := arguments["document"]
	if !ok || document == nil {
		return nil, fmt.Errorf("document argument is required")
	}

	renderer, err := rendererFor(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := renderDocument(ctx, renderer, document)
	markdown := res.Markdown

	if limit, ok := intArgument(arguments, "max_tokens"); ok && limit > 0 {
		markdown, err = truncateTokens(markdown, limit)
		if err != nil {
			return nil, err
		}
	}

	return mcp.NewToolResultText(markdown + formatWarnings(res.Warnings)), nil
}

func textToADFHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text argument is required")
	}

	doc := coerceDocument(text)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal document")
	}
	return mcp.NewToolResultText(string(out)), nil
}

func adfDiffHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	source, ok := arguments["source"]
	if !ok {
		return nil, fmt.Errorf("source argument is required")
	}
	target, ok := arguments["target"]
	if !ok {
		return nil, fmt.Errorf("target argument is required")
	}

	renderer := defaultRenderer()
	before := renderDocument(ctx, renderer, source).Markdown
	after := renderDocument(ctx, renderer, target).Markdown
	if before == after {
		return mcp.NewToolResultText("No changes"), nil
	}
	return mcp.NewToolResultText(performSemanticDiff(before, after)), nil
}

// rendererOptions reads ADF_MAX_DEPTH and ADF_UNDERLINE.
func rendererOptions() []adf.Option {
	var opts []adf.Option
	if v := os.Getenv("ADF_MAX_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			opts = append(opts, adf.WithMaxDepth(depth))
		} else {
			util.Logger().WithField("ADF_MAX_DEPTH", v).Warn("ignoring invalid max depth")
		}
	}
	if v := os.Getenv("ADF_UNDERLINE"); v != "" {
		if mode, err := parseUnderline(v); err == nil {
			opts = append(opts, adf.WithUnderline(mode))
		} else {
			util.Logger().WithField("ADF_UNDERLINE", v).Warn("ignoring invalid underline mode")
		}
	}
	return opts
}

func defaultRenderer() *adf.Renderer {
	return adf.NewRenderer(rendererOptions()...)
}

// rendererFor applies per-call overrides on top of the environment.
func rendererFor(arguments map[string]interface{}) (*adf.Renderer, error) {
	opts := rendererOptions()
	if depth, ok := intArgument(arguments, "max_depth"); ok {
		opts = append(opts, adf.WithMaxDepth(depth))
	}
	if v, ok := arguments["underline"].(string); ok && v != "" {
		mode, err := parseUnderline(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, adf.WithUnderline(mode))
	}
	return adf.NewRenderer(opts...), nil
}

func parseUnderline(v string) (adf.UnderlineMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "html":
		return adf.UnderlineHTML, nil
	case "omit", "none":
		return adf.UnderlineOmit, nil
	}
	return adf.UnderlineHTML, fmt.Errorf("invalid underline mode %q, use html or omit", v)
}

// intArgument reads a numeric argument sent either as a JSON number or a string.
func intArgument(arguments map[string]interface{}, key string) (int, bool) {
	switch v := arguments[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// renderDocument renders v and records the outcome.
func renderDocument(ctx context.Context, r *adf.Renderer, v interface{}) adf.Result {
	res := r.RenderValue(v)
	metrics.ObserveRender(res)
	if len(res.Warnings) > 0 {
		util.Logger().WithFields(logrus.Fields{
			"request_id": util.RequestID(ctx),
			"warnings":   len(res.Warnings),
		}).Info("document rendered with warnings")
	}
	return res
}

// coerceDocument coerces v and records which kind of input it was.
func coerceDocument(v interface{}) *adf.Document {
	metrics.ObserveCoerce(inputKind(v))
	return adf.Coerce(v)
}

func inputKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "text"
	case []byte, json.RawMessage:
		return "json"
	case map[string]interface{}:
		return "object"
	case *adf.Document, adf.Document:
		return "document"
	case *adf.Node, adf.Node:
		return "node"
	}
	return "other"
}

func formatWarnings(warnings []adf.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("----------------------------------------\nWarnings:\n")
	for _, w := range warnings {
		if w.NodeType != "" {
			b.WriteString(fmt.Sprintf("- %s (%s): %s\n", w.Type, w.NodeType, w.Message))
		} else {
			b.WriteString(fmt.Sprintf("- %s: %s\n", w.Type, w.Message))
		}
	}
	return b.String()
}

// truncateTokens cuts markdown to at most limit cl100k tokens.
func truncateTokens(markdown string, limit int) (string, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return "", errors.Wrap(err, "failed to load tokenizer")
	}

	tokens := encoding.Encode(markdown, nil, nil)
	if len(tokens) <= limit {
		return markdown, nil
	}
	return encoding.Decode(tokens[:limit]) + "\n\n[truncated]\n", nil
}
