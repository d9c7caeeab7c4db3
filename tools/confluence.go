package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/athapong/adf-mcp/services"
	"github.com/athapong/adf-mcp/util"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

// RegisterConfluenceTool registers the confluence tools to the server
func RegisterConfluenceTool(s *server.MCPServer) {
	pageTool := mcp.NewTool("confluence_get_page",
		mcp.WithDescription("Get Confluence page content as Markdown"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
	)
	s.AddTool(pageTool, util.ErrorGuard(confluencePageHandler))

	createPageTool := mcp.NewTool("confluence_create_page",
		mcp.WithDescription("Create a new Confluence page"),
		mcp.WithString("space_key", mcp.Required(), mcp.Description("The ID of the space where the page will be created")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the page")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content of the page, as plain text or an ADF document")),
		mcp.WithString("parent_id", mcp.Description("ID of the parent page (optional)")),
	)
	s.AddTool(createPageTool, util.ErrorGuard(confluenceCreatePageHandler))

	updatePageTool := mcp.NewTool("confluence_update_page",
		mcp.WithDescription("Update an existing Confluence page. New content is appended to the current body"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page to update")),
		mcp.WithString("title", mcp.Description("New title of the page (optional)")),
		mcp.WithString("content", mcp.Description("Content to append, as plain text or an ADF document (optional)")),
		mcp.WithString("version_number", mcp.Description("Version number for optimistic locking (optional)")),
	)
	s.AddTool(updatePageTool, util.ErrorGuard(confluenceUpdatePageHandler))

	compareTool := mcp.NewTool("confluence_compare_versions",
		mcp.WithDescription("Compare two versions of a Confluence page"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
		mcp.WithString("source_version", mcp.Description("Source version number (default: the one before target)")),
		mcp.WithString("target_version", mcp.Description("Target version number (default: latest)")),
	)
	s.AddTool(compareTool, util.ErrorGuard(confluenceCompareHandler))
}

func confluencePageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.ConfluenceClient()

	pageID, ok := arguments["page_id"].(string)
	if !ok {
		return nil, fmt.Errorf("page_id argument is required")
	}

	pageIDInt, err := strconv.Atoi(pageID)
	if err != nil {
		return nil, fmt.Errorf("invalid page ID: %v", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	// version -1 is the latest published version
	page, response, err := client.Page.Get(ctxWithTimeout, pageIDInt, "atlas_doc_format", false, -1)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to get page: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to get page: %v", err)
	}

	if page == nil {
		return nil, fmt.Errorf("no content returned for page ID: %s", pageID)
	}

	res := pageMarkdown(ctx, defaultRenderer(), page)
	if res.Markdown == "" {
		// Pages written by older editors may only carry storage format.
		storagePage, _, err := client.Page.Get(ctxWithTimeout, pageIDInt, "storage", false, -1)
		if err == nil {
			if md, err := storageToMarkdown(storagePage); err == nil {
				res.Markdown = md
			} else {
				util.Logger().WithError(err).WithField("page_id", pageID).Warn("storage fallback failed")
			}
		}
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Title: %s\n", page.Title))
	result.WriteString(fmt.Sprintf("ID: %s\n", page.ID))
	result.WriteString(fmt.Sprintf("Space ID: %s\n", page.SpaceID))
	result.WriteString(fmt.Sprintf("Status: %s\n", page.Status))

	if page.Version != nil {
		result.WriteString(fmt.Sprintf("Version: %d (Created: %s)\n",
			page.Version.Number,
			page.Version.CreatedAt,
		))
	}

	result.WriteString("\nContent:\n")
	result.WriteString("----------------------------------------\n")
	result.WriteString(res.Markdown)
	result.WriteString("\n----------------------------------------\n")
	result.WriteString(formatWarnings(res.Warnings))

	return mcp.NewToolResultText(result.String()), nil
}

// pageMarkdown renders the ADF body of page, if it has one.
func pageMarkdown(ctx context.Context, renderer *adf.Renderer, page *models.PageScheme) adf.Result {
	if page == nil || page.Body == nil || page.Body.AtlasDocFormat == nil {
		return adf.Result{}
	}
	return renderDocument(ctx, renderer, []byte(page.Body.AtlasDocFormat.Value))
}

func storageToMarkdown(page *models.PageScheme) (string, error) {
	if page == nil || page.Body == nil || page.Body.Storage == nil {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(page.Body.Storage.Value)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert storage format")
	}
	return md, nil
}

// confluenceCreatePageHandler handles the creation of new Confluence pages
func confluenceCreatePageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.ConfluenceClient()

	spaceKey, ok := arguments["space_key"].(string)
	if !ok {
		return nil, fmt.Errorf("space_key argument is required")
	}

	title, ok := arguments["title"].(string)
	if !ok {
		return nil, fmt.Errorf("title argument is required")
	}

	content, ok := arguments["content"]
	if !ok {
		return nil, fmt.Errorf("content argument is required")
	}

	bodyValue, err := json.Marshal(documentArgument(content))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ADF body: %v", err)
	}

	payload := &models.PageCreatePayloadScheme{
		SpaceID: spaceKey,
		Status:  "current",
		Title:   title,
		Body: &models.PageBodyRepresentationScheme{
			Representation: "atlas_doc_format",
			Value:          string(bodyValue),
		},
	}
	if parentID, ok := arguments["parent_id"].(string); ok && parentID != "" {
		payload.ParentID = parentID
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	page, response, err := client.Page.Create(ctxWithTimeout, payload)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to create page: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to create page: %v", err)
	}

	result := fmt.Sprintf("Page created successfully!\nTitle: %s\nID: %s\nStatus: %s",
		page.Title,
		page.ID,
		page.Status,
	)
	if page.Version != nil {
		result += fmt.Sprintf("\nVersion: %d", page.Version.Number)
	}

	return mcp.NewToolResultText(result), nil
}

// confluenceUpdatePageHandler handles updating existing Confluence pages
func confluenceUpdatePageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.ConfluenceClient()

	pageID, ok := arguments["page_id"].(string)
	if !ok {
		return nil, fmt.Errorf("page_id argument is required")
	}

	pageIDInt, err := strconv.Atoi(pageID)
	if err != nil {
		return nil, fmt.Errorf("invalid page ID: %v", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	page, response, err := client.Page.Get(ctxWithTimeout, pageIDInt, "atlas_doc_format", false, -1)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to get current page: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to get current page: %v", err)
	}
	if page.Version == nil {
		return nil, fmt.Errorf("failed to get page version information")
	}

	var current interface{}
	if page.Body != nil && page.Body.AtlasDocFormat != nil {
		current = []byte(page.Body.AtlasDocFormat.Value)
	}

	var addition interface{}
	if content, ok := arguments["content"]; ok && content != nil && content != "" {
		addition = content
	}

	body := appendContent(coerceDocument(current), addition)

	bodyValue, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal updated content: %v", err)
	}

	spaceID, err := strconv.Atoi(page.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space ID %q: %v", page.SpaceID, err)
	}

	payload := &models.PageUpdatePayloadScheme{
		ID:      pageIDInt,
		SpaceID: spaceID,
		Status:  "current",
		Title:   page.Title,
		Body: &models.PageBodyRepresentationScheme{
			Representation: "atlas_doc_format",
			Value:          string(bodyValue),
		},
		Version: &models.PageUpdatePayloadVersionScheme{
			Number:  page.Version.Number + 1,
			Message: fmt.Sprintf("Updated to version %d", page.Version.Number+1),
		},
	}

	if title, ok := arguments["title"].(string); ok && title != "" {
		payload.Title = title
	}

	if versionStr, ok := arguments["version_number"].(string); ok && versionStr != "" {
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid version_number: %v", err)
		}
		payload.Version.Number = version
	}

	updatedPage, response, err := client.Page.Update(ctxWithTimeout, pageIDInt, payload)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to update page: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to update page: %v", err)
	}

	result := fmt.Sprintf("Page updated successfully!\nTitle: %s\nID: %s\nStatus: %s",
		updatedPage.Title,
		updatedPage.ID,
		updatedPage.Status,
	)
	if updatedPage.Version != nil {
		result += fmt.Sprintf("\nVersion: %d", updatedPage.Version.Number)
	}

	return mcp.NewToolResultText(result), nil
}

// appendContent returns a copy of body with the coerced addition appended.
func appendContent(body *adf.Document, addition interface{}) *adf.Document {
	blocks := make([]*adf.Node, 0, len(body.Content))
	for _, n := range body.Content {
		blocks = append(blocks, n.Clone())
	}
	if addition != nil {
		blocks = append(blocks, documentArgument(addition).Content...)
	}

	out := adf.NewDocument(blocks...)
	out.Version = body.Version
	return out
}

func confluenceCompareHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	client := services.ConfluenceClient()

	pageID, ok := arguments["page_id"].(string)
	if !ok || pageID == "" {
		return nil, fmt.Errorf("valid page_id argument is required")
	}

	pageIDInt, err := strconv.Atoi(pageID)
	if err != nil {
		return nil, fmt.Errorf("invalid page ID: %v", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	latestPage, response, err := client.Page.Get(ctxWithTimeout, pageIDInt, "atlas_doc_format", false, -1)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to get latest version: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to get latest version: %v", err)
	}

	if latestPage == nil || latestPage.Version == nil {
		return nil, fmt.Errorf("failed to get page version information")
	}

	sourceNum, targetNum, err := compareRange(latestPage.Version.Number, arguments)
	if err != nil {
		return nil, err
	}

	fetch := func(version int) (*models.PageScheme, error) {
		if version == latestPage.Version.Number {
			return latestPage, nil
		}
		page, resp, err := client.Page.Get(ctxWithTimeout, pageIDInt, "atlas_doc_format", false, version)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("failed to get version %d: %s (endpoint: %s)", version, resp.Bytes.String(), resp.Endpoint)
			}
			return nil, fmt.Errorf("failed to get version %d: %v", version, err)
		}
		return page, nil
	}

	sourcePage, err := fetch(sourceNum)
	if err != nil {
		return nil, err
	}
	targetPage, err := fetch(targetNum)
	if err != nil {
		return nil, err
	}

	renderer := defaultRenderer()
	diffs := performSemanticDiff(
		pageMarkdown(ctx, renderer, sourcePage).Markdown,
		pageMarkdown(ctx, renderer, targetPage).Markdown,
	)

	var comparison strings.Builder
	comparison.WriteString(fmt.Sprintf("Comparing Page: %s (ID: %d)\n", targetPage.Title, pageIDInt))
	comparison.WriteString(fmt.Sprintf("Comparing versions: %d → %d\n\n", sourceNum, targetNum))

	if sourcePage.Title != targetPage.Title {
		comparison.WriteString("Title Changes:\n")
		comparison.WriteString(fmt.Sprintf("- Version %d: %s\n", sourceNum, sourcePage.Title))
		comparison.WriteString(fmt.Sprintf("+ Version %d: %s\n\n", targetNum, targetPage.Title))
	} else {
		comparison.WriteString(fmt.Sprintf("Title: %s (unchanged)\n\n", sourcePage.Title))
	}

	if sourcePage.Version != nil && targetPage.Version != nil {
		comparison.WriteString("Version Information:\n")
		comparison.WriteString(fmt.Sprintf("Source (v%d): Created %s\n", sourcePage.Version.Number, sourcePage.Version.CreatedAt))
		comparison.WriteString(fmt.Sprintf("Target (v%d): Created %s\n\n", targetPage.Version.Number, targetPage.Version.CreatedAt))
	}

	comparison.WriteString("Content Changes:\n")
	comparison.WriteString("=================\n")
	comparison.WriteString(diffs)

	return mcp.NewToolResultText(comparison.String()), nil
}

// compareRange picks the versions to compare: by default the latest one and
// the one before it.
func compareRange(latest int, arguments map[string]interface{}) (int, int, error) {
	targetNum := latest
	if v, ok := intArgument(arguments, "target_version"); ok && v > 0 {
		targetNum = v
	}
	sourceNum := targetNum - 1
	if v, ok := intArgument(arguments, "source_version"); ok && v > 0 {
		sourceNum = v
	}

	if sourceNum <= 0 || targetNum <= 0 || sourceNum >= targetNum || targetNum > latest {
		return 0, 0, fmt.Errorf("invalid version numbers: source=%d, target=%d", sourceNum, targetNum)
	}
	return sourceNum, targetNum, nil
}
