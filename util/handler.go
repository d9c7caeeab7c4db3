package util

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/athapong/adf-mcp/pkg/metrics"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// RequestID returns the id ErrorGuard attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ErrorGuard turns returned errors and panics into error results, so a bad
// call is reported to the client instead of tearing down the server.
func ErrorGuard(handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		id := uuid.NewString()
		ctx = context.WithValue(ctx, requestIDKey{}, id)
		log := Logger().WithFields(logrus.Fields{
			"tool":       request.Params.Name,
			"request_id": id,
		})

		defer func() {
			if r := recover(); r != nil {
				log.WithField("stack", string(debug.Stack())).Errorf("panic in tool handler: %v", r)
				result = mcp.NewToolResultError(fmt.Sprintf("Panic: %v", r))
				err = nil
			}

			status := "ok"
			if result != nil && result.IsError {
				status = "error"
			}
			metrics.ToolCalls.WithLabelValues(request.Params.Name, status).Inc()
		}()

		log.Debug("tool call")
		result, err = handler(ctx, request)
		if err != nil {
			log.WithError(err).Warn("tool call failed")
			return mcp.NewToolResultError(fmt.Sprintf("Error: %s", err.Error())), nil
		}
		return result, nil
	}
}

// AdaptLegacyHandler lets handlers that only need the argument map be
// registered as tool handlers.
func AdaptLegacyHandler(handler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(request.Params.Arguments)
	}
}
