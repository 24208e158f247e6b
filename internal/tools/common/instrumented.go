package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolRecorder records tool invocation metrics. *instrumentation.Metrics
// implements it.
type ToolRecorder interface {
	RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration)
}

// InstrumentedToolHandler wraps a tool handler with a span, metrics and a log
// line per invocation. recorder and logger may be nil.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", metrics, logger, handler))
func InstrumentedToolHandler(toolName string, recorder ToolRecorder, logger *slog.Logger, handler ToolHandler) ToolHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithTool(logger, toolName)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
		default:
			instrumentation.SetSpanSuccess(span)
		}

		if recorder != nil {
			recorder.RecordToolInvocation(ctx, toolName, status, duration)
		}

		logger.InfoContext(ctx, "tool invoked",
			logging.Status(status),
			slog.Duration("duration", duration),
			slog.String("trace_id", instrumentation.GetTraceID(ctx)),
			logging.Err(err))

		return result, err
	}
}
