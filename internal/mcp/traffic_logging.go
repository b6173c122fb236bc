package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			sessionID := safeSessionID(req)
			if sessionID == "" {
				sessionID = getSessionID(ctx)
			}
			rawParams := safeParams(req)
			attrs := []any{"direction", direction, "method", method, "session_id", sessionID, "role", getRole(ctx)}
			attrs = append(attrs, toolAttrs(rawParams)...)

			logger.Debug("mcp traffic", append(attrs, "stage", "request", "params", formatPayload(rawParams))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs = append(attrs, "stage", "response", "elapsed", time.Since(start), "result", formatPayload(result))
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				attrs = append(attrs, "tool_error", true)
			}
			logger.Debug("mcp traffic", attrs...)

			return result, err
		}
	}
}

// toolAttrs names the tool and record module of a tools/call request.
func toolAttrs(params any) []any {
	call, ok := params.(*sdkmcp.CallToolParamsRaw)
	if !ok || call == nil {
		return nil
	}
	attrs := []any{"tool", call.Name}
	var args struct {
		Module string `json:"module"`
	}
	if len(call.Arguments) > 0 && json.Unmarshal(call.Arguments, &args) == nil && args.Module != "" {
		attrs = append(attrs, "module", args.Module)
	}
	return attrs
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	defer func() { recover() }()
	return session.ID()
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
