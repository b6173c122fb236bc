package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/jobsite/internal/auth"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
)

// getSessionID extracts session ID from context.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// getRole extracts the principal's role from context.
func getRole(ctx context.Context) string {
	p, _ := auth.FromContext(ctx)
	return p.Role
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver auth.Resolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", auth.ErrUnauthorized)
			}

			header := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", auth.ErrUnauthorized)
			}

			principal, err := resolver.ResolvePrincipal(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", auth.ErrUnauthorized, err)
			}

			return next(auth.WithPrincipal(ctx, principal), method, req)
		}
	}
}

// noAuthMiddleware trusts a role from the role header (HTTP) or _meta.role
// (stdio), falling back to defaultRole.
func noAuthMiddleware(roleHeader, defaultRole string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			role := ""
			if extra := req.GetExtra(); extra != nil && extra.Header != nil && roleHeader != "" {
				role = extra.Header.Get(roleHeader)
			}
			if role == "" {
				role = metaString(req, "role")
			}
			if role == "" {
				role = defaultRole
			}
			return next(auth.WithPrincipal(ctx, auth.Principal{Role: role}), method, req)
		}
	}
}

// metaString reads a string from the request's _meta. Some notifications
// (like "initialized") have nil params, and GetMeta on a nil underlying value
// panics, so the lookup is guarded.
func metaString(req sdkmcp.Request, key string) (value string) {
	params := req.GetParams()
	if params == nil {
		return ""
	}
	defer func() { recover() }()
	if meta := params.GetMeta(); meta != nil {
		value, _ = meta[key].(string)
	}
	return value
}

// sessionMiddleware extracts session ID from Mcp-Session-Id header (HTTP) or metadata (stdio).
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string

			// Try HTTP header first (HTTP transport)
			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get("Mcp-Session-Id")
			}

			// If not in header, check metadata (stdio transport)
			if sessionID == "" {
				sessionID = metaString(req, "session_id")
			}

			// Inject session ID into context if present
			if sessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			}

			return next(ctx, method, req)
		}
	}
}
