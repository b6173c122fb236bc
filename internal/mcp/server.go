package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/record"
)

// Config contains server configuration.
type Config struct {
	Modules  *record.Registry
	Scopes   *auth.Scopes
	Activity ActivityService
	// ExportDir receives files written by export_records.
	ExportDir     string
	Resolver      auth.Resolver
	AuthEnabled   bool
	RoleHeader    string
	DefaultRole   string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "jobsite",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth (local dev only)
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.RoleHeader, cfg.DefaultRole))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Modules, cfg.Scopes, cfg.Activity, cfg.ExportDir))

	return server
}
