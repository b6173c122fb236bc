package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/jobsite/internal/app"
	"github.com/rpggio/jobsite/internal/config"
	"github.com/rpggio/jobsite/internal/mcp"
	"github.com/rpggio/jobsite/internal/transport"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		mode string
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP tools over http, or MCP over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout clean for JSON-RPC in stdio mode.
			var console io.Writer = os.Stdout
			if mode == "stdio" {
				console = os.Stderr
			}
			rt, err := openRuntime(console, func(cfg *config.Config) {
				if mode != "" {
					cfg.Transport.Mode = mode
				}
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if seed {
				res, err := app.Seed(ctx, rt.db)
				if err != nil {
					return err
				}
				rt.logger.Info("seeded fixtures", "projects", res.Projects, "procurement", res.Procurement, "permits", res.Permits, "constraints", res.Constraints)
			}

			a, err := rt.app(ctx)
			if err != nil {
				return err
			}

			mcpServer := mcp.NewServer(mcp.Config{
				Modules:       a.Modules,
				Scopes:        a.Scopes,
				Activity:      a.Activity,
				ExportDir:     rt.cfg.Export.Dir,
				Resolver:      a.APIKeys,
				AuthEnabled:   rt.cfg.Auth.Enabled,
				RoleHeader:    rt.cfg.Auth.RoleHeader,
				DefaultRole:   rt.cfg.Auth.DefaultRole,
				TransportMode: rt.cfg.Transport.Mode,
				Logger:        rt.logger,
			})

			if rt.cfg.Transport.Mode == "stdio" {
				return runStdioMode(ctx, rt.logger, mcpServer)
			}
			return runHTTPMode(ctx, rt, a, mcpServer)
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "Transport mode: http or stdio (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Write the fixture projects and records before serving")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, rt *runtime, a *app.App, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	cfg := transport.Config{
		Modules:     a.Modules,
		Activity:    a.Activity,
		Scopes:      a.Scopes,
		RoleHeader:  rt.cfg.Auth.RoleHeader,
		CORSOrigins: rt.cfg.Server.CORSOrigins,
		MCP:         mcpHandler,
		Logger:      rt.logger,
	}
	if rt.cfg.Auth.Enabled {
		cfg.Auth = transport.AuthMiddleware(a.APIKeys)
	}

	addr := fmt.Sprintf("%s:%d", rt.cfg.Server.Host, rt.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("server listening", "addr", addr, "auth", rt.cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return shutdown(rt.logger, httpServer)
}

func shutdown(logger *slog.Logger, server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
