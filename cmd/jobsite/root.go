package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/jobsite/internal/app"
	"github.com/rpggio/jobsite/internal/config"
	"github.com/rpggio/jobsite/internal/sqlite"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "jobsite",
		Short:        "Role-scoped construction record service",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newExportCmd(),
		newStatsCmd(),
		newKeysCmd(),
	)
	return cmd
}

// runtime is what every subcommand needs: config, logger and an open database.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlite.DB
	closer []io.Closer
}

func (r *runtime) Close() {
	for i := len(r.closer) - 1; i >= 0; i-- {
		r.closer[i].Close()
	}
}

// openRuntime loads config, sets up logging and opens the migrated database.
// console receives log output next to the optional log file.
func openRuntime(console io.Writer, adjust func(*config.Config)) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if adjust != nil {
		adjust(&cfg)
	}

	rt := &runtime{cfg: cfg}

	logWriter := console
	if cfg.Log.Path != "" {
		if err := ensureDir(cfg.Log.Path); err != nil {
			return nil, fmt.Errorf("log file error: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   cfg.Log.Path,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		rt.closer = append(rt.closer, file)
		logWriter = io.MultiWriter(console, file)
	}
	rt.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rt.closer = append(rt.closer, db)
	rt.db = db

	if err := db.RunMigrations(); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return rt, nil
}

func (r *runtime) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, r.cfg, r.db, r.logger)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	return ensureDir(path)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
