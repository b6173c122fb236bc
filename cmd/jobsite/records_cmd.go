package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rpggio/jobsite/internal/app"
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/spf13/cobra"
)

type exportOutput struct {
	export.Result
	Path string `json:"path"`
}

// moduleFor resolves the role's scope and the named module. The returned
// context carries the principal so activity is attributed to it.
func moduleFor(ctx context.Context, a *app.App, role, name string) (context.Context, scope.Scope, record.Module, error) {
	principal := auth.Principal{UserID: "cli", Role: role}
	sc, err := a.Scopes.For(principal)
	if err != nil {
		return nil, scope.Scope{}, nil, err
	}
	mod, err := a.Modules.Get(name)
	if err != nil {
		return nil, scope.Scope{}, nil, err
	}
	return auth.WithPrincipal(ctx, principal), sc, mod, nil
}

func newExportCmd() *cobra.Command {
	var (
		module   string
		role     string
		format   string
		fileName string
		dir      string
		filters  filterFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a filtered module list as pdf, excel or csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(os.Stderr, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			a, err := rt.app(cmd.Context())
			if err != nil {
				return err
			}
			ctx, sc, mod, err := moduleFor(cmd.Context(), a, role, module)
			if err != nil {
				return err
			}

			if dir == "" {
				dir = rt.cfg.Export.Dir
			}
			sink := export.DirSink{Dir: dir}
			res, err := mod.Export(ctx, sc, filters.state(), export.Options{Format: export.LookupFormat(format), FileName: fileName}, sink)
			if err != nil {
				return fmt.Errorf("export %s: %w", module, err)
			}
			return writeJSON(exportOutput{Result: res, Path: sink.Path(res.FileName)})
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "Module to export: procurement, permit or constraint (required)")
	cmd.Flags().StringVar(&role, "role", "executive", "Role whose scope limits the export")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: pdf, excel or csv")
	cmd.Flags().StringVar(&fileName, "file", "", "File name (default <module>-export)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	filters.register(cmd)
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var (
		module  string
		role    string
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the KPI stats of a filtered module list",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(os.Stderr, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			a, err := rt.app(cmd.Context())
			if err != nil {
				return err
			}
			ctx, sc, mod, err := moduleFor(cmd.Context(), a, role, module)
			if err != nil {
				return err
			}
			stats, err := mod.Stats(ctx, sc, filters.state())
			if err != nil {
				return err
			}
			return writeJSON(stats)
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "Module to summarise (required)")
	cmd.Flags().StringVar(&role, "role", "executive", "Role whose scope limits the list")
	filters.register(cmd)
	_ = cmd.MarkFlagRequired("module")
	return cmd
}
