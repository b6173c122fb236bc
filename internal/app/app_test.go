package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/jobsite/internal/app"
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/config"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/rpggio/jobsite/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_AssignmentsFromProjects(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	_, err := app.Seed(ctx, db)
	require.NoError(t, err)

	a, err := app.New(ctx, config.Default(), db, nil)
	require.NoError(t, err)

	exec := a.Resolver.Resolve("executive")
	require.Equal(t, 3, exec.ProjectCount)

	pe := a.Resolver.Resolve("project-executive")
	require.ElementsMatch(t, []string{"harbor-tower", "riverside-clinic"}, pe.ProjectIDs)

	pm := a.Resolver.Resolve("project-manager")
	require.Equal(t, []string{"harbor-tower"}, pm.ProjectIDs)

	names := make([]string, 0)
	for _, m := range a.Modules.List() {
		names = append(names, m.Name())
	}
	require.Equal(t, []string{"procurement", "permit", "constraint"}, names)
}

func TestNew_ExplicitPortfolio(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	_, err := app.Seed(ctx, db)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Scope.PortfolioProjects = []string{"north-depot"}
	a, err := app.New(ctx, cfg, db, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"north-depot"}, a.Resolver.Resolve("project-executive").ProjectIDs)
}

func TestNew_PolicyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte("p, project-manager, records, approve\n"), 0o644))

	cfg := config.Default()
	cfg.Scope.PolicyPath = path
	a, err := app.New(ctx, cfg, newDB(t), nil)
	require.NoError(t, err)

	pm := a.Resolver.Resolve("project-manager")
	require.True(t, pm.Can(scope.ActionApprove))
	require.False(t, pm.Can(scope.ActionExport))
}

func TestNew_StrictRoles(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.StrictRoles = true
	a, err := app.New(context.Background(), cfg, newDB(t), nil)
	require.NoError(t, err)

	_, err = a.Scopes.For(auth.Principal{Role: "guest"})
	require.ErrorIs(t, err, scope.ErrUnknownRole)
}
