// Package app wires storage, domain services and scope resolution into the
// components the transports serve.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/config"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/constraint"
	"github.com/rpggio/jobsite/internal/domain/permit"
	"github.com/rpggio/jobsite/internal/domain/procurement"
	"github.com/rpggio/jobsite/internal/domain/project"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/fixtures"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/rpggio/jobsite/internal/sqlite"
)

// App holds the wired services.
type App struct {
	DB       *sqlite.DB
	Projects *project.Service
	Activity *activity.Service
	APIKeys  *sqlite.APIKeyRepository
	Exporter *export.Coordinator
	Modules  *record.Registry
	Resolver *scope.Resolver
	Scopes   *auth.Scopes
}

// New builds the application over db. Project assignments for the scope
// resolver are read once, so seed before calling New.
func New(ctx context.Context, cfg config.Config, db *sqlite.DB, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	projectSvc := project.NewService(sqlite.NewProjectRepository(db), logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	exporter := export.NewCoordinator(
		export.WithDelay(cfg.Export.Delay),
		export.WithNotifier(export.LogNotifier{Logger: logger}),
		export.WithLogger(logger),
	)

	opts := []record.Option{record.WithSyncDelay(cfg.Sync.Delay)}
	modules := record.NewRegistry(
		record.NewService(procurement.Config(), sqlite.NewRecordStore(db, procurement.Spec()), activitySvc, exporter, logger, opts...).AsModule(),
		record.NewService(permit.Config(), sqlite.NewRecordStore(db, permit.Spec()), activitySvc, exporter, logger, opts...).AsModule(),
		record.NewService(constraint.Config(), sqlite.NewRecordStore(db, constraint.Spec()), activitySvc, exporter, logger, opts...).AsModule(),
	)

	policy, err := loadPolicy(cfg.Scope.PolicyPath)
	if err != nil {
		return nil, err
	}
	assignments, err := loadAssignments(ctx, projectSvc, cfg.Scope)
	if err != nil {
		return nil, err
	}
	resolver := scope.NewResolver(policy, assignments, logger)

	return &App{
		DB:       db,
		Projects: projectSvc,
		Activity: activitySvc,
		APIKeys:  sqlite.NewAPIKeyRepository(db),
		Exporter: exporter,
		Modules:  modules,
		Resolver: resolver,
		Scopes:   auth.NewScopes(resolver, cfg.Auth.StrictRoles),
	}, nil
}

// Seed writes the embedded fixtures into db, skipping rows that exist.
func Seed(ctx context.Context, db *sqlite.DB) (fixtures.SeedResult, error) {
	return fixtures.Seed(ctx, fixtures.Stores{
		Projects:    sqlite.NewProjectRepository(db),
		Procurement: sqlite.NewRecordStore(db, procurement.Spec()),
		Permits:     sqlite.NewRecordStore(db, permit.Spec()),
		Constraints: sqlite.NewRecordStore(db, constraint.Spec()),
	})
}

func loadPolicy(path string) (*scope.Policy, error) {
	if path == "" {
		return scope.NewPolicy()
	}
	policy, err := scope.NewPolicyFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading policy %s: %w", path, err)
	}
	return policy, nil
}

func loadAssignments(ctx context.Context, projects *project.Service, cfg config.ScopeConfig) (scope.Assignments, error) {
	all, err := projects.IDs(ctx, "")
	if err != nil {
		return scope.Assignments{}, err
	}
	portfolio := cfg.PortfolioProjects
	if len(portfolio) == 0 && cfg.Portfolio != "" {
		if portfolio, err = projects.IDs(ctx, cfg.Portfolio); err != nil {
			return scope.Assignments{}, err
		}
	}
	return scope.Assignments{
		AllProjects: all,
		Portfolio:   portfolio,
		Single:      cfg.SingleProject,
	}, nil
}
