package fixtures

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/jobsite/internal/domain/constraint"
	"github.com/rpggio/jobsite/internal/domain/permit"
	"github.com/rpggio/jobsite/internal/domain/procurement"
	"github.com/rpggio/jobsite/internal/domain/project"
	"github.com/rpggio/jobsite/internal/repository"
)

// Creator stores one record.
type Creator[T any] interface {
	Create(ctx context.Context, rec T) error
}

// Stores are the destinations of a seed run.
type Stores struct {
	Projects    project.Repository
	Procurement Creator[procurement.Entry]
	Permits     Creator[permit.Permit]
	Constraints Creator[constraint.Constraint]
}

// SeedResult counts what a seed run inserted. Existing rows are skipped.
type SeedResult struct {
	Projects    int `json:"projects"`
	Procurement int `json:"procurement"`
	Permits     int `json:"permits"`
	Constraints int `json:"constraints"`
}

// Seed writes every fixture into stores.
func Seed(ctx context.Context, stores Stores) (SeedResult, error) {
	var res SeedResult

	projects, err := Projects()
	if err != nil {
		return res, err
	}
	for i := range projects {
		added, err := insert(ctx, stores.Projects.Create, &projects[i])
		if err != nil {
			return res, fmt.Errorf("seeding project %s: %w", projects[i].ID, err)
		}
		res.Projects += added
	}

	if res.Procurement, err = seedAll(ctx, Procurement, stores.Procurement); err != nil {
		return res, err
	}
	if res.Permits, err = seedAll(ctx, Permits, stores.Permits); err != nil {
		return res, err
	}
	if res.Constraints, err = seedAll(ctx, Constraints, stores.Constraints); err != nil {
		return res, err
	}
	return res, nil
}

func seedAll[T any](ctx context.Context, loader func() ([]T, error), store Creator[T]) (int, error) {
	if store == nil {
		return 0, nil
	}
	records, err := loader()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range records {
		added, err := insert(ctx, store.Create, rec)
		if err != nil {
			return n, fmt.Errorf("seeding record: %w", err)
		}
		n += added
	}
	return n, nil
}

func insert[T any](ctx context.Context, create func(context.Context, T) error, rec T) (int, error) {
	err := create(ctx, rec)
	if errors.Is(err, repository.ErrConflict) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}
