package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/jobsite/internal/domain/project"
	"github.com/rpggio/jobsite/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{
		ID:          "p1",
		Name:        "Harbor Tower",
		Description: "32-storey mixed use",
		Portfolio:   "west",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, proj))

	retrieved, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, proj.Name, retrieved.Name)
	require.Equal(t, proj.Description, retrieved.Description)
	require.Equal(t, "west", retrieved.Portfolio)

	_, err = repo.Get(ctx, "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_Duplicate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &project.Project{ID: "p1", Name: "A", CreatedAt: time.Now()}))
	err := repo.Create(ctx, &project.Project{ID: "p1", Name: "B", CreatedAt: time.Now()})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestProjectRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	for _, p := range []project.Project{
		{ID: "p2", Name: "Riverside Clinic"},
		{ID: "p1", Name: "Harbor Tower"},
	} {
		p := p
		p.CreatedAt = time.Now()
		require.NoError(t, repo.Create(ctx, &p))
	}

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "Harbor Tower", projects[0].Name)
	require.Equal(t, "Riverside Clinic", projects[1].Name)
}
