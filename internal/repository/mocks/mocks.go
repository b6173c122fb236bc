package mocks

import (
	"context"

	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordRepository is a mock for record.Repository.
type RecordRepository[T any] struct {
	mock.Mock
}

func (m *RecordRepository[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]T); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository[T]) Get(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *RecordRepository[T]) Create(ctx context.Context, rec T) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *RecordRepository[T]) Update(ctx context.Context, rec T) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
