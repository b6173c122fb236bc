package record

import (
	"context"

	"github.com/rpggio/jobsite/internal/domain/activity"
)

// Repository provides persistence for one module's records.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
}

// ActivityRepository logs record activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
