package task

import (
	"context"
)

// Repository defines the interface for task persistence. Implementations
// store and return the whole collection at once.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Task, error)
	SaveAll(ctx context.Context, tasks []*Task) error
}
