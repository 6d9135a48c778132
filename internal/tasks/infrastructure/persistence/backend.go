// Package persistence stores the task collection and settings in one of
// several backends selected by URL.
package persistence

import (
	"errors"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application/settings"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// ErrBackendUnavailable is returned while a backend's circuit is open.
var ErrBackendUnavailable = errors.New("storage backend unavailable")

// Backend stores both tasks and settings.
type Backend interface {
	task.Repository
	settings.Repository

	// Name identifies the backend in logs, e.g. "sqlite" or "redis".
	Name() string
	Close() error
}
