package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// MemoryBackend keeps everything in process memory. It is the fallback
// when the configured backend cannot be opened.
type MemoryBackend struct {
	mu       sync.RWMutex
	tasks    []*task.Task
	settings map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{settings: make(map[string]string)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) LoadAll(ctx context.Context) ([]*task.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTasks(m.tasks), nil
}

func (m *MemoryBackend) SaveAll(ctx context.Context, tasks []*task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = cloneTasks(tasks)
	return nil
}

func (m *MemoryBackend) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryBackend) SaveSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

func cloneTasks(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
