package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/pkg/config"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

func testConfig(storageURL string) *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		StorageURL:              storageURL,
		RedisPrefix:             "gestaches-test",
		TimerTickInterval:       time.Second,
		TimerFlushEvery:         10,
		PersistTimeout:          time.Second,
		BreakerFailureThreshold: 3,
		BreakerOpenTimeout:      time.Second,
	}
}

func TestNewContainer_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(filepath.Join(t.TempDir(), "tasks.db"))

	c, err := NewContainer(ctx, cfg, observability.Discard())
	require.NoError(t, err)
	require.NoError(t, c.StorageErr)
	assert.Equal(t, "sqlite", c.Backend.Name())

	added, err := c.TaskStore.Add(ctx, application.AddTaskCommand{Title: "Write report", Priority: "high"})
	require.NoError(t, err)
	require.NoError(t, c.SettingsService.Set(ctx, "theme", "dark"))
	require.NoError(t, c.Close(ctx))

	reopened, err := NewContainer(ctx, cfg, observability.Discard())
	require.NoError(t, err)
	defer reopened.Close(ctx)

	got, ok := reopened.TaskStore.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "high", got.Priority.String())

	theme, found, err := reopened.SettingsService.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", theme)
}

func TestNewContainer_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()

	c, err := NewContainer(ctx, testConfig("ftp://example.com/tasks"), observability.Discard())
	require.NoError(t, err)
	defer c.Close(ctx)

	var perr *application.PersistenceError
	require.ErrorAs(t, c.StorageErr, &perr)
	assert.Equal(t, "open", perr.Op)
	assert.Equal(t, "memory", c.Backend.Name())

	_, err = c.TaskStore.Add(ctx, application.AddTaskCommand{Title: "Still works"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.TaskStore.Len())
}

func TestNewContainer_InvalidRecordKeepsValidTasks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1, "tasks": [
		{"id": "keep-1", "title": "Keep me", "priority": "high", "completed": false, "elapsedTime": 120, "createdAt": "2026-02-03T04:05:06Z"},
		{"id": "bad-2", "title": "Broken", "priority": "urgent", "completed": false, "elapsedTime": 0, "createdAt": "2026-02-03T04:05:06Z"}
	]}`), 0o644))
	cfg := testConfig(path)

	c, err := NewContainer(ctx, cfg, observability.Discard())
	require.NoError(t, err)
	require.NoError(t, c.StorageErr)
	assert.Equal(t, 1, c.TaskStore.Len())
	_, err = c.TaskStore.Add(ctx, application.AddTaskCommand{Title: "New"})
	require.NoError(t, err)
	require.NoError(t, c.Close(ctx))

	reopened, err := NewContainer(ctx, cfg, observability.Discard())
	require.NoError(t, err)
	defer reopened.Close(ctx)

	kept, ok := reopened.TaskStore.Get("keep-1")
	require.True(t, ok)
	assert.Equal(t, int64(120), kept.ElapsedSeconds)
	assert.Equal(t, 2, reopened.TaskStore.Len())
}

func TestNewContainer_UnreadableStorageIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")
	original := []byte("{not json")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	c, err := NewContainer(ctx, testConfig(path), observability.Discard())
	require.NoError(t, err)

	var perr *application.PersistenceError
	require.ErrorAs(t, c.StorageErr, &perr)
	assert.Equal(t, "load", perr.Op)

	_, err = c.TaskStore.Add(ctx, application.AddTaskCommand{Title: "New"})
	require.NoError(t, err)
	require.NoError(t, c.Close(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestNewContainer_EventsReachInProcessBus(t *testing.T) {
	ctx := context.Background()

	c, err := NewContainer(ctx, testConfig("memory://"), observability.Discard())
	require.NoError(t, err)
	defer c.Close(ctx)

	var keys []string
	c.InProcessEventBus.RegisterConsumer(eventbus.ConsumerFunc{
		Types: []string{"tasks.task.*"},
		Fn: func(ctx context.Context, event *eventbus.ConsumedEvent) error {
			keys = append(keys, event.RoutingKey)
			return nil
		},
	})

	added, err := c.TaskStore.Add(ctx, application.AddTaskCommand{Title: "Call the plumber"})
	require.NoError(t, err)
	_, ok := c.TaskStore.ToggleComplete(ctx, added.ID)
	require.True(t, ok)

	assert.Equal(t, []string{task.RoutingKeyAdded, task.RoutingKeyCompleted}, keys)
}
