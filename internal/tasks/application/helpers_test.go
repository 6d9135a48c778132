package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// recordingRepo keeps every snapshot it is asked to save.
type recordingRepo struct {
	mu      sync.Mutex
	initial []*task.Task
	loadErr error
	saveErr error
	saves   [][]*task.Task
	block   chan struct{} // when set, SaveAll waits for it
}

func (r *recordingRepo) LoadAll(ctx context.Context) ([]*task.Task, error) {
	return r.initial, r.loadErr
}

func (r *recordingRepo) SaveAll(ctx context.Context, tasks []*task.Task) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, tasks)
	return r.saveErr
}

func (r *recordingRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingRepo) lastSave() []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

type fixture struct {
	store   *TaskStore
	repo    *recordingRepo
	clock   clockwork.FakeClock
	metrics *observability.InMemoryMetrics
}

func newFixture(t *testing.T, repo *recordingRepo, opts ...Option) *fixture {
	t.Helper()
	if repo == nil {
		repo = &recordingRepo{}
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	metrics := observability.NewInMemoryMetrics()
	base := []Option{
		WithClock(clock),
		WithLogger(observability.Discard()),
		WithMetrics(metrics),
	}
	store := NewTaskStore(context.Background(), repo, append(base, opts...)...)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return &fixture{store: store, repo: repo, clock: clock, metrics: metrics}
}

func (f *fixture) add(t *testing.T, title, priority string) TaskView {
	t.Helper()
	v, err := f.store.Add(context.Background(), AddTaskCommand{Title: title, Priority: priority})
	require.NoError(t, err)
	// keep creation times distinct
	f.clock.Advance(time.Millisecond)
	return v
}

// tick advances one timer second and waits for the task to reach want.
func (f *fixture) tick(t *testing.T, id string, want int64) {
	t.Helper()
	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		v, ok := f.store.Get(id)
		return ok && v.ElapsedSeconds == want
	}, time.Second, time.Millisecond)
}

func mustTask(t *testing.T, id, title string, p value_objects.Priority, completed bool, created time.Time) *task.Task {
	t.Helper()
	tk, err := task.Rehydrate(id, title, p, value_objects.DueDate{}, completed, 0, created)
	require.NoError(t, err)
	return tk
}
