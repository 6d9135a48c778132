package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// writer saves collection snapshots in the background. Only the newest
// pending snapshot is written; older ones are superseded. A nil repo
// accepts snapshots and drops them.
type writer struct {
	repo    task.Repository
	logger  *slog.Logger
	metrics observability.Metrics
	clock   clockwork.Clock
	timeout time.Duration

	mu         sync.Mutex
	pending    []*task.Task
	hasPending bool
	requested  uint64
	completed  uint64
	lastErr    error
	progress   chan struct{} // closed and replaced after every write
	closed     bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newWriter(repo task.Repository, logger *slog.Logger, metrics observability.Metrics, clock clockwork.Clock, timeout time.Duration) *writer {
	w := &writer{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		timeout:  timeout,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// request queues a snapshot. It never blocks.
func (w *writer) request(snapshot []*task.Task) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = snapshot
	w.hasPending = true
	w.requested++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// flush waits until every snapshot requested so far has been written and
// returns the outcome of the latest write.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.requested
	for w.completed < target {
		ch := w.progress
		w.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		w.mu.Lock()
	}
	err := w.lastErr
	w.mu.Unlock()
	return err
}

// close writes whatever is pending and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
	} else {
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writePending()
		case <-w.quit:
			w.writePending()
			return
		}
	}
}

func (w *writer) writePending() {
	w.mu.Lock()
	snapshot, has, seq := w.pending, w.hasPending, w.requested
	w.pending, w.hasPending = nil, false
	w.mu.Unlock()

	var err error
	if has {
		err = w.save(snapshot)
	}

	w.mu.Lock()
	w.completed = seq
	if has {
		w.lastErr = err
	}
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
}

func (w *writer) save(snapshot []*task.Task) error {
	if w.repo == nil {
		w.logger.Debug("storage detached, snapshot kept in memory", "tasks", len(snapshot))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := w.clock.Now()
	err := w.repo.SaveAll(ctx, snapshot)
	w.metrics.Timing(observability.MetricPersistSaveDuration, w.clock.Since(start))

	if err != nil {
		perr := &PersistenceError{Op: "save", Err: err}
		w.metrics.Counter(observability.MetricPersistSaveFailed, 1)
		w.logger.Warn("failed to persist tasks",
			observability.OperationKey, "persist.save",
			observability.ErrorKey, perr,
			"tasks", len(snapshot),
		)
		return perr
	}

	w.metrics.Counter(observability.MetricPersistSaveOK, 1)
	w.logger.Debug("tasks persisted", "tasks", len(snapshot))
	return nil
}
