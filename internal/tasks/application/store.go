// Package application holds the task list use cases: the TaskStore, its
// per-task timers, and background persistence.
package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

const (
	DefaultTickInterval   = time.Second
	DefaultFlushEvery     = 10
	DefaultPersistTimeout = 5 * time.Second
)

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithClock sets the clock used for timestamps and timer ticks.
func WithClock(c clockwork.Clock) Option {
	return func(s *TaskStore) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskStore) { s.logger = l }
}

// WithPublisher sets where change events go.
func WithPublisher(p eventbus.Publisher) Option {
	return func(s *TaskStore) { s.publisher = p }
}

func WithMetrics(m observability.Metrics) Option {
	return func(s *TaskStore) { s.metrics = m }
}

// WithTickInterval sets the period of one timer second.
func WithTickInterval(d time.Duration) Option {
	return func(s *TaskStore) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithFlushEvery makes running timers persist whenever their elapsed
// seconds reach a multiple of n.
func WithFlushEvery(n int) Option {
	return func(s *TaskStore) {
		if n > 0 {
			s.flushEvery = n
		}
	}
}

// WithPersistTimeout bounds each background write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *TaskStore) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// AddTaskCommand contains the data needed to add a task.
type AddTaskCommand struct {
	Title    string
	Priority string
	DueDate  string
}

// Stats summarizes the collection.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	Running        int
	TrackedSeconds int64
}

// TaskStore owns the ordered task collection, newest first. Its mutex is
// the single execution context for every mutation and timer tick.
type TaskStore struct {
	mu     sync.Mutex
	tasks  []*task.Task
	timers *TimerRegistry
	writer *writer
	closed bool
	// loadErr is set when the initial load failed. The store then never
	// writes to repo, so stored data it could not read stays intact.
	loadErr error

	repo           task.Repository
	publisher      eventbus.Publisher
	clock          clockwork.Clock
	logger         *slog.Logger
	metrics        observability.Metrics
	tickInterval   time.Duration
	flushEvery     int
	persistTimeout time.Duration
}

// NewTaskStore loads the collection once from repo. A failed load is
// logged, the store starts empty and keeps its changes in memory only.
func NewTaskStore(ctx context.Context, repo task.Repository, opts ...Option) *TaskStore {
	s := &TaskStore{
		repo:           repo,
		publisher:      eventbus.NoopPublisher{},
		clock:          clockwork.NewRealClock(),
		logger:         slog.Default(),
		metrics:        observability.NoopMetrics{},
		tickInterval:   DefaultTickInterval,
		flushEvery:     DefaultFlushEvery,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timers = newTimerRegistry(s)

	saveTo := repo
	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		perr := &PersistenceError{Op: "load", Err: err}
		s.metrics.Counter(observability.MetricPersistLoadFailed, 1)
		s.logger.Warn("failed to load tasks, starting empty and not saving",
			observability.OperationKey, "persist.load",
			observability.ErrorKey, perr,
		)
		s.loadErr = perr
		saveTo = nil
		loaded = nil
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt().After(loaded[j].CreatedAt())
	})
	s.tasks = loaded

	s.writer = newWriter(saveTo, s.logger, s.metrics, s.clock, s.persistTimeout)
	return s
}

// LoadErr returns the initial load failure, or nil. When it is non-nil
// nothing the store holds is written to storage.
func (s *TaskStore) LoadErr() error {
	return s.loadErr
}

// Timers returns the store's timer registry.
func (s *TaskStore) Timers() *TimerRegistry {
	return s.timers
}

// Add validates the command and prepends a new pending task. The title
// is checked first, then priority, then due date.
func (s *TaskStore) Add(ctx context.Context, cmd AddTaskCommand) (TaskView, error) {
	if strings.TrimSpace(cmd.Title) == "" {
		return TaskView{}, task.ErrEmptyTitle
	}
	priority, err := value_objects.ParsePriority(cmd.Priority)
	if err != nil {
		return TaskView{}, err
	}
	due, err := value_objects.ParseDueDate(cmd.DueDate)
	if err != nil {
		return TaskView{}, err
	}

	s.mu.Lock()
	t, err := task.NewTask(cmd.Title, priority, due, s.clock.Now())
	if err != nil {
		s.mu.Unlock()
		return TaskView{}, err
	}
	s.tasks = append([]*task.Task{t}, s.tasks...)
	view := newTaskView(t, false)
	events := s.commitLocked(t)
	s.mu.Unlock()

	s.logger.Debug("task added", "task_id", view.ID)
	s.publish(ctx, events)
	return view, nil
}

// ToggleComplete flips a task's completion. Completing a task discards its
// timer. The bool is false when no task has the id.
func (s *TaskStore) ToggleComplete(ctx context.Context, id string) (TaskView, bool) {
	s.mu.Lock()
	t := s.findLocked(id)
	if t == nil {
		s.mu.Unlock()
		return TaskView{}, false
	}
	if t.ToggleComplete() {
		s.timers.discardLocked(id)
	}
	view := newTaskView(t, s.timers.isRunningLocked(id))
	events := s.commitLocked(t)
	s.mu.Unlock()

	s.publish(ctx, events)
	return view, true
}

// Remove deletes a task and its timer. The bool is false when no task has
// the id.
func (s *TaskStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	t := s.tasks[idx]
	s.timers.discardLocked(id)
	s.tasks = append(s.tasks[:idx:idx], s.tasks[idx+1:]...)
	t.MarkRemoved()
	events := s.commitLocked(t)
	s.mu.Unlock()

	s.publish(ctx, events)
	return true
}

// List returns the filtered, searched and sorted view. The store is not
// modified.
func (s *TaskStore) List(q ListQuery) []TaskView {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	s.mu.Lock()
	views := make([]TaskView, 0, len(s.tasks))
	for _, t := range s.tasks {
		if q.Filter.Matches(t) && matchesSearch(t, needle) {
			views = append(views, newTaskView(t, s.timers.isRunningLocked(t.ID())))
		}
	}
	s.mu.Unlock()

	sortViews(views)
	return views
}

// Get returns the task with exactly this id.
func (s *TaskStore) Get(id string) (TaskView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return TaskView{}, false
	}
	return newTaskView(t, s.timers.isRunningLocked(id)), true
}

// Lookup resolves a full id or a unique id prefix.
func (s *TaskStore) Lookup(idOrPrefix string) (TaskView, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return TaskView{}, ErrTaskNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.findLocked(idOrPrefix); t != nil {
		return newTaskView(t, s.timers.isRunningLocked(t.ID())), nil
	}

	var match *task.Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID(), idOrPrefix) {
			if match != nil {
				return TaskView{}, ErrAmbiguousID
			}
			match = t
		}
	}
	if match == nil {
		return TaskView{}, ErrTaskNotFound
	}
	return newTaskView(match, s.timers.isRunningLocked(match.ID())), nil
}

// Len returns the number of tasks.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stats summarizes the collection.
func (s *TaskStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.tasks), Running: len(s.timers.runningLocked())}
	for _, t := range s.tasks {
		if t.IsCompleted() {
			st.Completed++
		}
		st.TrackedSeconds += t.ElapsedSeconds()
	}
	st.Pending = st.Total - st.Completed
	return st
}

// Flush waits until every mutation so far has reached the backend and
// returns the outcome of the latest write.
func (s *TaskStore) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close stops all timers, writes the final state and stops the writer.
func (s *TaskStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	changed := s.timers.stopAllLocked()
	var events []domain.DomainEvent
	for _, t := range changed {
		events = append(events, t.PullDomainEvents()...)
	}
	if len(changed) > 0 {
		s.requestFlushLocked()
	}
	s.mu.Unlock()

	s.publish(ctx, events)
	return s.writer.close(ctx)
}

// commitLocked hands a snapshot to the writer and drains t's events.
func (s *TaskStore) commitLocked(t *task.Task) []domain.DomainEvent {
	s.requestFlushLocked()
	return t.PullDomainEvents()
}

func (s *TaskStore) requestFlushLocked() {
	snapshot := make([]*task.Task, len(s.tasks))
	for i, t := range s.tasks {
		snapshot[i] = t.Clone()
	}
	s.writer.request(snapshot)
}

func (s *TaskStore) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) findLocked(id string) *task.Task {
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i]
	}
	return nil
}

// publish runs outside the lock so consumers may call back into the store.
func (s *TaskStore) publish(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := eventbus.PublishDomainEvents(ctx, s.publisher, events); err != nil {
		s.logger.Debug("event publish failed", observability.ErrorKey, err)
		return
	}
	s.metrics.Counter(observability.MetricEventsPublished, int64(len(events)))
}
