package application

import (
	"context"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// TimerRegistry runs at most one ticker per task. It shares the store's
// lock, so every tick is applied inside the store's execution context.
//
// Per task id: stopped -> running <-> paused, and reset returns to stopped.
type TimerRegistry struct {
	store   *TaskStore
	entries map[string]*timerEntry
}

type timerEntry struct {
	running bool
	ticker  clockwork.Ticker
	stop    chan struct{}
}

func newTimerRegistry(s *TaskStore) *TimerRegistry {
	return &TimerRegistry{store: s, entries: make(map[string]*timerEntry)}
}

// Start begins or resumes ticking. It reports false and does nothing when
// the task is missing, completed, or already running.
func (r *TimerRegistry) Start(ctx context.Context, id string) bool {
	s := r.store
	s.mu.Lock()
	t := s.findLocked(id)
	if t == nil || t.IsCompleted() || s.closed {
		s.mu.Unlock()
		return false
	}
	e := r.entries[id]
	if e != nil && e.running {
		s.mu.Unlock()
		return false
	}
	if e == nil {
		e = &timerEntry{}
		r.entries[id] = e
	}
	e.running = true
	e.stop = make(chan struct{})
	e.ticker = s.clock.NewTicker(s.tickInterval)
	go r.run(context.WithoutCancel(ctx), id, e.ticker, e.stop)

	t.MarkTimerStarted()
	events := t.PullDomainEvents()
	s.mu.Unlock()

	s.publish(ctx, events)
	return true
}

// Pause stops ticking and keeps the elapsed time. It reports false when
// the task has no running timer.
func (r *TimerRegistry) Pause(ctx context.Context, id string) bool {
	s := r.store
	s.mu.Lock()
	e := r.entries[id]
	t := s.findLocked(id)
	if e == nil || !e.running || t == nil {
		s.mu.Unlock()
		return false
	}
	e.halt()
	t.MarkTimerPaused()
	events := s.commitLocked(t)
	s.mu.Unlock()

	s.publish(ctx, events)
	return true
}

// Reset stops ticking, zeroes the elapsed time and discards the entry,
// whatever state the timer was in. It reports false when the task is
// missing.
func (r *TimerRegistry) Reset(ctx context.Context, id string) bool {
	s := r.store
	s.mu.Lock()
	t := s.findLocked(id)
	if t == nil {
		s.mu.Unlock()
		return false
	}
	r.discardLocked(id)
	t.ResetElapsed()
	events := s.commitLocked(t)
	s.mu.Unlock()

	s.publish(ctx, events)
	return true
}

// IsRunning reports whether the task's timer is ticking.
func (r *TimerRegistry) IsRunning(id string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.isRunningLocked(id)
}

// Running returns the ids of ticking timers, sorted.
func (r *TimerRegistry) Running() []string {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.runningLocked()
}

func (r *TimerRegistry) isRunningLocked(id string) bool {
	e := r.entries[id]
	return e != nil && e.running
}

func (r *TimerRegistry) runningLocked() []string {
	ids := make([]string, 0, len(r.entries))
	for id, e := range r.entries {
		if e.running {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// discardLocked stops and forgets the task's timer, if any.
func (r *TimerRegistry) discardLocked(id string) {
	if e := r.entries[id]; e != nil {
		e.halt()
		delete(r.entries, id)
	}
}

// stopAllLocked pauses every running timer and returns the affected tasks.
func (r *TimerRegistry) stopAllLocked() []*task.Task {
	var paused []*task.Task
	for _, id := range r.runningLocked() {
		r.entries[id].halt()
		if t := r.store.findLocked(id); t != nil {
			t.MarkTimerPaused()
			paused = append(paused, t)
		}
	}
	return paused
}

// run ticks until stop is closed. ctx carries the starting command's
// values, such as its correlation id, but not its cancellation.
func (r *TimerRegistry) run(ctx context.Context, id string, ticker clockwork.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			r.tick(ctx, id, stop)
		}
	}
}

// tick adds one second. A tick whose entry was stopped or replaced in the
// meantime is dropped.
func (r *TimerRegistry) tick(ctx context.Context, id string, stop chan struct{}) {
	s := r.store
	s.mu.Lock()
	select {
	case <-stop:
		s.mu.Unlock()
		return
	default:
	}
	t := s.findLocked(id)
	if t == nil {
		s.mu.Unlock()
		return
	}
	elapsed, ok := t.Tick()
	if !ok {
		s.mu.Unlock()
		return
	}
	var events []domain.DomainEvent
	if elapsed%int64(s.flushEvery) == 0 {
		events = s.commitLocked(t)
	} else {
		events = t.PullDomainEvents()
	}
	s.mu.Unlock()

	s.publish(ctx, events)
}

// halt stops the ticker and ends its goroutine.
func (e *timerEntry) halt() {
	if !e.running {
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stop)
}
