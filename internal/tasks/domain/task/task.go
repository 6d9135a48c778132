package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
)

// ErrValidation is matched by every input validation failure in this package
// and its value objects.
var ErrValidation = domain.ErrValidation

var (
	ErrEmptyTitle      = fmt.Errorf("%w: task title cannot be empty", domain.ErrValidation)
	ErrEmptyID         = errors.New("task id cannot be empty")
	ErrNegativeElapsed = errors.New("elapsed time cannot be negative")
)

// Task is a single to-do item with an accumulated timer duration.
type Task struct {
	domain.BaseAggregateRoot
	title     string
	priority  value_objects.Priority
	dueDate   value_objects.DueDate
	completed bool
	elapsed   int64
}

// NewTask creates a pending task with a fresh identifier.
func NewTask(title string, priority value_objects.Priority, dueDate value_objects.DueDate, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !priority.IsValid() {
		return nil, value_objects.ErrInvalidPriority
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(now)),
		title:             title,
		priority:          priority,
		dueDate:           dueDate,
	}

	t.AddDomainEvent(NewTaskAdded(t.ID(), t.title, t.priority.String()))

	return t, nil
}

// Rehydrate recreates a task from persisted state. No events are recorded.
func Rehydrate(
	id string,
	title string,
	priority value_objects.Priority,
	dueDate value_objects.DueDate,
	completed bool,
	elapsedSeconds int64,
	createdAt time.Time,
) (*Task, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !priority.IsValid() {
		return nil, value_objects.ErrInvalidPriority
	}
	if elapsedSeconds < 0 {
		return nil, ErrNegativeElapsed
	}

	return &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.RehydrateBaseEntity(id, createdAt)),
		title:             title,
		priority:          priority,
		dueDate:           dueDate,
		completed:         completed,
		elapsed:           elapsedSeconds,
	}, nil
}

// Getters

func (t *Task) Title() string                    { return t.title }
func (t *Task) Priority() value_objects.Priority { return t.priority }
func (t *Task) DueDate() value_objects.DueDate   { return t.dueDate }
func (t *Task) IsCompleted() bool                { return t.completed }
func (t *Task) ElapsedSeconds() int64            { return t.elapsed }

// Elapsed returns the accumulated timer duration.
func (t *Task) Elapsed() time.Duration {
	return time.Duration(t.elapsed) * time.Second
}

// ToggleComplete flips the completion flag and reports the new state.
func (t *Task) ToggleComplete() bool {
	t.completed = !t.completed
	if t.completed {
		t.AddDomainEvent(NewTaskCompleted(t.ID()))
	} else {
		t.AddDomainEvent(NewTaskReopened(t.ID()))
	}
	return t.completed
}

// Tick adds one second to the elapsed time and returns the new total.
// Completed tasks do not accumulate time.
func (t *Task) Tick() (int64, bool) {
	if t.completed {
		return t.elapsed, false
	}
	t.elapsed++
	t.AddDomainEvent(NewTimerTicked(t.ID(), t.elapsed))
	return t.elapsed, true
}

// ResetElapsed sets the elapsed time back to zero.
func (t *Task) ResetElapsed() {
	t.elapsed = 0
	t.AddDomainEvent(NewTimerReset(t.ID()))
}

// MarkTimerStarted records that the task's timer began ticking.
func (t *Task) MarkTimerStarted() {
	t.AddDomainEvent(NewTimerStarted(t.ID(), t.elapsed))
}

// MarkTimerPaused records that the task's timer stopped ticking.
func (t *Task) MarkTimerPaused() {
	t.AddDomainEvent(NewTimerPaused(t.ID(), t.elapsed))
}

// MarkRemoved records the task's deletion.
func (t *Task) MarkRemoved() {
	t.AddDomainEvent(NewTaskRemoved(t.ID(), t.title))
}

// Clone returns a copy of the task's state without pending events.
func (t *Task) Clone() *Task {
	return &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(t.BaseEntity),
		title:             t.title,
		priority:          t.priority,
		dueDate:           t.dueDate,
		completed:         t.completed,
		elapsed:           t.elapsed,
	}
}
