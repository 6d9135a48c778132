package task

import (
	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyAdded     = "tasks.task.added"
	RoutingKeyCompleted = "tasks.task.completed"
	RoutingKeyReopened  = "tasks.task.reopened"
	RoutingKeyRemoved   = "tasks.task.removed"

	RoutingKeyTimerStarted = "tasks.timer.started"
	RoutingKeyTimerPaused  = "tasks.timer.paused"
	RoutingKeyTimerReset   = "tasks.timer.reset"
	RoutingKeyTimerTicked  = "tasks.timer.ticked"
)

// RoutingKeys lists every event the task aggregate emits.
var RoutingKeys = []string{
	RoutingKeyAdded,
	RoutingKeyCompleted,
	RoutingKeyReopened,
	RoutingKeyRemoved,
	RoutingKeyTimerStarted,
	RoutingKeyTimerPaused,
	RoutingKeyTimerReset,
	RoutingKeyTimerTicked,
}

// TaskAdded is emitted when a new task is created.
type TaskAdded struct {
	domain.BaseEvent
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// NewTaskAdded creates a TaskAdded event.
func NewTaskAdded(taskID, title, priority string) TaskAdded {
	return TaskAdded{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyAdded),
		Title:     title,
		Priority:  priority,
	}
}

// TaskCompleted is emitted when a task is marked done.
type TaskCompleted struct {
	domain.BaseEvent
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID string) TaskCompleted {
	return TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
	}
}

// TaskReopened is emitted when a completed task goes back to pending.
type TaskReopened struct {
	domain.BaseEvent
}

// NewTaskReopened creates a TaskReopened event.
func NewTaskReopened(taskID string) TaskReopened {
	return TaskReopened{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyReopened),
	}
}

// TaskRemoved is emitted when a task is deleted.
type TaskRemoved struct {
	domain.BaseEvent
	Title string `json:"title"`
}

// NewTaskRemoved creates a TaskRemoved event.
func NewTaskRemoved(taskID, title string) TaskRemoved {
	return TaskRemoved{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyRemoved),
		Title:     title,
	}
}

// TimerStarted is emitted when a task's timer starts or resumes.
type TimerStarted struct {
	domain.BaseEvent
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// NewTimerStarted creates a TimerStarted event.
func NewTimerStarted(taskID string, elapsed int64) TimerStarted {
	return TimerStarted{
		BaseEvent:      domain.NewBaseEvent(taskID, AggregateType, RoutingKeyTimerStarted),
		ElapsedSeconds: elapsed,
	}
}

// TimerPaused is emitted when a running timer is paused.
type TimerPaused struct {
	domain.BaseEvent
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// NewTimerPaused creates a TimerPaused event.
func NewTimerPaused(taskID string, elapsed int64) TimerPaused {
	return TimerPaused{
		BaseEvent:      domain.NewBaseEvent(taskID, AggregateType, RoutingKeyTimerPaused),
		ElapsedSeconds: elapsed,
	}
}

// TimerReset is emitted when a task's elapsed time is cleared.
type TimerReset struct {
	domain.BaseEvent
}

// NewTimerReset creates a TimerReset event.
func NewTimerReset(taskID string) TimerReset {
	return TimerReset{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyTimerReset),
	}
}

// TimerTicked is emitted on every timer tick.
type TimerTicked struct {
	domain.BaseEvent
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// NewTimerTicked creates a TimerTicked event.
func NewTimerTicked(taskID string, elapsed int64) TimerTicked {
	return TimerTicked{
		BaseEvent:      domain.NewBaseEvent(taskID, AggregateType, RoutingKeyTimerTicked),
		ElapsedSeconds: elapsed,
	}
}
