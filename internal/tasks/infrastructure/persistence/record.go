package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// taskRecord is the stored shape of a task, shared by the document
// backends. Timestamps are RFC 3339 in UTC.
type taskRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Priority       string `json:"priority"`
	DueDate        string `json:"dueDate,omitempty"`
	Completed      bool   `json:"completed"`
	ElapsedSeconds int64  `json:"elapsedTime"`
	CreatedAt      string `json:"createdAt"`
}

func toRecord(t *task.Task) taskRecord {
	return taskRecord{
		ID:             t.ID(),
		Title:          t.Title(),
		Priority:       t.Priority().String(),
		DueDate:        t.DueDate().String(),
		Completed:      t.IsCompleted(),
		ElapsedSeconds: t.ElapsedSeconds(),
		CreatedAt:      formatTime(t.CreatedAt()),
	}
}

func (r taskRecord) toTask() (*task.Task, error) {
	priority, err := value_objects.ParsePriority(r.Priority)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}
	due, err := value_objects.ParseDueDate(r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}
	return task.Rehydrate(r.ID, r.Title, priority, due, r.Completed, r.ElapsedSeconds, created)
}

// recordsToTasks converts stored records, skipping any that fail
// validation so one bad record does not hide the rest.
func recordsToTasks(backend string, records []taskRecord) []*task.Task {
	tasks := make([]*task.Task, 0, len(records))
	for _, r := range records {
		t, err := r.toTask()
		if err != nil {
			skipRecord(backend, r.ID, err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func skipRecord(backend, id string, err error) {
	slog.Warn("skipping invalid stored task",
		"backend", backend,
		"task_id", id,
		observability.ErrorKey, err,
	)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
