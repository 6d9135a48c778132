package application

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
)

// Filter selects a subset of tasks.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterHigh      Filter = "high"
	FilterMedium    Filter = "medium"
	FilterLow       Filter = "low"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterHigh, FilterMedium, FilterLow}

var ErrInvalidFilter = fmt.Errorf("%w: unknown filter", task.ErrValidation)

// ParseFilter is case-insensitive; empty input means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidFilter, s)
}

// Matches reports whether the task belongs in the filtered view.
func (f Filter) Matches(t *task.Task) bool {
	switch f {
	case FilterPending:
		return !t.IsCompleted()
	case FilterCompleted:
		return t.IsCompleted()
	case FilterHigh:
		return t.Priority() == value_objects.PriorityHigh
	case FilterMedium:
		return t.Priority() == value_objects.PriorityMedium
	case FilterLow:
		return t.Priority() == value_objects.PriorityLow
	default:
		return true
	}
}

// ListQuery selects and narrows the task list.
type ListQuery struct {
	Filter Filter
	Search string
}

// TaskView is a read-only copy of a task for presentation.
type TaskView struct {
	ID             string
	Title          string
	Priority       value_objects.Priority
	DueDate        value_objects.DueDate
	Completed      bool
	ElapsedSeconds int64
	CreatedAt      time.Time
	TimerRunning   bool
}

func newTaskView(t *task.Task, running bool) TaskView {
	return TaskView{
		ID:             t.ID(),
		Title:          t.Title(),
		Priority:       t.Priority(),
		DueDate:        t.DueDate(),
		Completed:      t.IsCompleted(),
		ElapsedSeconds: t.ElapsedSeconds(),
		CreatedAt:      t.CreatedAt(),
		TimerRunning:   running,
	}
}

// ShortID returns the prefix used when listing tasks.
func (v TaskView) ShortID() string {
	if len(v.ID) <= 8 {
		return v.ID
	}
	return v.ID[:8]
}

// sortViews orders pending before completed, then by priority rank. Ties
// keep the incoming order.
func sortViews(views []TaskView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.Priority.Rank() < b.Priority.Rank()
	})
}

func matchesSearch(t *task.Task, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title()), needle)
}
