package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
)

// formatElapsed renders seconds as hh:mm:ss. Hours are not capped.
func formatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func statusIcon(v application.TaskView) string {
	switch {
	case v.Completed:
		return "[x]"
	case v.TimerRunning:
		return "[>]"
	default:
		return "[ ]"
	}
}

func priorityBadge(p value_objects.Priority) string {
	switch p {
	case value_objects.PriorityHigh:
		return "[HIGH]"
	case value_objects.PriorityLow:
		return "[low]"
	default:
		return "[med]"
	}
}

func dueMarker(v application.TaskView, now time.Time) string {
	if v.DueDate.IsZero() || v.Completed {
		return ""
	}
	if v.DueDate.IsOverdue(now) {
		return " [OVERDUE]"
	}
	if v.DueDate.String() == value_objects.NewDueDate(now).String() {
		return " [TODAY]"
	}
	return ""
}

// renderTask writes a two-line entry for one task.
func renderTask(w io.Writer, v application.TaskView, now time.Time) {
	fmt.Fprintf(w, "%s %s %s%s\n", statusIcon(v), v.Title, priorityBadge(v.Priority), dueMarker(v, now))

	details := []string{"ID: " + v.ShortID()}
	if !v.DueDate.IsZero() {
		details = append(details, "Due: "+v.DueDate.String())
	}
	if v.ElapsedSeconds > 0 || v.TimerRunning {
		details = append(details, "Time: "+formatElapsed(v.ElapsedSeconds))
	}
	fmt.Fprintf(w, "    %s\n", strings.Join(details, "  "))
}

// renderList writes the task list or a placeholder when it is empty.
func renderList(w io.Writer, views []application.TaskView, now time.Time) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	fmt.Fprintf(w, "Tasks (%d):\n", len(views))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, v := range views {
		renderTask(w, v, now)
	}
}

func renderStats(w io.Writer, st application.Stats) {
	fmt.Fprintf(w, "Total:     %d\n", st.Total)
	fmt.Fprintf(w, "Pending:   %d\n", st.Pending)
	fmt.Fprintf(w, "Completed: %d\n", st.Completed)
	if st.Total > 0 {
		fmt.Fprintf(w, "Progress:  %d%%\n", st.Completed*100/st.Total)
	}
	fmt.Fprintf(w, "Running:   %d\n", st.Running)
	fmt.Fprintf(w, "Tracked:   %s\n", formatElapsed(st.TrackedSeconds))
}
