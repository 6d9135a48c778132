package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

func TestAddCommand(t *testing.T) {
	a := setupTestApp(t)
	addPriority = "high"
	addDue = "2026-03-06"

	out, err := runCommand(t, addCmd, []string{"Finish", "report"}, "")
	require.NoError(t, err)

	assert.Contains(t, out, "Task added!")
	assert.Contains(t, out, "Title: Finish report")
	assert.Contains(t, out, "Priority: high")
	assert.Contains(t, out, "Due: 2026-03-06")
	require.Equal(t, 1, a.TaskStore.Len())
}

func TestAddCommand_Validation(t *testing.T) {
	a := setupTestApp(t)

	addPriority = "urgent"
	_, err := runCommand(t, addCmd, []string{"Fix bug"}, "")
	assert.ErrorIs(t, err, task.ErrValidation)

	addPriority = ""
	addDue = "next friday"
	_, err = runCommand(t, addCmd, []string{"Fix bug"}, "")
	assert.ErrorIs(t, err, task.ErrValidation)

	addDue = ""
	_, err = runCommand(t, addCmd, []string{"   "}, "")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)

	assert.Equal(t, 0, a.TaskStore.Len())
}

func TestListCommand(t *testing.T) {
	a := setupTestApp(t)
	addForTest(t, a, "Buy groceries", "low")
	addForTest(t, a, "Ship release", "high")

	out, err := runCommand(t, listCmd, nil, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (2):")
	assert.Less(t, bytes.Index([]byte(out), []byte("Ship release")), bytes.Index([]byte(out), []byte("Buy groceries")))

	listSearch = "GROC"
	out, err = runCommand(t, listCmd, nil, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (1):")
	assert.Contains(t, out, "Buy groceries")

	listSearch = ""
	listFilter = "completed"
	out, err = runCommand(t, listCmd, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "No tasks found.\n", out)

	listFilter = "urgent"
	_, err = runCommand(t, listCmd, nil, "")
	assert.ErrorIs(t, err, application.ErrInvalidFilter)
}

func TestToggleCommand_ByPrefix(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Water plants", "")

	out, err := runCommand(t, toggleCmd, []string{v.ShortID()}, "")
	require.NoError(t, err)
	assert.Equal(t, "Completed: Water plants\n", out)

	out, err = runCommand(t, toggleCmd, []string{v.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, "Reopened: Water plants\n", out)

	_, err = runCommand(t, toggleCmd, []string{uuid.NewString()}, "")
	assert.ErrorIs(t, err, application.ErrTaskNotFound)
}

func TestRemoveCommand(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Old idea", "")

	out, err := runCommand(t, removeCmd, []string{v.ShortID()}, "n\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 1, a.TaskStore.Len())

	out, err = runCommand(t, removeCmd, []string{v.ShortID()}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 1, a.TaskStore.Len())

	out, err = runCommand(t, removeCmd, []string{v.ShortID()}, "yes\n")
	require.NoError(t, err)
	assert.Contains(t, out, `Delete "Old idea"? [y/N] `)
	assert.Contains(t, out, "Deleted: Old idea")
	assert.Equal(t, 0, a.TaskStore.Len())
}

func TestRemoveCommand_Yes(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Old idea", "")
	removeYes = true

	out, err := runCommand(t, removeCmd, []string{v.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, "Deleted: Old idea\n", out)
	assert.Equal(t, 0, a.TaskStore.Len())
}

func TestTimerStartCommand_StopsAfterDuration(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Deep work", "")
	timerFor = 20 * time.Millisecond
	consumers := a.EventBus.Registry().ConsumerCount()

	out, err := runCommand(t, timerStartCmd, []string{v.ShortID()}, "")
	require.NoError(t, err)
	assert.Contains(t, out, `Timing "Deep work" from 00:00:00.`)
	assert.Contains(t, out, "Paused at 00:00:00")
	assert.False(t, a.TaskStore.Timers().IsRunning(v.ID))
	assert.Equal(t, consumers, a.EventBus.Registry().ConsumerCount(), "tick display is unregistered")
}

func TestTimerStartCommand_RejectsCompleted(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Done already", "")
	_, ok := a.TaskStore.ToggleComplete(context.Background(), v.ID)
	require.True(t, ok)

	_, err := runCommand(t, timerStartCmd, []string{v.ShortID()}, "")
	assert.Error(t, err)
	assert.False(t, a.TaskStore.Timers().IsRunning(v.ID))
}

func TestTimerResetCommand(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "Deep work", "")

	out, err := runCommand(t, timerResetCmd, []string{v.ShortID()}, "")
	require.NoError(t, err)
	assert.Equal(t, "Timer reset: Deep work\n", out)
}

func TestStatsCommand(t *testing.T) {
	a := setupTestApp(t)
	v := addForTest(t, a, "One", "")
	addForTest(t, a, "Two", "")
	_, ok := a.TaskStore.ToggleComplete(context.Background(), v.ID)
	require.True(t, ok)

	out, err := runCommand(t, statsCmd, nil, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:     2")
	assert.Contains(t, out, "Completed: 1")
	assert.Contains(t, out, "Progress:  50%")
}

func TestSettingsCommands(t *testing.T) {
	setupTestApp(t)

	out, err := runCommand(t, settingsGetCmd, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "theme = light (default)\n", out)

	out, err = runCommand(t, settingsSetCmd, []string{"theme", "dark"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Setting saved.\n", out)

	out, err = runCommand(t, settingsGetCmd, []string{"theme"}, "")
	require.NoError(t, err)
	assert.Equal(t, "theme = dark\n", out)

	out, err = runCommand(t, themeCmd, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Theme: light\n", out)

	_, err = runCommand(t, settingsSetCmd, []string{"theme", "purple"}, "")
	assert.ErrorIs(t, err, task.ErrValidation)

	out, err = runCommand(t, settingsGetCmd, []string{"editor"}, "")
	require.NoError(t, err)
	assert.Equal(t, "editor is not set\n", out)
}

func TestCommands_RequireApp(t *testing.T) {
	resetFlags()
	SetApp(nil)

	_, err := runCommand(t, listCmd, nil, "")
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = runCommand(t, settingsGetCmd, nil, "")
	assert.ErrorIs(t, err, errSettingsUnavailable)
}

func TestEventsCommand_RequiresBrokerURL(t *testing.T) {
	setupTestApp(t)

	_, err := runCommand(t, eventsCmd, nil, "")
	assert.EqualError(t, err, "RABBITMQ_URL is not set")
}

func TestPrintEvent(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)
	event := &eventbus.ConsumedEvent{
		AggregateID: "1a2b3c4d-0000-0000-0000-000000000000",
		RoutingKey:  task.RoutingKeyTimerTicked,
		OccurredAt:  occurred,
		Payload:     []byte(`{"elapsed_seconds":10}`),
	}

	var buf bytes.Buffer
	printEvent(&buf, event)

	want := occurred.Local().Format(time.TimeOnly) + "  tasks.timer.ticked     1a2b3c4d  {\"elapsed_seconds\":10}\n"
	assert.Equal(t, want, buf.String())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "gestaches dev")
}
