package task

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func newTestTask(t *testing.T, title string) *Task {
	t.Helper()
	tk, err := NewTask(title, value_objects.PriorityMedium, value_objects.DueDate{}, testNow)
	require.NoError(t, err)
	return tk
}

func TestNewTask(t *testing.T) {
	due, _ := value_objects.ParseDueDate("2026-10-20")
	tk, err := NewTask("  Buy milk  ", value_objects.PriorityHigh, due, testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID())
	assert.Equal(t, "Buy milk", tk.Title())
	assert.Equal(t, value_objects.PriorityHigh, tk.Priority())
	assert.Equal(t, "2026-10-20", tk.DueDate().String())
	assert.False(t, tk.IsCompleted())
	assert.Equal(t, int64(0), tk.ElapsedSeconds())
	assert.Equal(t, testNow, tk.CreatedAt())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, RoutingKeyAdded, events[0].RoutingKey())
	assert.Equal(t, tk.ID(), events[0].AggregateID())
}

func TestNewTask_EmptyTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewTask(title, value_objects.PriorityLow, value_objects.DueDate{}, testNow)
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	}
}

func TestNewTask_InvalidPriority(t *testing.T) {
	_, err := NewTask("x", value_objects.Priority(0), value_objects.DueDate{}, testNow)
	assert.ErrorIs(t, err, value_objects.ErrInvalidPriority)
}

func TestTask_ToggleComplete(t *testing.T) {
	tk := newTestTask(t, "Write report")
	tk.ClearDomainEvents()

	assert.True(t, tk.ToggleComplete())
	assert.True(t, tk.IsCompleted())
	assert.False(t, tk.ToggleComplete())
	assert.False(t, tk.IsCompleted())

	events := tk.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, RoutingKeyCompleted, events[0].RoutingKey())
	assert.Equal(t, RoutingKeyReopened, events[1].RoutingKey())
}

func TestTask_Tick(t *testing.T) {
	tk := newTestTask(t, "Focus")

	elapsed, ok := tk.Tick()
	assert.True(t, ok)
	assert.Equal(t, int64(1), elapsed)
	elapsed, _ = tk.Tick()
	assert.Equal(t, int64(2), elapsed)
	assert.Equal(t, 2*time.Second, tk.Elapsed())

	tk.ToggleComplete()
	elapsed, ok = tk.Tick()
	assert.False(t, ok)
	assert.Equal(t, int64(2), elapsed)
}

func TestTask_ResetElapsed(t *testing.T) {
	tk := newTestTask(t, "Focus")
	tk.Tick()
	tk.Tick()

	tk.ResetElapsed()

	assert.Equal(t, int64(0), tk.ElapsedSeconds())
}

func TestRehydrate(t *testing.T) {
	due, _ := value_objects.ParseDueDate("2026-01-01")
	tk, err := Rehydrate("id-1", "Stored", value_objects.PriorityLow, due, true, 42, testNow)
	require.NoError(t, err)

	assert.Equal(t, "id-1", tk.ID())
	assert.Equal(t, "Stored", tk.Title())
	assert.True(t, tk.IsCompleted())
	assert.Equal(t, int64(42), tk.ElapsedSeconds())
	assert.Empty(t, tk.DomainEvents())
}

func TestRehydrate_Invalid(t *testing.T) {
	_, err := Rehydrate("", "t", value_objects.PriorityLow, value_objects.DueDate{}, false, 0, testNow)
	assert.ErrorIs(t, err, ErrEmptyID)

	_, err = Rehydrate("id", " ", value_objects.PriorityLow, value_objects.DueDate{}, false, 0, testNow)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = Rehydrate("id", "t", value_objects.PriorityLow, value_objects.DueDate{}, false, -1, testNow)
	assert.ErrorIs(t, err, ErrNegativeElapsed)
}

func TestTask_Clone(t *testing.T) {
	tk := newTestTask(t, "Original")
	tk.Tick()

	clone := tk.Clone()
	tk.Tick()
	tk.ToggleComplete()

	assert.Equal(t, tk.ID(), clone.ID())
	assert.Equal(t, int64(1), clone.ElapsedSeconds())
	assert.False(t, clone.IsCompleted())
	assert.Empty(t, clone.DomainEvents())
}
