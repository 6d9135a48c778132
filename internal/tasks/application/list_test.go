package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want Filter
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{"Pending", FilterPending},
		{" COMPLETED ", FilterCompleted},
		{"high", FilterHigh},
		{"medium", FilterMedium},
		{"low", FilterLow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFilter("overdue")
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.ErrorIs(t, err, task.ErrValidation)
}

func TestTaskView_ShortID(t *testing.T) {
	assert.Equal(t, "12345678", TaskView{ID: "1234567890ab"}.ShortID())
	assert.Equal(t, "abc", TaskView{ID: "abc"}.ShortID())
}
