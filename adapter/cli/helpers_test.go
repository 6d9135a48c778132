package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	internalApp "github.com/felixgeelhaar/gestaches/internal/app"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/pkg/config"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// setupTestApp wires an in-memory container into the global CLI app.
func setupTestApp(t *testing.T) *App {
	t.Helper()
	resetFlags()

	cfg := &config.Config{
		AppEnv:            "test",
		StorageURL:        "memory://",
		TimerTickInterval: time.Second,
		TimerFlushEvery:   10,
		PersistTimeout:    time.Second,
	}
	container, err := internalApp.NewContainer(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)

	a := NewApp(container.TaskStore, container.SettingsService, container.InProcessEventBus)
	SetApp(a)
	t.Cleanup(func() {
		SetApp(nil)
		_ = container.Close(context.Background())
	})
	return a
}

func resetFlags() {
	addPriority = ""
	addDue = ""
	listFilter = "all"
	listSearch = ""
	removeYes = false
	timerFor = 0
	eventPatterns = []string{"#"}
}

func runCommand(t *testing.T, cmd *cobra.Command, args []string, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func addForTest(t *testing.T, a *App, title, priority string) application.TaskView {
	t.Helper()
	v, err := a.TaskStore.Add(context.Background(), application.AddTaskCommand{Title: title, Priority: priority})
	require.NoError(t, err)
	return v
}
