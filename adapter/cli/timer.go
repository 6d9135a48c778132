package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

var timerFor time.Duration

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track time on a task",
}

var timerStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Run a task's timer in the foreground",
	Long: `Run a task's timer until interrupted, or for the given duration.
The timer is paused and the elapsed time saved on exit.

Examples:
  gestaches timer start 1a2b3c4d
  gestaches timer start 1a2b --for 25m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return runForegroundTimer(cmd.Context(), cmd.OutOrStdout(), a, args[0], timerFor)
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Clear a task's tracked time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return resetTimer(cmd.Context(), cmd.OutOrStdout(), a, args[0])
	},
}

func runForegroundTimer(ctx context.Context, w io.Writer, a *App, ref string, d time.Duration) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	if v.Completed {
		return fmt.Errorf("task %s is completed", v.ShortID())
	}

	out := newSyncWriter(w)
	if a.EventBus != nil {
		unregister := a.EventBus.RegisterConsumer(eventbus.ConsumerFunc{
			Types: []string{task.RoutingKeyTimerTicked},
			Fn: func(ctx context.Context, event *eventbus.ConsumedEvent) error {
				if event.AggregateID != v.ID {
					return nil
				}
				var ticked task.TimerTicked
				if err := event.Decode(&ticked); err != nil {
					return err
				}
				fmt.Fprintf(out, "\r  %s", formatElapsed(ticked.ElapsedSeconds))
				return nil
			},
		})
		defer unregister()
	}

	timers := a.TaskStore.Timers()
	if !timers.Start(ctx, v.ID) {
		return fmt.Errorf("timer for %s is already running", v.ShortID())
	}
	fmt.Fprintf(out, "Timing %q from %s. Press Ctrl+C to stop.\n", v.Title, formatElapsed(v.ElapsedSeconds))

	var deadline <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		deadline = t.C
	}
	select {
	case <-ctx.Done():
	case <-deadline:
	}

	timers.Pause(context.WithoutCancel(ctx), v.ID)
	final, _ := a.TaskStore.Get(v.ID)
	fmt.Fprintf(out, "\nPaused at %s\n", formatElapsed(final.ElapsedSeconds))
	return nil
}

func startTimer(ctx context.Context, w io.Writer, a *App, ref string) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	if !a.TaskStore.Timers().Start(ctx, v.ID) {
		fmt.Fprintln(w, "Timer not started: the task is completed or already running.")
		return nil
	}
	fmt.Fprintf(w, "Timer started: %s\n", v.Title)
	return nil
}

func pauseTimer(ctx context.Context, w io.Writer, a *App, ref string) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	if !a.TaskStore.Timers().Pause(ctx, v.ID) {
		fmt.Fprintln(w, "Timer is not running.")
		return nil
	}
	final, _ := a.TaskStore.Get(v.ID)
	fmt.Fprintf(w, "Timer paused: %s at %s\n", v.Title, formatElapsed(final.ElapsedSeconds))
	return nil
}

func resetTimer(ctx context.Context, w io.Writer, a *App, ref string) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	a.TaskStore.Timers().Reset(ctx, v.ID)
	fmt.Fprintf(w, "Timer reset: %s\n", v.Title)
	return nil
}

func init() {
	timerStartCmd.Flags().DurationVar(&timerFor, "for", 0, "stop after this long (e.g. 25m)")
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerResetCmd)
	rootCmd.AddCommand(timerCmd)
}
