package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
)

var removeYes bool

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Short:   "Mark a task completed, or pending again",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return toggleTask(cmd.Context(), cmd.OutOrStdout(), a, args[0])
	},
}

func toggleTask(ctx context.Context, w io.Writer, a *App, ref string) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	updated, ok := a.TaskStore.ToggleComplete(ctx, v.ID)
	if !ok {
		return fmt.Errorf("%w: %s", application.ErrTaskNotFound, ref)
	}
	if updated.Completed {
		fmt.Fprintf(w, "Completed: %s\n", updated.Title)
	} else {
		fmt.Fprintf(w, "Reopened: %s\n", updated.Title)
	}
	return nil
}

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Short:   "Delete a task",
	Aliases: []string{"remove", "delete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return removeTask(cmd.Context(), readerLines(cmd.InOrStdin()), cmd.OutOrStdout(), a, args[0], removeYes)
	},
}

func removeTask(ctx context.Context, readLine lineReader, w io.Writer, a *App, ref string, skipConfirm bool) error {
	v, err := resolveTask(a, ref)
	if err != nil {
		return err
	}
	if !skipConfirm && !confirm(readLine, w, fmt.Sprintf("Delete %q?", v.Title)) {
		fmt.Fprintln(w, "Cancelled.")
		return nil
	}
	if !a.TaskStore.Remove(ctx, v.ID) {
		return fmt.Errorf("%w: %s", application.ErrTaskNotFound, ref)
	}
	fmt.Fprintf(w, "Deleted: %s\n", v.Title)
	return nil
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "delete without asking")
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(removeCmd)
}
