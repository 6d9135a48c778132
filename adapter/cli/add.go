package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
)

var (
	addPriority string
	addDue      string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a pending task to the top of the list.

Priority is one of high, medium or low (default medium).
The due date uses YYYY-MM-DD.

Examples:
  gestaches add "Buy groceries"
  gestaches add "Finish report" -p high --due 2026-03-06`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return addTask(cmd.Context(), cmd.OutOrStdout(), a, strings.Join(args, " "), addPriority, addDue)
	},
}

func addTask(ctx context.Context, w io.Writer, a *App, title, priority, due string) error {
	v, err := a.TaskStore.Add(ctx, application.AddTaskCommand{
		Title:    title,
		Priority: priority,
		DueDate:  due,
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Fprintln(w, "Task added!")
	fmt.Fprintf(w, "  Title: %s\n", v.Title)
	fmt.Fprintf(w, "  ID: %s\n", v.ShortID())
	fmt.Fprintf(w, "  Priority: %s\n", v.Priority)
	if !v.DueDate.IsZero() {
		fmt.Fprintf(w, "  Due: %s\n", v.DueDate)
	}
	return nil
}

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "priority (high, medium, low)")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")
	rootCmd.AddCommand(addCmd)
}
