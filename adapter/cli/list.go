package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
)

var (
	listFilter string
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, pending first and then by priority.

Filters: all, pending, completed, high, medium, low.
The search matches titles case-insensitively.

Examples:
  gestaches list
  gestaches list -f high
  gestaches ls -s groceries`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		filter, err := application.ParseFilter(listFilter)
		if err != nil {
			return err
		}
		listTasks(cmd.OutOrStdout(), a, application.ListQuery{Filter: filter, Search: listSearch})
		return nil
	},
}

func listTasks(w io.Writer, a *App, q application.ListQuery) {
	renderList(w, a.TaskStore.List(q), time.Now())
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task totals and tracked time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		renderStats(cmd.OutOrStdout(), a.TaskStore.Stats())
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "filter (all, pending, completed, high, medium, low)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "only titles containing this text")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}
