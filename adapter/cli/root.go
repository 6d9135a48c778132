package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

var (
	verbose  bool
	logger   *slog.Logger
	logLevel *slog.LevelVar

	errNotInitialized = errors.New("application not initialized")
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gestaches",
	Short: "gestaches - a small task list with per-task timers",
	Long: `gestaches keeps a prioritized list of tasks with due dates and a
stopwatch per task. Every change is saved in the background to the
configured storage.

Run "gestaches shell" for an interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if verbose && logLevel != nil {
			logLevel.Set(slog.LevelDebug)
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(ctx)
		logger.InfoContext(ctx, "command start", "command", cmd.CommandPath())

		if a := GetApp(); a != nil && a.StorageErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage not available, changes will be lost on exit")
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.InfoContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger. When level is not nil, --verbose lowers
// it to debug.
func SetLogger(l *slog.Logger, level *slog.LevelVar) {
	logger = l
	logLevel = level
}
