package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/gestaches/adapter/cli"
	"github.com/felixgeelhaar/gestaches/internal/app"
	"github.com/felixgeelhaar/gestaches/pkg/config"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// shutdownTimeout bounds the final save on exit.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
		signal.Stop(sigCh)
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	var level slog.LevelVar
	level.Set(observability.ParseLevel(cfg.LogLevel))
	logger := observability.NewLogger(observability.LogConfig{
		LevelVar:       &level,
		Format:         observability.LogFormat(cfg.LogFormat),
		Output:         os.Stderr,
		ServiceName:    "gestaches",
		ServiceVersion: cli.Version,
	})
	slog.SetDefault(logger)
	cli.SetLogger(logger, &level)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return 1
	}

	cliApp := cli.NewApp(container.TaskStore, container.SettingsService, container.InProcessEventBus)
	cliApp.SetRabbitMQURL(cfg.RabbitMQURL)
	cliApp.SetStorageErr(container.StorageErr)
	cli.SetApp(cliApp)

	runErr := cli.Execute(ctx)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := container.Close(closeCtx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: final save failed:", err)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}
	return 0
}
