package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application/settings"
	"github.com/felixgeelhaar/gestaches/internal/tasks/infrastructure/persistence"
	"github.com/felixgeelhaar/gestaches/pkg/config"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Storage
	Backend persistence.Backend
	// StorageErr is set when the configured backend could not be opened
	// and the container fell back to memory.
	StorageErr error

	// Events
	InProcessEventBus *eventbus.InProcessEventBus
	EventPublisher    eventbus.Publisher

	// Services
	TaskStore       *application.TaskStore
	SettingsService *settings.Service
}

// NewContainer creates and wires all dependencies. Extra store options
// are applied after the ones derived from cfg.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...application.Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	breaker := persistence.BreakerConfig{
		FailureThreshold: convert.IntToUint32Clamped(cfg.BreakerFailureThreshold),
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}

	backend, err := persistence.Open(ctx, persistence.Config{
		URL:         cfg.StorageURL,
		RedisPrefix: cfg.RedisPrefix,
		MaxConns:    cfg.DBMaxConns,
		Breaker:     breaker,
		Logger:      logger,
		Metrics:     c.Metrics,
	})
	if err != nil {
		c.StorageErr = &application.PersistenceError{Op: "open", Err: err}
		logger.Warn("storage not available, tasks will not survive this session",
			"storage_url", cfg.StorageURL,
			observability.ErrorKey, c.StorageErr,
		)
		backend = persistence.NewResilientBackend(persistence.NewMemoryBackend(), breaker, logger, c.Metrics)
	} else {
		logger.Debug("connected to storage", "backend", backend.Name())
	}
	c.Backend = backend

	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
	publishers := []eventbus.Publisher{c.InProcessEventBus}
	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events stay in process", observability.ErrorKey, err)
		} else {
			publishers = append(publishers, rabbit)
		}
	}
	c.EventPublisher = eventbus.NewMultiPublisher(logger, publishers...)

	storeOpts := []application.Option{
		application.WithLogger(logger),
		application.WithMetrics(c.Metrics),
		application.WithPublisher(c.EventPublisher),
		application.WithTickInterval(cfg.TimerTickInterval),
		application.WithFlushEvery(cfg.TimerFlushEvery),
		application.WithPersistTimeout(cfg.PersistTimeout),
	}
	c.TaskStore = application.NewTaskStore(ctx, c.Backend, append(storeOpts, opts...)...)
	if loadErr := c.TaskStore.LoadErr(); loadErr != nil && c.StorageErr == nil {
		c.StorageErr = loadErr
	}
	c.SettingsService = settings.NewService(c.Backend)

	return c, nil
}

// Close stops running timers, writes the final state and releases
// storage and broker connections.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.TaskStore != nil {
		if err := c.TaskStore.Close(ctx); err != nil {
			c.Logger.Warn("final save failed", observability.ErrorKey, err)
			errs = append(errs, err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", observability.ErrorKey, err)
			errs = append(errs, err)
		}
	}

	if c.Backend != nil {
		if err := c.Backend.Close(); err != nil {
			c.Logger.Warn("error closing storage", observability.ErrorKey, err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
