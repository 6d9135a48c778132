package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// BreakerConfig configures the circuit breaker around a backend.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold uint32

	// OpenTimeout is how long the circuit stays open before a trial call.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns the settings used when none are given.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Second}
}

// ResilientBackend fails fast with ErrBackendUnavailable after repeated
// backend failures.
type ResilientBackend struct {
	inner   Backend
	breaker *gobreaker.CircuitBreaker[any]
}

// NewResilientBackend wraps inner in a circuit breaker.
func NewResilientBackend(inner Backend, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *ResilientBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				"backend", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerStateChanges, 1, observability.T("to", to.String()))
		},
	}

	return &ResilientBackend{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *ResilientBackend) Name() string { return b.inner.Name() }

// State reports the breaker state, e.g. "closed" or "open".
func (b *ResilientBackend) State() string { return b.breaker.State().String() }

// Unwrap returns the wrapped backend.
func (b *ResilientBackend) Unwrap() Backend { return b.inner }

func (b *ResilientBackend) execute(fn func() (any, error)) (any, error) {
	result, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrBackendUnavailable
	}
	return result, err
}

func (b *ResilientBackend) LoadAll(ctx context.Context) ([]*task.Task, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.LoadAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	tasks, _ := result.([]*task.Task)
	return tasks, nil
}

func (b *ResilientBackend) SaveAll(ctx context.Context, tasks []*task.Task) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.SaveAll(ctx, tasks)
	})
	return err
}

type settingResult struct {
	value string
	found bool
}

func (b *ResilientBackend) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	result, err := b.execute(func() (any, error) {
		v, found, err := b.inner.LoadSetting(ctx, key)
		return settingResult{value: v, found: found}, err
	})
	if err != nil {
		return "", false, err
	}
	r := result.(settingResult)
	return r.value, r.found, nil
}

func (b *ResilientBackend) SaveSetting(ctx context.Context, key, value string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.SaveSetting(ctx, key, value)
	})
	return err
}

func (b *ResilientBackend) Close() error { return b.inner.Close() }
