package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database/mysql"
	_ "github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/gestaches/pkg/observability"
)

// Kind names a backend family.
type Kind string

const (
	KindSQL    Kind = "sql"
	KindRedis  Kind = "redis"
	KindJSON   Kind = "json"
	KindMemory Kind = "memory"
)

// DetectKind maps a storage URL to its backend family.
func DetectKind(url string) (Kind, error) {
	switch {
	case url == "memory://":
		return KindMemory, nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return KindRedis, nil
	case strings.HasPrefix(url, "json://"), strings.HasSuffix(url, ".json"):
		return KindJSON, nil
	}
	if _, ok := database.DetectDriver(url); ok {
		return KindSQL, nil
	}
	return "", fmt.Errorf("unsupported storage url %q", url)
}

// Config selects and tunes a backend.
type Config struct {
	URL         string
	RedisPrefix string
	MaxConns    int
	Breaker     BreakerConfig
	Logger      *slog.Logger
	Metrics     observability.Metrics
}

// Open creates the backend named by cfg.URL wrapped in a circuit breaker.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	kind, err := DetectKind(cfg.URL)
	if err != nil {
		return nil, err
	}

	var backend Backend
	switch kind {
	case KindMemory:
		backend = NewMemoryBackend()
	case KindJSON:
		backend, err = NewJSONFileBackend(cfg.URL)
	case KindRedis:
		backend, err = NewRedisBackend(ctx, cfg.URL, cfg.RedisPrefix)
	case KindSQL:
		backend, err = openSQL(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", kind, err)
	}

	return NewResilientBackend(backend, cfg.Breaker, cfg.Logger, cfg.Metrics), nil
}

func openSQL(ctx context.Context, cfg Config) (Backend, error) {
	driver, _ := database.DetectDriver(cfg.URL)
	dbCfg := database.Config{Driver: driver, URL: cfg.URL, MaxConns: cfg.MaxConns}
	if driver == database.DriverSQLite && cfg.URL != "" && !strings.HasPrefix(cfg.URL, "file:") {
		path, err := security.ValidateStoragePath(database.SQLitePath(cfg.URL))
		if err != nil {
			return nil, err
		}
		dbCfg.SQLitePath = path
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	backend, err := NewSQLBackend(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return backend, nil
}
