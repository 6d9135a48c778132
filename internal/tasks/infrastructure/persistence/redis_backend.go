package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// RedisBackend stores tasks and settings in two hashes:
// {prefix}:tasks maps task id to a JSON record, {prefix}:settings maps
// key to value.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to url and verifies the connection.
func NewRedisBackend(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisBackendFromClient(client, prefix), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "gestaches"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) tasksKey() string    { return b.prefix + ":tasks" }
func (b *RedisBackend) settingsKey() string { return b.prefix + ":settings" }

func (b *RedisBackend) LoadAll(ctx context.Context) ([]*task.Task, error) {
	fields, err := b.client.HGetAll(ctx, b.tasksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]taskRecord, 0, len(ids))
	for _, id := range ids {
		var r taskRecord
		if err := json.Unmarshal([]byte(fields[id]), &r); err != nil {
			skipRecord(b.Name(), id, fmt.Errorf("decode: %w", err))
			continue
		}
		records = append(records, r)
	}
	return recordsToTasks(b.Name(), records), nil
}

// SaveAll replaces the tasks hash atomically in a MULTI/EXEC block.
func (b *RedisBackend) SaveAll(ctx context.Context, tasks []*task.Task) error {
	values := make(map[string]any, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(toRecord(t))
		if err != nil {
			return err
		}
		values[t.ID()] = data
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.tasksKey())
		if len(values) > 0 {
			pipe.HSet(ctx, b.tasksKey(), values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (b *RedisBackend) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	value, err := b.client.HGet(ctx, b.settingsKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *RedisBackend) SaveSetting(ctx context.Context, key, value string) error {
	return b.client.HSet(ctx, b.settingsKey(), key, value).Err()
}

func (b *RedisBackend) Close() error { return b.client.Close() }
