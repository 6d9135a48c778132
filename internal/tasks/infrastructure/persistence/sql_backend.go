package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// Queries are written with '?' placeholders and rebound per dialect.
const (
	selectTasksSQL = `SELECT id, title, priority, due_date, completed, elapsed_seconds, created_at FROM tasks`
	deleteTasksSQL = `DELETE FROM tasks`
	insertTaskSQL  = `INSERT INTO tasks (id, title, priority, due_date, completed, elapsed_seconds, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectSettingSQL = `SELECT setting_value FROM settings WHERE setting_key = ?`
	deleteSettingSQL = `DELETE FROM settings WHERE setting_key = ?`
	insertSettingSQL = `INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)`
)

// SQLBackend stores tasks in a SQL table through a database.Connection.
type SQLBackend struct {
	conn database.Connection
	uow  *database.GenericUnitOfWork
}

// NewSQLBackend runs the schema migrations and returns the backend.
func NewSQLBackend(ctx context.Context, conn database.Connection) (*SQLBackend, error) {
	if err := migrations.Run(ctx, conn); err != nil {
		return nil, err
	}
	return &SQLBackend{conn: conn, uow: database.NewUnitOfWork(conn)}, nil
}

func (b *SQLBackend) Name() string { return b.conn.Driver().String() }

func (b *SQLBackend) q(query string) string {
	return database.Rebind(b.conn.Driver(), query)
}

func (b *SQLBackend) LoadAll(ctx context.Context) ([]*task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, b.conn).Query(ctx, b.q(selectTasksSQL))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var (
			r         taskRecord
			dueDate   sql.NullString
			completed int64
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Priority, &dueDate, &completed, &r.ElapsedSeconds, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		r.DueDate = dueDate.String
		r.Completed = completed != 0

		t, err := r.toTask()
		if err != nil {
			skipRecord(b.Name(), r.ID, err)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveAll replaces the table contents in one transaction.
func (b *SQLBackend) SaveAll(ctx context.Context, tasks []*task.Task) error {
	return database.WithUnitOfWork(ctx, b.uow, func(txCtx context.Context) error {
		exec := database.ExecutorFromContext(txCtx, b.conn)
		if _, err := exec.Exec(txCtx, b.q(deleteTasksSQL)); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}

		insert := b.q(insertTaskSQL)
		for _, t := range tasks {
			r := toRecord(t)
			dueDate := sql.NullString{String: r.DueDate, Valid: r.DueDate != ""}
			completed := 0
			if r.Completed {
				completed = 1
			}
			if _, err := exec.Exec(txCtx, insert,
				r.ID, r.Title, r.Priority, dueDate, completed, r.ElapsedSeconds, r.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert task %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

func (b *SQLBackend) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := database.ExecutorFromContext(ctx, b.conn).QueryRow(ctx, b.q(selectSettingSQL), key).Scan(&value)
	if database.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SaveSetting upserts with delete then insert, which every dialect accepts.
func (b *SQLBackend) SaveSetting(ctx context.Context, key, value string) error {
	return database.WithUnitOfWork(ctx, b.uow, func(txCtx context.Context) error {
		exec := database.ExecutorFromContext(txCtx, b.conn)
		if _, err := exec.Exec(txCtx, b.q(deleteSettingSQL), key); err != nil {
			return err
		}
		_, err := exec.Exec(txCtx, b.q(insertSettingSQL), key, value)
		return err
	})
}

func (b *SQLBackend) Close() error { return b.conn.Close() }
