package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/gestaches/internal/tasks/domain/task"
)

// jsonDocument is the on-disk layout of the JSON file backend.
type jsonDocument struct {
	Version  int               `json:"version"`
	Tasks    []taskRecord      `json:"tasks"`
	Settings map[string]string `json:"settings,omitempty"`
}

const jsonDocumentVersion = 1

// JSONFileBackend stores everything in a single JSON document. Writes go
// to a temporary file that is renamed over the original.
type JSONFileBackend struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileBackend uses the file at path, creating its directory. The
// file itself is created on first save.
func NewJSONFileBackend(path string) (*JSONFileBackend, error) {
	path = strings.TrimPrefix(path, "json://")
	if path == "" {
		return nil, errors.New("json backend requires a file path")
	}
	path, err := security.ValidateStoragePath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONFileBackend{path: path}, nil
}

func (b *JSONFileBackend) Name() string { return "json" }

// Path returns the document location.
func (b *JSONFileBackend) Path() string { return b.path }

func (b *JSONFileBackend) LoadAll(ctx context.Context) ([]*task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return nil, err
	}
	return recordsToTasks(b.Name(), doc.Tasks), nil
}

func (b *JSONFileBackend) SaveAll(ctx context.Context, tasks []*task.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return err
	}
	doc.Tasks = make([]taskRecord, len(tasks))
	for i, t := range tasks {
		doc.Tasks[i] = toRecord(t)
	}
	return b.write(ctx, doc)
}

func (b *JSONFileBackend) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Settings[key]
	return v, ok, nil
}

func (b *JSONFileBackend) SaveSetting(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return err
	}
	if doc.Settings == nil {
		doc.Settings = make(map[string]string)
	}
	doc.Settings[key] = value
	return b.write(ctx, doc)
}

func (b *JSONFileBackend) Close() error { return nil }

// read returns an empty document when the file does not exist yet.
func (b *JSONFileBackend) read() (*jsonDocument, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &jsonDocument{Version: jsonDocumentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", b.path, err)
	}
	return doc, nil
}

func (b *JSONFileBackend) write(ctx context.Context, doc *jsonDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc.Version = jsonDocumentVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".gestaches-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
