package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"", KindSQL},
		{"/home/me/.gestaches/data.db", KindSQL},
		{"sqlite:///tmp/x.sqlite", KindSQL},
		{"postgres://u:p@localhost/gestaches", KindSQL},
		{"mysql://u:p@tcp(localhost:3306)/gestaches", KindSQL},
		{"redis://localhost:6379/0", KindRedis},
		{"rediss://cache.example.com:6380", KindRedis},
		{"/tmp/tasks.json", KindJSON},
		{"json://relative/tasks", KindJSON},
		{"memory://", KindMemory},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := DetectKind(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectKind("ftp://example.com/tasks")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, err := Open(ctx, Config{URL: "memory://"})
		require.NoError(t, err)
		assert.Equal(t, "memory", b.Name())
		_, isResilient := b.(*ResilientBackend)
		assert.True(t, isResilient)
	})

	t.Run("json", func(t *testing.T) {
		b, err := Open(ctx, Config{URL: filepath.Join(t.TempDir(), "tasks.json")})
		require.NoError(t, err)
		assert.Equal(t, "json", b.Name())
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Open(ctx, Config{URL: "ftp://nowhere"})
		assert.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := Open(ctx, Config{URL: "redis://127.0.0.1:1/0"})
		assert.Error(t, err)
	})
}
