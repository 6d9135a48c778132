package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LoadSetting(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockRepo) SaveSetting(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored value", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("LoadSetting", ctx, "theme").Return("dark", true, nil)

		value, found, err := NewService(repo).Get(ctx, " Theme ")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "dark", value)
		repo.AssertExpectations(t)
	})

	t.Run("falls back to the default", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("LoadSetting", ctx, "theme").Return("", false, nil)

		value, found, err := NewService(repo).Get(ctx, "theme")

		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, ThemeLight, value)
	})

	t.Run("wraps storage errors", func(t *testing.T) {
		repo := new(mockRepo)
		storageErr := errors.New("disk full")
		repo.On("LoadSetting", ctx, "theme").Return("", false, storageErr)

		_, _, err := NewService(repo).Get(ctx, "theme")

		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		_, _, err := NewService(new(mockRepo)).Get(ctx, "no spaces allowed")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_Set(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   string
		stored  string
		wantErr error
	}{
		{name: "theme dark", key: "theme", value: "dark", stored: "dark"},
		{name: "theme is case-insensitive", key: "theme", value: "LIGHT", stored: "light"},
		{name: "unknown theme", key: "theme", value: "solarized", wantErr: ErrInvalidValue},
		{name: "empty value", key: "theme", value: "  ", wantErr: ErrInvalidValue},
		{name: "free-form key", key: "greeting.name", value: "Sam", stored: "Sam"},
		{name: "bad key", key: "", value: "x", wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			if tt.wantErr == nil {
				repo.On("SaveSetting", ctx, tt.key, tt.stored).Return(nil)
			}

			err := NewService(repo).Set(ctx, tt.key, tt.value)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "SaveSetting", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ToggleTheme(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("LoadSetting", ctx, "theme").Return("dark", true, nil)
	repo.On("SaveSetting", ctx, "theme", "light").Return(nil)

	next, err := NewService(repo).ToggleTheme(ctx)

	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
	repo.AssertExpectations(t)
}

func TestKnownKeys(t *testing.T) {
	assert.Equal(t, []string{"theme"}, KnownKeys())
}
