// Package settings manages user preferences stored next to the task list.
package settings

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

// Repository defines storage for preferences.
type Repository interface {
	LoadSetting(ctx context.Context, key string) (string, bool, error)
	SaveSetting(ctx context.Context, key, value string) error
}

const (
	KeyTheme = "theme"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	ErrInvalidKey   = fmt.Errorf("%w: invalid setting key", domain.ErrValidation)
	ErrInvalidValue = fmt.Errorf("%w: invalid setting value", domain.ErrValidation)
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9._-]{0,63}$`)

// allowed lists the accepted values of known keys. Other keys take any
// non-empty value.
var allowed = map[string][]string{
	KeyTheme: {ThemeLight, ThemeDark},
}

// defaults apply when a known key was never saved.
var defaults = map[string]string{
	KeyTheme: ThemeLight,
}

// Service manages preferences. Storage errors are returned to the caller.
type Service struct {
	repo Repository
}

// NewService creates a settings service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored value, or the key's default with found=false.
func (s *Service) Get(ctx context.Context, key string) (string, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	value, found, err := s.repo.LoadSetting(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	if !found {
		return defaults[key], false, nil
	}
	return value, true, nil
}

// Set validates and stores a value.
func (s *Service) Set(ctx context.Context, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	value, err = validateValue(key, value)
	if err != nil {
		return err
	}
	if err := s.repo.SaveSetting(ctx, key, value); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Service) ToggleTheme(ctx context.Context) (string, error) {
	current, _, err := s.Get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.Set(ctx, KeyTheme, next); err != nil {
		return "", err
	}
	return next, nil
}

// KnownKeys returns the keys with validated values, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w %q", ErrInvalidKey, key)
	}
	return key, nil
}

func validateValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
	}
	options, known := allowed[key]
	if !known {
		return value, nil
	}
	lower := strings.ToLower(value)
	for _, o := range options {
		if o == lower {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, key, strings.Join(options, ", "))
}
