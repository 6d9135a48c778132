// Package security validates user-supplied storage locations.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars never appear in a storage path we are willing to open.
var forbiddenChars = []string{"\x00", "\n", "\r"}

// ValidateStoragePath cleans a file path, expands a leading ~ and makes it
// absolute. Symlinks are resolved for files that already exist.
func ValidateStoragePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("storage path cannot be empty")
	}
	for _, char := range forbiddenChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("storage path contains forbidden character %q", char)
		}
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	cleanPath, err := filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve storage path: %w", err)
	}
	return resolved, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
