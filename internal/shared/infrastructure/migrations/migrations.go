// Package migrations holds the embedded schema for every SQL dialect.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/database"
)

// Each file holds exactly one statement; MySQL rejects multi-statement execs.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var migrationsFS embed.FS

// Files returns the ordered .up.sql file names for a driver.
func Files(driver database.Driver) ([]string, error) {
	if !driver.IsValid() {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	entries, err := fs.ReadDir(migrationsFS, driver.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run executes all migrations for the connection's dialect in order.
// Statements use IF NOT EXISTS, so running them again is harmless.
func Run(ctx context.Context, conn database.Connection) error {
	driver := conn.Driver()
	files, err := Files(driver)
	if err != nil {
		return err
	}

	for _, file := range files {
		stmt, err := migrationsFS.ReadFile(driver.String() + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := conn.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}

	return nil
}
