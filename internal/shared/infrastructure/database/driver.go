package database

import "strings"

// Driver represents a database backend type.
type Driver string

const (
	// DriverPostgres represents PostgreSQL database.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents SQLite database.
	DriverSQLite Driver = "sqlite"
	// DriverMySQL represents MySQL or MariaDB.
	DriverMySQL Driver = "mysql"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// DetectDriver parses a connection string and returns the driver type.
// Empty URLs select SQLite. The second result is false when the URL does
// not name a SQL database at all.
func DetectDriver(url string) (Driver, bool) {
	switch {
	case url == "":
		return DriverSQLite, true
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, true
	case strings.HasPrefix(url, "mysql://"):
		return DriverMySQL, true
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite, true
	}
	return "", false
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite, DriverMySQL:
		return true
	default:
		return false
	}
}

// SQLitePath turns a SQLite URL into a file path understood by the driver.
func SQLitePath(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
