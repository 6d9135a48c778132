package database

import "github.com/jmoiron/sqlx"

// Rebind converts a query written with '?' placeholders into the
// placeholder style of the given driver.
func Rebind(d Driver, query string) string {
	return sqlx.Rebind(bindType(d), query)
}

func bindType(d Driver) int {
	if d == DriverPostgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}
