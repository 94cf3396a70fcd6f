package database

import "errors"

var (
	// ErrInvalidConfiguration marks a dump configuration that cannot produce a
	// meaningful command, such as a missing database path.
	ErrInvalidConfiguration = errors.New("invalid dump configuration")
	// ErrDatabaseUnavailable is returned when a file cannot be read as a
	// SQLite database.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)
