package sqlitemigrate

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// primaryCode returns the primary SQLite result code of err, stripping the
// extended bits (SQLITE_CONSTRAINT_UNIQUE -> SQLITE_CONSTRAINT).
func primaryCode(err error) (int, bool) {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() & 0xff, true
	}
	return 0, false
}

// IsConstraintViolation reports whether err is a UNIQUE, CHECK, NOT NULL,
// FOREIGN KEY or trigger RAISE rejection.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := primaryCode(err); ok && code == sqlite3lib.SQLITE_CONSTRAINT {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}

// IsTransient reports whether err may clear on retry: a busy or locked
// database, or any error that reports itself as temporary.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}
	if code, ok := primaryCode(err); ok {
		return code == sqlite3lib.SQLITE_BUSY || code == sqlite3lib.SQLITE_LOCKED
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "database is locked") || strings.Contains(value, "database table is locked")
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}
