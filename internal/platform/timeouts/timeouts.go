// Package timeouts defines shared timeout constants used by the store and
// its command-line tooling.
package timeouts

import "time"

// SQLiteBusy is how long a connection waits on a locked database file before
// SQLite reports SQLITE_BUSY.
const SQLiteBusy = 5 * time.Second

// MigrationRetryInitial is the first backoff interval before a seed or
// backfill step is re-attempted after a transient storage error.
const MigrationRetryInitial = 100 * time.Millisecond

// MigrationRetryMax caps a single backoff interval between step attempts.
const MigrationRetryMax = 2 * time.Second

// Migrate bounds the whole startup migration run in the migrate tool.
const Migrate = 10 * time.Minute

// TelemetryShutdown limits how long span exporters may flush on exit.
const TelemetryShutdown = 5 * time.Second
