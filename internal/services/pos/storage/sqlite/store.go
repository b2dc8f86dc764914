package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/postpos/internal/platform/timeouts"
	"github.com/louisbranch/postpos/internal/services/pos/storage"
	"github.com/louisbranch/postpos/internal/services/pos/storage/sqlite/migrations"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// timeLayout is the ISO-8601 UTC form the desktop UI writes.
const timeLayout = "2006-01-02T15:04:05.000Z"

// legacyTimeLayouts are accepted on read for rows written with
// CURRENT_TIMESTAMP or without milliseconds.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Store implements storage.Store over one SQLite file.
type Store struct {
	sqlDB  *sql.DB
	runner *sqlitemigrate.Runner
	report sqlitemigrate.Report
	logger zerolog.Logger
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

type config struct {
	logger         zerolog.Logger
	now            func() time.Time
	migrateOptions []sqlitemigrate.Option
}

// Option configures Open.
type Option func(*config)

// WithLogger sets the logger for the store and its migrations.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock sets the time source for written timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMigrationOptions passes extra options to the migration runner.
func WithMigrationOptions(opts ...sqlitemigrate.Option) Option {
	return func(c *config) {
		c.migrateOptions = append(c.migrateOptions, opts...)
	}
}

// Open opens the store at path and applies every pending migration. The
// store is returned only when the schema is current; on failure the handle is
// closed and the migration error is returned unchanged.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cfg := config{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", dsn(cleanPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "ping sqlite db", err)
	}

	catalog, err := migrations.Catalog()
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build migration catalog: %w", err)
	}
	runnerOpts := append([]sqlitemigrate.Option{
		sqlitemigrate.WithLogger(cfg.logger),
		sqlitemigrate.WithClock(cfg.now),
	}, cfg.migrateOptions...)
	runner, err := sqlitemigrate.NewRunner(sqlDB, catalog, runnerOpts...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("new migration runner: %w", err)
	}
	report, err := runner.ApplyPending(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Store{
		sqlDB:  sqlDB,
		runner: runner,
		report: report,
		logger: cfg.logger,
		now:    cfg.now,
	}, nil
}

// InspectStatus reads the migration ledger of the database at path without
// migrating it. A missing file reports every catalog step as pending and is
// not created.
func InspectStatus(ctx context.Context, path string) (sqlitemigrate.Status, error) {
	if strings.TrimSpace(path) == "" {
		return sqlitemigrate.Status{}, fmt.Errorf("storage path is required")
	}
	catalog, err := migrations.Catalog()
	if err != nil {
		return sqlitemigrate.Status{}, fmt.Errorf("build migration catalog: %w", err)
	}
	cleanPath := filepath.Clean(path)
	if _, err := os.Stat(cleanPath); errors.Is(err, os.ErrNotExist) {
		return sqlitemigrate.Status{Latest: catalog.Latest(), Pending: catalog.Steps()}, nil
	} else if err != nil {
		return sqlitemigrate.Status{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "stat sqlite db", err)
	}

	sqlDB, err := sql.Open("sqlite", readOnlyDSN(cleanPath))
	if err != nil {
		return sqlitemigrate.Status{}, fmt.Errorf("open sqlite db: %w", err)
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	runner, err := sqlitemigrate.NewRunner(sqlDB, catalog)
	if err != nil {
		return sqlitemigrate.Status{}, fmt.Errorf("new migration runner: %w", err)
	}
	return runner.Status(ctx)
}

func dsn(path string) string {
	busy := timeouts.SQLiteBusy.Milliseconds()
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path, busy)
}

// readOnlyDSN leaves the journal mode as the file has it and refuses writes.
func readOnlyDSN(path string) string {
	busy := timeouts.SQLiteBusy.Milliseconds()
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=query_only(1)", path, busy)
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB returns the raw database handle.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// MigrationReport describes the migrations Open applied.
func (s *Store) MigrationReport() sqlitemigrate.Report {
	if s == nil {
		return sqlitemigrate.Report{}
	}
	return s.report
}

// Status reports the migration ledger against the bundled catalog.
func (s *Store) Status(ctx context.Context) (sqlitemigrate.Status, error) {
	if err := s.ready(ctx); err != nil {
		return sqlitemigrate.Status{}, err
	}
	return s.runner.Status(ctx)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// storeError classifies a driver error for callers.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotFound
	case sqlitemigrate.IsConstraintViolation(err):
		return apperrors.Wrap(apperrors.CodeConstraintViolation, op, err)
	case sqlitemigrate.IsTransient(err):
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range legacyTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, firstErr)
}

func parseOptionalTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullStringPtr(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}
