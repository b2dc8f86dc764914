package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

const migrationTable = "schema_migrations"

// LegacyLedgerTable is the ledger written by the desktop build's migration
// plugin. Its successful rows are adopted the first time the store opens.
const LegacyLedgerTable = "_sqlx_migrations"

// LedgerEntry is one applied version.
type LedgerEntry struct {
	Version     int
	Description string
	AppliedAt   time.Time
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ensureLedger creates the ledger table. It is version 0: it exists before
// any catalog step runs and is never itself recorded.
func ensureLedger(ctx context.Context, db Execer) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

// readLedger lists applied versions in ascending order. A missing ledger
// table reads as empty so status queries never write.
func readLedger(ctx context.Context, db queryer) ([]LedgerEntry, error) {
	exists, err := tableExists(ctx, db, migrationTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx,
		"SELECT version, description, applied_at FROM "+migrationTable+" ORDER BY version ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLedgerCorruption, "read migration ledger", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var entry LedgerEntry
		var appliedAt int64
		if err := rows.Scan(&entry.Version, &entry.Description, &appliedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeLedgerCorruption, "scan migration ledger", err)
		}
		entry.AppliedAt = fromMillis(appliedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLedgerCorruption, "read migration ledger", err)
	}
	return entries, nil
}

// recordStep adds the ledger row for step inside the step's transaction.
// A plain INSERT is used: an existing row means the ledger and the runner
// disagree, which must not be papered over. A second process migrating the
// same file at the same moment also lands here and is reported as
// LedgerCorruption; only one process may run migrations.
func recordStep(ctx context.Context, tx Execer, step Step, appliedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO "+migrationTable+" (version, description, applied_at) VALUES (?, ?, ?)",
		step.Version,
		step.Description,
		toMillis(appliedAt),
	)
	if err != nil {
		if IsConstraintViolation(err) {
			return ledgerCorruption(step.Version, step.Description, "version already recorded", err)
		}
		return fmt.Errorf("record migration %d: %w", step.Version, err)
	}
	return nil
}

// verifyLedger checks that applied is an exact prefix of catalog.
func verifyLedger(applied []LedgerEntry, catalog Catalog) error {
	latest := catalog.Latest()
	for i, entry := range applied {
		if entry.Version <= 0 || entry.Version > latest {
			return ledgerCorruption(entry.Version, entry.Description,
				fmt.Sprintf("version outside catalog range 1..%d", latest), nil)
		}
		expected := catalog.steps[i]
		if entry.Version > expected.Version {
			return ledgerCorruption(expected.Version, expected.Description,
				fmt.Sprintf("version missing while %d is recorded", entry.Version), nil)
		}
		if entry.Version < expected.Version {
			return ledgerCorruption(entry.Version, entry.Description, "version not in catalog", nil)
		}
		if !sameDescription(entry.Description, expected.Description) {
			return ledgerCorruption(entry.Version, entry.Description,
				fmt.Sprintf("description does not match catalog %q", expected.Description), nil)
		}
	}
	return nil
}

// adoptLegacyLedger copies successful rows of a legacy ledger into an empty
// schema_migrations table and returns how many were adopted.
func adoptLegacyLedger(ctx context.Context, db *sql.DB, legacyTable string, now time.Time) (int64, error) {
	if err := checkIdentifier("legacy ledger table", legacyTable); err != nil {
		return 0, err
	}
	exists, err := tableExists(ctx, db, legacyTable)
	if err != nil || !exists {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin legacy ledger adoption: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var recorded int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&recorded); err != nil {
		return 0, fmt.Errorf("count migration ledger: %w", err)
	}
	if recorded > 0 {
		return 0, nil
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (version, description, applied_at) SELECT version, description, ? FROM %s WHERE success = 1 ORDER BY version",
		migrationTable, legacyTable), toMillis(now))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeLedgerCorruption, "adopt legacy migration ledger", err)
	}
	adopted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("legacy ledger rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit legacy ledger adoption: %w", err)
	}
	return adopted, nil
}

func tableExists(ctx context.Context, db queryer, name string) (bool, error) {
	var found string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// sameDescription compares descriptions ignoring case and the space versus
// underscore spelling used by different ledger writers.
func sameDescription(a, b string) bool {
	normalize := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	}
	return normalize(a) == normalize(b)
}

func ledgerCorruption(version int, description, reason string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeLedgerCorruption,
		fmt.Sprintf("migration ledger version %d: %s", version, reason),
		stepMetadata(version, description),
		cause,
	)
}

func stepMetadata(version int, description string) map[string]string {
	return map[string]string{
		"version":     strconv.Itoa(version),
		"description": description,
	}
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
