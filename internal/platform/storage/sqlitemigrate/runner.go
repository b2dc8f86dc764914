package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/platform/timeouts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"

// DefaultMaxAttempts bounds how many times a seed or backfill step runs when
// it keeps failing with transient errors.
const DefaultMaxAttempts = 5

// StepResult describes one applied step.
type StepResult struct {
	Version      int
	Description  string
	Kind         Kind
	RowsAffected int64
	Skipped      []SkippedRow
	Attempts     int
}

// Report summarizes one ApplyPending run. From and To are the ledger's
// latest version before and after the run.
type Report struct {
	From    int
	To      int
	Adopted int64
	Applied []StepResult
}

// Status is a read-only view of the ledger against the catalog.
type Status struct {
	Current int
	Latest  int
	Applied []LedgerEntry
	Pending []Step
}

// UpToDate reports whether every catalog step is recorded.
func (s Status) UpToDate() bool {
	return len(s.Pending) == 0
}

// Runner applies a catalog to one SQLite database.
type Runner struct {
	db          *sql.DB
	catalog     Catalog
	logger      zerolog.Logger
	tracer      trace.Tracer
	maxAttempts uint
	newBackOff  func() backoff.BackOff
	legacyTable string
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger for per-step events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTracer overrides the tracer used for step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithMaxAttempts sets how many times a seed or backfill step may run.
// Values below 1 are treated as 1.
func WithMaxAttempts(n uint) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.maxAttempts = n
	}
}

// WithBackOff sets the policy used between step attempts. A new policy is
// built for each step.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(r *Runner) {
		if newBackOff != nil {
			r.newBackOff = newBackOff
		}
	}
}

// WithLegacyLedger names a legacy ledger table whose successful rows are
// adopted into an empty ledger. An empty name disables adoption.
func WithLegacyLedger(table string) Option {
	return func(r *Runner) {
		r.legacyTable = table
	}
}

// WithClock sets the time source for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a runner for catalog against db.
func NewRunner(db *sql.DB, catalog Catalog, opts ...Option) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	r := &Runner{
		db:          db,
		catalog:     catalog,
		logger:      zerolog.Nop(),
		tracer:      otel.Tracer(tracerName),
		maxAttempts: DefaultMaxAttempts,
		newBackOff:  defaultBackOff,
		legacyTable: LegacyLedgerTable,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.legacyTable != "" {
		if err := checkIdentifier("legacy ledger table", r.legacyTable); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = timeouts.MigrationRetryInitial
	b.MaxInterval = timeouts.MigrationRetryMax
	return b
}

// ApplyPending brings the database up to the catalog's latest version. Each
// pending step runs in its own transaction together with its ledger row; the
// run stops at the first failing step. A database that is already current is
// left untouched.
func (r *Runner) ApplyPending(ctx context.Context) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	applied, err := readLedger(ctx, r.db)
	if err != nil {
		return Report{}, classifyLedgerError(err)
	}
	if len(applied) == 0 {
		if err := ensureLedger(ctx, r.db); err != nil {
			return Report{}, classifyLedgerError(err)
		}
	}

	report := Report{}
	if len(applied) == 0 && r.legacyTable != "" {
		adopted, err := adoptLegacyLedger(ctx, r.db, r.legacyTable, r.now())
		if err != nil {
			return Report{}, classifyLedgerError(err)
		}
		if adopted > 0 {
			report.Adopted = adopted
			r.logger.Info().
				Str("table", r.legacyTable).
				Int64("versions", adopted).
				Msg("adopted legacy migration ledger")
			applied, err = readLedger(ctx, r.db)
			if err != nil {
				return Report{}, classifyLedgerError(err)
			}
		}
	}

	if err := verifyLedger(applied, r.catalog); err != nil {
		return Report{}, err
	}
	report.From = currentVersion(applied)
	report.To = report.From

	pending := r.catalog.steps[len(applied):]
	if len(pending) == 0 {
		r.logger.Debug().Int("version", report.From).Msg("schema is up to date")
		return report, nil
	}

	r.logger.Info().
		Int("from", report.From).
		Int("to", r.catalog.Latest()).
		Int("pending", len(pending)).
		Msg("applying migrations")

	for _, step := range pending {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("migration stopped before version %d: %w", step.Version, err)
		}
		result, err := r.applyStep(ctx, step)
		if err != nil {
			r.logger.Error().
				Err(err).
				Int("version", step.Version).
				Str("description", step.Description).
				Msg("migration failed")
			return report, err
		}
		report.Applied = append(report.Applied, result)
		report.To = step.Version
	}
	return report, nil
}

// Pending lists the catalog steps not yet recorded. It never writes.
func (r *Runner) Pending(ctx context.Context) ([]Step, error) {
	status, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.Pending, nil
}

// Applied lists ledger entries in ascending version order. It never writes.
func (r *Runner) Applied(ctx context.Context) ([]LedgerEntry, error) {
	applied, err := readLedger(ctx, r.db)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	return applied, nil
}

// Status compares the ledger with the catalog without writing. A legacy
// ledger that has not been adopted yet is reported as pending work.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return Status{}, err
	}
	if err := verifyLedger(applied, r.catalog); err != nil {
		return Status{}, err
	}
	return Status{
		Current: currentVersion(applied),
		Latest:  r.catalog.Latest(),
		Applied: applied,
		Pending: r.catalog.Steps()[len(applied):],
	}, nil
}

func (r *Runner) applyStep(ctx context.Context, step Step) (StepResult, error) {
	kind := step.Effect.Kind()
	ctx, span := r.tracer.Start(ctx, "sqlitemigrate.apply_step", trace.WithAttributes(
		attribute.Int("migration.version", step.Version),
		attribute.String("migration.description", step.Description),
		attribute.String("migration.kind", kind.String()),
	))
	defer span.End()

	// A started step is never interrupted: it commits or fails on its own.
	runCtx := context.WithoutCancel(ctx)
	start := time.Now()
	attempts := 0

	operation := func() (Outcome, error) {
		attempts++
		outcome, err := r.applyOnce(runCtx, step)
		if err == nil {
			return outcome, nil
		}
		if kind == KindDDL || !IsTransient(err) {
			return outcome, backoff.Permanent(err)
		}
		r.logger.Warn().
			Err(err).
			Int("version", step.Version).
			Int("attempt", attempts).
			Msg("transient migration failure, retrying")
		return outcome, err
	}

	outcome, err := backoff.Retry(runCtx, operation,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxAttempts),
		backoff.WithMaxElapsedTime(0),
	)
	span.SetAttributes(attribute.Int("migration.attempts", attempts))
	if err != nil {
		classified := classifyStepError(step, err)
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		return StepResult{}, classified
	}

	for _, skipped := range outcome.Skipped {
		r.logger.Warn().
			Err(skipped.Err).
			Int("version", step.Version).
			Str("table", skipped.Table).
			Interface("key", skipped.Key).
			Msg("seed row skipped")
	}
	span.SetAttributes(
		attribute.Int64("migration.rows_affected", outcome.RowsAffected),
		attribute.Int("migration.rows_skipped", len(outcome.Skipped)),
	)
	r.logger.Info().
		Int("version", step.Version).
		Str("description", step.Description).
		Str("kind", kind.String()).
		Int64("rows", outcome.RowsAffected).
		Int("attempts", attempts).
		Dur("duration", time.Since(start)).
		Msg("migration applied")

	return StepResult{
		Version:      step.Version,
		Description:  step.Description,
		Kind:         kind,
		RowsAffected: outcome.RowsAffected,
		Skipped:      outcome.Skipped,
		Attempts:     attempts,
	}, nil
}

// applyOnce runs the effect and the ledger insert in one transaction.
func (r *Runner) applyOnce(ctx context.Context, step Step) (Outcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("begin migration %d: %w", step.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	outcome, err := step.Effect.Apply(ctx, tx)
	if err != nil {
		return Outcome{}, fmt.Errorf("apply migration %d (%s): %w", step.Version, step.Description, err)
	}
	if err := recordStep(ctx, tx, step, r.now()); err != nil {
		return Outcome{}, err
	}
	if err := tx.Commit(); err != nil {
		return Outcome{}, fmt.Errorf("commit migration %d: %w", step.Version, err)
	}
	return outcome, nil
}

// classifyStepError maps a failed step onto the error taxonomy.
func classifyStepError(step Step, err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	metadata := stepMetadata(step.Version, step.Description)
	message := fmt.Sprintf("migration %d (%s) failed", step.Version, step.Description)
	switch {
	case IsTransient(err):
		return apperrors.WrapWithMetadata(apperrors.CodeStorageUnavailable, message, metadata, err)
	case step.Effect.Kind() == KindDDL:
		return apperrors.WrapWithMetadata(apperrors.CodeSchema, message, metadata, err)
	case IsConstraintViolation(err):
		return apperrors.WrapWithMetadata(apperrors.CodeConstraintViolation, message, metadata, err)
	default:
		return apperrors.WrapWithMetadata(apperrors.CodeSchema, message, metadata, err)
	}
}

func classifyLedgerError(err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if IsTransient(err) {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "migration ledger unavailable", err)
	}
	return apperrors.Wrap(apperrors.CodeSchema, "migration ledger", err)
}

func currentVersion(applied []LedgerEntry) int {
	if len(applied) == 0 {
		return 0
	}
	return applied[len(applied)-1].Version
}
