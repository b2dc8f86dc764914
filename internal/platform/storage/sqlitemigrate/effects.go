package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Kind tags the variant of a step effect.
type Kind int

const (
	// KindDDL creates or additively alters schema objects.
	KindDDL Kind = iota + 1
	// KindSeed inserts baseline rows if absent.
	KindSeed
	// KindBackfill updates rows matching a predicate.
	KindBackfill
)

// String returns the lower-case kind name used in logs and spans.
func (k Kind) String() string {
	switch k {
	case KindDDL:
		return "ddl"
	case KindSeed:
		return "seed"
	case KindBackfill:
		return "backfill"
	default:
		return "unknown"
	}
}

// Execer runs statements. *sql.Tx and *sql.DB both satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SkippedRow records a seed row rejected by a constraint other than its key.
type SkippedRow struct {
	Table string
	Key   any
	Err   error
}

// Outcome summarizes what one application of an effect changed.
type Outcome struct {
	RowsAffected int64
	Skipped      []SkippedRow
}

// Effect is the change a Step applies. The set of variants is closed:
// CreateTable, AddColumn, CreateIndex, CreateTrigger, Seed and Backfill.
type Effect interface {
	Kind() Kind
	// Statements renders the SQL the effect executes, without arguments.
	Statements() ([]string, error)
	// Apply executes the effect. It must be safe to call again after success.
	Apply(ctx context.Context, tx Execer) (Outcome, error)

	validate() error
}

// CreateTable creates a table if it does not already exist.
type CreateTable struct {
	Table Table
}

func (CreateTable) Kind() Kind { return KindDDL }

func (e CreateTable) Statements() ([]string, error) {
	stmt, err := e.Table.createSQL()
	if err != nil {
		return nil, err
	}
	return []string{stmt}, nil
}

func (e CreateTable) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	return execStatements(ctx, tx, e)
}

func (e CreateTable) validate() error {
	_, err := e.Statements()
	return err
}

// AddColumn appends one column to an existing table.
//
// SQLite restricts added columns: no PRIMARY KEY or UNIQUE, NOT NULL needs a
// constant non-null default, and defaults cannot be parenthesized expressions
// or CURRENT_* keywords. Uniqueness is added afterwards with CreateIndex.
type AddColumn struct {
	Table  string
	Column Column
}

func (AddColumn) Kind() Kind { return KindDDL }

func (e AddColumn) Statements() ([]string, error) {
	if err := checkIdentifier("table", e.Table); err != nil {
		return nil, err
	}
	def, err := e.Column.definition()
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", e.Table, def)}, nil
}

func (e AddColumn) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	outcome, err := execStatements(ctx, tx, e)
	if err != nil && IsAlreadyExistsError(err) {
		return Outcome{}, nil
	}
	return outcome, err
}

func (e AddColumn) validate() error {
	c := e.Column
	if c.PrimaryKey || c.AutoIncrement {
		return fmt.Errorf("column %s: added columns cannot be primary keys", c.Name)
	}
	if c.Unique {
		return fmt.Errorf("column %s: added columns cannot be unique; add a unique index instead", c.Name)
	}
	d := strings.TrimSpace(c.Default)
	if strings.HasPrefix(d, "(") || strings.HasPrefix(strings.ToUpper(d), "CURRENT_") {
		return fmt.Errorf("column %s: added columns need a constant default", c.Name)
	}
	if c.NotNull && (d == "" || strings.EqualFold(d, "NULL")) {
		return fmt.Errorf("column %s: NOT NULL added columns need a non-null default", c.Name)
	}
	if c.References != nil && d != "" && !strings.EqualFold(d, "NULL") {
		return fmt.Errorf("column %s: added foreign key columns must default to NULL", c.Name)
	}
	_, err := e.Statements()
	return err
}

// CreateIndex creates an index if it does not already exist.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

func (CreateIndex) Kind() Kind { return KindDDL }

func (e CreateIndex) Statements() ([]string, error) {
	if err := checkIdentifier("index", e.Name); err != nil {
		return nil, err
	}
	if err := checkIdentifier("table", e.Table); err != nil {
		return nil, err
	}
	if len(e.Columns) == 0 {
		return nil, fmt.Errorf("index %s has no columns", e.Name)
	}
	for _, column := range e.Columns {
		if err := checkIdentifier("column", column); err != nil {
			return nil, fmt.Errorf("index %s: %w", e.Name, err)
		}
	}
	unique := ""
	if e.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, e.Name, e.Table, strings.Join(e.Columns, ", "))}, nil
}

func (e CreateIndex) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	return execStatements(ctx, tx, e)
}

func (e CreateIndex) validate() error {
	_, err := e.Statements()
	return err
}

// TriggerEvent is the timing and operation a trigger fires on.
type TriggerEvent string

const (
	BeforeInsert TriggerEvent = "BEFORE INSERT"
	BeforeUpdate TriggerEvent = "BEFORE UPDATE"
	BeforeDelete TriggerEvent = "BEFORE DELETE"
)

// CreateTrigger creates a row trigger if it does not already exist. When and
// Body are raw SQL; Body holds the statements between BEGIN and END.
type CreateTrigger struct {
	Name  string
	Table string
	Event TriggerEvent
	When  string
	Body  string
}

func (CreateTrigger) Kind() Kind { return KindDDL }

func (e CreateTrigger) Statements() ([]string, error) {
	if err := checkIdentifier("trigger", e.Name); err != nil {
		return nil, err
	}
	if err := checkIdentifier("table", e.Table); err != nil {
		return nil, err
	}
	switch e.Event {
	case BeforeInsert, BeforeUpdate, BeforeDelete:
	default:
		return nil, fmt.Errorf("trigger %s has unsupported event %q", e.Name, e.Event)
	}
	body := strings.TrimSuffix(strings.TrimSpace(e.Body), ";")
	if body == "" {
		return nil, fmt.Errorf("trigger %s has no body", e.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TRIGGER IF NOT EXISTS %s %s ON %s FOR EACH ROW", e.Name, e.Event, e.Table)
	if when := strings.TrimSpace(e.When); when != "" {
		fmt.Fprintf(&b, " WHEN %s", when)
	}
	fmt.Fprintf(&b, " BEGIN %s; END", body)
	return []string{b.String()}, nil
}

func (e CreateTrigger) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	return execStatements(ctx, tx, e)
}

func (e CreateTrigger) validate() error {
	_, err := e.Statements()
	return err
}

// SeedTable is a batch of rows for one table, keyed by a conflict column.
type SeedTable struct {
	Table   string
	Key     string
	Columns []string
	Rows    [][]any
}

// Seed inserts rows that are absent by key. Existing rows sharing a key are
// never overwritten; rows rejected by any other constraint are skipped and
// reported in Outcome.Skipped.
type Seed struct {
	Tables []SeedTable
}

func (Seed) Kind() Kind { return KindSeed }

func (e Seed) Statements() ([]string, error) {
	stmts := make([]string, 0, len(e.Tables))
	for _, table := range e.Tables {
		stmt, err := table.insertSQL()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (e Seed) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	var outcome Outcome
	for _, table := range e.Tables {
		stmt, err := table.insertSQL()
		if err != nil {
			return outcome, err
		}
		keyIndex := table.keyIndex()
		for _, row := range table.Rows {
			res, err := tx.ExecContext(ctx, stmt, row...)
			if err != nil {
				if IsConstraintViolation(err) {
					outcome.Skipped = append(outcome.Skipped, SkippedRow{
						Table: table.Table,
						Key:   row[keyIndex],
						Err:   err,
					})
					continue
				}
				return outcome, fmt.Errorf("seed %s: %w", table.Table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return outcome, fmt.Errorf("seed %s rows affected: %w", table.Table, err)
			}
			outcome.RowsAffected += n
		}
	}
	return outcome, nil
}

func (e Seed) validate() error {
	if len(e.Tables) == 0 {
		return fmt.Errorf("seed has no tables")
	}
	for _, table := range e.Tables {
		if _, err := table.insertSQL(); err != nil {
			return err
		}
		for i, row := range table.Rows {
			if len(row) != len(table.Columns) {
				return fmt.Errorf("seed %s row %d has %d values for %d columns", table.Table, i, len(row), len(table.Columns))
			}
			if row[table.keyIndex()] == nil {
				return fmt.Errorf("seed %s row %d has a NULL key", table.Table, i)
			}
		}
	}
	return nil
}

func (t SeedTable) keyIndex() int {
	for i, column := range t.Columns {
		if column == t.Key {
			return i
		}
	}
	return -1
}

func (t SeedTable) insertSQL() (string, error) {
	if err := checkIdentifier("table", t.Table); err != nil {
		return "", err
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("seed %s has no columns", t.Table)
	}
	for _, column := range t.Columns {
		if err := checkIdentifier("column", column); err != nil {
			return "", fmt.Errorf("seed %s: %w", t.Table, err)
		}
	}
	if t.keyIndex() < 0 {
		return "", fmt.Errorf("seed %s key %q is not one of its columns", t.Table, t.Key)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		t.Table, strings.Join(t.Columns, ", "), placeholders, t.Key), nil
}

// Backfill sets Column to Expr on rows matching Where. Where is mandatory and
// must stop matching once a row is updated, which makes replays no-ops.
type Backfill struct {
	Table  string
	Column string
	Expr   string
	Args   []any
	Where  string
}

func (Backfill) Kind() Kind { return KindBackfill }

func (e Backfill) Statements() ([]string, error) {
	if err := checkIdentifier("table", e.Table); err != nil {
		return nil, err
	}
	if err := checkIdentifier("column", e.Column); err != nil {
		return nil, err
	}
	expr := strings.TrimSpace(e.Expr)
	if expr == "" {
		return nil, fmt.Errorf("backfill %s.%s has no expression", e.Table, e.Column)
	}
	where := strings.TrimSpace(e.Where)
	if where == "" {
		return nil, fmt.Errorf("backfill %s.%s needs a predicate", e.Table, e.Column)
	}
	return []string{fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s", e.Table, e.Column, expr, where)}, nil
}

func (e Backfill) Apply(ctx context.Context, tx Execer) (Outcome, error) {
	stmts, err := e.Statements()
	if err != nil {
		return Outcome{}, err
	}
	res, err := tx.ExecContext(ctx, stmts[0], e.Args...)
	if err != nil {
		return Outcome{}, fmt.Errorf("backfill %s.%s: %w", e.Table, e.Column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Outcome{}, fmt.Errorf("backfill %s.%s rows affected: %w", e.Table, e.Column, err)
	}
	return Outcome{RowsAffected: n}, nil
}

func (e Backfill) validate() error {
	_, err := e.Statements()
	return err
}

func execStatements(ctx context.Context, tx Execer, effect Effect) (Outcome, error) {
	stmts, err := effect.Statements()
	if err != nil {
		return Outcome{}, err
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{}, nil
}
