// Package migrate implements the postpos-migrate command: it brings a
// point-of-sale database up to the latest schema, or reports its ledger.
package migrate

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/postpos/internal/platform/config"
	"github.com/louisbranch/postpos/internal/platform/logging"
	"github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/postpos/internal/platform/timeouts"
	"github.com/louisbranch/postpos/internal/services/pos/storage/sqlite"
)

// Config holds migrate command configuration.
type Config struct {
	DBPath     string
	Timeout    time.Duration
	Status     bool
	JSONOutput bool
	Locale     string
	Logging    logging.Config
}

type envConfig struct {
	DBPath   string        `env:"DB_PATH"`
	Timeout  time.Duration `env:"MIGRATE_TIMEOUT"`
	Locale   string        `env:"LOCALE" envDefault:"en"`
	Env      string        `env:"ENV" envDefault:"production"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig reads POSTPOS_* environment defaults and then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}
	return parseFlags(fs, args, envCfg)
}

// ParseConfigFrom is ParseConfig with an explicit environment.
func ParseConfigFrom(fs *flag.FlagSet, args []string, environment map[string]string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnvFrom(&envCfg, environment); err != nil {
		return Config{}, err
	}
	return parseFlags(fs, args, envCfg)
}

func parseFlags(fs *flag.FlagSet, args []string, envCfg envConfig) (Config, error) {
	cfg := Config{
		DBPath:  envCfg.DBPath,
		Timeout: envCfg.Timeout,
		Locale:  envCfg.Locale,
		Logging: logging.Config{Env: envCfg.Env, Level: envCfg.LogLevel},
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "postpos.db")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Migrate
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the point-of-sale sqlite database (default: POSTPOS_DB_PATH or data/postpos.db)")
	fs.BoolVar(&cfg.Status, "status", false, "report applied and pending migrations without changing the database")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, fmt.Errorf("-db-path is required")
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("-timeout must be > 0")
	}
	return cfg, nil
}

type appliedEntry struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
	AppliedAt   string `json:"applied_at,omitempty"`
}

type pendingEntry struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

type ranEntry struct {
	Version      int    `json:"version"`
	Description  string `json:"description"`
	Kind         string `json:"kind"`
	RowsAffected int64  `json:"rows_affected"`
	RowsSkipped  int    `json:"rows_skipped"`
	Attempts     int    `json:"attempts"`
}

type report struct {
	DBPath   string         `json:"db_path"`
	Current  int            `json:"current"`
	Latest   int            `json:"latest"`
	UpToDate bool           `json:"up_to_date"`
	Adopted  int64          `json:"adopted,omitempty"`
	Ran      []ranEntry     `json:"ran,omitempty"`
	Applied  []appliedEntry `json:"applied"`
	Pending  []pendingEntry `json:"pending"`
}

// Run executes the migrate command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logCfg := cfg.Logging
	if logCfg.Out == nil {
		logCfg.Out = errOut
	}
	logger := logging.New(logCfg).With().Str("db_path", cfg.DBPath).Logger()

	var (
		status sqlitemigrate.Status
		ran    sqlitemigrate.Report
		err    error
	)
	if cfg.Status {
		status, err = sqlite.InspectStatus(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", cfg.DBPath, err)
		}
	} else {
		var store *sqlite.Store
		store, err = sqlite.Open(ctx, cfg.DBPath, sqlite.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
		}
		defer store.Close()
		ran = store.MigrationReport()
		status, err = store.Status(ctx)
		if err != nil {
			return fmt.Errorf("status %s: %w", cfg.DBPath, err)
		}
	}

	r := buildReport(cfg.DBPath, status, ran)
	if cfg.JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return writeText(out, r, cfg.Status)
}

func buildReport(path string, status sqlitemigrate.Status, ran sqlitemigrate.Report) report {
	r := report{
		DBPath:   path,
		Current:  status.Current,
		Latest:   status.Latest,
		UpToDate: status.UpToDate(),
		Adopted:  ran.Adopted,
		Applied:  make([]appliedEntry, 0, len(status.Applied)),
		Pending:  make([]pendingEntry, 0, len(status.Pending)),
	}
	for _, entry := range status.Applied {
		applied := appliedEntry{Version: entry.Version, Description: entry.Description}
		if !entry.AppliedAt.IsZero() {
			applied.AppliedAt = entry.AppliedAt.UTC().Format(time.RFC3339)
		}
		r.Applied = append(r.Applied, applied)
	}
	for _, step := range status.Pending {
		r.Pending = append(r.Pending, pendingEntry{
			Version:     step.Version,
			Description: step.Description,
			Kind:        step.Effect.Kind().String(),
		})
	}
	for _, result := range ran.Applied {
		r.Ran = append(r.Ran, ranEntry{
			Version:      result.Version,
			Description:  result.Description,
			Kind:         result.Kind.String(),
			RowsAffected: result.RowsAffected,
			RowsSkipped:  len(result.Skipped),
			Attempts:     result.Attempts,
		})
	}
	return r
}

func writeText(out io.Writer, r report, statusOnly bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n", r.DBPath)
	fmt.Fprintf(&b, "Schema version: %d (latest %d)\n", r.Current, r.Latest)
	if !statusOnly {
		if r.Adopted > 0 {
			fmt.Fprintf(&b, "Adopted %d legacy migrations\n", r.Adopted)
		}
		if len(r.Ran) == 0 {
			b.WriteString("No migrations applied\n")
		} else {
			fmt.Fprintf(&b, "Applied %d migrations:\n", len(r.Ran))
			for _, entry := range r.Ran {
				fmt.Fprintf(&b, "  %3d %-45s %-8s rows=%d", entry.Version, entry.Description, entry.Kind, entry.RowsAffected)
				if entry.RowsSkipped > 0 {
					fmt.Fprintf(&b, " skipped=%d", entry.RowsSkipped)
				}
				b.WriteString("\n")
			}
		}
	}
	if len(r.Pending) == 0 {
		b.WriteString("Pending: none\n")
	} else {
		fmt.Fprintf(&b, "Pending %d migrations:\n", len(r.Pending))
		for _, entry := range r.Pending {
			fmt.Fprintf(&b, "  %3d %-45s %s\n", entry.Version, entry.Description, entry.Kind)
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}
