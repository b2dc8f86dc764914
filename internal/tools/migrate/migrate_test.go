package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/postpos/internal/platform/timeouts"
	"github.com/louisbranch/postpos/internal/services/pos/storage/sqlite/migrations"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	cfg, err := ParseConfigFrom(fs, nil, map[string]string{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "postpos.db") {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Timeout != timeouts.Migrate {
		t.Fatalf("expected default timeout, got %s", cfg.Timeout)
	}
	if cfg.Status || cfg.JSONOutput {
		t.Fatal("expected status and json to default off")
	}
	if cfg.Locale != "en" || cfg.Logging.Level != "info" || cfg.Logging.Env != "production" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	environment := map[string]string{
		"POSTPOS_DB_PATH":         "env.db",
		"POSTPOS_MIGRATE_TIMEOUT": "30s",
		"POSTPOS_LOCALE":          "es",
		"POSTPOS_LOG_LEVEL":       "debug",
	}
	cfg, err := ParseConfigFrom(fs, []string{"-db-path", "flag.db", "-status", "-json"}, environment)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" || cfg.Timeout != 30*time.Second || !cfg.Status || !cfg.JSONOutput {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Locale != "es" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected env values: %+v", cfg)
	}
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	tests := [][]string{
		{"-db-path", " "},
		{"-timeout", "0s"},
		{"-unknown"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
		fs.SetOutput(&bytes.Buffer{})
		if _, err := ParseConfigFrom(fs, args, map[string]string{}); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRunMigratesThenReportsUpToDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "postpos.db")
	ctx := context.Background()

	var out, errOut bytes.Buffer
	cfg := Config{DBPath: path}
	if err := Run(ctx, cfg, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Applied 21 migrations:") || !strings.Contains(text, "Pending: none") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if !strings.Contains(errOut.String(), "migration applied") {
		t.Fatalf("expected migration logs, got %q", errOut.String())
	}

	out.Reset()
	if err := Run(ctx, cfg, &out, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "No migrations applied") {
		t.Fatalf("expected idempotent run, got:\n%s", out.String())
	}
}

func TestRunStatusJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postpos.db")
	ctx := context.Background()

	var out bytes.Buffer
	if err := Run(ctx, Config{DBPath: path, Status: true, JSONOutput: true}, &out, nil); err != nil {
		t.Fatalf("status on missing db: %v", err)
	}
	var got report
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if got.Current != 0 || got.UpToDate || len(got.Pending) != migrations.Latest || len(got.Applied) != 0 {
		t.Fatalf("unexpected report for missing db: %+v", got)
	}
	if got.Pending[1].Kind != "seed" || got.Pending[0].Kind != "ddl" {
		t.Fatalf("unexpected pending kinds: %+v", got.Pending[:2])
	}

	if err := Run(ctx, Config{DBPath: path}, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	out.Reset()
	if err := Run(ctx, Config{DBPath: path, Status: true, JSONOutput: true}, &out, nil); err != nil {
		t.Fatalf("status: %v", err)
	}
	got = report{}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !got.UpToDate || got.Current != migrations.Latest || len(got.Applied) != migrations.Latest || len(got.Pending) != 0 {
		t.Fatalf("unexpected report: current %d applied %d pending %d", got.Current, len(got.Applied), len(got.Pending))
	}
	if got.Applied[0].Description != "create_users_table" || got.Applied[0].AppliedAt == "" {
		t.Fatalf("unexpected first entry: %+v", got.Applied[0])
	}
}

func TestRunStatusText(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "postpos.db"), Status: true}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("status: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Schema version: 0 (latest 21)") || !strings.Contains(text, "Pending 21 migrations:") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if strings.Contains(text, "No migrations applied") {
		t.Fatalf("status output should not describe a run:\n%s", text)
	}
}
