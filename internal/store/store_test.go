package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/apiscenario/internal/retry"
	"github.com/loykin/apiscenario/internal/store/postgresql"
	"github.com/loykin/apiscenario/internal/store/sqlite"
)

func openSQLite(t *testing.T, cfg Config) *Store {
	t.Helper()
	cfg.Type = DriverSqlite
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "history.db")
	}
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConfig_RunsTable(t *testing.T) {
	tests := []struct {
		cfg     Config
		want    string
		wantErr bool
	}{
		{Config{}, "scenario_runs", false},
		{Config{TablePrefix: "qa"}, "qa_scenario_runs", false},
		{Config{TablePrefix: "qa", TableName: "runs"}, "runs", false},
		{Config{TableName: "runs; DROP TABLE x"}, "", true},
		{Config{TablePrefix: "1bad"}, "", true},
	}
	for _, tt := range tests {
		got, err := tt.cfg.RunsTable()
		if (err != nil) != tt.wantErr {
			t.Fatalf("RunsTable(%+v) err=%v", tt.cfg, err)
		}
		if got != tt.want {
			t.Fatalf("RunsTable(%+v)=%q want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open(context.Background(), Config{Type: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
	if _, err := Open(context.Background(), Config{Type: "postgres"}); err == nil {
		t.Fatal("expected error for postgres without dsn or host")
	}
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	s := openSQLite(t, Config{TablePrefix: "demo"})
	if s.Table() != "demo_scenario_runs" {
		t.Fatalf("unexpected table %s", s.Table())
	}
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	runs := []Run{
		{ID: "a", Feature: "Users", Scenario: "list", Passed: true, Duration: 120 * time.Millisecond, StartedAt: base},
		{ID: "b", Feature: "Users", Scenario: "create", Passed: false, FailedStep: `The response status should be 201`, Error: "response status: expected 201, got 500", Duration: 2 * time.Second, StartedAt: base.Add(500 * time.Millisecond)},
		{ID: "c", Feature: "Uploads", Scenario: "null file", Passed: true, StartedAt: base.Add(time.Second)},
	}
	for _, r := range runs {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.ID, err)
		}
	}

	got, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[1].ID != "b" || got[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", got)
	}
	b := got[1]
	if b.Passed || b.FailedStep != runs[1].FailedStep || b.Error != runs[1].Error || b.Duration != 2*time.Second {
		t.Fatalf("failed run not round-tripped: %+v", b)
	}
	if !b.StartedAt.Equal(runs[1].StartedAt) {
		t.Fatalf("started_at %v want %v", b.StartedAt, runs[1].StartedAt)
	}
	if !got[2].Passed || got[2].FailedStep != "" || got[2].Error != "" {
		t.Fatalf("passed run not round-tripped: %+v", got[2])
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil || len(limited) != 2 || limited[0].ID != "c" {
		t.Fatalf("limit: %v %+v", err, limited)
	}
}

func TestSQLiteStore_DuplicateIDIsNotRetried(t *testing.T) {
	s := openSQLite(t, Config{})
	s.SetRetry(&retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1, RetryableErrors: []string{"database is locked"}})
	ctx := context.Background()
	r := Run{ID: "dup", Feature: "f", Scenario: "s", StartedAt: time.Now()}
	if err := s.RecordRun(ctx, r); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.RecordRun(ctx, r); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestSQLiteStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	ctx := context.Background()

	s1, err := Open(ctx, Config{SQLite: sqlite.Config{Path: path}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.RecordRun(ctx, Run{ID: "x", Feature: "f", Scenario: "s", Passed: true, StartedAt: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = s1.Close()

	s2, err := Open(ctx, Config{SQLite: sqlite.Config{Path: path}})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	runs, err := s2.ListRuns(ctx, 10)
	if err != nil || len(runs) != 1 || runs[0].ID != "x" {
		t.Fatalf("history lost: %v %+v", err, runs)
	}
}

func TestRecordRun_CancelledContext(t *testing.T) {
	s := openSQLite(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.RecordRun(ctx, Run{ID: "x", StartedAt: time.Now()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPostgresConfig_ConnString(t *testing.T) {
	dsn, err := postgresql.Config{Host: "db", User: "u", Password: "p@ss", DBName: "runs"}.ConnString()
	if err != nil {
		t.Fatal(err)
	}
	if dsn != "postgres://u:p%40ss@db:5432/runs?sslmode=disable" {
		t.Fatalf("unexpected dsn %s", dsn)
	}
	dsn, _ = postgresql.Config{DSN: " postgres://x ", Host: "ignored"}.ConnString()
	if dsn != "postgres://x" {
		t.Fatalf("explicit dsn must win: %s", dsn)
	}
}

func TestSQLiteConfig_DSN(t *testing.T) {
	if got := (sqlite.Config{}).DSN(); got != "file:apiscenario.db?_busy_timeout=5000&_fk=1" {
		t.Fatalf("default dsn %s", got)
	}
	if got := (sqlite.Config{Path: ":memory:"}).DSN(); got != ":memory:" {
		t.Fatalf("memory dsn %s", got)
	}
}

func TestDialects(t *testing.T) {
	sq := sqlite.NewDialect()
	pg := postgresql.NewDialect()
	if sq.Placeholder(3) != "?" || pg.Placeholder(3) != "$3" {
		t.Fatal("unexpected placeholders")
	}
	if sq.BoolToStorage(true) != 1 || sq.BoolFromStorage(int64(0)) || !pg.BoolFromStorage(true) {
		t.Fatal("unexpected bool conversion")
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !sq.TimeFromStorage(sq.TimeToStorage(now)).Equal(now) {
		t.Fatal("sqlite time round trip")
	}
	if !pg.TimeFromStorage(pg.TimeToStorage(now)).Equal(now) {
		t.Fatal("postgres time round trip")
	}
	if len(sq.EnsureStatements("runs")) != 2 || len(pg.EnsureStatements("runs")) != 2 {
		t.Fatal("unexpected ensure statements")
	}
}
