// Package store keeps the run history: one row per executed scenario.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/internal/constants"
	"github.com/loykin/apiscenario/internal/retry"
	"github.com/loykin/apiscenario/internal/store/postgresql"
	"github.com/loykin/apiscenario/internal/store/sqlite"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Run is the recorded outcome of one scenario.
type Run struct {
	ID         string
	Feature    string
	Scenario   string
	Passed     bool
	FailedStep string
	Error      string
	Duration   time.Duration
	StartedAt  time.Time
}

// Dialect hides the SQL differences between the supported databases.
type Dialect interface {
	Placeholder(index int) string
	BoolToStorage(b bool) interface{}
	TimeToStorage(t time.Time) interface{}
	BoolFromStorage(val interface{}) bool
	TimeFromStorage(val interface{}) time.Time
	Connect(dsn string) (*sql.DB, error)
	EnsureStatements(runs string) []string
	DriverName() string
}

// Config selects the database and table for the history.
type Config struct {
	Disabled    bool              `mapstructure:"disabled"`
	Type        string            `mapstructure:"type"`
	SQLite      sqlite.Config     `mapstructure:"sqlite"`
	Postgres    postgresql.Config `mapstructure:"postgres"`
	TablePrefix string            `mapstructure:"table_prefix"`
	TableName   string            `mapstructure:"table_name"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RunsTable resolves the table name: explicit name, else prefix + suffix,
// else the default.
func (c Config) RunsTable() (string, error) {
	name := strings.TrimSpace(c.TableName)
	if name == "" {
		if p := strings.TrimSpace(c.TablePrefix); p != "" {
			name = p + constants.RunsTableSuffix
		} else {
			name = constants.DefaultRunsTable
		}
	}
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return name, nil
}

// Store persists Runs through a Dialect.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	retry   *retry.Config
	logger  *common.Logger
}

// Open connects according to cfg and ensures the runs table exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	table, err := cfg.RunsTable()
	if err != nil {
		return nil, err
	}

	var (
		dialect Dialect
		dsn     string
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", DriverSqlite:
		dialect = sqlite.NewDialect()
		dsn = cfg.SQLite.DSN()
	case DriverPostgres, "postgresql", "pg":
		dialect = postgresql.NewDialect()
		if dsn, err = cfg.Postgres.ConnString(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}

	db, err := dialect.Connect(dsn)
	if err != nil {
		return nil, err
	}
	s := New(db, dialect, table)
	if err := s.Ensure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info("run history store ready", "table", table)
	return s, nil
}

// New wraps an open database. Call Ensure before use.
func New(db *sql.DB, dialect Dialect, table string) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		table:   table,
		retry:   retry.DefaultConfig(),
		logger:  common.GetLogger().WithStore(dialect.DriverName()),
	}
}

// SetRetry overrides the retry policy for writes.
func (s *Store) SetRetry(c *retry.Config) {
	s.retry = c
}

// Table returns the runs table name.
func (s *Store) Table() string {
	return s.table
}

// Ensure creates the runs table when missing.
func (s *Store) Ensure(ctx context.Context) error {
	for _, stmt := range s.dialect.EnsureStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure %s: %w", s.table, err)
		}
	}
	return nil
}

// RecordRun inserts r, retrying on transient errors.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	ph := make([]string, 8)
	for i := range ph {
		ph[i] = s.dialect.Placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (id, feature, scenario, passed, failed_step, error, duration_ms, started_at) VALUES (%s)",
		s.table, strings.Join(ph, ", "))

	err := retry.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, q,
			r.ID, r.Feature, r.Scenario,
			s.dialect.BoolToStorage(r.Passed),
			nullable(r.FailedStep), nullable(r.Error),
			r.Duration.Milliseconds(),
			s.dialect.TimeToStorage(r.StartedAt))
		return err
	})
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	s.logger.Debug("run recorded", "id", r.ID, "feature", r.Feature, "scenario", r.Scenario, "passed", r.Passed)
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := fmt.Sprintf("SELECT id, feature, scenario, passed, failed_step, error, duration_ms, started_at FROM %s ORDER BY started_at DESC, id ASC", s.table)
	var args []interface{}
	if limit > 0 {
		q += " LIMIT " + s.dialect.Placeholder(1)
		args = append(args, limit)
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]Run, error) {
		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		var out []Run
		for rows.Next() {
			var (
				r                 Run
				passed, startedAt interface{}
				failedStep, msg   sql.NullString
				durationMS        int64
			)
			if err := rows.Scan(&r.ID, &r.Feature, &r.Scenario, &passed, &failedStep, &msg, &durationMS, &startedAt); err != nil {
				return nil, err
			}
			r.Passed = s.dialect.BoolFromStorage(passed)
			r.FailedStep = failedStep.String
			r.Error = msg.String
			r.Duration = time.Duration(durationMS) * time.Millisecond
			r.StartedAt = s.dialect.TimeFromStorage(startedAt)
			out = append(out, r)
		}
		return out, rows.Err()
	})
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
