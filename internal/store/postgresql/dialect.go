package postgresql

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loykin/apiscenario/internal/constants"
)

// Dialect implements SQL dialect for PostgreSQL
type Dialect struct{}

// NewDialect creates a new PostgreSQL dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns PostgreSQL-style placeholders ($1, $2, etc.)
func (p *Dialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// BoolToStorage converts bool to PostgreSQL storage format (native bool)
func (p *Dialect) BoolToStorage(b bool) interface{} {
	return b
}

// TimeToStorage converts time to PostgreSQL storage format (native time.Time)
func (p *Dialect) TimeToStorage(t time.Time) interface{} {
	return t.UTC()
}

// BoolFromStorage converts PostgreSQL bool storage to bool
func (p *Dialect) BoolFromStorage(val interface{}) bool {
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

// TimeFromStorage converts PostgreSQL timestamptz storage to UTC time
func (p *Dialect) TimeFromStorage(val interface{}) time.Time {
	if t, ok := val.(*time.Time); ok && t != nil {
		return t.UTC()
	}
	if t, ok := val.(time.Time); ok {
		return t.UTC()
	}
	return time.Time{}
}

// Connect establishes a connection to PostgreSQL with connection pooling
func (p *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultPostgresMaxConnections)
	db.SetMaxIdleConns(constants.DefaultPostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}
	return db, nil
}

// EnsureStatements returns PostgreSQL-specific table creation statements
func (p *Dialect) EnsureStatements(runs string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, feature TEXT NOT NULL, scenario TEXT NOT NULL, passed BOOLEAN NOT NULL DEFAULT FALSE, failed_step TEXT NULL, error TEXT NULL, duration_ms BIGINT NOT NULL, started_at TIMESTAMPTZ NOT NULL)", runs),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_started_at_idx ON %s (started_at)", runs, runs),
	}
}

// DriverName returns the driver name for logging
func (p *Dialect) DriverName() string {
	return "postgresql"
}
