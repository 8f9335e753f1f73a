package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/apiscenario/internal/constants"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Dialect implements SQL dialect for SQLite
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns SQLite-style placeholders (?); the index is ignored
func (s *Dialect) Placeholder(int) string {
	return "?"
}

// BoolToStorage converts bool to SQLite storage format (integer 0/1)
func (s *Dialect) BoolToStorage(b bool) interface{} {
	if b {
		return 1
	}
	return 0
}

// TimeToStorage converts time to SQLite storage format (UTC text)
func (s *Dialect) TimeToStorage(t time.Time) interface{} {
	return t.UTC().Format(timeLayout)
}

// BoolFromStorage converts SQLite integer storage to bool
func (s *Dialect) BoolFromStorage(val interface{}) bool {
	switch i := val.(type) {
	case int64:
		return i != 0
	case int:
		return i != 0
	case bool:
		return i
	}
	return false
}

// TimeFromStorage parses the text written by TimeToStorage
func (s *Dialect) TimeFromStorage(val interface{}) time.Time {
	var str string
	switch v := val.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	case time.Time:
		return v.UTC()
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Connect establishes a connection to SQLite with connection pooling
func (s *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// EnsureStatements returns SQLite-specific table creation statements
func (s *Dialect) EnsureStatements(runs string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, feature TEXT NOT NULL, scenario TEXT NOT NULL, passed INTEGER NOT NULL DEFAULT 0, failed_step TEXT NULL, error TEXT NULL, duration_ms INTEGER NOT NULL, started_at TEXT NOT NULL)", runs),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_started_at_idx ON %s (started_at)", runs, runs),
	}
}

// DriverName returns the driver name for logging
func (s *Dialect) DriverName() string {
	return "sqlite"
}
