package constants

import (
	"net/http"
	"time"
)

// Database Constants
const (
	// PostgreSQL defaults
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// Connection pool settings
	DefaultPostgresMaxConnections = 10
	DefaultPostgresMaxIdleConns   = 2
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer

	// Run history table
	DefaultRunsTable = "scenario_runs"
	RunsTableSuffix  = "_scenario_runs"

	DefaultSQLitePath = "apiscenario.db"
)

// Time and Duration Constants
const (
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute

	DefaultClientTimeout = 30 * time.Second
)

// Wait Configuration Constants
const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultWaitInterval = 2 * time.Second
	DefaultWaitStatus   = http.StatusOK
	DefaultWaitMethod   = http.MethodGet
)

// Scenario defaults
const (
	DefaultConfigPath   = "./config/config.yaml"
	DefaultFeaturesDir  = "./features"
	DefaultResourceRoot = "./resources"
	DefaultHistoryLimit = 20
	EnvPrefix           = "APISCENARIO"
)
