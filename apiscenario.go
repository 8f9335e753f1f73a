// Package apiscenario runs HTTP acceptance scenarios written as YAML feature
// files. It re-exports the engine for embedding in Go programs and tests.
package apiscenario

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/internal/httpc"
	"github.com/loykin/apiscenario/internal/store"
	"github.com/loykin/apiscenario/internal/store/postgresql"
	"github.com/loykin/apiscenario/internal/store/sqlite"
	"github.com/loykin/apiscenario/pkg/request"
	"github.com/loykin/apiscenario/pkg/runner"
	"github.com/loykin/apiscenario/pkg/steps"
	"github.com/loykin/apiscenario/pkg/value"
)

// Value is a decoded response body or request payload.
type Value = value.Value

// Scenario is the per-scenario context step handlers operate on.
type Scenario = steps.Scenario

// Registry maps step sentences to handlers.
type Registry = steps.Registry

// StepArgument carries a step's doc string or table.
type StepArgument = steps.Argument

type (
	Feature      = runner.Feature
	Report       = runner.Report
	Result       = runner.Result
	Runner       = runner.Runner
	RunnerOption = runner.Option
)

// Client holds base URL, timeout and TLS settings for all requests of a run.
type Client = httpc.Httpc

// RequestOption configures the request builder of each scenario.
type RequestOption = request.Option

// Logger is the structured logger used by the engine.
type Logger = common.Logger

// NewScenario returns a scenario context sending requests through c, for
// driving steps directly from Go code.
func NewScenario(c *Client, opts ...RequestOption) *Scenario {
	return steps.NewScenario(httpc.NewTransport(c), opts...)
}

// DefaultRegistry returns a registry holding the built-in sentences.
func DefaultRegistry() *Registry { return steps.Default() }

// NewRunner returns a Runner sending requests through c.
func NewRunner(c *Client, opts ...RunnerOption) *Runner {
	return runner.New(httpc.NewTransport(c), opts...)
}

// ParseFeature decodes one feature document; name labels errors.
func ParseFeature(data []byte, name string) (*Feature, error) { return runner.ParseFeature(data, name) }

// LoadFeatures loads feature files and directories.
func LoadFeatures(paths ...string) ([]*Feature, error) { return runner.LoadFeatures(paths...) }

// LoadFeaturesFS loads every feature file below root in fsys, e.g. an embed.FS.
func LoadFeaturesFS(fsys fs.FS, root string) ([]*Feature, error) {
	return runner.LoadFeaturesFS(fsys, root)
}

var (
	WithRegistry       = runner.WithRegistry
	WithRecorder       = runner.WithRecorder
	WithRequestOptions = runner.WithRequestOptions
	WithRunnerLogger   = runner.WithLogger
	WithDefaultHeaders = request.WithDefaultHeaders
	WithResourceRoot   = request.WithResourceRoot
)

// History is the run-history store.
type History = store.Store

// HistoryConfig selects the history database.
type HistoryConfig = store.Config

// Run is one recorded scenario outcome.
type Run = store.Run

type (
	SQLiteConfig   = sqlite.Config
	PostgresConfig = postgresql.Config
)

const (
	DriverSqlite   = store.DriverSqlite
	DriverPostgres = store.DriverPostgres
)

// OpenHistory opens the history store and creates its table.
func OpenHistory(ctx context.Context, cfg HistoryConfig) (*History, error) {
	return store.Open(ctx, cfg)
}

// SetLogger replaces the global logger.
func SetLogger(l *Logger) { common.SetDefaultLogger(l) }

// NewLogger returns a text logger at level (error, warn, info, debug).
func NewLogger(level string) (*Logger, error) {
	lv, err := common.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return common.NewLogger(lv), nil
}

// Headers is a convenience for building default headers.
func Headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}
