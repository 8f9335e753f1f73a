// Package runner executes feature documents: every scenario gets a fresh
// steps.Scenario, runs its background and steps in order and stops at the
// first failing step.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/internal/store"
	"github.com/loykin/apiscenario/pkg/request"
	"github.com/loykin/apiscenario/pkg/steps"
)

// Recorder persists scenario outcomes. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, r store.Run) error
}

// Result is the outcome of one scenario.
type Result struct {
	ID         uuid.UUID
	Feature    string
	Scenario   string
	Passed     bool
	FailedStep string
	Err        error
	Steps      int
	StartedAt  time.Time
	Duration   time.Duration
}

// Report collects the results of a run.
type Report struct {
	Results []Result
}

// Passed counts passing scenarios.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Failed counts failing scenarios.
func (r Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether every scenario passed.
func (r Report) OK() bool {
	return r.Failed() == 0
}

// Runner runs features against one Transport.
type Runner struct {
	transport request.Transport
	registry  *steps.Registry
	builder   []request.Option
	recorder  Recorder
	logger    *common.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry replaces the default sentence registry.
func WithRegistry(reg *steps.Registry) Option {
	return func(r *Runner) { r.registry = reg }
}

// WithRequestOptions passes options to every scenario's request builder.
func WithRequestOptions(opts ...request.Option) Option {
	return func(r *Runner) { r.builder = append(r.builder, opts...) }
}

// WithRecorder stores every scenario outcome.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger overrides the default logger.
func WithLogger(l *common.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Runner sending requests through t.
func New(t request.Transport, opts ...Option) *Runner {
	r := &Runner{
		transport: t,
		registry:  steps.Default(),
		logger:    common.GetLogger().WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the sentence registry in use.
func (r *Runner) Registry() *steps.Registry {
	return r.registry
}

// Run executes every scenario of every feature in order.
func (r *Runner) Run(ctx context.Context, features ...*Feature) Report {
	var rep Report
	for _, f := range features {
		rep.Results = append(rep.Results, r.RunFeature(ctx, f)...)
	}
	r.logger.Info("run finished", "scenarios", len(rep.Results), "passed", rep.Passed(), "failed", rep.Failed())
	return rep
}

// RunFeature executes the scenarios of f.
func (r *Runner) RunFeature(ctx context.Context, f *Feature) []Result {
	out := make([]Result, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		res := r.runScenario(ctx, f, sc)
		r.record(ctx, res)
		out = append(out, res)
	}
	return out
}

func (r *Runner) runScenario(ctx context.Context, f *Feature, sc Scenario) Result {
	res := Result{
		ID:        uuid.New(),
		Feature:   f.Name,
		Scenario:  sc.Name,
		StartedAt: time.Now(),
	}
	logger := r.logger.WithScenario(f.Name, sc.Name)
	opts := append(append([]request.Option(nil), r.builder...), request.WithLogger(logger.WithComponent("request")))
	state := steps.NewScenario(r.transport, opts...)

	all := make([]Step, 0, len(f.Background)+len(sc.Steps))
	all = append(all, f.Background...)
	all = append(all, sc.Steps...)

	for _, st := range all {
		if err := ctx.Err(); err != nil {
			res.FailedStep, res.Err = st.Text, err
			break
		}
		if err := r.registry.Run(ctx, state, st.Text, st.Argument); err != nil {
			res.FailedStep, res.Err = st.Text, err
			break
		}
		res.Steps++
		logger.Debug("step passed", "step", st.Text)
	}
	res.Passed = res.Err == nil
	res.Duration = time.Since(res.StartedAt)

	if res.Passed {
		logger.Info("scenario passed", "steps", res.Steps, "duration", res.Duration)
	} else {
		logger.WithStep(res.FailedStep).Error("scenario failed", "error", res.Err)
	}
	return res
}

func (r *Runner) record(ctx context.Context, res Result) {
	if r.recorder == nil {
		return
	}
	run := store.Run{
		ID:         res.ID.String(),
		Feature:    res.Feature,
		Scenario:   res.Scenario,
		Passed:     res.Passed,
		FailedStep: res.FailedStep,
		Duration:   res.Duration,
		StartedAt:  res.StartedAt,
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	// history is best effort; a store outage never fails a scenario
	if err := r.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("failed to record run", "id", run.ID, "error", err)
	}
}
