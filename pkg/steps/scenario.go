// Package steps maps human-readable scenario sentences onto the request
// builder and the assertion engine.
package steps

import (
	"github.com/loykin/apiscenario/pkg/assert"
	"github.com/loykin/apiscenario/pkg/request"
	"github.com/loykin/apiscenario/pkg/state"
)

// Argument is the multi-line payload attached to a step: a doc string for
// inline YAML bodies or a table for header lists.
type Argument struct {
	Doc   string     `yaml:"doc,omitempty"`
	Table [][]string `yaml:"table,omitempty"`
}

// Scenario is the context shared by the steps of one scenario. A fresh
// Scenario is created per scenario; nothing is shared between two of them.
type Scenario struct {
	Store   *state.Store
	Request *request.Builder
	Assert  *assert.Asserter
}

// NewScenario wires a Store, Builder and Asserter around transport t.
func NewScenario(t request.Transport, opts ...request.Option) *Scenario {
	st := state.New()
	return &Scenario{
		Store:   st,
		Request: request.NewBuilder(t, st, opts...),
		Assert:  assert.New(st),
	}
}
