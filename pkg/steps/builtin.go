package steps

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/loykin/apiscenario/pkg/assert"
	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/value"
)

const (
	method  = `([A-Za-z]+)`
	quoted  = `"([^"]*)"`
	count   = `(?:(less than|more than|at least|at most) )?(\d+)`
	contain = `should contains?`
)

// Default returns a Registry holding the built-in HTTP sentences.
func Default() *Registry {
	r := NewRegistry()
	RegisterHTTP(r)
	return r
}

// RegisterHTTP adds the built-in request and response sentences to r.
// Verbs match in any case and are validated by the request builder.
func RegisterHTTP(r *Registry) {
	r.MustRegister(`I call <METHOD> "<path>"`,
		`I call `+method+` `+quoted,
		func(ctx context.Context, sc *Scenario, g []string, _ Argument) error {
			_, err := sc.Request.Call(ctx, g[0], g[1], value.NewNull())
			return err
		})
	r.MustRegister(`I call <METHOD> "<path>" with data:`,
		`I call `+method+` `+quoted+` with data:?`,
		func(ctx context.Context, sc *Scenario, g []string, arg Argument) error {
			_, err := sc.Request.CallWithData(ctx, g[0], g[1], arg.Doc)
			return err
		})
	r.MustRegister(`I set headers to:`,
		`I set headers to:?`,
		func(_ context.Context, sc *Scenario, _ []string, arg Argument) error {
			h, err := headerTable(arg.Table)
			if err != nil {
				return err
			}
			sc.Store.SetHeaders(h)
			return nil
		})
	r.MustRegister(`I call <METHOD> "<path>" with file "<field>" from "<resource>"`,
		`I call `+method+` `+quoted+` with file `+quoted+` from `+quoted,
		func(ctx context.Context, sc *Scenario, g []string, _ Argument) error {
			_, err := sc.Request.CallWithFile(ctx, g[0], g[1], g[2], g[3])
			return err
		})
	r.MustRegister(`I call <METHOD> "<path>" with (null|empty) file "<field>"`,
		`I call `+method+` `+quoted+` with (null|empty) file `+quoted,
		func(ctx context.Context, sc *Scenario, g []string, _ Argument) error {
			var err error
			if g[2] == "null" {
				_, err = sc.Request.CallWithNullFile(ctx, g[0], g[1], g[3])
			} else {
				_, err = sc.Request.CallWithEmptyFile(ctx, g[0], g[1], g[3])
			}
			return err
		})

	r.MustRegister(`The response status should be <n>`,
		`The response status should be (\d+)`,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			n, err := atoi(g[0])
			if err != nil {
				return err
			}
			return sc.Assert.Status(n)
		})
	r.MustRegister(`The response should contains empty array`,
		`The response `+contain+` empty array`,
		func(_ context.Context, sc *Scenario, _ []string, _ Argument) error {
			return sc.Assert.EmptyList()
		})
	r.MustRegister(`The response size is <n>`,
		`The response size is (\d+)`,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			n, err := atoi(g[0])
			if err != nil {
				return err
			}
			return sc.Assert.ListSize(n)
		})
	r.MustRegister(`The response is empty`,
		`The response is empty`,
		func(_ context.Context, sc *Scenario, _ []string, _ Argument) error {
			return sc.Assert.Empty()
		})

	r.MustRegister(`The response entity should contains "<key>" with value "<text>"`,
		`The response entity `+contain+` `+quoted+` with value `+quoted,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			return sc.Assert.KeyEqualsString(g[0], g[1])
		})
	r.MustRegister(`The response entity should contains "<key>" with value <n>`,
		`The response entity `+contain+` `+quoted+` with value ([^"]*)`,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			n, err := atoi64(g[1])
			if err != nil {
				return err
			}
			return sc.Assert.KeyEqualsInt(g[0], n)
		})
	r.MustRegister(`The response entity should contains "<key>"`,
		`The response entity `+contain+` `+quoted,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			return sc.Assert.ContainsKey(g[0])
		})
	r.MustRegister(`The response entity should not contains "<key>"`,
		`The response entity should not contains? `+quoted,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			return sc.Assert.NotContainsKey(g[0])
		})

	r.MustRegister(`The response entity "<entity>" should contain [at least|at most|more than|less than] <n> entities`,
		`The response entity `+quoted+` `+contain+` `+count+` entit(?:ies|y)`,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			op, err := assert.ParseOperator(g[1])
			if err != nil {
				return err
			}
			n, err := atoi(g[2])
			if err != nil {
				return err
			}
			_, err = sc.Assert.EntityCount(g[0], op, n)
			return err
		})
	r.MustRegister(`The response entity "<entity>" should contain "<key>" with value "<text>"`,
		`The response entity `+quoted+` `+contain+` `+quoted+` with value `+quoted,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			return sc.Assert.EntityKeyEqualsString(g[0], g[1], g[2])
		})
	r.MustRegister(`The response entity "<entity>" should contain "<key>" with value <n>`,
		`The response entity `+quoted+` `+contain+` `+quoted+` with value ([^"]*)`,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			n, err := atoi64(g[2])
			if err != nil {
				return err
			}
			return sc.Assert.EntityKeyEqualsInt(g[0], g[1], n)
		})
	r.MustRegister(`The response entity "<entity>" should contain "<key>"`,
		`The response entity `+quoted+` `+contain+` `+quoted,
		func(_ context.Context, sc *Scenario, g []string, _ Argument) error {
			_, err := sc.Assert.EntityKey(g[0], g[1])
			return err
		})
}

// headerTable turns `| name | value |` rows into headers. A repeated name
// replaces the earlier value.
func headerTable(rows [][]string) (http.Header, error) {
	h := http.Header{}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, failure.Argumentf("header row %d: want name and value, got %d cells", i+1, len(row))
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, failure.Argumentf("header row %d: empty name", i+1)
		}
		h.Set(name, strings.TrimSpace(row[1]))
	}
	return h, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, failure.Argumentf("not an integer: %q", s)
	}
	return n, nil
}

func atoi64(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, failure.Argumentf("not an integer: %q", s)
	}
	return n, nil
}
