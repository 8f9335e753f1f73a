package steps

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUndefinedStep is returned for a sentence no definition matches.
var ErrUndefinedStep = errors.New("undefined step")

// Handler runs one matched step. groups holds the regexp submatches without
// the full match.
type Handler func(ctx context.Context, sc *Scenario, groups []string, arg Argument) error

// Definition binds a sentence pattern to its handler.
type Definition struct {
	// Usage is the sentence as shown to users, e.g. `I call <METHOD> "<path>"`.
	Usage   string
	re      *regexp.Regexp
	handler Handler
}

// Pattern returns the regular expression the definition matches.
func (d *Definition) Pattern() string {
	return d.re.String()
}

// Registry holds step definitions in registration order; the first matching
// definition wins.
type Registry struct {
	defs []*Definition
}

var keyword = regexp.MustCompile(`(?i)^(given|when|then|and|but|\*)\s+`)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a definition. pattern is anchored automatically.
func (r *Registry) Register(usage, pattern string, h Handler) error {
	if h == nil {
		return fmt.Errorf("step %q: nil handler", usage)
	}
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern += "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("step %q: %w", usage, err)
	}
	r.defs = append(r.defs, &Definition{Usage: usage, re: re, handler: h})
	return nil
}

// MustRegister is Register that panics on an invalid pattern.
func (r *Registry) MustRegister(usage, pattern string, h Handler) {
	if err := r.Register(usage, pattern, h); err != nil {
		panic(err)
	}
}

// Normalize strips the Gherkin keyword and surrounding blanks from sentence.
func Normalize(sentence string) string {
	s := strings.TrimSpace(sentence)
	return strings.TrimSpace(keyword.ReplaceAllString(s, ""))
}

// Match finds the definition for sentence.
func (r *Registry) Match(sentence string) (*Definition, []string, error) {
	s := Normalize(sentence)
	for _, d := range r.defs {
		if m := d.re.FindStringSubmatch(s); m != nil {
			return d, m[1:], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUndefinedStep, s)
}

// Run matches sentence and executes it against sc.
func (r *Registry) Run(ctx context.Context, sc *Scenario, sentence string, arg Argument) error {
	d, groups, err := r.Match(sentence)
	if err != nil {
		return err
	}
	return d.handler(ctx, sc, groups, arg)
}

// Definitions lists the usage of every registered definition in order.
func (r *Registry) Definitions() []string {
	out := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d.Usage)
	}
	return out
}
