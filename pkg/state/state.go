// Package state holds the scenario-scoped HTTP state: the outgoing headers
// configured by steps and the result of the most recent exchange.
package state

import (
	"net/http"

	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/value"
)

// Result is the outcome of one HTTP exchange.
type Result struct {
	StatusCode int
	Headers    http.Header
	Body       value.Value
}

// Store is a single mutable slot for the last Result plus the configured
// outgoing headers. It is owned by one scenario and is not safe for
// concurrent use.
type Store struct {
	headers http.Header
	last    *Result
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// SetHeaders replaces the outgoing headers wholesale.
func (s *Store) SetHeaders(h http.Header) {
	s.headers = h.Clone()
}

// Headers returns a copy of the outgoing headers; empty when none were set.
func (s *Store) Headers() http.Header {
	if s.headers == nil {
		return http.Header{}
	}
	return s.headers.Clone()
}

// Record replaces the last result. The previous one is discarded.
func (s *Store) Record(r *Result) {
	s.last = r
}

// Response returns the last result or failure.ErrNoResponse.
func (s *Store) Response() (*Result, error) {
	if s.last == nil {
		return nil, failure.ErrNoResponse
	}
	return s.last, nil
}

// Body returns the body of the last result or failure.ErrNoResponse.
func (s *Store) Body() (value.Value, error) {
	r, err := s.Response()
	if err != nil {
		return value.Value{}, err
	}
	return r.Body, nil
}

// Reset clears headers and the recorded result.
func (s *Store) Reset() {
	s.headers = nil
	s.last = nil
}
