// Package request builds and sends the HTTP calls described by scenario steps
// and records their results in a state.Store.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/state"
	"github.com/loykin/apiscenario/pkg/value"
)

// Method is a normalized, upper-case HTTP verb.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodHead    Method = http.MethodHead
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
	MethodPatch   Method = http.MethodPatch
	MethodTrace   Method = http.MethodTrace
)

// Methods lists every supported verb.
var Methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodHead,
	MethodDelete, MethodOptions, MethodPatch, MethodTrace,
}

// ParseMethod validates s against Methods, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", failure.Argumentf("unsupported HTTP method %q", s)
}

// AllowsBody reports whether requests with m may carry a payload. GET, HEAD
// and OPTIONS may not; the transport would drop it.
func (m Method) AllowsBody() bool {
	switch m {
	case MethodGet, MethodHead, MethodOptions:
		return false
	}
	return true
}

// PartKind tells what a multipart file field carries.
type PartKind int

const (
	// PartFile carries bytes loaded from a resource file.
	PartFile PartKind = iota
	// PartEmpty carries a zero-length file.
	PartEmpty
	// PartAbsent is a named field with no content at all.
	PartAbsent
)

// Part is a single named upload field of a multipart request.
type Part struct {
	Field    string
	Kind     PartKind
	FileName string
	Data     []byte
}

// Request is a fully built call ready for a Transport.
type Request struct {
	Method  Method
	URL     string
	Headers http.Header
	// Body is sent as JSON unless it is Null.
	Body  value.Value
	Parts []Part
}

// IsMultipart reports whether the request carries upload parts.
func (r *Request) IsMultipart() bool {
	return len(r.Parts) > 0
}

// Transport executes a Request. Non-2xx statuses are ordinary results;
// only connection-level problems are errors.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*state.Result, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*state.Result, error)

func (f TransportFunc) Execute(ctx context.Context, req *Request) (*state.Result, error) {
	return f(ctx, req)
}
