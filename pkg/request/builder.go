package request

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/pkg/expr"
	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/state"
	"github.com/loykin/apiscenario/pkg/value"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
)

// Builder turns step arguments into Requests, sends them through a Transport
// and records each result in the scenario's Store.
type Builder struct {
	transport    Transport
	store        *state.Store
	defaults     http.Header
	resourceRoot string
	logger       *common.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithDefaultHeaders sets headers sent on every call beneath the headers
// configured through the Store (auth headers from config, for instance).
func WithDefaultHeaders(h http.Header) Option {
	return func(b *Builder) { b.defaults = h.Clone() }
}

// WithResourceRoot sets the directory upload resources are resolved against.
func WithResourceRoot(dir string) Option {
	return func(b *Builder) { b.resourceRoot = dir }
}

// WithLogger overrides the default logger.
func WithLogger(l *common.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a Builder sending through t and recording into s.
func NewBuilder(t Transport, s *state.Store, opts ...Option) *Builder {
	b := &Builder{
		transport:    t,
		store:        s,
		resourceRoot: ".",
		logger:       common.GetLogger().WithComponent("request"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates the verb, rejects a GET carrying a non-null body, resolves
// `${response.<path>}` placeholders against the last stored body and layers
// the Store headers over the default headers.
func (b *Builder) Build(method, target string, body value.Value) (*Request, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if !m.AllowsBody() && !body.IsNull() {
		return nil, failure.Argumentf("%s %s cannot carry data", m, target)
	}
	url, err := expr.Resolve(target, b.store.Body)
	if err != nil {
		return nil, err
	}

	headers := b.defaultHeaders()
	for name, vals := range b.store.Headers() {
		headers[http.CanonicalHeaderKey(name)] = append([]string(nil), vals...)
	}
	if !body.IsNull() && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentTypeJSON)
	}
	return &Request{Method: m, URL: url, Headers: headers, Body: body}, nil
}

// BuildMultipart builds an upload request around one named part. The Store
// headers are ignored for this call; Content-Type is multipart/form-data.
func (b *Builder) BuildMultipart(method, target string, part Part) (*Request, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if !m.AllowsBody() {
		return nil, failure.Argumentf("%s %s cannot carry a multipart body", m, target)
	}
	if part.Field == "" {
		return nil, failure.Argumentf("multipart field name is empty")
	}
	url, err := expr.Resolve(target, b.store.Body)
	if err != nil {
		return nil, err
	}
	headers := b.defaultHeaders()
	headers.Set("Content-Type", contentTypeMultipart)
	return &Request{Method: m, URL: url, Headers: headers, Parts: []Part{part}}, nil
}

func (b *Builder) defaultHeaders() http.Header {
	if b.defaults == nil {
		return http.Header{}
	}
	return b.defaults.Clone()
}

// Call sends method target with an optional body (Null for none).
func (b *Builder) Call(ctx context.Context, method, target string, body value.Value) (*state.Result, error) {
	req, err := b.Build(method, target, body)
	if err != nil {
		return nil, err
	}
	return b.send(ctx, req)
}

// CallWithData parses data as inline YAML and sends it as the request body.
func (b *Builder) CallWithData(ctx context.Context, method, target, data string) (*state.Result, error) {
	body, err := value.ParseYAML(data)
	if err != nil {
		return nil, failure.Argumentf("invalid data for %s %s: %v", method, target, err)
	}
	return b.Call(ctx, method, target, body)
}

// CallWithFile uploads the resource at <resource root>/from as field.
// A missing or unreadable file is returned wrapped, never swallowed.
func (b *Builder) CallWithFile(ctx context.Context, method, target, field, from string) (*state.Result, error) {
	data, err := os.ReadFile(b.ResourcePath(from))
	if err != nil {
		return nil, fmt.Errorf("load resource %q: %w", from, err)
	}
	return b.upload(ctx, method, target, Part{Field: field, Kind: PartFile, FileName: filepath.Base(from), Data: data})
}

// CallWithEmptyFile uploads a zero-length file as field.
func (b *Builder) CallWithEmptyFile(ctx context.Context, method, target, field string) (*state.Result, error) {
	return b.upload(ctx, method, target, Part{Field: field, Kind: PartEmpty, FileName: field})
}

// CallWithNullFile sends field with no content.
func (b *Builder) CallWithNullFile(ctx context.Context, method, target, field string) (*state.Result, error) {
	return b.upload(ctx, method, target, Part{Field: field, Kind: PartAbsent})
}

// ResourcePath resolves name against the resource root.
func (b *Builder) ResourcePath(name string) string {
	return filepath.Join(b.resourceRoot, filepath.FromSlash(name))
}

func (b *Builder) upload(ctx context.Context, method, target string, part Part) (*state.Result, error) {
	req, err := b.BuildMultipart(method, target, part)
	if err != nil {
		return nil, err
	}
	return b.send(ctx, req)
}

func (b *Builder) send(ctx context.Context, req *Request) (*state.Result, error) {
	logger := b.logger.WithRequest(string(req.Method), req.URL)
	logger.Debug("sending request", "headers", common.GetGlobalMasker().MaskHeaders(req.Headers), "multipart", req.IsMultipart())

	res, err := b.transport.Execute(ctx, req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	b.store.Record(res)
	logger.Debug("response recorded", "status", res.StatusCode, "body_kind", res.Body.Kind().String())
	return res, nil
}
