// Package auth turns configured providers into default request headers.
//
// Providers are looked up by type in a registry. Built-in types are basic,
// oauth2 and jwt; callers add their own with Register. Each provider yields
// one header value which is sent on every request of a run.
package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/apiscenario/internal/auth/basic"
	"github.com/loykin/apiscenario/internal/auth/jwt"
	"github.com/loykin/apiscenario/internal/auth/oauth2"
	"github.com/loykin/apiscenario/internal/common"
	golangoauth2 "golang.org/x/oauth2"
)

// Method acquires the header value of one provider, e.g. "Bearer abc".
type Method interface {
	Acquire(ctx context.Context) (string, error)
}

// MethodFunc adapts a function to Method.
type MethodFunc func(ctx context.Context) (string, error)

func (f MethodFunc) Acquire(ctx context.Context) (string, error) { return f(ctx) }

// Factory builds a Method from a loosely typed spec.
type Factory func(spec map[string]any) (Method, error)

// DefaultHeader receives the value when a provider sets no header.
const DefaultHeader = "Authorization"

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register adds or replaces the factory for typ.
func Register(typ string, f Factory) error {
	key := normalizeKey(typ)
	if key == "" {
		return errors.New("auth: provider type is required")
	}
	if f == nil {
		return fmt.Errorf("auth: nil factory for %q", key)
	}
	mu.Lock()
	defer mu.Unlock()
	factories[key] = f
	return nil
}

// Types lists the registered provider types.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds the Method registered for typ.
func New(typ string, spec map[string]any) (Method, error) {
	mu.RLock()
	f, ok := factories[normalizeKey(typ)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("auth: unsupported provider type: %s", typ)
	}
	return f(spec)
}

// Provider is one configured auth entry.
type Provider struct {
	Type   string         `mapstructure:"type"`
	Name   string         `mapstructure:"name"`
	Header string         `mapstructure:"header"`
	Config map[string]any `mapstructure:"config"`
}

// HeaderName returns Header or DefaultHeader.
func (p Provider) HeaderName() string {
	if h := strings.TrimSpace(p.Header); h != "" {
		return http.CanonicalHeaderKey(h)
	}
	return DefaultHeader
}

func (p Provider) label() string {
	if p.Name != "" {
		return p.Name
	}
	return normalizeKey(p.Type)
}

type options struct {
	tls    *tls.Config
	logger *common.Logger
}

// Option configures Headers.
type Option func(*options)

// WithTLSConfig makes token endpoints use cfg.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tls = cfg }
}

// WithLogger overrides the default logger.
func WithLogger(l *common.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Headers acquires every provider in order. A later provider writing the
// same header replaces the earlier value.
func Headers(ctx context.Context, providers []Provider, opts ...Option) (http.Header, error) {
	o := options{logger: common.GetLogger().WithComponent("auth")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tls != nil {
		hc := &http.Client{Transport: &http.Transport{TLSClientConfig: o.tls}}
		ctx = context.WithValue(ctx, golangoauth2.HTTPClient, hc)
	}

	out := http.Header{}
	for _, p := range providers {
		logger := o.logger.WithAuth(p.label())
		m, err := New(p.Type, p.Config)
		if err != nil {
			return nil, fmt.Errorf("auth %s: %w", p.label(), err)
		}
		v, err := m.Acquire(ctx)
		if err != nil {
			logger.Error("failed to acquire credentials", "type", p.Type, "error", err)
			return nil, fmt.Errorf("auth %s: %w", p.label(), err)
		}
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("auth %s: empty credential", p.label())
		}
		out.Set(p.HeaderName(), v)
		logger.Debug("credentials acquired", "header", p.HeaderName())
	}
	return out, nil
}

func decodeInto[T any](spec map[string]any) (T, error) {
	var c T
	err := mapstructure.Decode(spec, &c)
	return c, err
}

func init() {
	_ = Register("basic", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[basic.Config](spec)
		if err != nil {
			return nil, err
		}
		return basic.Method{C: c}, nil
	})
	_ = Register("oauth2", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[oauth2.Config](spec)
		if err != nil {
			return nil, err
		}
		return c.GrantMethod()
	})
	_ = Register("jwt", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[jwt.Config](spec)
		if err != nil {
			return nil, err
		}
		return jwt.Method{C: c}, nil
	})
}
