package apiscenario

import (
	"context"
	"net/http"

	"github.com/loykin/apiscenario/internal/auth"
)

// Built-in auth provider types.
const (
	AuthTypeBasic  = "basic"
	AuthTypeOAuth2 = "oauth2"
	AuthTypeJWT    = "jwt"
)

type (
	AuthMethod     = auth.Method
	AuthMethodFunc = auth.MethodFunc
	AuthFactory    = auth.Factory
	AuthProvider   = auth.Provider
)

// RegisterAuthProvider adds a custom provider type.
func RegisterAuthProvider(typ string, f AuthFactory) error { return auth.Register(typ, f) }

// AuthHeaders acquires every provider in order and returns the headers to
// pass to WithDefaultHeaders.
func AuthHeaders(ctx context.Context, providers ...AuthProvider) (http.Header, error) {
	return auth.Headers(ctx, providers)
}

// BasicAuthConfig configures the basic provider.
type BasicAuthConfig struct {
	Header   string
	Username string
	Password string
}

func (c BasicAuthConfig) Provider() AuthProvider {
	return AuthProvider{Type: AuthTypeBasic, Header: c.Header, Config: map[string]any{
		"username": c.Username,
		"password": c.Password,
	}}
}

// OAuth2ClientCredentialsConfig configures the oauth2 client_credentials grant.
type OAuth2ClientCredentialsConfig struct {
	Header       string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

func (c OAuth2ClientCredentialsConfig) Provider() AuthProvider {
	return AuthProvider{Type: AuthTypeOAuth2, Header: c.Header, Config: map[string]any{
		"grant_type": "client_credentials",
		"grant_config": map[string]any{
			"client_id":     c.ClientID,
			"client_secret": c.ClientSecret,
			"token_url":     c.TokenURL,
			"scopes":        c.Scopes,
		},
	}}
}

// OAuth2PasswordConfig configures the oauth2 password grant.
type OAuth2PasswordConfig struct {
	Header       string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	Username     string
	Password     string
	Scopes       []string
}

func (c OAuth2PasswordConfig) Provider() AuthProvider {
	return AuthProvider{Type: AuthTypeOAuth2, Header: c.Header, Config: map[string]any{
		"grant_type": "password",
		"grant_config": map[string]any{
			"client_id":     c.ClientID,
			"client_secret": c.ClientSecret,
			"auth_url":      c.AuthURL,
			"token_url":     c.TokenURL,
			"username":      c.Username,
			"password":      c.Password,
			"scopes":        c.Scopes,
		},
	}}
}

// JWTConfig configures the jwt provider (HS256).
type JWTConfig struct {
	Header     string
	Secret     string
	TTLSeconds int64
	Subject    string
	Issuer     string
	Audience   []string
	Claims     map[string]any
}

func (c JWTConfig) Provider() AuthProvider {
	return AuthProvider{Type: AuthTypeJWT, Header: c.Header, Config: map[string]any{
		"secret":      c.Secret,
		"ttl_seconds": c.TTLSeconds,
		"sub":         c.Subject,
		"iss":         c.Issuer,
		"aud":         c.Audience,
		"claims":      c.Claims,
	}}
}
