// Package oauth2 acquires bearer tokens with the client_credentials and
// password grants of golang.org/x/oauth2.
package oauth2

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	golangoauth2 "golang.org/x/oauth2"
)

// Config selects a grant and carries its settings.
type Config struct {
	GrantType   string         `mapstructure:"grant_type"`
	GrantConfig map[string]any `mapstructure:"grant_config"`
}

// Method acquires one header value.
type Method interface {
	Acquire(ctx context.Context) (string, error)
}

// GrantMethod decodes GrantConfig for GrantType.
func (c Config) GrantMethod() (Method, error) {
	gt := strings.ToLower(strings.TrimSpace(c.GrantType))
	if gt == "" {
		return nil, errors.New("oauth2: grant_type is required")
	}
	if c.GrantConfig == nil {
		return nil, errors.New("oauth2: grant_config is required")
	}
	switch gt {
	case "password":
		var pc PasswordConfig
		if err := mapstructure.Decode(c.GrantConfig, &pc); err != nil {
			return nil, err
		}
		return passwordMethod{c: pc}, nil
	case "client_credentials", "client-credentials":
		var cc ClientCredentialsConfig
		if err := mapstructure.Decode(c.GrantConfig, &cc); err != nil {
			return nil, err
		}
		return clientCredentialsMethod{c: cc}, nil
	default:
		return nil, errors.New("oauth2: unsupported grant_type: " + gt)
	}
}

// headerValue renders tok as "<type> <access token>", Bearer when the
// server omits token_type.
func headerValue(tok *golangoauth2.Token) (string, error) {
	if tok == nil || !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return "", errors.New("oauth2: received invalid token")
	}
	typ := strings.TrimSpace(tok.TokenType)
	if typ == "" || strings.EqualFold(typ, "bearer") {
		typ = "Bearer"
	}
	return typ + " " + tok.AccessToken, nil
}
