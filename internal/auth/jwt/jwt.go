// Package jwt issues HS256 bearer tokens locally, for APIs that trust a
// shared secret.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL applies when neither TTLSeconds nor ExpiresAt is set.
const DefaultTTL = 300 * time.Second

// Config describes the token to sign.
type Config struct {
	// Secret is the HMAC key (required).
	Secret     string `mapstructure:"secret"`
	TTLSeconds int64  `mapstructure:"ttl_seconds"`

	Subject   string   `mapstructure:"sub"`
	Issuer    string   `mapstructure:"iss"`
	Audience  []string `mapstructure:"aud"`
	NotBefore int64    `mapstructure:"nbf"`
	ExpiresAt int64    `mapstructure:"exp"`
	ID        string   `mapstructure:"jti"`

	// Claims are merged into the token after the standard ones.
	Claims map[string]any `mapstructure:"claims"`
}

// Issue signs a token whose iat is now.
func (c Config) Issue(now time.Time) (string, error) {
	if c.Secret == "" {
		return "", errors.New("jwt: secret required")
	}
	exp := c.ExpiresAt
	if exp == 0 {
		ttl := time.Duration(c.TTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		exp = now.Add(ttl).Unix()
	}
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": exp,
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if len(c.Audience) > 0 {
		claims["aud"] = c.Audience
	}
	if c.NotBefore > 0 {
		claims["nbf"] = c.NotBefore
	}
	if c.ID != "" {
		claims["jti"] = c.ID
	}
	for k, v := range c.Claims {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.Secret))
}

// Method yields "Bearer <token>".
type Method struct {
	C   Config
	Now func() time.Time
}

func (m Method) Acquire(_ context.Context) (string, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	tok, err := m.C.Issue(now())
	if err != nil {
		return "", err
	}
	return "Bearer " + tok, nil
}
