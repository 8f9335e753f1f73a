package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func parse(t *testing.T, tok, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return claims
}

func TestMethod_Acquire(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := Method{
		C: Config{
			Secret:   "s3cret",
			Subject:  "alice",
			Issuer:   "qa",
			Audience: []string{"api"},
			ID:       "run-1",
			Claims:   map[string]any{"role": "admin"},
		},
		Now: func() time.Time { return now },
	}
	v, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	tok, ok := strings.CutPrefix(v, "Bearer ")
	if !ok {
		t.Fatalf("missing Bearer prefix: %q", v)
	}
	c := parse(t, tok, "s3cret")
	if c["sub"] != "alice" || c["iss"] != "qa" || c["jti"] != "run-1" || c["role"] != "admin" {
		t.Fatalf("unexpected claims %v", c)
	}
	exp, err := c.GetExpirationTime()
	if err != nil || !exp.Time.Equal(now.Add(DefaultTTL)) {
		t.Fatalf("exp %v (%v), want %v", exp, err, now.Add(DefaultTTL))
	}
}

func TestIssue_TTLAndExplicitExp(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	tok, err := Config{Secret: "k", TTLSeconds: 60}.Issue(now)
	if err != nil {
		t.Fatal(err)
	}
	exp, _ := parse(t, tok, "k").GetExpirationTime()
	if !exp.Time.Equal(now.Add(time.Minute)) {
		t.Fatalf("ttl exp %v", exp)
	}

	fixed := now.Add(time.Hour).Unix()
	tok, err = Config{Secret: "k", TTLSeconds: 60, ExpiresAt: fixed}.Issue(now)
	if err != nil {
		t.Fatal(err)
	}
	exp, _ = parse(t, tok, "k").GetExpirationTime()
	if exp.Unix() != fixed {
		t.Fatalf("explicit exp %v", exp)
	}
}

func TestIssue_RequiresSecret(t *testing.T) {
	if _, err := (Config{}).Issue(time.Now()); err == nil {
		t.Fatal("expected error without secret")
	}
}
