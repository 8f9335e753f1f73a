package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTypes_BuiltIns(t *testing.T) {
	got := strings.Join(Types(), ",")
	for _, want := range []string{"basic", "jwt", "oauth2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %s in %s", want, got)
		}
	}
}

func TestRegister_Validation(t *testing.T) {
	if err := Register("  ", func(map[string]any) (Method, error) { return nil, nil }); err == nil {
		t.Fatal("expected error for empty type")
	}
	if err := Register("x", nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
	if _, err := New("nope", nil); err == nil || !strings.Contains(err.Error(), "unsupported provider type") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestHeaders_BasicAndCustom(t *testing.T) {
	if err := Register("Static", func(spec map[string]any) (Method, error) {
		v, _ := spec["value"].(string)
		return MethodFunc(func(context.Context) (string, error) { return v, nil }), nil
	}); err != nil {
		t.Fatal(err)
	}

	h, err := Headers(context.Background(), []Provider{
		{Type: "basic", Config: map[string]any{"username": "alice", "password": "secret"}},
		{Type: "static", Name: "api-key", Header: "x-api-key", Config: map[string]any{"value": "k-1"}},
	})
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if got := h.Get("Authorization"); got != "Basic YWxpY2U6c2VjcmV0" {
		t.Fatalf("authorization %q", got)
	}
	if got := h.Get("X-Api-Key"); got != "k-1" {
		t.Fatalf("api key %q", got)
	}
}

func TestHeaders_LaterProviderWins(t *testing.T) {
	h, err := Headers(context.Background(), []Provider{
		{Type: "basic", Config: map[string]any{"username": "a", "password": "b"}},
		{Type: "jwt", Config: map[string]any{"secret": "k", "sub": "a"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h.Get("Authorization"), "Bearer ") {
		t.Fatalf("expected jwt to replace basic, got %q", h.Get("Authorization"))
	}
}

func TestHeaders_OAuth2ClientCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("client_id") != "svc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer"})
	}))
	defer srv.Close()

	h, err := Headers(context.Background(), []Provider{{
		Type: "oauth2",
		Config: map[string]any{
			"grant_type": "client_credentials",
			"grant_config": map[string]any{
				"client_id":     "svc",
				"client_secret": "s",
				"token_url":     srv.URL,
				"scopes":        []any{"read"},
			},
		},
	}})
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if h.Get("Authorization") != "Bearer tok" {
		t.Fatalf("unexpected header %q", h.Get("Authorization"))
	}
}

func TestHeaders_Errors(t *testing.T) {
	boom := errors.New("boom")
	if err := Register("failing", func(map[string]any) (Method, error) {
		return MethodFunc(func(context.Context) (string, error) { return "", boom }), nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := Register("blank", func(map[string]any) (Method, error) {
		return MethodFunc(func(context.Context) (string, error) { return " ", nil }), nil
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Headers(context.Background(), []Provider{{Type: "failing", Name: "svc"}})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "auth svc") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := Headers(context.Background(), []Provider{{Type: "blank"}}); err == nil {
		t.Fatal("expected error for empty credential")
	}
	if _, err := Headers(context.Background(), []Provider{{Type: "basic", Config: map[string]any{"username": "x"}}}); err == nil {
		t.Fatal("expected basic error")
	}
	if _, err := Headers(context.Background(), []Provider{{Type: "unknown"}}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestProvider_HeaderName(t *testing.T) {
	if (Provider{}).HeaderName() != "Authorization" {
		t.Fatal("default header")
	}
	if (Provider{Header: " x-token "}).HeaderName() != "X-Token" {
		t.Fatal("custom header not canonicalized")
	}
}
