package oidc

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
)

func TestProviderEndpointsFromDiscovery(t *testing.T) {
	t.Parallel()

	idp := newTestIdP(t)
	provider := NewProvider(&fakeConfigRepo{}, nil)

	endpoints := provider.Endpoints(context.Background(), &models.OIDCConfig{Provider: "clerk", Issuer: idp.issuer()})
	if endpoints.Authorization != idp.issuer()+"/authorize" {
		t.Errorf("Authorization = %q", endpoints.Authorization)
	}
	if endpoints.Token != idp.issuer()+"/token" {
		t.Errorf("Token = %q", endpoints.Token)
	}
	if endpoints.JWKS != idp.jwksURL() {
		t.Errorf("JWKS = %q", endpoints.JWKS)
	}
}

func TestProviderEndpointsFallback(t *testing.T) {
	t.Parallel()

	provider := NewProvider(&fakeConfigRepo{}, nil)
	domain := "auth.example.com"
	jwks := "https://keys.example.com/jwks.json"

	tests := []struct {
		name   string
		config *models.OIDCConfig
		want   Endpoints
	}{
		{
			name:   "issuer paths",
			config: &models.OIDCConfig{Provider: "a", Issuer: "http://127.0.0.1:1/"},
			want: Endpoints{
				Authorization: "http://127.0.0.1:1/oauth2/authorize",
				Token:         "http://127.0.0.1:1/oauth2/token",
				JWKS:          "http://127.0.0.1:1/.well-known/jwks.json",
			},
		},
		{
			name:   "hosted domain and explicit jwks",
			config: &models.OIDCConfig{Provider: "b", Issuer: "http://127.0.0.1:1", Domain: &domain, JWKSUrl: &jwks},
			want: Endpoints{
				Authorization: "https://auth.example.com/oauth2/authorize",
				Token:         "https://auth.example.com/oauth2/token",
				JWKS:          jwks,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if got := provider.Endpoints(ctx, tt.config); got != tt.want {
				t.Errorf("Endpoints() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProviderGetLoginConfig(t *testing.T) {
	t.Parallel()

	idp := newTestIdP(t)
	repo := &fakeConfigRepo{configs: map[string]*models.OIDCConfig{
		"clerk": {Provider: "clerk", Issuer: idp.issuer(), ClientID: "client-1", RedirectURI: "http://localhost:3000/callback"},
	}}
	provider := NewProvider(repo, nil)

	cfg, err := provider.GetLoginConfig(context.Background(), "clerk", "state-abc")
	if err != nil {
		t.Fatalf("GetLoginConfig() error = %v", err)
	}
	if cfg.Scope != "openid email profile" {
		t.Errorf("Scope = %q", cfg.Scope)
	}
	if !strings.HasPrefix(cfg.AuthorizationURL, idp.issuer()+"/authorize?") {
		t.Fatalf("AuthorizationURL = %q", cfg.AuthorizationURL)
	}
	u, err := url.Parse(cfg.AuthorizationURL)
	if err != nil {
		t.Fatalf("parse AuthorizationURL: %v", err)
	}
	if got := u.Query().Get("state"); got != "state-abc" {
		t.Errorf("state = %q", got)
	}
	if got := u.Query().Get("client_id"); got != "client-1" {
		t.Errorf("client_id = %q", got)
	}

	if _, err := provider.GetLoginConfig(context.Background(), "missing", "s"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("missing provider error = %v, want ErrNotFound", err)
	}
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	idp := newTestIdP(t)
	audience := "toolhub"
	repo := &fakeConfigRepo{configs: map[string]*models.OIDCConfig{
		"clerk": {Provider: "clerk", Issuer: idp.issuer(), ClientID: "client-1", Audience: &audience},
	}}
	auth := NewAuthenticator(NewProvider(repo, nil), "clerk", NewJWKSManager(nil))
	ctx := context.Background()

	token := idp.sign(t, tokenOptions{
		issuer:   idp.issuer(),
		subject:  "user_42",
		audience: audience,
		expires:  time.Now().Add(time.Hour),
		claims:   map[string]any{"email": "grace@example.com"},
	})
	identity, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if identity.Subject != "user_42" || identity.Email != "grace@example.com" {
		t.Errorf("identity = %+v", identity)
	}

	noAud := idp.sign(t, tokenOptions{issuer: idp.issuer(), subject: "user_42", expires: time.Now().Add(time.Hour)})
	if _, err := auth.Authenticate(ctx, noAud); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without audience error = %v, want ErrInvalidToken", err)
	}

	misconfigured := NewAuthenticator(NewProvider(repo, nil), "missing", NewJWKSManager(nil))
	if _, err := misconfigured.Authenticate(ctx, token); err == nil || errors.Is(err, ErrInvalidToken) {
		t.Errorf("unconfigured provider error = %v, want non-token error", err)
	}
}
