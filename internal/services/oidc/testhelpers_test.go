package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
)

// testIdP serves a discovery document and a JWKS and signs tokens with its key.
type testIdP struct {
	server     *httptest.Server
	signingKey jwk.Key
	jwksHits   atomic.Int32
}

func newTestIdP(t *testing.T) *testIdP {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	key, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("jwk.FromRaw: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, "test-key"); err != nil {
		t.Fatalf("set kid: %v", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		t.Fatalf("set alg: %v", err)
	}
	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		t.Fatalf("PublicKeyOf: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("AddKey: %v", err)
	}

	idp := &testIdP{signingKey: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		idp.jwksHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	})
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":                 idp.server.URL,
			"authorization_endpoint": idp.server.URL + "/authorize",
			"token_endpoint":         idp.server.URL + "/token",
			"jwks_uri":               idp.server.URL + "/.well-known/jwks.json",
		})
	})
	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func (idp *testIdP) issuer() string { return idp.server.URL }

func (idp *testIdP) jwksURL() string { return idp.server.URL + "/.well-known/jwks.json" }

type tokenOptions struct {
	issuer   string
	subject  string
	audience string
	expires  time.Time
	claims   map[string]any
}

func (idp *testIdP) sign(t *testing.T, opts tokenOptions) string {
	t.Helper()

	b := jwt.NewBuilder().
		Issuer(opts.issuer).
		Subject(opts.subject).
		IssuedAt(time.Now()).
		Expiration(opts.expires)
	if opts.audience != "" {
		b = b.Audience([]string{opts.audience})
	}
	for k, v := range opts.claims {
		b = b.Claim(k, v)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, idp.signingKey))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return string(signed)
}

type fakeConfigRepo struct {
	configs map[string]*models.OIDCConfig
}

func (f *fakeConfigRepo) GetByProvider(_ context.Context, provider string) (*models.OIDCConfig, error) {
	cfg, ok := f.configs[provider]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cfg, nil
}
