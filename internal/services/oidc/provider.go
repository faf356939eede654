package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/toolhub/internal/models"
)

// ConfigRepository loads provider configuration by name.
type ConfigRepository interface {
	GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error)
}

// Endpoints are the resolved OAuth2/OIDC URLs for a provider.
type Endpoints struct {
	Authorization string
	Token         string
	JWKS          string
}

type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

type cachedEndpoints struct {
	endpoints Endpoints
	expires   time.Time
}

// Provider manages OIDC provider configuration and endpoint discovery.
type Provider struct {
	repo   ConfigRepository
	client *http.Client
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]cachedEndpoints
}

// NewProvider creates a new OIDC provider manager. A nil client gets a 5 second timeout.
func NewProvider(repo ConfigRepository, client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Provider{
		repo:   repo,
		client: client,
		ttl:    time.Hour,
		cache:  make(map[string]cachedEndpoints),
	}
}

// GetConfig retrieves OIDC configuration for a provider
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.repo.GetByProvider(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return config, nil
}

// Endpoints resolves URLs from the discovery document, falling back to
// conventional paths under the issuer (or the configured hosted domain).
// An explicitly configured JWKS URL always wins.
func (p *Provider) Endpoints(ctx context.Context, config *models.OIDCConfig) Endpoints {
	p.mu.RLock()
	cached, ok := p.cache[config.Provider]
	p.mu.RUnlock()
	if ok && time.Now().Before(cached.expires) {
		return withConfiguredJWKS(cached.endpoints, config)
	}

	base := strings.TrimSuffix(config.Issuer, "/")
	if config.Domain != nil && *config.Domain != "" {
		base = strings.TrimSuffix(*config.Domain, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
	}
	endpoints := Endpoints{
		Authorization: base + "/oauth2/authorize",
		Token:         base + "/oauth2/token",
		JWKS:          strings.TrimSuffix(config.Issuer, "/") + "/.well-known/jwks.json",
	}

	if doc, err := p.discover(ctx, config.Issuer); err == nil {
		if doc.AuthorizationEndpoint != "" {
			endpoints.Authorization = doc.AuthorizationEndpoint
		}
		if doc.TokenEndpoint != "" {
			endpoints.Token = doc.TokenEndpoint
		}
		if doc.JWKSURI != "" {
			endpoints.JWKS = doc.JWKSURI
		}
		p.mu.Lock()
		p.cache[config.Provider] = cachedEndpoints{endpoints: endpoints, expires: time.Now().Add(p.ttl)}
		p.mu.Unlock()
	}

	return withConfiguredJWKS(endpoints, config)
}

func withConfiguredJWKS(e Endpoints, config *models.OIDCConfig) Endpoints {
	if config.JWKSUrl != nil && *config.JWKSUrl != "" {
		e.JWKS = *config.JWKSUrl
	}
	return e
}

func (p *Provider) discover(ctx context.Context, issuer string) (*discoveryDocument, error) {
	discoveryURL := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	return &doc, nil
}

// LoginConfig contains OIDC login configuration for frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
	State                 string `json:"state"`
	AuthorizationURL      string `json:"authorization_url"`
}

// GetLoginConfig returns what the frontend needs to start an authorization
// code flow, including a ready-made authorization URL for state.
func (p *Provider) GetLoginConfig(ctx context.Context, providerName, state string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	endpoints := p.Endpoints(ctx, config)
	client := NewClient(config, endpoints)
	return &LoginConfig{
		AuthorizationEndpoint: endpoints.Authorization,
		TokenEndpoint:         endpoints.Token,
		ClientID:              config.ClientID,
		RedirectURI:           config.RedirectURI,
		Scope:                 strings.Join(client.Scopes(), " "),
		State:                 state,
		AuthorizationURL:      client.AuthCodeURL(state),
	}, nil
}
