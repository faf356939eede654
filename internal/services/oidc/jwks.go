package oidc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"
)

const (
	defaultJWKSTTL = time.Hour
	maxJWKSBytes   = 1 << 20
)

type cachedKeySet struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches JWKS documents per URL. Concurrent misses for
// the same URL share a single fetch.
type JWKSManager struct {
	client *http.Client
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedKeySet
	group singleflight.Group
}

// NewJWKSManager creates a new JWKS manager. A nil client gets a 10 second timeout.
func NewJWKSManager(client *http.Client) *JWKSManager {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSManager{
		client: client,
		ttl:    defaultJWKSTTL,
		now:    time.Now,
		cache:  make(map[string]cachedKeySet),
	}
}

// GetJWKS returns the key set at jwksURL, serving from cache while fresh.
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.RLock()
	entry, ok := m.cache[jwksURL]
	m.mu.RUnlock()
	if ok && m.now().Before(entry.expires) {
		return entry.keys, nil
	}

	v, err, _ := m.group.Do(jwksURL, func() (any, error) {
		keys, err := m.fetchJWKS(ctx, jwksURL)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[jwksURL] = cachedKeySet{keys: keys, expires: m.now().Add(m.ttl)}
		m.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return v.(jwk.Set), nil
}

// Invalidate drops the cached set for jwksURL, e.g. after a key rotation.
func (m *JWKSManager) Invalidate(jwksURL string) {
	m.mu.Lock()
	delete(m.cache, jwksURL)
	m.mu.Unlock()
}

func (m *JWKSManager) fetchJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	return keys, nil
}
