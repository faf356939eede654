package oidc

import (
	"context"
	"fmt"

	"github.com/benvon/toolhub/internal/models"
)

// Authenticator turns bearer tokens into identities for one configured provider.
type Authenticator struct {
	provider     *Provider
	providerName string
	verifier     *Verifier
}

// NewAuthenticator creates an Authenticator for providerName.
func NewAuthenticator(provider *Provider, providerName string, jwksManager *JWKSManager) *Authenticator {
	return &Authenticator{
		provider:     provider,
		providerName: providerName,
		verifier:     NewVerifier(jwksManager),
	}
}

// Authenticate verifies token. Failures wrap ErrInvalidToken when the token
// itself is at fault; other errors mean the provider could not be reached or configured.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	config, err := a.provider.GetConfig(ctx, a.providerName)
	if err != nil {
		return nil, err
	}

	endpoints := a.provider.Endpoints(ctx, config)
	want := Expectations{
		Issuer:  config.Issuer,
		JWKSURL: endpoints.JWKS,
	}
	if config.Audience != nil {
		want.Audience = *config.Audience
	}

	identity, err := a.verifier.Verify(ctx, token, want)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", a.providerName, err)
	}
	return identity, nil
}
