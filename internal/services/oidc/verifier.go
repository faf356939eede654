package oidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/benvon/toolhub/internal/models"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Expectations are the claims a token must satisfy.
type Expectations struct {
	Issuer   string
	Audience string // optional
	JWKSURL  string
}

// Verifier verifies JWT tokens
type Verifier struct {
	jwksManager *JWKSManager
	skew        time.Duration
}

// NewVerifier creates a new JWT verifier
func NewVerifier(jwksManager *JWKSManager) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		skew:        30 * time.Second,
	}
}

// Verify checks the signature against the JWKS and validates exp, nbf, iss and
// optionally aud, then returns the caller identity.
func (v *Verifier) Verify(ctx context.Context, tokenString string, want Expectations) (*models.Identity, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, want.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.skew),
		jwt.WithIssuer(want.Issuer),
	}
	if want.Audience != "" {
		opts = append(opts, jwt.WithAudience(want.Audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token.Subject() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	identity := &models.Identity{
		Subject:   token.Subject(),
		Issuer:    token.Issuer(),
		ExpiresAt: token.Expiration(),
	}
	claims := token.PrivateClaims()
	identity.Email = stringClaim(claims, "email")
	identity.Name = stringClaim(claims, "name", "username", "preferred_username")
	identity.Picture = stringClaim(claims, "picture", "image_url")
	return identity, nil
}

// stringClaim returns the first non-empty string among keys.
func stringClaim(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
