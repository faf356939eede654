package commands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
)

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	var issuer, domain, clientID, clientSecret, redirectURI, jwksURL, audience string
	var remove bool

	cmd := &cobra.Command{
		Use:   "oidc <provider-name>",
		Short: "Configure OIDC provider",
		Long:  "Create or replace an OIDC provider used to verify bearer tokens. Provider name can be any identifier (e.g., 'cognito', 'okta', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := strings.TrimSpace(args[0])
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if remove {
				return deleteOIDCConfig(cmd, provider)
			}
			if issuer == "" || clientID == "" || redirectURI == "" {
				return fmt.Errorf("required flags: --issuer, --client-id, --redirect-uri (--client-secret is optional for public clients)")
			}
			if err := requireAbsoluteURL("--issuer", issuer); err != nil {
				return err
			}
			if err := requireAbsoluteURL("--redirect-uri", redirectURI); err != nil {
				return err
			}

			config := &models.OIDCConfig{
				Provider:    provider,
				Issuer:      strings.TrimSuffix(issuer, "/"),
				ClientID:    clientID,
				RedirectURI: redirectURI,
				Domain:      optional(domain),
				// Without an explicit JWKS URL the server uses the discovery document.
				JWKSUrl:      optional(jwksURL),
				ClientSecret: optional(clientSecret),
				Audience:     optional(audience),
			}

			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := database.NewOIDCConfigRepository(db).Upsert(ctx, config); err != nil {
				return fmt.Errorf("failed to save OIDC config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved OIDC configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&domain, "domain", "", "Hosted login domain when it differs from the issuer (optional)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (optional for public clients)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL override (optional)")
	cmd.Flags().StringVar(&audience, "audience", "", "Expected token audience when it is not the client ID (optional)")
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the provider instead of saving it")

	return cmd
}

func deleteOIDCConfig(cmd *cobra.Command, provider string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	err = database.NewOIDCConfigRepository(db).Delete(ctx, provider)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("no OIDC configuration for provider %q", provider)
	}
	if err != nil {
		return fmt.Errorf("failed to delete OIDC config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted OIDC configuration for provider: %s\n", provider)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func requireAbsoluteURL(flag, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", flag, raw)
	}
	return nil
}
