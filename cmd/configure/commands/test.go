package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/services/oidc"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test OIDC configuration",
		Long:  "Resolve a provider's endpoints the way the server does and fetch its signing keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider is required")
			}

			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			client := &http.Client{Timeout: 10 * time.Second}
			oidcProvider := oidc.NewProvider(database.NewOIDCConfigRepository(db), client)
			config, err := oidcProvider.GetConfig(ctx, provider)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Testing OIDC configuration for provider: %s\n", provider)
			fmt.Fprintf(out, "Issuer: %s\n", config.Issuer)

			endpoints := oidcProvider.Endpoints(ctx, config)
			fmt.Fprintf(out, "\nAuthorization endpoint: %s\n", endpoints.Authorization)
			fmt.Fprintf(out, "Token endpoint: %s\n", endpoints.Token)
			fmt.Fprintf(out, "JWKS endpoint: %s\n", endpoints.JWKS)

			keys, err := oidc.NewJWKSManager(client).GetJWKS(ctx, endpoints.JWKS)
			if err != nil {
				return fmt.Errorf("failed to fetch JWKS: %w", err)
			}
			if keys.Len() == 0 {
				return fmt.Errorf("JWKS at %s contains no keys", endpoints.JWKS)
			}
			fmt.Fprintf(out, "✓ JWKS endpoint returned %d key(s)\n", keys.Len())

			fmt.Fprintln(out, "\n✓ OIDC configuration test passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider name to test (required)")

	return cmd
}
