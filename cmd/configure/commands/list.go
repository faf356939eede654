package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/toolhub/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured OIDC providers",
		Long:  "List all configured OIDC providers. Client secrets are never printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			configs, err := database.NewOIDCConfigRepository(db).GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list OIDC configs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(configs) == 0 {
				fmt.Fprintln(out, "No OIDC providers configured")
				return nil
			}

			fmt.Fprintln(out, "Configured OIDC providers:")
			for _, c := range configs {
				fmt.Fprintf(out, "  - Provider: %s\n", c.Provider)
				fmt.Fprintf(out, "    Issuer: %s\n", c.Issuer)
				fmt.Fprintf(out, "    Client ID: %s\n", c.ClientID)
				fmt.Fprintf(out, "    Redirect URI: %s\n", c.RedirectURI)
				if c.Domain != nil {
					fmt.Fprintf(out, "    Domain: %s\n", *c.Domain)
				}
				if c.JWKSUrl != nil {
					fmt.Fprintf(out, "    JWKS URL: %s\n", *c.JWKSUrl)
				}
				if c.Audience != nil {
					fmt.Fprintf(out, "    Audience: %s\n", *c.Audience)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
