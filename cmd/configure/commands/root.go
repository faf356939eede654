package commands

import "github.com/spf13/cobra"

// NewRootCmd assembles the toolhub-configure command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "toolhub-configure",
		Short:         "Configuration tool for the Toolhub API",
		Long:          "CLI tool for configuring OIDC providers, CORS, rate limits, the database schema and the tool catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewOIDCCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewTestCmd())
	rootCmd.AddCommand(NewCorsCmd())
	rootCmd.AddCommand(NewRatelimitCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewCatalogCmd())
	return rootCmd
}
