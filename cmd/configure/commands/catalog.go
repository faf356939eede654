package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/recommend"
)

// NewCatalogCmd creates the catalog command with validate and recommend subcommands.
func NewCatalogCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the tool catalog",
		Long:  "Validate a catalog file or preview recommendations. Defaults to CATALOG_PATH, then the built-in catalog.",
	}
	cmd.PersistentFlags().StringVar(&path, "path", os.Getenv("CATALOG_PATH"), "Catalog YAML file (empty for the built-in catalog)")

	cmd.AddCommand(newCatalogValidateCmd(&path))
	cmd.AddCommand(newCatalogRecommendCmd(&path))
	return cmd
}

func newCatalogValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the catalog loads",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.FromPath(*path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog %s is valid:\n", describePath(*path))
			fmt.Fprintf(out, "  Categories: %d\n", len(c.Categories()))
			fmt.Fprintf(out, "  Tools: %d\n", c.Len())
			fmt.Fprintf(out, "  Preference options: %d\n", len(c.Options()))

			// Options whose tags match no tool recommend nothing.
			engine := recommend.NewEngine(c)
			for _, opt := range c.Options() {
				if len(engine.Compute([]string{opt.ID}).ToolIDs) == 0 {
					fmt.Fprintf(out, "  Warning: option %q matches no tools\n", opt.ID)
				}
			}
			return nil
		},
	}
}

func newCatalogRecommendCmd(path *string) *cobra.Command {
	var options []string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Preview tags and tools for a set of preference options",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.FromPath(*path)
			if err != nil {
				return err
			}
			engine := recommend.NewEngine(c)

			out := cmd.OutOrStdout()
			if unknown := unknownOptions(engine, options); len(unknown) > 0 {
				fmt.Fprintf(out, "Ignoring unknown options: %s\n", strings.Join(unknown, ", "))
			}

			result := engine.Compute(options)
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(result.Tags, ", "))
			fmt.Fprintf(out, "Tools (%d):\n", len(result.ToolIDs))
			for _, id := range result.ToolIDs {
				tool, _ := c.Lookup(id)
				fmt.Fprintf(out, "  - %s (%s)\n", tool.ID, tool.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&options, "option", nil, "Preference option id (repeatable or comma-separated)")
	return cmd
}

func unknownOptions(engine *recommend.Engine, ids []string) []string {
	known := make(map[string]struct{})
	for _, id := range engine.KnownOptions(ids) {
		known[id] = struct{}{}
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

func describePath(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}
