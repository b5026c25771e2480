package main

import (
	"github.com/spf13/cobra"

	"github.com/aria-lang/nanotrim/internal/trim"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the adapter catalog as YAML",
		Long: `
Print the adapter definitions trim would search for, after selection and
threshold overrides, in the YAML catalog format accepted by --catalog.`,
		Args:                       cobra.NoArgs,
		SuggestionsMinimumDistance: 2,
	}
	flags := cmd.Flags()
	flags.String("catalog", "", "YAML adapter catalog (default: built-in)")
	flags.StringSliceP("definitions", "d", nil, "definitions to print")
	flags.Int("length", 0, "override the expected adapter length of every end")
	flags.Float64("coverage", 0, "override the minimum coverage of every end")
	flags.Float64("identity", 0, "override the minimum identity of every end")
	keys := map[string]string{
		"trim.catalog":     "catalog",
		"trim.definitions": "definitions",
		"trim.length":      "length",
		"trim.coverage":    "coverage",
		"trim.identity":    "identity",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, keys)
		if err != nil {
			return err
		}
		defs, err := c.Definitions()
		if err != nil {
			return err
		}
		return trim.WriteCatalog(cmd.OutOrStdout(), defs)
	}
	return cmd
}
