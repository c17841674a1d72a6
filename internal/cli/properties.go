package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/property"
)

func newPropertiesCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"list"},
		Short:   "List available stays",
		Long:    "List active listings, optionally filtered by a search term matched against title and location.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProperties(cmd.Context(), query)
		},
	}

	cmd.Flags().StringVarP(&query, "q", "q", "", "search title or location")

	return cmd
}

func runProperties(ctx context.Context, query string) error {
	props, err := newAPIClient().ListProperties(ctx)
	if err != nil {
		return err
	}

	props = property.Filter(props, query)

	if isJSON() {
		return printJSON(props)
	}
	return printPropertyTable(props)
}
