package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/session"
)

func newMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings",
		Long:  "List every listing you host, including inactive ones. Requires a host account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd.Context())
		},
	}
}

func runMine(ctx context.Context) error {
	c := newAPIClient()
	if err := session.RequireHost(session.Load(ctx, c)); err != nil {
		return err
	}

	props, err := c.ListMyProperties(ctx)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(props)
	}
	return printPropertyTable(props)
}
