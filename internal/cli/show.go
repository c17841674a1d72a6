package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/client"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show listing details",
		Long:  "Show full details for a listing, including resolved image URLs.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), args[0])
		},
	}
}

func runShow(ctx context.Context, id string) error {
	p, err := newAPIClient().GetProperty(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("property %s not found", id)
	}
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(p)
	}

	printPropertySummary(p, getStorageURL())
	if p.IsActive {
		fmt.Fprintf(stdout, "\nBook it: sb book --property %s\n", p.ID)
	}
	return nil
}
