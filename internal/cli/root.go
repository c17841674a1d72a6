// Package cli defines the cobra command tree for staybook.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/client"
	"github.com/evcraddock/staybook/internal/logging"
)

var (
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sb",
		Short:         "Browse and book stays",
		Long:          "A client for the staybook marketplace. Browse listings, book dates without clashing with existing reservations, and manage your own listings as a host.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadDotEnv()
			logging.Setup(flagVerbose || devMode())
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")

	root.AddCommand(
		newPropertiesCmd(),
		newShowCmd(),
		newMineCmd(),
		newHostCmd(),
		newBookCmd(),
		newBookingsCmd(),
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the marketplace API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getSession())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
