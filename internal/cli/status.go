package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and sign-in status",
		Long:  "Tests the connection to the server and checks whether the stored session is still signed in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

func runStatus(ctx context.Context) error {
	serverURL := getServerURL()
	sess := getSession()

	fmt.Fprintf(stdout, "Server:  %s\n", serverURL)

	if sess == "" {
		fmt.Fprintln(stdout, "Session: not configured")
		fmt.Fprintln(stdout, "\nRun 'sb login' to sign in.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := newAPIClient().CurrentUser(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(stdout, "Status:  ✗ cannot reach server (%v)\n", err)
	case user == nil:
		fmt.Fprintln(stdout, "Status:  ✗ session expired")
		fmt.Fprintln(stdout, "\nRun 'sb login' to sign in again.")
	default:
		role := user.Role
		if role == "" {
			role = "guest"
		}
		fmt.Fprintf(stdout, "Status:  ✓ signed in as %s (%s)\n", user.Email, role)
	}

	return nil
}
