package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Long:  "Ends the session on the server and removes it from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context())
		},
	}
}

func runLogout(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.SessionCookie == "" {
		fmt.Fprintln(stdout, "Not logged in.")
		return nil
	}

	if err := newAPIClient().Logout(ctx); err != nil {
		slog.Warn("server logout failed, removing local session anyway", "error", err)
	}

	cfg.SessionCookie = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(stdout, "✓ Logged out. Session removed.")
	return nil
}
