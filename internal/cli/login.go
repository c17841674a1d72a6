package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/client"
)

// stdin is where prompts read from. Tests replace it.
var stdin io.Reader = os.Stdin

func newLoginCmd() *cobra.Command {
	var server, email, next string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  "Signs in with email and password and stores the session cookie for later commands. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), stdin, server, email, next)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if empty)")
	cmd.Flags().StringVar(&next, "next", "", "booking draft to resume after signing in")

	return cmd
}

func runLogin(ctx context.Context, in io.Reader, serverFlag, email, next string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	reader := bufio.NewReader(in)
	if email == "" {
		var err error
		if email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	password, err := prompt(reader, "Password: ")
	if err != nil {
		return err
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	cookie, err := client.New(serverURL, "").Login(ctx, email, password)
	if err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.SessionCookie = cookie
	cfg.Email = email
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Signed in as %s\n", email)
	if next != "" {
		fmt.Fprintf(stdout, "Continue your booking: sb book --resume %s\n", shellQuote(next))
	}
	return nil
}

// prompt prints label to stderr and reads one trimmed line.
func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// validateCredentials checks the fields the backend requires.
func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("no email provided")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return fmt.Errorf("no password provided")
	}
	return nil
}
