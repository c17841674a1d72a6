package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/session"
)

func newRegisterCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Creates a guest or host account. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), stdin, email, role)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if empty)")
	cmd.Flags().StringVar(&role, "role", session.RoleGuest, "account role (guest|host)")

	return cmd
}

func runRegister(ctx context.Context, in io.Reader, email, role string) error {
	if role != session.RoleGuest && role != session.RoleHost {
		return fmt.Errorf("invalid role %q (want %s or %s)", role, session.RoleGuest, session.RoleHost)
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

	if err := newAPIClient().Register(ctx, email, password, role); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Account created for %s. Run 'sb login' to sign in.\n", email)
	return nil
}
