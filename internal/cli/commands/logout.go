package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/client"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}

	return cmd
}

func runLogout() error {
	gateway, err := getSelectedGateway()
	if err != nil {
		return err
	}

	// Best effort: the gateway clears its session cookies, but the
	// stored token is discarded either way.
	apiClient := client.New(gateway.URL)
	if err := apiClient.Logout(context.Background()); err != nil {
		fmt.Printf("Warning: gateway logout failed: %v\n", err)
	}

	if err := auth.Default.DeleteToken(gateway.URL); err != nil {
		return fmt.Errorf("failed to delete stored token: %w", err)
	}

	fmt.Printf("✓ Logged out from %s (%s)\n", gateway.Alias, gateway.URL)
	return nil
}
