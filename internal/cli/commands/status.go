package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/client"
	"github.com/dashgate-dev/dashgate/internal/session"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the authentication status for the selected gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	gateway, err := getSelectedGateway()
	if err != nil {
		return err
	}

	// No stored token still yields a meaningful status (header/cookie
	// presence as seen by the gateway), so don't fail on LoadToken.
	token, err := auth.Default.LoadToken(gateway.URL)
	if err != nil {
		token = ""
	}

	apiClient := client.New(gateway.URL)
	status, err := apiClient.LoginStatus(context.Background(), token)
	if err != nil {
		return fmt.Errorf("failed to fetch login status: %w", err)
	}

	fmt.Printf("Gateway: %s (%s)\n", gateway.Alias, gateway.URL)
	fmt.Printf("  Authenticated:       %t\n", status.Authenticated())
	fmt.Printf("  Auth enforced:       %t\n", status.AuthenticationEnabled())
	fmt.Printf("  Header credential:   %t\n", status.HeaderPresent)
	fmt.Printf("  Cookie credential:   %t\n", status.TokenPresent)

	if token != "" {
		if exp, err := session.Expiry(token); err == nil {
			fmt.Printf("  Token expires:       %s (%s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
		}
	}

	return nil
}
