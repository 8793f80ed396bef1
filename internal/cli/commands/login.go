package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Dashgate gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(username, password, token)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set DASHGATE_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set DASHGATE_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (or set DASHGATE_TOKEN); replaces username/password")

	return cmd
}

func runLogin(username, password, token string) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("DASHGATE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("DASHGATE_PASSWORD")
	}
	if token == "" {
		token = os.Getenv("DASHGATE_TOKEN")
	}

	if token == "" && username == "" {
		return fmt.Errorf("either --token or --username is required (or DASHGATE_TOKEN / DASHGATE_USERNAME env vars)")
	}

	gateway, err := getSelectedGateway()
	if err != nil {
		return err
	}

	// Prompt for password if logging in with a username and no password
	// was provided via flag or env var
	if token == "" && password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or DASHGATE_PASSWORD env var)")
		}
	}

	apiClient := client.New(gateway.URL)

	fmt.Printf("Logging in to %s (%s)...\n", gateway.Alias, gateway.URL)

	loginResp, err := apiClient.Login(context.Background(), client.LoginRequest{
		Username: username,
		Password: password,
		Token:    token,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := auth.Default.SaveToken(gateway.URL, loginResp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	fmt.Println("✓ Login successful!")
	if username != "" {
		fmt.Printf("  User: %s\n", username)
	}

	return nil
}
