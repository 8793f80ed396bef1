package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/client"
	"github.com/dashgate-dev/dashgate/internal/session"
)

// NewKeepaliveCmd creates the keepalive command
func NewKeepaliveCmd() *cobra.Command {
	var schedule string
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "keepalive",
		Short: "Keep the stored token fresh by refreshing it before expiry",
		Long: `Keep the stored token fresh by refreshing it before expiry.

Runs in the foreground and checks the stored token on a schedule. When
the token is within the refresh window of its expiry, it is exchanged
for a fresh one and the keychain entry is updated.

Examples:
  $ dashgate keepalive
  $ dashgate keepalive --schedule "@every 1m" --window 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeepalive(schedule, window)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "@every 4m", "Check schedule (cron expression or @every duration)")
	cmd.Flags().DurationVar(&window, "window", 5*time.Minute, "Refresh when the token expires within this window")

	return cmd
}

func runKeepalive(schedule string, window time.Duration) error {
	gateway, err := getSelectedGateway()
	if err != nil {
		return err
	}

	// Fail fast if there is no token to keep alive
	if _, err := auth.Default.LoadToken(gateway.URL); err != nil {
		return err
	}

	apiClient := client.New(gateway.URL)

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		refreshIfNeeded(apiClient, gateway.URL, window)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	fmt.Printf("Keeping token alive for %s (%s)\n", gateway.Alias, gateway.URL)
	fmt.Printf("  Schedule: %s, refresh window: %s\n", schedule, window)
	fmt.Println("Press Ctrl+C to stop")

	// Run one check immediately so a nearly-expired token is not left
	// waiting for the first tick
	refreshIfNeeded(apiClient, gateway.URL, window)

	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := c.Stop()
	<-ctx.Done()

	fmt.Println("\nStopped")
	return nil
}

func refreshIfNeeded(apiClient *client.Client, gatewayURL string, window time.Duration) {
	token, err := auth.Default.LoadToken(gatewayURL)
	if err != nil {
		fmt.Printf("Warning: failed to load token: %v\n", err)
		return
	}

	if !session.NeedsRefresh(token, window) {
		return
	}

	fresh, err := apiClient.RefreshToken(context.Background(), token)
	if err != nil {
		fmt.Printf("Warning: token refresh failed: %v\n", err)
		return
	}

	if err := auth.Default.SaveToken(gatewayURL, fresh); err != nil {
		fmt.Printf("Warning: failed to save refreshed token: %v\n", err)
		return
	}

	if exp, err := session.Expiry(fresh); err == nil {
		fmt.Printf("Token refreshed, now valid until %s\n", exp.Format(time.RFC3339))
	} else {
		fmt.Println("Token refreshed")
	}
}
