package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/client"
	"github.com/dashgate-dev/dashgate/internal/guard"
)

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the web dashboard in browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash()
		},
	}

	return cmd
}

func runDash() error {
	gateway, err := getSelectedGateway()
	if err != nil {
		return err
	}

	token, err := auth.Default.LoadToken(gateway.URL)
	if err != nil {
		token = ""
	}

	apiClient := client.New(gateway.URL)

	// Evaluate the redirect policy the same way the gateway does, so the
	// browser lands directly on the right page instead of bouncing
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	g := guard.New(true, logger)

	refresher := &clientRefresher{client: apiClient, gatewayURL: gateway.URL}
	g.SetRefresher(refresher)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	target := authpolicy.Target{Route: "/", Kind: authpolicy.KindView, RequiresAuth: true}
	decision, err := g.Evaluate(ctx, target, token, func(ctx context.Context) (authpolicy.LoginStatus, error) {
		return apiClient.LoginStatus(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	// Let an in-flight refresh land before handing off to the browser
	refresher.wait()

	dashboardURL := gateway.URL
	if decision == authpolicy.RedirectToLogin {
		dashboardURL = gateway.URL + "/login"
		fmt.Println("Not authenticated, opening the login page")
	}

	fmt.Printf("Opening dashboard for %s (%s)...\n", gateway.Alias, gateway.URL)
	fmt.Printf("URL: %s\n", dashboardURL)

	if err := openBrowser(dashboardURL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, dashboardURL)
	}

	return nil
}

// clientRefresher exchanges the stored token for a fresh one in the
// background while the navigation decision is being made.
type clientRefresher struct {
	client     *client.Client
	gatewayURL string
	wg         sync.WaitGroup
}

func (r *clientRefresher) TriggerRefresh(token string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fresh, err := r.client.RefreshToken(ctx, token)
		if err != nil {
			// A failed refresh never blocks navigation; the stored token
			// keeps working until it actually expires
			return
		}
		if err := auth.Default.SaveToken(r.gatewayURL, fresh); err != nil {
			fmt.Printf("Warning: failed to save refreshed token: %v\n", err)
		}
	}()
}

func (r *clientRefresher) wait() {
	r.wg.Wait()
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
