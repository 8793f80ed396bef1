package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var url, alias string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a dashgate.json configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(url, alias)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Gateway URL (e.g. https://dash.example.com)")
	cmd.Flags().StringVar(&alias, "alias", "default", "Gateway alias")

	return cmd
}

func runInit(url, alias string) error {
	if url == "" {
		return fmt.Errorf("gateway URL is required (use --url)")
	}

	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists", config.ConfigFileName)
	}

	cfg := &config.Config{
		Gateways: []config.Gateway{
			{URL: url, Alias: alias},
		},
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s\n", config.ConfigFileName)
	fmt.Printf("  Gateway: %s (%s)\n", alias, url)
	return nil
}
