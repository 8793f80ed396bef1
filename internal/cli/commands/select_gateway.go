package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/config"
	"github.com/dashgate-dev/dashgate/internal/cli/gatewayselect"
	"github.com/dashgate-dev/dashgate/internal/cli/userconfig"
)

// NewSelectGatewayCmd creates the select-gateway command
func NewSelectGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-gateway [url-or-alias]",
		Short: "Select the gateway to use for commands",
		Long: `Select the gateway to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ dashgate select-gateway                           # Interactive selection
  $ dashgate select-gateway https://dash.example.com  # Select by URL
  $ dashgate select-gateway production                # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectGateway(urlOrAlias)
		},
	}

	return cmd
}

func runSelectGateway(urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'dashgate init' to create a configuration file", err)
	}

	var gateway *config.Gateway

	if urlOrAlias != "" {
		gateway, err = gatewayselect.GetGatewayByURLOrAlias(cfg, urlOrAlias)
		if err != nil {
			return err
		}
	} else {
		gateway, err = gatewayselect.PromptGatewaySelection(cfg)
		if err != nil {
			return err
		}
	}

	if err := userconfig.SetSelectedGateway(gateway.URL); err != nil {
		return fmt.Errorf("failed to save selected gateway: %w", err)
	}

	fmt.Printf("Selected gateway: %s (%s)\n", gateway.Alias, gateway.URL)
	return nil
}
