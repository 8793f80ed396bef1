package commands

import (
	"fmt"

	"github.com/dashgate-dev/dashgate/internal/cli/config"
	"github.com/dashgate-dev/dashgate/internal/cli/gatewayselect"
)

// getSelectedGateway loads the project config and resolves the gateway
// the command should talk to.
func getSelectedGateway() (*config.Gateway, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'dashgate init' to create a configuration file", err)
	}

	return gatewayselect.ResolveGateway(cfg, "")
}
