package gatewayselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/dashgate-dev/dashgate/internal/cli/config"
	"github.com/dashgate-dev/dashgate/internal/cli/userconfig"
)

// ResolveGateway determines which gateway to use based on the following priority:
// 1. If gatewayAlias is provided, use that gateway
// 2. If the user has a selected gateway in their local config, use that
// 3. If only one gateway is configured, use that
// 4. Otherwise, prompt the user to select a gateway interactively
func ResolveGateway(projectConfig *config.Config, gatewayAlias string) (*config.Gateway, error) {
	// Priority 1: Use gateway alias if provided
	if gatewayAlias != "" {
		gateway, err := projectConfig.GetGatewayByAlias(gatewayAlias)
		if err != nil {
			return nil, err
		}
		return gateway, nil
	}

	// Priority 2: Use selected gateway from user config
	selectedURL, err := userconfig.GetSelectedGateway()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		gateway, err := getGatewayByURL(projectConfig, selectedURL)
		if err != nil {
			// Selected gateway no longer exists in project config, clear it and continue
			_ = userconfig.SetSelectedGateway("")
		} else {
			return gateway, nil
		}
	}

	// Priority 3: If only one gateway, use it automatically
	if len(projectConfig.Gateways) == 1 {
		gateway := &projectConfig.Gateways[0]
		if err := userconfig.SetSelectedGateway(gateway.URL); err != nil {
			fmt.Printf("Warning: failed to save selected gateway: %v\n", err)
		}
		return gateway, nil
	}

	// Priority 4: Prompt user to select a gateway
	gateway, err := PromptGatewaySelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedGateway(gateway.URL); err != nil {
		fmt.Printf("Warning: failed to save selected gateway: %v\n", err)
	}

	return gateway, nil
}

// PromptGatewaySelection shows an interactive prompt for the user to select a gateway
func PromptGatewaySelection(projectConfig *config.Config) (*config.Gateway, error) {
	if len(projectConfig.Gateways) == 0 {
		return nil, fmt.Errorf("no gateways configured in %s", config.ConfigFileName)
	}

	type gatewayOption struct {
		Label   string
		Gateway *config.Gateway
	}

	options := make([]gatewayOption, len(projectConfig.Gateways))
	for i := range projectConfig.Gateways {
		gateway := &projectConfig.Gateways[i]
		options[i] = gatewayOption{
			Label:   fmt.Sprintf("%s (%s)", gateway.Alias, gateway.URL),
			Gateway: gateway,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a gateway",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("gateway selection cancelled: %w", err)
	}

	return options[index].Gateway, nil
}

// getGatewayByURL finds a gateway in the config by its URL
func getGatewayByURL(cfg *config.Config, url string) (*config.Gateway, error) {
	for i := range cfg.Gateways {
		if cfg.Gateways[i].URL == url {
			return &cfg.Gateways[i], nil
		}
	}
	return nil, fmt.Errorf("gateway with URL '%s' not found in project config", url)
}

// GetGatewayByURLOrAlias finds a gateway by URL or alias
func GetGatewayByURLOrAlias(cfg *config.Config, urlOrAlias string) (*config.Gateway, error) {
	for i := range cfg.Gateways {
		if cfg.Gateways[i].URL == urlOrAlias {
			return &cfg.Gateways[i], nil
		}
	}
	for i := range cfg.Gateways {
		if cfg.Gateways[i].Alias == urlOrAlias {
			return &cfg.Gateways[i], nil
		}
	}
	return nil, fmt.Errorf("gateway with URL or alias '%s' not found", urlOrAlias)
}
