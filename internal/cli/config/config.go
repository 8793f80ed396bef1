package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const ConfigFileName = "dashgate.json"

// Gateway represents a Dashgate gateway configuration
type Gateway struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

// Config represents the project configuration stored in dashgate.json
type Config struct {
	Gateways []Gateway `json:"gateways"`
}

// LoadFromCurrentDir reads dashgate.json from the working directory
func LoadFromCurrentDir() (*Config, error) {
	data, err := os.ReadFile(ConfigFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	return &cfg, nil
}

// Save writes the configuration to dashgate.json in the working directory
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}

	return nil
}

// GetGatewayByAlias finds a gateway by its alias
func (c *Config) GetGatewayByAlias(alias string) (*Gateway, error) {
	for i := range c.Gateways {
		if c.Gateways[i].Alias == alias {
			return &c.Gateways[i], nil
		}
	}
	return nil, fmt.Errorf("gateway with alias '%s' not found in %s", alias, ConfigFileName)
}
