package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "dashgate-cli"
)

// getKeyringKey returns a unique key for storing tokens per gateway
func getKeyringKey(gatewayURL string) string {
	return fmt.Sprintf("token-%s", gatewayURL)
}

// SaveToken persists the auth token securely in the OS keychain/credential manager
func SaveToken(gatewayURL, token string) error {
	key := getKeyringKey(gatewayURL)
	if err := keyring.Set(service, key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the auth token from the OS keychain/credential manager
func LoadToken(gatewayURL string) (string, error) {
	key := getKeyringKey(gatewayURL)
	token, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("not authenticated. Please run 'dashgate login' first")
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the auth token from the OS keychain/credential manager
func DeleteToken(gatewayURL string) error {
	key := getKeyringKey(gatewayURL)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
