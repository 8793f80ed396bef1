package auth

// TokenStore defines the interface for token storage operations
// This allows us to mock the keyring in tests
type TokenStore interface {
	SaveToken(gatewayURL, token string) error
	LoadToken(gatewayURL string) (string, error)
	DeleteToken(gatewayURL string) error
}

// defaultTokenStore implements TokenStore using the OS keyring
type defaultTokenStore struct{}

var Default TokenStore = &defaultTokenStore{}

func (d *defaultTokenStore) SaveToken(gatewayURL, token string) error {
	return SaveToken(gatewayURL, token)
}

func (d *defaultTokenStore) LoadToken(gatewayURL string) (string, error) {
	return LoadToken(gatewayURL)
}

func (d *defaultTokenStore) DeleteToken(gatewayURL string) error {
	return DeleteToken(gatewayURL)
}
