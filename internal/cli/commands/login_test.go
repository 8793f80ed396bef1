package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dashgate-dev/dashgate/internal/cli/auth"
	"github.com/dashgate-dev/dashgate/internal/cli/config"
)

// mockTokenStore is a simple in-memory token store for testing
type mockTokenStore struct {
	tokens map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{
		tokens: make(map[string]string),
	}
}

func (m *mockTokenStore) SaveToken(gatewayURL, token string) error {
	m.tokens[gatewayURL] = token
	return nil
}

func (m *mockTokenStore) LoadToken(gatewayURL string) (string, error) {
	token, exists := m.tokens[gatewayURL]
	if !exists {
		return "", fmt.Errorf("not authenticated. Please run 'dashgate login' first")
	}
	return token, nil
}

func (m *mockTokenStore) DeleteToken(gatewayURL string) error {
	delete(m.tokens, gatewayURL)
	return nil
}

// setupTestEnvironment creates a temporary directory with a test config
// and makes it the working directory. HOME is pointed at the temp dir so
// the user config never touches the real one.
func setupTestEnvironment(t *testing.T, gateways []config.Gateway) string {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	cfg := config.Config{
		Gateways: gateways,
	}
	cfgData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}

	cfgPath := filepath.Join(tempDir, config.ConfigFileName)
	if err := os.WriteFile(cfgPath, cfgData, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	return tempDir
}

// mockGatewayServer creates a mock gateway for login testing
func mockGatewayServer(t *testing.T, username, password, issuedToken string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var loginReq struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Token    string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if loginReq.Username != username || loginReq.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid credentials"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"token": issuedToken})
	}))
}

func TestLoginCommand_SuccessfulLogin(t *testing.T) {
	mockServer := mockGatewayServer(t, "admin", "password123", "issued-token-abc")
	defer mockServer.Close()

	setupTestEnvironment(t, []config.Gateway{
		{Alias: "test-gateway", URL: mockServer.URL},
	})

	tokenStore := newMockTokenStore()
	original := auth.Default
	auth.Default = tokenStore
	defer func() { auth.Default = original }()

	if err := runLogin("admin", "password123", ""); err != nil {
		t.Fatalf("runLogin failed: %v", err)
	}

	token, err := tokenStore.LoadToken(mockServer.URL)
	if err != nil {
		t.Fatalf("expected token to be stored: %v", err)
	}
	if token != "issued-token-abc" {
		t.Errorf("expected stored token 'issued-token-abc', got '%s'", token)
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	mockServer := mockGatewayServer(t, "admin", "password123", "issued-token-abc")
	defer mockServer.Close()

	setupTestEnvironment(t, []config.Gateway{
		{Alias: "test-gateway", URL: mockServer.URL},
	})

	tokenStore := newMockTokenStore()
	original := auth.Default
	auth.Default = tokenStore
	defer func() { auth.Default = original }()

	err := runLogin("admin", "wrong-password", "")
	if err == nil {
		t.Fatal("expected error for invalid credentials, got nil")
	}

	if _, err := tokenStore.LoadToken(mockServer.URL); err == nil {
		t.Error("no token should be stored after a failed login")
	}
}

func TestLoginCommand_MissingCredentials(t *testing.T) {
	setupTestEnvironment(t, []config.Gateway{
		{Alias: "test-gateway", URL: "http://127.0.0.1:1"},
	})

	// Make sure env vars don't leak in
	t.Setenv("DASHGATE_USERNAME", "")
	t.Setenv("DASHGATE_PASSWORD", "")
	t.Setenv("DASHGATE_TOKEN", "")

	err := runLogin("", "", "")
	if err == nil {
		t.Error("expected error when no credentials are provided, got nil")
	}
}

func TestLoginCommand_NoConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	originalDir, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(originalDir)

	err := runLogin("admin", "password123", "")
	if err == nil {
		t.Fatal("expected error when config file is missing, got nil")
	}

	if err.Error()[:22] != "failed to load config:" {
		t.Errorf("expected error to start with 'failed to load config:', got '%s'", err.Error())
	}
}

func TestLoginCommand_EnvVarCredentials(t *testing.T) {
	mockServer := mockGatewayServer(t, "env-user", "env-pass", "env-token")
	defer mockServer.Close()

	setupTestEnvironment(t, []config.Gateway{
		{Alias: "test-gateway", URL: mockServer.URL},
	})

	t.Setenv("DASHGATE_USERNAME", "env-user")
	t.Setenv("DASHGATE_PASSWORD", "env-pass")

	tokenStore := newMockTokenStore()
	original := auth.Default
	auth.Default = tokenStore
	defer func() { auth.Default = original }()

	if err := runLogin("", "", ""); err != nil {
		t.Fatalf("runLogin should have read credentials from env vars: %v", err)
	}

	token, err := tokenStore.LoadToken(mockServer.URL)
	if err != nil {
		t.Fatalf("expected token to be stored: %v", err)
	}
	if token != "env-token" {
		t.Errorf("expected stored token 'env-token', got '%s'", token)
	}
}

func TestLoginCommand_Flags(t *testing.T) {
	cmd := NewLoginCmd()

	if cmd.Use != "login" {
		t.Errorf("expected Use to be 'login', got %s", cmd.Use)
	}

	for _, flag := range []string{"username", "password", "token"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to exist", flag)
		}
	}
}
