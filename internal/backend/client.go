// Package backend is the HTTP client for the dashboard backend API:
// login, login status, token refresh and CSRF token issuance. The
// backend owns tokens; this client never mints or verifies them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
)

const defaultCSRFHeader = "X-CSRF-TOKEN"

// Client talks to the dashboard backend API.
type Client struct {
	baseURL    string
	csrfHeader string
	httpClient *http.Client
}

// New creates a new backend API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		csrfHeader: defaultCSRFHeader,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetCSRFHeader overrides the header name state-changing calls carry
// their CSRF token in.
func (c *Client) SetCSRFHeader(name string) {
	c.csrfHeader = name
}

// LoginRequest represents the credentials forwarded to the backend.
// Exactly one of Token or Username/Password is expected.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AuthResponse represents a successful login or refresh reply.
type AuthResponse struct {
	Token  string   `json:"token"`
	Errors []string `json:"errors,omitempty"`
}

// conservativeStatus is the fallback snapshot for malformed replies:
// not authenticated, authentication enforced.
func conservativeStatus() authpolicy.LoginStatus {
	return authpolicy.LoginStatus{HTTPSMode: true}
}

// LoginStatus fetches the current authentication snapshot.
//
// On a malformed reply it returns the conservative snapshot together
// with ErrMalformedResponse so the caller can fail closed. Transport
// failures surface as *NetworkError and are never mapped to a
// permissive default.
func (c *Client) LoginStatus(ctx context.Context) (authpolicy.LoginStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/login/status", nil)
	if err != nil {
		return conservativeStatus(), fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return conservativeStatus(), &NetworkError{Op: "login status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return conservativeStatus(), &StatusError{Op: "login status", Code: resp.StatusCode, Body: string(body)}
	}

	var status authpolicy.LoginStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return conservativeStatus(), fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return status, nil
}

// Login forwards credentials to the backend and returns the issued token.
// The csrfToken accompanies the request in the configured CSRF header.
func (c *Client) Login(ctx context.Context, login LoginRequest, csrfToken string) (*AuthResponse, error) {
	return c.postAuth(ctx, "login", "/api/v1/login", login, csrfToken)
}

// RefreshToken exchanges a token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, token, csrfToken string) (*AuthResponse, error) {
	body := map[string]string{"token": token}
	return c.postAuth(ctx, "token refresh", "/api/v1/token/refresh", body, csrfToken)
}

// CSRFToken fetches a one-time CSRF token for the named action.
func (c *Client) CSRFToken(ctx context.Context, action string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/csrftoken/%s", c.baseURL, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "csrf token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Op: "csrf token", Code: resp.StatusCode, Body: string(body)}
	}

	var reply struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if reply.Token == "" {
		return "", fmt.Errorf("%w: empty csrf token", ErrMalformedResponse)
	}

	return reply.Token, nil
}

func (c *Client) postAuth(ctx context.Context, op, path string, payload any, csrfToken string) (*AuthResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if csrfToken != "" {
		req.Header.Set(c.csrfHeader, csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: string(body)}
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if authResp.Token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedResponse)
	}

	return &authResp, nil
}
