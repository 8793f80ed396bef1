package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_LoginStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/login/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"headerPresent":false,"tokenPresent":true,"httpsMode":true}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	status, err := client.LoginStatus(context.Background())
	if err != nil {
		t.Fatalf("LoginStatus() error: %v", err)
	}
	if status.HeaderPresent || !status.TokenPresent || !status.HTTPSMode {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestClient_LoginStatus_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	status, err := client.LoginStatus(context.Background())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	// Conservative fallback: not authenticated, auth enforced.
	if status.Authenticated() {
		t.Error("malformed reply produced an authenticated snapshot")
	}
	if !status.AuthenticationEnabled() {
		t.Error("malformed reply disabled authentication")
	}
}

func TestClient_LoginStatus_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL)
	_, err := client.LoginStatus(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("X-CSRF-TOKEN"); got != "csrf-1" {
			t.Errorf("missing csrf header, got %q", got)
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Username != "admin" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"token":"issued-token"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)

	resp, err := client.Login(context.Background(), LoginRequest{Username: "admin", Password: "hunter2"}, "csrf-1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token != "issued-token" {
		t.Errorf("Login() token = %q", resp.Token)
	}

	_, err = client.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"}, "csrf-1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 StatusError, got %v", err)
	}
}

func TestClient_RefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/token/refresh" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["token"] != "old-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"token":"new-token"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	resp, err := client.RefreshToken(context.Background(), "old-token", "csrf-2")
	if err != nil {
		t.Fatalf("RefreshToken() error: %v", err)
	}
	if resp.Token != "new-token" {
		t.Errorf("RefreshToken() token = %q", resp.Token)
	}
}

func TestClient_RefreshToken_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":""}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.RefreshToken(context.Background(), "old", ""); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse for empty token, got %v", err)
	}
}

func TestClient_CSRFToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/csrftoken/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"token":"csrf-abc"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	token, err := client.CSRFToken(context.Background(), "login")
	if err != nil {
		t.Fatalf("CSRFToken() error: %v", err)
	}
	if token != "csrf-abc" {
		t.Errorf("CSRFToken() = %q", token)
	}
}
