package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
	"github.com/dashgate-dev/dashgate/internal/backend"
)

var (
	guardedView = authpolicy.Target{Route: "overview", Kind: authpolicy.KindView, RequiresAuth: true}
	openView    = authpolicy.Target{Route: "about", Kind: authpolicy.KindView}
	loginPage   = authpolicy.Target{Route: "login", Kind: authpolicy.KindLogin}
)

func fixedStatus(status authpolicy.LoginStatus) StatusFunc {
	return func(ctx context.Context) (authpolicy.LoginStatus, error) {
		return status, nil
	}
}

func TestGuard_Evaluate_Decisions(t *testing.T) {
	g := New(true, zerolog.Nop())

	tests := []struct {
		name     string
		target   authpolicy.Target
		status   authpolicy.LoginStatus
		expected authpolicy.Decision
	}{
		{
			name:     "authenticated guarded view",
			target:   guardedView,
			status:   authpolicy.LoginStatus{TokenPresent: true, HTTPSMode: true},
			expected: authpolicy.Allow,
		},
		{
			name:     "unauthenticated guarded view",
			target:   guardedView,
			status:   authpolicy.LoginStatus{HTTPSMode: true},
			expected: authpolicy.RedirectToLogin,
		},
		{
			name:     "authenticated login page",
			target:   loginPage,
			status:   authpolicy.LoginStatus{HeaderPresent: true, HTTPSMode: true},
			expected: authpolicy.RedirectToHome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := g.Evaluate(context.Background(), tt.target, "", fixedStatus(tt.status))
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if decision != tt.expected {
				t.Errorf("Evaluate() = %v, want %v", decision, tt.expected)
			}
		})
	}
}

func TestGuard_Evaluate_UnguardedViewSkipsFetch(t *testing.T) {
	g := New(true, zerolog.Nop())

	fetched := false
	fetch := func(ctx context.Context) (authpolicy.LoginStatus, error) {
		fetched = true
		return authpolicy.LoginStatus{}, nil
	}

	decision, err := g.Evaluate(context.Background(), openView, "", fetch)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if decision != authpolicy.Allow {
		t.Errorf("Evaluate() = %v, want Allow", decision)
	}
	if fetched {
		t.Error("status fetched for a view that does not require auth")
	}
}

func TestGuard_Evaluate_FailsClosedOnNetworkError(t *testing.T) {
	g := New(true, zerolog.Nop())

	netErr := &backend.NetworkError{Op: "login status", Err: fmt.Errorf("connection refused")}
	fetch := func(ctx context.Context) (authpolicy.LoginStatus, error) {
		return authpolicy.LoginStatus{}, netErr
	}

	_, err := g.Evaluate(context.Background(), guardedView, "", fetch)
	if !errors.Is(err, netErr) {
		t.Fatalf("expected the network error to surface, got %v", err)
	}
}

func TestGuard_Evaluate_MalformedDecidesConservatively(t *testing.T) {
	g := New(true, zerolog.Nop())

	fetch := func(ctx context.Context) (authpolicy.LoginStatus, error) {
		// Conservative snapshot accompanies the error.
		return authpolicy.LoginStatus{HTTPSMode: true}, fmt.Errorf("%w: truncated body", backend.ErrMalformedResponse)
	}

	decision, err := g.Evaluate(context.Background(), guardedView, "", fetch)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if decision != authpolicy.RedirectToLogin {
		t.Errorf("Evaluate() = %v, want RedirectToLogin", decision)
	}
}

func TestGuard_Evaluate_StaleFetchSuperseded(t *testing.T) {
	g := New(true, zerolog.Nop())

	started := make(chan struct{})
	release := make(chan struct{})
	slowFetch := func(ctx context.Context) (authpolicy.LoginStatus, error) {
		close(started)
		<-release
		return authpolicy.LoginStatus{TokenPresent: true, HTTPSMode: true}, nil
	}

	type result struct {
		decision authpolicy.Decision
		err      error
	}
	first := make(chan result, 1)
	go func() {
		decision, err := g.Evaluate(context.Background(), guardedView, "", slowFetch)
		first <- result{decision, err}
	}()

	<-started

	// A second attempt starts while the first fetch is still in flight.
	decision, err := g.Evaluate(context.Background(), guardedView, "", fixedStatus(authpolicy.LoginStatus{HTTPSMode: true}))
	if err != nil {
		t.Fatalf("second Evaluate() error: %v", err)
	}
	if decision != authpolicy.RedirectToLogin {
		t.Errorf("second Evaluate() = %v, want RedirectToLogin", decision)
	}

	close(release)
	got := <-first
	if !errors.Is(got.err, ErrSuperseded) {
		t.Errorf("first Evaluate() error = %v, want ErrSuperseded", got.err)
	}
}

type recordingRefresher struct {
	tokens []string
}

func (r *recordingRefresher) TriggerRefresh(token string) {
	r.tokens = append(r.tokens, token)
}

func TestGuard_Evaluate_RefreshTrigger(t *testing.T) {
	g := New(true, zerolog.Nop())
	refresher := &recordingRefresher{}
	g.SetRefresher(refresher)

	status := authpolicy.LoginStatus{TokenPresent: true, HTTPSMode: true}

	if _, err := g.Evaluate(context.Background(), guardedView, "tok-1", fixedStatus(status)); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(refresher.tokens) != 1 || refresher.tokens[0] != "tok-1" {
		t.Errorf("refresh not triggered with stored token: %v", refresher.tokens)
	}

	// No credential, no refresh.
	if _, err := g.Evaluate(context.Background(), guardedView, "", fixedStatus(authpolicy.LoginStatus{HTTPSMode: true})); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(refresher.tokens) != 1 {
		t.Errorf("refresh triggered without a stored token: %v", refresher.tokens)
	}
}

func TestGuard_Evaluate_RefreshFailureNotADecisionInput(t *testing.T) {
	g := New(true, zerolog.Nop())
	// A refresher that always fails internally; it reports nothing back.
	g.SetRefresher(&recordingRefresher{})

	status := authpolicy.LoginStatus{TokenPresent: true, HTTPSMode: true}
	decision, err := g.Evaluate(context.Background(), guardedView, "expired-token", fixedStatus(status))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if decision != authpolicy.Allow {
		t.Errorf("Evaluate() = %v, want Allow; refresh outcome must not affect the decision", decision)
	}
}
