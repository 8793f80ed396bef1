// Package guard evaluates the redirect policy for navigation attempts,
// fetching a fresh authentication snapshot per attempt and discarding
// results that a newer attempt has overtaken.
package guard

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
	"github.com/dashgate-dev/dashgate/internal/backend"
)

// ErrSuperseded marks an attempt whose status fetch resolved after a
// newer attempt was issued. The caller must discard the result and act
// on the newer attempt instead.
var ErrSuperseded = errors.New("navigation attempt superseded")

// StatusFunc fetches the authentication snapshot for one attempt.
type StatusFunc func(ctx context.Context) (authpolicy.LoginStatus, error)

// Refresher triggers a token refresh ahead of a guarded transition.
// Implementations must not block; the refresh result only affects
// future evaluations once the session store is updated by its owner.
type Refresher interface {
	TriggerRefresh(token string)
}

// Guard serializes navigation attempts through a monotonically
// increasing sequence so stale in-flight status fetches can never
// decide a newer navigation.
type Guard struct {
	loginPageEnabled bool
	refresher        Refresher
	logger           zerolog.Logger
	seq              seqCounter
}

// New creates a navigation guard.
func New(loginPageEnabled bool, logger zerolog.Logger) *Guard {
	return &Guard{
		loginPageEnabled: loginPageEnabled,
		logger:           logger,
	}
}

// SetRefresher installs an optional pre-transition token refresher.
func (g *Guard) SetRefresher(r Refresher) {
	g.refresher = r
}

// Decide evaluates the policy against an already-obtained snapshot,
// bypassing the fetch and sequence machinery. Intended for callers that
// derive the snapshot synchronously from the request at hand, where no
// stale in-flight fetch can exist.
func (g *Guard) Decide(target authpolicy.Target, status authpolicy.LoginStatus) authpolicy.Decision {
	if target.Kind == authpolicy.KindView && !target.RequiresAuth {
		return authpolicy.Allow
	}

	decision := authpolicy.Decide(target, g.loginPageEnabled, status)

	g.logger.Debug().
		Str("route", target.Route).
		Stringer("decision", decision).
		Msg("Navigation decided")

	return decision
}

// Evaluate decides a single navigation attempt.
//
// token is the credential currently held by the session store ("" when
// absent); when present a refresh is triggered without blocking the
// evaluation. fetch supplies the status snapshot; on a transport error
// the guard fails closed and returns the error instead of a decision.
// A malformed snapshot is decided conservatively (not authenticated,
// auth enforced).
func (g *Guard) Evaluate(ctx context.Context, target authpolicy.Target, token string, fetch StatusFunc) (authpolicy.Decision, error) {
	attempt := g.seq.next()
	attemptID := ulid.Make().String()

	if token != "" && g.refresher != nil {
		g.refresher.TriggerRefresh(token)
	}

	// Unguarded views pass without consulting the status endpoint.
	if target.Kind == authpolicy.KindView && !target.RequiresAuth {
		return authpolicy.Allow, nil
	}

	status, err := fetch(ctx)

	if !g.seq.isLatest(attempt) {
		return authpolicy.Allow, ErrSuperseded
	}

	if err != nil {
		if !errors.Is(err, backend.ErrMalformedResponse) {
			return authpolicy.Allow, err
		}
		// The conservative snapshot accompanies the error; decide on it.
		g.logger.Warn().
			Str("attempt_id", attemptID).
			Str("route", target.Route).
			Err(err).
			Msg("Malformed status reply, deciding conservatively")
	}

	decision := authpolicy.Decide(target, g.loginPageEnabled, status)

	g.logger.Debug().
		Str("attempt_id", attemptID).
		Uint64("seq", attempt).
		Str("route", target.Route).
		Stringer("decision", decision).
		Msg("Navigation attempt decided")

	return decision, nil
}
