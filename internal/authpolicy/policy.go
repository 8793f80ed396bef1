// Package authpolicy decides whether a navigation attempt may proceed,
// and where to send it otherwise.
package authpolicy

// LoginStatus is a point-in-time snapshot of the client's authentication
// state. It is fetched once per navigation attempt and never cached.
type LoginStatus struct {
	// HeaderPresent reports whether an Authorization header accompanied
	// the request.
	HeaderPresent bool `json:"headerPresent"`
	// TokenPresent reports whether the session cookie carries a token.
	TokenPresent bool `json:"tokenPresent"`
	// HTTPSMode reports whether the deployment serves over TLS.
	// Plain HTTP deployments run with authentication disabled.
	HTTPSMode bool `json:"httpsMode"`
}

// Authenticated reports whether any credential accompanies the request.
// A bearer header alone is sufficient regardless of the cookie.
func (s LoginStatus) Authenticated() bool {
	return s.HeaderPresent || s.TokenPresent
}

// AuthenticationEnabled reports whether the deployment enforces
// authentication at all.
func (s LoginStatus) AuthenticationEnabled() bool {
	return s.HTTPSMode
}

// Kind classifies a navigation target.
type Kind int

const (
	// KindView is a regular dashboard view.
	KindView Kind = iota
	// KindLogin is the login page.
	KindLogin
	// KindError is the error page.
	KindError
)

// Target identifies the destination of a navigation attempt.
// RequiresAuth comes from the route table metadata.
type Target struct {
	Route        string
	Kind         Kind
	RequiresAuth bool
}

// Decision is the sole output of the policy.
type Decision int

const (
	// Allow lets the navigation proceed.
	Allow Decision = iota
	// RedirectToLogin retargets the navigation to the login page.
	RedirectToLogin
	// RedirectToHome retargets the navigation to the home view.
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// Decide evaluates the redirect policy for a single navigation attempt.
// Rules are evaluated in order, first match wins:
//
//  1. An authenticated user, or a deployment with auth disabled, must not
//     see the login page: redirect home.
//  2. The login and error pages, deployments without a login page or
//     without auth enforcement, and authenticated users pass through.
//  3. Everything else is sent to the login page.
//
// Decide is pure: it has no side effects and identical inputs always
// yield the identical decision.
func Decide(target Target, loginPageEnabled bool, status LoginStatus) Decision {
	if target.Kind == KindLogin && (status.Authenticated() || !status.AuthenticationEnabled()) {
		return RedirectToHome
	}

	if target.Kind == KindLogin || target.Kind == KindError ||
		!loginPageEnabled || !status.AuthenticationEnabled() || status.Authenticated() {
		return Allow
	}

	return RedirectToLogin
}
