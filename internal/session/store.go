// Package session owns the client-side authentication token: a cookie on
// the browser leg of the gateway. It never inspects token validity beyond
// reading the expiry claim; verification belongs to the backend.
package session

import (
	"net/http"
	"strings"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
)

const bearerPrefix = "Bearer "

// Config carries the cookie and header names plus the hosts the auth
// cookie is written for. It is injected explicitly wherever needed;
// there is no package-level state.
type Config struct {
	// CookieName is the name of the auth token cookie.
	CookieName string
	// HeaderName is the request header checked for a bearer credential.
	HeaderName string
	// WriteDomains lists every domain the auth cookie is duplicated to.
	// Browsers scope cookies per host, so a deployment reachable as both
	// localhost and 127.0.0.1 needs one write per name. An empty list
	// writes a single host-scoped cookie.
	WriteDomains []string
	// Secure marks written cookies as HTTPS-only.
	Secure bool
}

// Store reads and writes the auth token cookie.
type Store struct {
	cfg Config
}

// NewStore creates a cookie-backed session store.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Read returns the token from the request's auth cookie.
// The second return value is false when no cookie is present.
func (s *Store) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// HeaderToken returns the bearer token from the configured auth header.
// The second return value is false when the header is absent or not a
// bearer credential.
func (s *Store) HeaderToken(r *http.Request) (string, bool) {
	header := r.Header.Get(s.cfg.HeaderName)
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

// Write sets the auth cookie on the response, once per configured write
// domain.
func (s *Store) Write(w http.ResponseWriter, token string) {
	for _, cookie := range s.cookies(token, 0) {
		http.SetCookie(w, cookie)
	}
}

// Clear expires the auth cookie on every configured write domain.
func (s *Store) Clear(w http.ResponseWriter) {
	for _, cookie := range s.cookies("", -1) {
		http.SetCookie(w, cookie)
	}
}

// Snapshot builds the authentication snapshot for a single request.
// httpsMode is supplied by the caller since it is a deployment property,
// not a request property.
func (s *Store) Snapshot(r *http.Request, httpsMode bool) authpolicy.LoginStatus {
	_, headerPresent := s.HeaderToken(r)
	_, tokenPresent := s.Read(r)
	return authpolicy.LoginStatus{
		HeaderPresent: headerPresent,
		TokenPresent:  tokenPresent,
		HTTPSMode:     httpsMode,
	}
}

func (s *Store) cookies(value string, maxAge int) []*http.Cookie {
	base := http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if len(s.cfg.WriteDomains) == 0 {
		return []*http.Cookie{&base}
	}

	cookies := make([]*http.Cookie, 0, len(s.cfg.WriteDomains))
	for _, domain := range s.cfg.WriteDomains {
		cookie := base
		cookie.Domain = domain
		cookies = append(cookies, &cookie)
	}
	return cookies
}
