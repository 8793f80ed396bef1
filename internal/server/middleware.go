package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dashgate-dev/dashgate/internal/authpolicy"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrBackendDown      = errors.New("backend unreachable")
)

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// requireAuthenticated guards state-changing API endpoints. It applies
// the same snapshot semantics as page navigation: a bearer header or a
// token cookie authenticates, and deployments without auth enforcement
// pass through.
func (s *Server) requireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := s.sessions.Snapshot(c.Request, s.config.Auth.HTTPSMode)

		if status.AuthenticationEnabled() && !status.Authenticated() {
			respondWithError(c, s.logger, http.StatusUnauthorized, ErrNotAuthenticated, "Authentication required")
			return
		}

		c.Next()
	}
}

// navigate applies the redirect policy to a page navigation and proxies
// allowed requests to the dashboard.
func (s *Server) navigate(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	path := c.Request.URL.Path
	target := s.routes.Resolve(path)

	// The snapshot is derived synchronously from the request itself, so
	// no stale fetch can race a newer navigation here.
	status := s.sessions.Snapshot(c.Request, s.config.Auth.HTTPSMode)
	decision := s.guard.Decide(target, status)

	switch decision {
	case authpolicy.RedirectToLogin:
		c.Redirect(http.StatusFound, s.routes.LoginPath())
	case authpolicy.RedirectToHome:
		c.Redirect(http.StatusFound, s.routes.HomePath())
	default:
		s.proxy.ServeHTTP(c.Writer, c.Request)
	}
}
