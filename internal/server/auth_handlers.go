package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dashgate-dev/dashgate/internal/backend"
)

// LoginRequest represents a login request. Either a token or a
// username/password pair must be supplied; the credentials are
// forwarded verbatim to the backend, which owns token issuance.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string `json:"token"`
}

// RefreshRequest carries an explicit token for clients that do not use
// the session cookie (e.g. the CLI).
type RefreshRequest struct {
	Token string `json:"token"`
}

// backendError maps client errors to gateway responses. Transport
// failures become 502; the gateway never treats them as success.
func (s *Server) backendError(c *gin.Context, err error, op string) {
	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		s.logger.Error().Err(err).Str("op", op).Msg("Backend unreachable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unreachable"})
		return
	}

	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		// Pass the backend's verdict through (e.g. 401 on bad credentials).
		s.logger.Warn().Err(err).Str("op", op).Msg("Backend rejected request")
		c.JSON(statusErr.Code, gin.H{"error": http.StatusText(statusErr.Code)})
		return
	}

	if errors.Is(err, backend.ErrMalformedResponse) {
		s.logger.Error().Err(err).Str("op", op).Msg("Malformed backend response")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Malformed backend response"})
		return
	}

	s.logger.Error().Err(err).Str("op", op).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// @Summary Login
// @Description Forward credentials to the backend and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Token == "" && (req.Username == "" || req.Password == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either token or username and password are required"})
		return
	}

	csrfToken, err := s.backend.CSRFToken(c.Request.Context(), "login")
	if err != nil {
		s.backendError(c, err, "csrf token")
		return
	}

	authResp, err := s.backend.Login(c.Request.Context(), backend.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		Token:    req.Token,
	}, csrfToken)
	if err != nil {
		s.backendError(c, err, "login")
		return
	}

	s.sessions.Write(c.Writer, authResp.Token)

	s.logger.Info().Str("username", req.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: authResp.Token})
}

// @Summary Logout
// @Description Clear the session cookie on every configured write domain
// @Tags auth
// @Success 204
// @Router /api/v1/logout [post]
func (s *Server) logout(c *gin.Context) {
	s.sessions.Clear(c.Writer)
	c.Status(http.StatusNoContent)
}

// @Summary Login status
// @Description Report the authentication snapshot for the calling request
// @Tags auth
// @Produce json
// @Success 200 {object} authpolicy.LoginStatus
// @Router /api/v1/login/status [get]
func (s *Server) loginStatus(c *gin.Context) {
	status := s.sessions.Snapshot(c.Request, s.config.Auth.HTTPSMode)
	c.JSON(http.StatusOK, status)
}

// @Summary Refresh token
// @Description Exchange the session token for a fresh one
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/token/refresh [post]
func (s *Server) refreshToken(c *gin.Context) {
	// The cookie token wins; an explicit body token serves cookie-less
	// clients.
	token, ok := s.sessions.Read(c.Request)
	if !ok {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			respondWithError(c, s.logger, http.StatusUnauthorized, ErrNotAuthenticated, "No token to refresh")
			return
		}
		token = req.Token
	}

	csrfToken, err := s.backend.CSRFToken(c.Request.Context(), "token")
	if err != nil {
		s.backendError(c, err, "csrf token")
		return
	}

	authResp, err := s.backend.RefreshToken(c.Request.Context(), token, csrfToken)
	if err != nil {
		s.backendError(c, err, "token refresh")
		return
	}

	s.sessions.Write(c.Writer, authResp.Token)

	c.JSON(http.StatusOK, LoginResponse{Token: authResp.Token})
}

// @Summary CSRF token
// @Description Fetch a one-time CSRF token for the named action
// @Tags auth
// @Produce json
// @Param action path string true "Action name"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/csrftoken/{action} [get]
func (s *Server) csrfToken(c *gin.Context) {
	action := c.Param("action")

	token, err := s.backend.CSRFToken(c.Request.Context(), action)
	if err != nil {
		s.backendError(c, err, "csrf token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
