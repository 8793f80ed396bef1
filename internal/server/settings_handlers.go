package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dashgate-dev/dashgate/internal/settings"
)

// UpdateSettingsRequest represents a settings update
type UpdateSettingsRequest struct {
	ClusterName        string `json:"cluster_name" validate:"max=128"`
	ItemsPerPage       int    `json:"items_per_page" validate:"min=5,max=100"`
	AutoRefreshSeconds int    `json:"auto_refresh_seconds" validate:"min=0,max=3600"`
}

// @Summary Get settings
// @Description Get the dashboard display settings
// @Tags settings
// @Produce json
// @Success 200 {object} settings.Settings
// @Router /api/v1/settings [get]
func (s *Server) getSettings(c *gin.Context) {
	stored, err := s.settingsService.Get()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stored)
}

// @Summary Update settings
// @Description Update the dashboard display settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body UpdateSettingsRequest true "Settings update"
// @Success 200 {object} settings.Settings
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/settings [put]
func (s *Server) updateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := s.settingsService.Update(&settings.Settings{
		ClusterName:        req.ClusterName,
		ItemsPerPage:       req.ItemsPerPage,
		AutoRefreshSeconds: req.AutoRefreshSeconds,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to update settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stored)
}

// @Summary Page title
// @Description Compose the browser title for a page
// @Tags settings
// @Produce json
// @Param page query string false "Page name"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/title [get]
func (s *Server) getTitle(c *gin.Context) {
	title := s.settingsService.PageTitle(c.Query("page"))
	c.JSON(http.StatusOK, gin.H{"title": title})
}
