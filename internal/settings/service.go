// Package settings persists the dashboard display settings and derives
// page titles from them.
package settings

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const defaultItemsPerPage = 10

// Service reads and writes the settings singleton.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a settings service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Get returns the current settings, creating the defaults row on first use.
func (s *Service) Get() (*Settings, error) {
	var settings Settings
	err := s.db.First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings = Settings{
		ItemsPerPage:       defaultItemsPerPage,
		AutoRefreshSeconds: 5,
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	s.logger.Info().Str("settings_id", settings.ID).Msg("Created default settings")
	return &settings, nil
}

// Update overwrites the mutable settings fields and returns the stored row.
func (s *Service) Update(updated *Settings) (*Settings, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}

	current.ClusterName = updated.ClusterName
	current.ItemsPerPage = updated.ItemsPerPage
	current.AutoRefreshSeconds = updated.AutoRefreshSeconds

	if err := s.db.Save(current).Error; err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().
		Str("settings_id", current.ID).
		Str("cluster_name", current.ClusterName).
		Int("items_per_page", current.ItemsPerPage).
		Msg("Settings updated")

	return current, nil
}

// PageTitle composes the browser title for a page from the configured
// cluster name.
func (s *Service) PageTitle(page string) string {
	settings, err := s.Get()
	if err != nil || settings.ClusterName == "" {
		if page == "" {
			return "Dashboard"
		}
		return fmt.Sprintf("%s - Dashboard", page)
	}
	if page == "" {
		return fmt.Sprintf("%s Dashboard", settings.ClusterName)
	}
	return fmt.Sprintf("%s - %s Dashboard", page, settings.ClusterName)
}
