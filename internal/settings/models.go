package settings

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and an auto-generated ULID primary key.
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Settings holds the dashboard display configuration.
// This is a singleton model (only one row should exist).
type Settings struct {
	BaseModel
	ClusterName        string `json:"cluster_name"`
	ItemsPerPage       int    `json:"items_per_page" gorm:"not null;default:10"`
	AutoRefreshSeconds int    `json:"auto_refresh_seconds" gorm:"not null;default:5"`
}

// AutoMigrate runs database migrations for all settings models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Settings{})
}
