package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's view of an account. Rows are seeded
// from token claims; this service never mutates credentials.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string    `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Handle      string    `gorm:"column:handle;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
