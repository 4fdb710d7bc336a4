package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// Media is a watchable item. It lives independently of any collection and is
// referenced through CollectionMedia join rows.
type Media struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description *string         `gorm:"column:description"`
	Notes       *string         `gorm:"column:notes"`
	Type        enums.MediaType `gorm:"column:type;type:media_type;not null;default:'other'"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	Platforms   pq.StringArray  `gorm:"column:platforms;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table; the default pluralizer mangles "media".
func (Media) TableName() string { return "media" }
