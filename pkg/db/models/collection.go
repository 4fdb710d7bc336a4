package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// Collection is a shareable watch-list. OwnerID is immutable after creation;
// the owner's access derives from this column, not from a membership row.
type Collection struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                     `gorm:"column:name;not null"`
	Description *string                    `gorm:"column:description"`
	Tags        pq.StringArray             `gorm:"column:tags;type:text[]"`
	Visibility  enums.CollectionVisibility `gorm:"column:visibility;type:collection_visibility;not null;default:'private'"`
	OwnerID     uuid.UUID                  `gorm:"column:owner_id;type:uuid;not null"`
	IsDefault   bool                       `gorm:"column:is_default;not null;default:false"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
