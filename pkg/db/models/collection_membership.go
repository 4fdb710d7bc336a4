package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// CollectionMembership links a user with a collection and captures their
// role plus invitation state. CreatedAt doubles as the invited timestamp.
// An unaccepted row grants no capability at all.
type CollectionMembership struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectionID uuid.UUID            `gorm:"column:collection_id;type:uuid;not null;uniqueIndex:collection_memberships_collection_user_key"`
	UserID       uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:collection_memberships_user_id_idx;uniqueIndex:collection_memberships_collection_user_key"`
	Role         enums.CollectionRole `gorm:"column:role;type:collection_role;not null;default:'reader'"`
	Accepted     bool                 `gorm:"column:accepted;not null;default:false"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
