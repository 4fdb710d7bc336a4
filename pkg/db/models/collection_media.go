package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectionMedia links a collection to a media item. Position drives
// user-defined ordering; ties break on id.
type CollectionMedia struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectionID uuid.UUID `gorm:"column:collection_id;type:uuid;not null;index:collection_media_collection_id_idx;uniqueIndex:collection_media_collection_media_key"`
	MediaID      uuid.UUID `gorm:"column:media_id;type:uuid;not null;index:collection_media_media_id_idx;uniqueIndex:collection_media_collection_media_key"`
	Position     int       `gorm:"column:position;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table; the default pluralizer mangles "media".
func (CollectionMedia) TableName() string { return "collection_media" }
