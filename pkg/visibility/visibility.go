package visibility

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// CollectionReadable returns the read-eligibility predicate for collections as
// a GORM scope: public rows and, when a caller is present, rows the caller
// owns or holds an accepted membership in. Every collection read path goes
// through this scope so list filters can never widen visibility.
func CollectionReadable(callerID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if callerID == nil {
			return tx.Where("collections.visibility = ?", enums.CollectionVisibilityPublic)
		}
		return tx.Where(
			`(collections.visibility = ?
				OR collections.owner_id = ?
				OR EXISTS (
					SELECT 1 FROM collection_memberships cm
					WHERE cm.collection_id = collections.id
					  AND cm.user_id = ?
					  AND cm.accepted))`,
			enums.CollectionVisibilityPublic, *callerID, *callerID,
		)
	}
}

// MediaReadable applies the collection predicate transitively: a media row is
// readable when at least one collection containing it is readable.
func MediaReadable(callerID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if callerID == nil {
			return tx.Where(
				`EXISTS (
					SELECT 1 FROM collection_media l
					JOIN collections c ON c.id = l.collection_id
					WHERE l.media_id = media.id
					  AND c.visibility = ?)`,
				enums.CollectionVisibilityPublic,
			)
		}
		return tx.Where(
			`EXISTS (
				SELECT 1 FROM collection_media l
				JOIN collections c ON c.id = l.collection_id
				WHERE l.media_id = media.id
				  AND (c.visibility = ?
					OR c.owner_id = ?
					OR EXISTS (
						SELECT 1 FROM collection_memberships cm
						WHERE cm.collection_id = c.id
						  AND cm.user_id = ?
						  AND cm.accepted)))`,
			enums.CollectionVisibilityPublic, *callerID, *callerID,
		)
	}
}
