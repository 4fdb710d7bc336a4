package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	"github.com/reelist-app/reelist-backend/pkg/visibility"
)

// Repository encapsulates media and collection-media persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a media row, optionally inside a caller-provided
// transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, item *models.Media) error {
	return r.conn(tx).WithContext(ctx).Create(item).Error
}

// FindByID loads a media row regardless of visibility.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var item models.Media
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindVisibleByID loads a media row through the transitive read predicate.
func (r *Repository) FindVisibleByID(ctx context.Context, id uuid.UUID, callerID *uuid.UUID) (*models.Media, error) {
	var item models.Media
	err := r.db.WithContext(ctx).
		Scopes(visibility.MediaReadable(callerID)).
		First(&item, "media.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies the provided column set and reloads the row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Media, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id = ?", id).
		Updates(columns).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes the media row. Its join rows cascade at the storage layer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Media{}, "id = ?", id).Error
}

// Link inserts a collection-media join row, optionally inside a transaction.
// The unique constraint over (collection_id, media_id) is the real guard
// against concurrent duplicate adds.
func (r *Repository) Link(ctx context.Context, tx *gorm.DB, link *models.CollectionMedia) error {
	return r.conn(tx).WithContext(ctx).Create(link).Error
}

// GetLink loads the join row for one media item in one collection.
func (r *Repository) GetLink(ctx context.Context, collectionID, mediaID uuid.UUID) (*models.CollectionMedia, error) {
	var link models.CollectionMedia
	err := r.db.WithContext(ctx).
		Where("collection_id = ? AND media_id = ?", collectionID, mediaID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateLinkPosition moves a media item within its collection's ordering.
func (r *Repository) UpdateLinkPosition(ctx context.Context, id uuid.UUID, position int) error {
	return r.db.WithContext(ctx).
		Model(&models.CollectionMedia{}).
		Where("id = ?", id).
		Update("position", position).Error
}

// DeleteLink removes a join row without touching the media item itself.
func (r *Repository) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CollectionMedia{}, "id = ?", id).Error
}

// HasRoleOnContainingCollection reports whether the caller holds one of the
// given roles on at least one collection containing the media item. Ownership
// counts as the owner role; membership rows count only when accepted.
func (r *Repository) HasRoleOnContainingCollection(ctx context.Context, mediaID, callerID uuid.UUID, roles ...enums.CollectionRole) (bool, error) {
	ownerCounts := false
	memberRoles := make([]enums.CollectionRole, 0, len(roles))
	for _, role := range roles {
		if role == enums.CollectionRoleOwner {
			ownerCounts = true
		}
		memberRoles = append(memberRoles, role)
	}

	query := r.db.WithContext(ctx).
		Model(&models.CollectionMedia{}).
		Joins("JOIN collections ON collections.id = collection_media.collection_id").
		Where("collection_media.media_id = ?", mediaID)

	membershipClause := `EXISTS (
		SELECT 1 FROM collection_memberships cm
		WHERE cm.collection_id = collections.id
		  AND cm.user_id = ?
		  AND cm.accepted
		  AND cm.role IN ?)`
	if ownerCounts {
		query = query.Where("(collections.owner_id = ? OR "+membershipClause+")", callerID, callerID, memberRoles)
	} else {
		query = query.Where(membershipClause, callerID, memberRoles)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
