package collections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reelist-app/reelist-backend/internal/access"
	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	"github.com/reelist-app/reelist-backend/pkg/visibility"
)

// DefaultCollectionName is the auto-provisioned private collection that
// receives media created without an explicit target.
const DefaultCollectionName = "Default"

// Repository encapsulates collection persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new collection row.
func (r *Repository) Create(ctx context.Context, collection *models.Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

// FindByID loads a collection regardless of visibility. Callers that act on
// behalf of a user should prefer FindVisibleByID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindVisibleByID loads a collection through the read predicate. An existing
// but invisible row comes back as gorm.ErrRecordNotFound so callers cannot
// distinguish the two cases.
func (r *Repository) FindVisibleByID(ctx context.Context, id uuid.UUID, callerID *uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Scopes(visibility.CollectionReadable(callerID)).
		First(&collection, "collections.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// AccessSnapshot assembles the authorization state for one request: whether
// the collection exists-and-is-visible to the caller, who owns it, and the
// caller's membership row if any. Resolved once, then handed to the policy
// evaluator.
func (r *Repository) AccessSnapshot(ctx context.Context, collectionID uuid.UUID, callerID *uuid.UUID) (access.Snapshot, *models.Collection, error) {
	collection, err := r.FindVisibleByID(ctx, collectionID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Snapshot{Exists: false, CallerID: callerID}, nil, nil
		}
		return access.Snapshot{}, nil, err
	}

	snapshot := access.Snapshot{
		Exists:   true,
		OwnerID:  collection.OwnerID,
		CallerID: callerID,
	}

	if callerID != nil && *callerID != collection.OwnerID {
		var membership models.CollectionMembership
		err := r.db.WithContext(ctx).
			Where("collection_id = ? AND user_id = ?", collectionID, *callerID).
			First(&membership).Error
		switch {
		case err == nil:
			snapshot.Membership = &membership
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no row, no grant
		default:
			return access.Snapshot{}, nil, err
		}
	}

	return snapshot, collection, nil
}

// Update applies the provided column set and reloads the row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", id).
		Updates(columns).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes the collection row. Join rows go with it through the
// storage-level cascade; nothing is deleted here beyond the parent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Collection{}, "id = ?", id).Error
}

// GetOrCreateDefault returns the owner's default collection, creating it when
// absent. The insert relies on the partial unique index over
// (owner_id) WHERE is_default, so two concurrent first-time callers converge
// on a single row instead of racing a check-then-insert.
func (r *Repository) GetOrCreateDefault(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*models.Collection, error) {
	if tx == nil {
		tx = r.db
	}
	conn := tx.WithContext(ctx)

	candidate := models.Collection{
		Name:       DefaultCollectionName,
		Visibility: enums.CollectionVisibilityPrivate,
		OwnerID:    ownerID,
		IsDefault:  true,
	}
	err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error
	if err != nil {
		return nil, err
	}

	var collection models.Collection
	if err := conn.
		Where("owner_id = ? AND is_default", ownerID).
		First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}
