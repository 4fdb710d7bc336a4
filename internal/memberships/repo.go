package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the membership row for one user in one collection.
func (r *Repository) Get(ctx context.Context, collectionID, userID uuid.UUID) (*models.CollectionMembership, error) {
	var membership models.CollectionMembership
	err := r.db.WithContext(ctx).
		Where("collection_id = ? AND user_id = ?", collectionID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Create inserts an invitation row. The unique constraint over
// (collection_id, user_id) rejects duplicates regardless of acceptance state.
func (r *Repository) Create(ctx context.Context, membership *models.CollectionMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

// SetAccepted flips the acceptance flag on a membership row.
func (r *Repository) SetAccepted(ctx context.Context, id uuid.UUID, accepted bool) error {
	return r.db.WithContext(ctx).
		Model(&models.CollectionMembership{}).
		Where("id = ?", id).
		Update("accepted", accepted).Error
}

// UpdateRole changes the role on a membership row.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.CollectionRole) error {
	return r.db.WithContext(ctx).
		Model(&models.CollectionMembership{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// Delete removes a membership row. Used both for rejection and for owner
// removal; the two are indistinguishable at the storage layer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CollectionMembership{}, "id = ?", id).Error
}

// ListMembers returns every membership of a collection joined with user
// metadata, accepted rows first, then newest invitations.
func (r *Repository) ListMembers(ctx context.Context, collectionID uuid.UUID) ([]MemberDTO, error) {
	var rows []MemberDTO
	err := r.db.WithContext(ctx).
		Model(&models.CollectionMembership{}).
		Select(`collection_memberships.id AS membership_id,
			collection_memberships.user_id,
			users.email,
			users.display_name,
			collection_memberships.role,
			collection_memberships.accepted,
			collection_memberships.created_at AS invited_at`).
		Joins("JOIN users ON users.id = collection_memberships.user_id").
		Where("collection_memberships.collection_id = ?", collectionID).
		Order("collection_memberships.accepted DESC, collection_memberships.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingForUser returns the caller's unanswered invitations joined with
// the target collection, newest first.
func (r *Repository) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]InvitationDTO, error) {
	var rows []InvitationDTO
	err := r.db.WithContext(ctx).
		Model(&models.CollectionMembership{}).
		Select(`collection_memberships.id AS membership_id,
			collection_memberships.collection_id,
			collections.name AS collection_name,
			collections.owner_id,
			collection_memberships.role,
			collection_memberships.created_at AS invited_at`).
		Joins("JOIN collections ON collections.id = collection_memberships.collection_id").
		Where("collection_memberships.user_id = ? AND NOT collection_memberships.accepted", userID).
		Order("collection_memberships.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
