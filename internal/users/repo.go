package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reelist-app/reelist-backend/pkg/auth"
	"github.com/reelist-app/reelist-backend/pkg/db/models"
)

// Repository exposes the read-mostly user surface. Accounts are owned by the
// external identity provider; rows exist here so membership and ownership
// columns have a referential target.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureFromClaims upserts the identity-provider view of an account so later
// foreign keys resolve. Display fields refresh on conflict; nothing else is
// ever written to users from this service. The handle falls back to the
// email local part because the provider does not mint one.
func (r *Repository) EnsureFromClaims(ctx context.Context, claims *auth.AccessTokenClaims) error {
	if claims == nil {
		return errors.New("nil access token claims")
	}
	handle := claims.Email
	if at := strings.IndexByte(handle, '@'); at > 0 {
		handle = handle[:at]
	}
	user := models.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Handle:      handle,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name"}),
		}).
		Create(&user).Error
}
