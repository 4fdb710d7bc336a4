package collections

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// CollectionDTO is the transport shape for a collection.
type CollectionDTO struct {
	ID          uuid.UUID                  `json:"id"`
	Name        string                     `json:"name"`
	Description *string                    `json:"description,omitempty"`
	Tags        []string                   `json:"tags"`
	Visibility  enums.CollectionVisibility `json:"visibility"`
	OwnerID     uuid.UUID                  `json:"owner_id"`
	IsDefault   bool                       `json:"is_default"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// CreateCollectionInput captures the fields accepted at creation. Visibility
// defaults to private when omitted.
type CreateCollectionInput struct {
	Name        string                     `json:"name" validate:"required,max=200"`
	Description *string                    `json:"description"`
	Tags        []string                   `json:"tags"`
	Visibility  enums.CollectionVisibility `json:"visibility"`
}

// UpdateCollectionInput carries a partial update; nil fields are untouched.
// An input with every field nil is rejected as an empty payload.
type UpdateCollectionInput struct {
	Name        *string                     `json:"name" validate:"omitempty,max=200"`
	Description *string                     `json:"description"`
	Tags        *[]string                   `json:"tags"`
	Visibility  *enums.CollectionVisibility `json:"visibility"`
}

// Empty reports whether the update carries no field at all.
func (in UpdateCollectionInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.Tags == nil && in.Visibility == nil
}

func toCollectionDTO(c *models.Collection) CollectionDTO {
	tags := []string(c.Tags)
	if tags == nil {
		tags = []string{}
	}
	return CollectionDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Tags:        tags,
		Visibility:  c.Visibility,
		OwnerID:     c.OwnerID,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
