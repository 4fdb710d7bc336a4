package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// MediaDTO is the transport shape for a media item.
type MediaDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	Type        enums.MediaType `json:"type"`
	Tags        []string        `json:"tags"`
	Platforms   []string        `json:"platforms"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CollectionMediaDTO is a media item as it appears inside a collection,
// carrying the join row's position and added timestamp.
type CollectionMediaDTO struct {
	LinkID   uuid.UUID `json:"link_id"`
	Position int       `json:"position"`
	AddedAt  time.Time `json:"added_at"`
	Media    MediaDTO  `json:"media"`
}

// CreateMediaInput captures the fields accepted at media creation. When
// CollectionID is nil the item lands in the caller's default collection.
type CreateMediaInput struct {
	Title        string          `json:"title" validate:"required,max=300"`
	Description  *string         `json:"description"`
	Notes        *string         `json:"notes"`
	Type         enums.MediaType `json:"type"`
	Tags         []string        `json:"tags"`
	Platforms    []string        `json:"platforms"`
	CollectionID *uuid.UUID      `json:"collection_id"`
	Position     int             `json:"position"`
}

// UpdateMediaInput carries a partial media update; nil fields are untouched.
type UpdateMediaInput struct {
	Title       *string          `json:"title" validate:"omitempty,max=300"`
	Description *string          `json:"description"`
	Notes       *string          `json:"notes"`
	Type        *enums.MediaType `json:"type"`
	Tags        *[]string        `json:"tags"`
	Platforms   *[]string        `json:"platforms"`
}

// Empty reports whether the update carries no field at all.
func (in UpdateMediaInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Notes == nil &&
		in.Type == nil && in.Tags == nil && in.Platforms == nil
}

// AddToCollectionInput links an existing media item into a collection.
type AddToCollectionInput struct {
	MediaID  uuid.UUID `json:"media_id" validate:"required"`
	Position int       `json:"position"`
}

// UpdateLinkInput changes the position of a media item within a collection.
type UpdateLinkInput struct {
	Position int `json:"position"`
}

func toMediaDTO(m *models.Media) MediaDTO {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	platforms := []string(m.Platforms)
	if platforms == nil {
		platforms = []string{}
	}
	return MediaDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Notes:       m.Notes,
		Type:        m.Type,
		Tags:        tags,
		Platforms:   platforms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
