package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID           uuid.UUID            `json:"id"`
	CollectionID uuid.UUID            `json:"collection_id"`
	UserID       uuid.UUID            `json:"user_id"`
	Role         enums.CollectionRole `json:"role"`
	Accepted     bool                 `json:"accepted"`
	InvitedAt    time.Time            `json:"invited_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// MemberDTO includes basic user metadata alongside the membership columns.
// Returned by the member listing so clients can render names without a
// second lookup.
type MemberDTO struct {
	MembershipID uuid.UUID            `json:"membership_id"`
	UserID       uuid.UUID            `json:"user_id"`
	Email        string               `json:"email"`
	DisplayName  string               `json:"display_name"`
	Role         enums.CollectionRole `json:"role"`
	Accepted     bool                 `json:"accepted"`
	InvitedAt    time.Time            `json:"invited_at"`
}

// InvitationDTO is a pending invite from the invitee's point of view, joined
// with the collection it targets.
type InvitationDTO struct {
	MembershipID   uuid.UUID            `json:"membership_id"`
	CollectionID   uuid.UUID            `json:"collection_id"`
	CollectionName string               `json:"collection_name"`
	OwnerID        uuid.UUID            `json:"owner_id"`
	Role           enums.CollectionRole `json:"role"`
	InvitedAt      time.Time            `json:"invited_at"`
}

// InviteInput is the payload for creating an invitation.
type InviteInput struct {
	UserID uuid.UUID            `json:"user_id" validate:"required"`
	Role   enums.CollectionRole `json:"role"`
}

// RespondInput carries the invitee's decision.
type RespondInput struct {
	Accept bool `json:"accept"`
}

// UpdateRoleInput changes an existing member's role.
type UpdateRoleInput struct {
	Role enums.CollectionRole `json:"role" validate:"required"`
}
