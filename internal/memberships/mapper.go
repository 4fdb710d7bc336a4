package memberships

import (
	"github.com/reelist-app/reelist-backend/pkg/db/models"
)

func toMembershipDTO(m *models.CollectionMembership) MembershipDTO {
	return MembershipDTO{
		ID:           m.ID,
		CollectionID: m.CollectionID,
		UserID:       m.UserID,
		Role:         m.Role,
		Accepted:     m.Accepted,
		InvitedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
