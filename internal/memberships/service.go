package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/internal/access"
	"github.com/reelist-app/reelist-backend/pkg/db"
	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
)

type membershipRepository interface {
	Get(ctx context.Context, collectionID, userID uuid.UUID) (*models.CollectionMembership, error)
	Create(ctx context.Context, membership *models.CollectionMembership) error
	SetAccepted(ctx context.Context, id uuid.UUID, accepted bool) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.CollectionRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListMembers(ctx context.Context, collectionID uuid.UUID) ([]MemberDTO, error)
	ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]InvitationDTO, error)
}

type accessResolver interface {
	AccessSnapshot(ctx context.Context, collectionID uuid.UUID, callerID *uuid.UUID) (access.Snapshot, *models.Collection, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes the membership and invitation operations.
type Service interface {
	Invite(ctx context.Context, callerID, collectionID uuid.UUID, input InviteInput) (*MembershipDTO, error)
	Respond(ctx context.Context, callerID, collectionID uuid.UUID, input RespondInput) (*MembershipDTO, error)
	UpdateRole(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID, input UpdateRoleInput) (*MembershipDTO, error)
	Remove(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID) error
	ListMembers(ctx context.Context, callerID, collectionID uuid.UUID) ([]MemberDTO, error)
	ListInvitations(ctx context.Context, callerID uuid.UUID) ([]InvitationDTO, error)
}

type service struct {
	repo        membershipRepository
	collections accessResolver
	users       userFinder
}

// NewService builds a membership service with the provided dependencies.
func NewService(repo membershipRepository, collections accessResolver, users userFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("membership repository required")
	}
	if collections == nil {
		return nil, fmt.Errorf("collections repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, collections: collections, users: users}, nil
}

// Invite creates an unaccepted membership row for the target user. Only the
// collection owner may invite; any existing row for the pair, accepted or
// not, is a conflict and the owner must remove it before re-inviting.
func (s *service) Invite(ctx context.Context, callerID, collectionID uuid.UUID, input InviteInput) (*MembershipDTO, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Admin...); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = enums.CollectionRoleReader
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid collection role")
	}

	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invited user")
	}

	membership := &models.CollectionMembership{
		CollectionID: collectionID,
		UserID:       input.UserID,
		Role:         role,
		Accepted:     false,
	}
	if err := s.repo.Create(ctx, membership); err != nil {
		if db.IsUniqueViolation(err, "collection_memberships_collection_user_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already invited to this collection")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
	}

	dto := toMembershipDTO(membership)
	return &dto, nil
}

// Respond records the invitee's decision. It addresses the membership row
// directly rather than going through the visibility predicate, since a
// private collection stays invisible to the invitee until they accept.
// Accepting is terminal; a second response once accepted is a conflict.
// Rejecting deletes the row so a later re-invite succeeds.
func (s *service) Respond(ctx context.Context, callerID, collectionID uuid.UUID, input RespondInput) (*MembershipDTO, error) {
	membership, err := s.repo.Get(ctx, collectionID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invitation")
	}
	if membership.Accepted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "invitation already accepted")
	}

	if !input.Accept {
		if err := s.repo.Delete(ctx, membership.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete invitation")
		}
		return nil, nil
	}

	if err := s.repo.SetAccepted(ctx, membership.ID, true); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accept invitation")
	}
	membership.Accepted = true
	dto := toMembershipDTO(membership)
	return &dto, nil
}

// UpdateRole changes a member's role. Owner only, and it applies to pending
// invitations as well as accepted rows.
func (s *service) UpdateRole(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID, input UpdateRoleInput) (*MembershipDTO, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Admin...); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid collection role")
	}

	membership, err := s.repo.Get(ctx, collectionID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
	}

	if err := s.repo.UpdateRole(ctx, membership.ID, input.Role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update membership role")
	}
	membership.Role = input.Role
	dto := toMembershipDTO(membership)
	return &dto, nil
}

// Remove revokes a membership or pending invitation. Owner only.
func (s *service) Remove(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID) error {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Admin...); err != nil {
		return err
	}

	membership, err := s.repo.Get(ctx, collectionID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
	}

	if err := s.repo.Delete(ctx, membership.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove membership")
	}
	return nil
}

// ListMembers returns the collection's roster. Requires an accepted role or
// ownership; a public collection does not expose its member list to
// arbitrary readers.
func (s *service) ListMembers(ctx context.Context, callerID, collectionID uuid.UUID) ([]MemberDTO, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Read...); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, collectionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
	}
	return members, nil
}

// ListInvitations returns the caller's pending invitations, newest first.
func (s *service) ListInvitations(ctx context.Context, callerID uuid.UUID) ([]InvitationDTO, error) {
	invitations, err := s.repo.ListPendingForUser(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invitations")
	}
	return invitations, nil
}
