package access

import (
	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
)

// Capability sets sufficient to authorize each class of action. Every
// mutation set names the owner explicitly; the evaluator performs exact set
// membership with no role hierarchy.
var (
	// Admin covers collection deletion, visibility changes, and membership
	// management.
	Admin = []enums.CollectionRole{enums.CollectionRoleOwner}
	// Curate covers metadata edits and media add/update/remove.
	Curate = []enums.CollectionRole{enums.CollectionRoleOwner, enums.CollectionRoleCollaborator}
	// Read covers any accepted role. Anonymous/public reads never reach the
	// evaluator; they are filtered by the visibility predicate instead.
	Read = []enums.CollectionRole{enums.CollectionRoleOwner, enums.CollectionRoleCollaborator, enums.CollectionRoleReader}
)

// Snapshot is the minimal authorization state loaded for one request.
type Snapshot struct {
	Exists     bool
	OwnerID    uuid.UUID
	CallerID   *uuid.UUID
	Membership *models.CollectionMembership
}

// Source tags where a caller's effective role comes from.
type Source int

const (
	SourceNone Source = iota
	SourceOwner
	SourceMember
)

// Grant is the caller's resolved access: a source plus the effective role.
// Resolved once per request so capability checks never re-derive the
// owner-versus-member branch.
type Grant struct {
	Source Source
	Role   enums.CollectionRole
}

// Resolve normalizes a snapshot into the caller's effective grant. Ownership
// derives from the collection's owner column; a redundant owner membership
// row is ignored. An unaccepted membership resolves to no grant at all.
func Resolve(snapshot Snapshot) Grant {
	if snapshot.CallerID == nil {
		return Grant{Source: SourceNone}
	}
	if snapshot.OwnerID == *snapshot.CallerID {
		return Grant{Source: SourceOwner, Role: enums.CollectionRoleOwner}
	}
	m := snapshot.Membership
	if m != nil && m.Accepted && m.UserID == *snapshot.CallerID {
		return Grant{Source: SourceMember, Role: m.Role}
	}
	return Grant{Source: SourceNone}
}

// Allows reports whether the grant's role is in the capability set.
func (g Grant) Allows(capabilities []enums.CollectionRole) bool {
	if g.Source == SourceNone {
		return false
	}
	for _, role := range capabilities {
		if role == g.Role {
			return true
		}
	}
	return false
}

// Evaluate decides whether the snapshot's caller holds one of the requested
// capabilities. Existence is checked before any role logic so a missing
// collection surfaces as not-found, never as a generic denial.
func Evaluate(snapshot Snapshot, capabilities ...enums.CollectionRole) error {
	if !snapshot.Exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
	}
	if snapshot.CallerID == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if Resolve(snapshot).Allows(capabilities) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient collection role")
}
