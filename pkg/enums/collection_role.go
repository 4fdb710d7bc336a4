package enums

import "fmt"

// CollectionRole represents a collection-level permissions role.
type CollectionRole string

const (
	CollectionRoleOwner        CollectionRole = "owner"
	CollectionRoleCollaborator CollectionRole = "collaborator"
	CollectionRoleReader       CollectionRole = "reader"
)

var validCollectionRoles = []CollectionRole{
	CollectionRoleOwner,
	CollectionRoleCollaborator,
	CollectionRoleReader,
}

// String implements fmt.Stringer.
func (r CollectionRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CollectionRole.
func (r CollectionRole) IsValid() bool {
	for _, candidate := range validCollectionRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCollectionRole converts raw input into a CollectionRole.
func ParseCollectionRole(value string) (CollectionRole, error) {
	for _, candidate := range validCollectionRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collection role %q", value)
}
