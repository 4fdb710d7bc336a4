package enums

import "fmt"

// CollectionVisibility controls who may read a collection.
type CollectionVisibility string

const (
	CollectionVisibilityPublic  CollectionVisibility = "public"
	CollectionVisibilityPrivate CollectionVisibility = "private"
)

var validCollectionVisibilities = []CollectionVisibility{
	CollectionVisibilityPublic,
	CollectionVisibilityPrivate,
}

// String implements fmt.Stringer.
func (v CollectionVisibility) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CollectionVisibility.
func (v CollectionVisibility) IsValid() bool {
	for _, candidate := range validCollectionVisibilities {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCollectionVisibility converts raw input into a CollectionVisibility.
func ParseCollectionVisibility(value string) (CollectionVisibility, error) {
	for _, candidate := range validCollectionVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collection visibility %q", value)
}
