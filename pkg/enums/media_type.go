package enums

import "fmt"

// MediaType classifies a watch-list entry.
type MediaType string

const (
	MediaTypeMovie       MediaType = "movie"
	MediaTypeSeries      MediaType = "series"
	MediaTypeAnime       MediaType = "anime"
	MediaTypeDocumentary MediaType = "documentary"
	MediaTypeOther       MediaType = "other"
)

var validMediaTypes = []MediaType{
	MediaTypeMovie,
	MediaTypeSeries,
	MediaTypeAnime,
	MediaTypeDocumentary,
	MediaTypeOther,
}

// String returns the literal string for the type.
func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the type is known.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}
