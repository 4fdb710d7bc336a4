package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePagination reads the shared list parameters. A cursor, when present,
// takes over traversal and the page number is ignored downstream.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	size, err := ParseQueryInt(r, "pageSize", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Page:     page,
		PageSize: size,
		Sort:     strings.TrimSpace(r.URL.Query().Get("sort")),
		Order:    strings.TrimSpace(r.URL.Query().Get("order")),
		Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// ParseCSVFilter reads a comma separated filter list. The plural parameter
// wins when both forms are supplied; entries are trimmed and empties dropped.
func ParseCSVFilter(r *http.Request, plural, singular string) []string {
	raw := r.URL.Query().Get(plural)
	if strings.TrimSpace(raw) == "" {
		raw = r.URL.Query().Get(singular)
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// ParseSearchQuery returns the trimmed free text search term, if any.
func ParseSearchQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("q"))
}

// ParseUUIDParam reads a chi route parameter and validates it as a UUID.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "route parameter must be a valid uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseMediaType returns the trimmed media type filter, if any. Validation of
// the value itself happens in the listing layer.
func ParseMediaType(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("type"))
}
