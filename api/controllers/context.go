package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/api/middleware"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
)

// requireCaller resolves the authenticated caller from the request context.
// Routes behind the auth middleware always have one; a missing id here means
// the handler was wired onto the wrong chain.
func requireCaller(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}
