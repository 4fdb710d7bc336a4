package controllers

import (
	"net/http"

	"github.com/reelist-app/reelist-backend/api/responses"
	"github.com/reelist-app/reelist-backend/api/validators"
	"github.com/reelist-app/reelist-backend/internal/memberships"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

// InvitationList returns the caller's pending invitations, newest first.
func InvitationList(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitations, err := svc.ListInvitations(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invitations)
	}
}

// InvitationRespond accepts or rejects a pending invitation. A rejection
// removes the invitation; the response body is empty in that case.
func InvitationRespond(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		collectionID, err := validators.ParseUUIDParam(r, "collectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload memberships.RespondInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Respond(r.Context(), caller, collectionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if dto == nil {
			responses.WriteSuccess(w, map[string]string{"status": "rejected"})
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
