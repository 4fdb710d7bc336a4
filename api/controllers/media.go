package controllers

import (
	"net/http"

	"github.com/reelist-app/reelist-backend/api/middleware"
	"github.com/reelist-app/reelist-backend/api/responses"
	"github.com/reelist-app/reelist-backend/api/validators"
	"github.com/reelist-app/reelist-backend/internal/media"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

// MediaCreate registers a media item and links it into a collection. When no
// target collection is supplied the caller's default collection receives it.
func MediaCreate(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload media.CreateMediaInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), caller, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MediaGet returns a single media item the caller is allowed to see.
func MediaGet(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), middleware.CallerID(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// MediaList returns the media items visible to the caller.
func MediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paging, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := media.ListParams{
			Tags:       validators.ParseCSVFilter(r, "tags", "tag"),
			Platforms:  validators.ParseCSVFilter(r, "platforms", "platform"),
			Type:       validators.ParseMediaType(r),
			Query:      validators.ParseSearchQuery(r),
			Pagination: paging,
		}

		out, err := svc.List(r.Context(), middleware.CallerID(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeListing(w, r, out.Items, out.Total, out.Pages, out.NextCursor, paging)
	}
}

// MediaUpdate applies a partial update to a media item.
func MediaUpdate(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload media.UpdateMediaInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), caller, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// MediaDelete removes a media item everywhere it appears.
func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
