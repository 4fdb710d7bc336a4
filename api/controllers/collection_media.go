package controllers

import (
	"net/http"

	"github.com/reelist-app/reelist-backend/api/middleware"
	"github.com/reelist-app/reelist-backend/api/responses"
	"github.com/reelist-app/reelist-backend/api/validators"
	"github.com/reelist-app/reelist-backend/internal/media"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

// CollectionMediaAdd links an existing media item into a collection.
func CollectionMediaAdd(svc media.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload media.AddToCollectionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AddToCollection(r.Context(), caller, collectionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// CollectionMediaList returns the media inside a collection, ordered by
// position unless the request asks otherwise.
func CollectionMediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collectionID, err := validators.ParseUUIDParam(r, "collectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paging, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := media.CollectionListParams{
			CollectionID: collectionID,
			Tags:         validators.ParseCSVFilter(r, "tags", "tag"),
			Platforms:    validators.ParseCSVFilter(r, "platforms", "platform"),
			Type:         validators.ParseMediaType(r),
			Query:        validators.ParseSearchQuery(r),
			Pagination:   paging,
		}

		out, err := svc.ListCollection(r.Context(), middleware.CallerID(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeListing(w, r, out.Items, out.Total, out.Pages, out.NextCursor, paging)
	}
}

// CollectionMediaUpdate adjusts a media item's placement within a collection.
func CollectionMediaUpdate(svc media.Service, logg *logger.Logger) http.HandlerFunc {
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
		mediaID, err := validators.ParseUUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload media.UpdateLinkInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateLink(r.Context(), caller, collectionID, mediaID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CollectionMediaRemove unlinks a media item from a collection. The media
// itself survives in any other collection that carries it.
func CollectionMediaRemove(svc media.Service, logg *logger.Logger) http.HandlerFunc {
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
		mediaID, err := validators.ParseUUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFromCollection(r.Context(), caller, collectionID, mediaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
