package controllers

import (
	"net/http"

	"github.com/reelist-app/reelist-backend/api/responses"
	"github.com/reelist-app/reelist-backend/pkg/pagination"
)

// writeListing renders a list response in whichever traversal mode the
// request selected. Offset pages carry totals and prev/next links; cursor
// pages carry only the follow-up cursor.
func writeListing(w http.ResponseWriter, r *http.Request, items any, total int64, pages int, nextCursor string, params pagination.Params) {
	builder := pagination.NewLinkBuilder(r.URL.Path, r.URL.Query())

	if params.CursorMode() {
		responses.WriteList(w, items, responses.ListPage{
			PageSize: pagination.NormalizePageSize(params.PageSize),
			Links:    builder.CursorLinks(nextCursor),
			Cursor:   nextCursor,
		})
		return
	}

	page := pagination.NormalizePage(params.Page)
	responses.WriteList(w, items, responses.ListPage{
		Page:     page,
		PageSize: pagination.NormalizePageSize(params.PageSize),
		Total:    total,
		Pages:    pages,
		Links:    builder.OffsetLinks(page, pages),
	})
}
