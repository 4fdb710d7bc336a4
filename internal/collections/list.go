package collections

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/pagination"
	"github.com/reelist-app/reelist-backend/pkg/visibility"
)

// collectionSortColumns whitelists the sortable columns. Anything else falls
// back to created_at.
var collectionSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

// ListParams configures collection listing filters and traversal.
type ListParams struct {
	Tags       []string
	Query      string
	Pagination pagination.Params
}

// ListResult is the raw listing output before response shaping. Total and
// Pages stay zero in cursor mode; NextCursor stays empty in offset mode.
type ListResult struct {
	Items      []models.Collection
	Total      int64
	Pages      int
	NextCursor string
}

func collectionSort(sort string) string {
	if column, ok := collectionSortColumns[sort]; ok {
		return column
	}
	return "created_at"
}

// listQuery builds a fresh filtered+visible query. Built per use so count and
// fetch never share a mutated statement.
func (r *Repository) listQuery(ctx context.Context, callerID *uuid.UUID, params ListParams) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Scopes(visibility.CollectionReadable(callerID))

	if len(params.Tags) > 0 {
		query = query.Where("collections.tags && ?", pq.StringArray(params.Tags))
	}
	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("(collections.name ILIKE ? OR collections.description ILIKE ?)", like, like)
	}
	return query
}

// List runs the dual-mode listing. Offset mode counts under the same filter
// and computes page links upstream; cursor mode seeks strictly past the
// anchor row and probes one extra row to detect a next page.
func (r *Repository) List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListResult, error) {
	sortColumn := collectionSort(params.Pagination.Sort)
	order := pagination.NormalizeOrder(params.Pagination.Order)
	size := pagination.NormalizePageSize(params.Pagination.PageSize)
	orderExpr := fmt.Sprintf("collections.%s %s, collections.id ASC", sortColumn, order)

	if params.Pagination.CursorMode() {
		return r.listByCursor(ctx, callerID, params, sortColumn, order, size, orderExpr)
	}

	var total int64
	if err := r.listQuery(ctx, callerID, params).Count(&total).Error; err != nil {
		return nil, err
	}

	page := pagination.NormalizePage(params.Pagination.Page)
	var items []models.Collection
	err := r.listQuery(ctx, callerID, params).
		Order(orderExpr).
		Offset(pagination.Offset(page, size)).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items: items,
		Total: total,
		Pages: pagination.Pages(total, size),
	}, nil
}

func (r *Repository) listByCursor(ctx context.Context, callerID *uuid.UUID, params ListParams, sortColumn, order string, size int, orderExpr string) (*ListResult, error) {
	anchorID, err := pagination.ParseCursorID(params.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	// The anchor is resolved under the same visibility scope and filters as
	// the page itself, so a missing row and a row the caller may not see are
	// indistinguishable.
	var anchor models.Collection
	err = r.listQuery(ctx, callerID, params).
		Where("collections.id = ?", anchorID).
		First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cursor")
		}
		return nil, err
	}

	var anchorValue any
	switch sortColumn {
	case "updated_at":
		anchorValue = anchor.UpdatedAt
	case "name":
		anchorValue = anchor.Name
	default:
		anchorValue = anchor.CreatedAt
	}

	// Strictly-after predicate under (sort, id ASC) ordering.
	cmp := ">"
	if order == pagination.OrderDesc {
		cmp = "<"
	}
	seek := fmt.Sprintf("(collections.%s %s ? OR (collections.%s = ? AND collections.id > ?))",
		sortColumn, cmp, sortColumn)

	var items []models.Collection
	err = r.listQuery(ctx, callerID, params).
		Where(seek, anchorValue, anchorValue, anchorID).
		Order(orderExpr).
		Limit(pagination.LimitWithBuffer(size)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{}
	if len(items) > size {
		items = items[:size]
		result.NextCursor = items[len(items)-1].ID.String()
	}
	result.Items = items
	return result, nil
}
