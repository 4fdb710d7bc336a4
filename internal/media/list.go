package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/pagination"
	"github.com/reelist-app/reelist-backend/pkg/visibility"
)

var mediaSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

// collectionMediaSortColumns maps sort keys to join-row columns; position is
// the user-defined ordering and the default.
var collectionMediaSortColumns = map[string]string{
	"position":   "position",
	"created_at": "created_at",
}

// ListParams configures global media listing filters and traversal.
type ListParams struct {
	Tags       []string
	Platforms  []string
	Type       string
	Query      string
	Pagination pagination.Params
}

// ListResult is the raw media listing output before response shaping.
type ListResult struct {
	Items      []models.Media
	Total      int64
	Pages      int
	NextCursor string
}

// CollectionListResult is the raw collection-media listing output.
type CollectionListResult struct {
	Items      []collectionMediaRow
	Total      int64
	Pages      int
	NextCursor string
}

type collectionMediaRow struct {
	models.Media
	LinkID   uuid.UUID `gorm:"column:link_id"`
	Position int       `gorm:"column:position"`
	AddedAt  time.Time `gorm:"column:added_at"`
}

func mediaSort(sort string) string {
	if column, ok := mediaSortColumns[sort]; ok {
		return column
	}
	return "created_at"
}

// listQuery builds a fresh filtered+visible media query.
func (r *Repository) listQuery(ctx context.Context, callerID *uuid.UUID, params ListParams) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Scopes(visibility.MediaReadable(callerID))

	if len(params.Tags) > 0 {
		query = query.Where("media.tags && ?", pq.StringArray(params.Tags))
	}
	if len(params.Platforms) > 0 {
		query = query.Where("media.platforms && ?", pq.StringArray(params.Platforms))
	}
	if params.Type != "" {
		query = query.Where("media.type = ?", params.Type)
	}
	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("(media.title ILIKE ? OR media.description ILIKE ?)", like, like)
	}
	return query
}

// List runs the dual-mode listing over all media visible to the caller.
func (r *Repository) List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListResult, error) {
	sortColumn := mediaSort(params.Pagination.Sort)
	order := pagination.NormalizeOrder(params.Pagination.Order)
	size := pagination.NormalizePageSize(params.Pagination.PageSize)
	orderExpr := fmt.Sprintf("media.%s %s, media.id ASC", sortColumn, order)

	if params.Pagination.CursorMode() {
		anchorID, err := pagination.ParseCursorID(params.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		// Anchor resolution shares the page's visibility scope and filters;
		// missing and invisible rows fail identically.
		var anchor models.Media
		err = r.listQuery(ctx, callerID, params).
			Where("media.id = ?", anchorID).
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
		case "title":
			anchorValue = anchor.Title
		default:
			anchorValue = anchor.CreatedAt
		}
		cmp := ">"
		if order == pagination.OrderDesc {
			cmp = "<"
		}
		seek := fmt.Sprintf("(media.%s %s ? OR (media.%s = ? AND media.id > ?))", sortColumn, cmp, sortColumn)

		var items []models.Media
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

	var total int64
	if err := r.listQuery(ctx, callerID, params).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Media
	err := r.listQuery(ctx, callerID, params).
		Order(orderExpr).
		Offset(pagination.Offset(params.Pagination.Page, size)).
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

// CollectionListParams configures listing the media inside one collection.
// The same tag/platform/type/q filters apply; sorting runs over the join
// row's position or added timestamp.
type CollectionListParams struct {
	CollectionID uuid.UUID
	Tags         []string
	Platforms    []string
	Type         string
	Query        string
	Pagination   pagination.Params
}

func (r *Repository) collectionListQuery(ctx context.Context, params CollectionListParams) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.CollectionMedia{}).
		Select("media.*, collection_media.id AS link_id, collection_media.position, collection_media.created_at AS added_at").
		Joins("JOIN media ON media.id = collection_media.media_id").
		Where("collection_media.collection_id = ?", params.CollectionID)

	if len(params.Tags) > 0 {
		query = query.Where("media.tags && ?", pq.StringArray(params.Tags))
	}
	if len(params.Platforms) > 0 {
		query = query.Where("media.platforms && ?", pq.StringArray(params.Platforms))
	}
	if params.Type != "" {
		query = query.Where("media.type = ?", params.Type)
	}
	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("(media.title ILIKE ? OR media.description ILIKE ?)", like, like)
	}
	return query
}

// ListForCollection pages through one collection's media. Visibility of the
// collection itself is the caller's responsibility; this only orders and
// filters the join. Default order is position ascending with id tie-break.
func (r *Repository) ListForCollection(ctx context.Context, params CollectionListParams) (*CollectionListResult, error) {
	sortColumn, ok := collectionMediaSortColumns[params.Pagination.Sort]
	if !ok {
		sortColumn = "position"
	}
	order := params.Pagination.Order
	if order == "" {
		order = pagination.OrderAsc
	}
	order = pagination.NormalizeOrder(order)
	size := pagination.NormalizePageSize(params.Pagination.PageSize)
	orderExpr := fmt.Sprintf("collection_media.%s %s, collection_media.id ASC", sortColumn, order)

	if params.Pagination.CursorMode() {
		anchorID, err := pagination.ParseCursorID(params.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		// The anchor link row is resolved under the same collection scope and
		// media filters as the page, so a link filtered out of the listing is
		// as unknown as one that never existed.
		var anchorRows []collectionMediaRow
		err = r.collectionListQuery(ctx, params).
			Where("collection_media.id = ?", anchorID).
			Limit(1).
			Scan(&anchorRows).Error
		if err != nil {
			return nil, err
		}
		if len(anchorRows) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cursor")
		}
		anchor := anchorRows[0]

		var anchorValue any
		if sortColumn == "created_at" {
			anchorValue = anchor.AddedAt
		} else {
			anchorValue = anchor.Position
		}
		cmp := ">"
		if order == pagination.OrderDesc {
			cmp = "<"
		}
		seek := fmt.Sprintf("(collection_media.%s %s ? OR (collection_media.%s = ? AND collection_media.id > ?))",
			sortColumn, cmp, sortColumn)

		var rows []collectionMediaRow
		err = r.collectionListQuery(ctx, params).
			Where(seek, anchorValue, anchorValue, anchorID).
			Order(orderExpr).
			Limit(pagination.LimitWithBuffer(size)).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		result := &CollectionListResult{}
		if len(rows) > size {
			rows = rows[:size]
			result.NextCursor = rows[len(rows)-1].LinkID.String()
		}
		result.Items = rows
		return result, nil
	}

	var total int64
	if err := r.collectionListQuery(ctx, params).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []collectionMediaRow
	err := r.collectionListQuery(ctx, params).
		Order(orderExpr).
		Offset(pagination.Offset(params.Pagination.Page, size)).
		Limit(size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &CollectionListResult{
		Items: rows,
		Total: total,
		Pages: pagination.Pages(total, size),
	}, nil
}
