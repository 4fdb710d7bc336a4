package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/internal/access"
	"github.com/reelist-app/reelist-backend/pkg/db"
	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"

	"github.com/lib/pq"
)

type mediaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.Media) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	FindVisibleByID(ctx context.Context, id uuid.UUID, callerID *uuid.UUID) (*models.Media, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Link(ctx context.Context, tx *gorm.DB, link *models.CollectionMedia) error
	GetLink(ctx context.Context, collectionID, mediaID uuid.UUID) (*models.CollectionMedia, error)
	UpdateLinkPosition(ctx context.Context, id uuid.UUID, position int) error
	DeleteLink(ctx context.Context, id uuid.UUID) error
	HasRoleOnContainingCollection(ctx context.Context, mediaID, callerID uuid.UUID, roles ...enums.CollectionRole) (bool, error)
	List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListResult, error)
	ListForCollection(ctx context.Context, params CollectionListParams) (*CollectionListResult, error)
}

type collectionAccess interface {
	AccessSnapshot(ctx context.Context, collectionID uuid.UUID, callerID *uuid.UUID) (access.Snapshot, *models.Collection, error)
	GetOrCreateDefault(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*models.Collection, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes media operations and the collection-media orchestration.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateMediaInput) (*MediaDTO, error)
	Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*MediaDTO, error)
	List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListOutput, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateMediaInput) (*MediaDTO, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error

	AddToCollection(ctx context.Context, callerID, collectionID uuid.UUID, input AddToCollectionInput) (*CollectionMediaDTO, error)
	ListCollection(ctx context.Context, callerID *uuid.UUID, params CollectionListParams) (*CollectionListOutput, error)
	UpdateLink(ctx context.Context, callerID, collectionID, mediaID uuid.UUID, input UpdateLinkInput) (*CollectionMediaDTO, error)
	RemoveFromCollection(ctx context.Context, callerID, collectionID, mediaID uuid.UUID) error
}

// ListOutput is the shaped media listing handed to the response layer.
type ListOutput struct {
	Items      []MediaDTO
	Total      int64
	Pages      int
	NextCursor string
}

// CollectionListOutput is the shaped collection-media listing.
type CollectionListOutput struct {
	Items      []CollectionMediaDTO
	Total      int64
	Pages      int
	NextCursor string
}

type service struct {
	repo        mediaRepository
	collections collectionAccess
	tx          txRunner
}

// NewService builds a media service with the provided dependencies.
func NewService(repo mediaRepository, collections collectionAccess, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if collections == nil {
		return nil, fmt.Errorf("collections repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, collections: collections, tx: tx}, nil
}

// Create persists a media item and its first collection link atomically.
// Without an explicit target the item lands in the caller's private default
// collection, provisioned inside the same transaction.
func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateMediaInput) (*MediaDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media title required")
	}

	mediaType := input.Type
	if mediaType == "" {
		mediaType = enums.MediaTypeOther
	}
	if !mediaType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type")
	}

	if input.CollectionID != nil {
		snapshot, _, err := s.collections.AccessSnapshot(ctx, *input.CollectionID, &callerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
		}
		if err := access.Evaluate(snapshot, access.Curate...); err != nil {
			return nil, err
		}
	}

	item := &models.Media{
		Title:       title,
		Description: input.Description,
		Notes:       input.Notes,
		Type:        mediaType,
		Tags:        pq.StringArray(input.Tags),
		Platforms:   pq.StringArray(input.Platforms),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return fmt.Errorf("create media: %w", err)
		}

		targetID := uuid.Nil
		if input.CollectionID != nil {
			targetID = *input.CollectionID
		} else {
			defaultCollection, err := s.collections.GetOrCreateDefault(ctx, tx, callerID)
			if err != nil {
				return fmt.Errorf("default collection: %w", err)
			}
			targetID = defaultCollection.ID
		}

		link := &models.CollectionMedia{
			CollectionID: targetID,
			MediaID:      item.ID,
			Position:     input.Position,
		}
		if err := s.repo.Link(ctx, tx, link); err != nil {
			return fmt.Errorf("link media: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create media")
	}

	dto := toMediaDTO(item)
	return &dto, nil
}

// Get fetches one media item through the transitive visibility predicate.
func (s *service) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*MediaDTO, error) {
	item, err := s.repo.FindVisibleByID(ctx, id, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}

	dto := toMediaDTO(item)
	return &dto, nil
}

// List returns the media visible to the caller under the requested filters.
func (s *service) List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListOutput, error) {
	result, err := s.repo.List(ctx, callerID, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list media")
	}

	items := make([]MediaDTO, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toMediaDTO(&result.Items[i]))
	}
	return &ListOutput{
		Items:      items,
		Total:      result.Total,
		Pages:      result.Pages,
		NextCursor: result.NextCursor,
	}, nil
}

// Update applies a partial edit to a media item. The caller needs a curating
// role on at least one collection containing it; an item the caller cannot
// even see reports not found.
func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateMediaInput) (*MediaDTO, error) {
	if input.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty update payload")
	}

	if _, err := s.repo.FindVisibleByID(ctx, id, &callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}

	allowed, err := s.repo.HasRoleOnContainingCollection(ctx, id, callerID, access.Curate...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check media access")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient collection role")
	}

	columns := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "media title required")
		}
		columns["title"] = title
	}
	if input.Description != nil {
		columns["description"] = *input.Description
	}
	if input.Notes != nil {
		columns["notes"] = *input.Notes
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type")
		}
		columns["type"] = *input.Type
	}
	if input.Tags != nil {
		columns["tags"] = pq.StringArray(*input.Tags)
	}
	if input.Platforms != nil {
		columns["platforms"] = pq.StringArray(*input.Platforms)
	}

	item, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update media")
	}

	dto := toMediaDTO(item)
	return &dto, nil
}

// Delete removes a media item entirely. Reserved for the owner of at least
// one collection containing it.
func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.repo.FindVisibleByID(ctx, id, &callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}

	allowed, err := s.repo.HasRoleOnContainingCollection(ctx, id, callerID, access.Admin...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check media access")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient collection role")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete media")
	}
	return nil
}

// AddToCollection links an existing media item into a collection. Concurrent
// duplicate adds are resolved by the storage constraint; the loser gets a
// clean conflict.
func (s *service) AddToCollection(ctx context.Context, callerID, collectionID uuid.UUID, input AddToCollectionInput) (*CollectionMediaDTO, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Curate...); err != nil {
		return nil, err
	}

	item, err := s.repo.FindVisibleByID(ctx, input.MediaID, &callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}

	link := &models.CollectionMedia{
		CollectionID: collectionID,
		MediaID:      item.ID,
		Position:     input.Position,
	}
	if err := s.repo.Link(ctx, nil, link); err != nil {
		if db.IsUniqueViolation(err, "collection_media_collection_media_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "media already in collection")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link media")
	}

	dto := toCollectionMediaDTO(link, item)
	return &dto, nil
}

// ListCollection pages through a collection's media. Works for anonymous
// callers on public collections; an invisible collection reports not found.
func (s *service) ListCollection(ctx context.Context, callerID *uuid.UUID, params CollectionListParams) (*CollectionListOutput, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, params.CollectionID, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if !snapshot.Exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
	}

	result, err := s.repo.ListForCollection(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collection media")
	}

	items := make([]CollectionMediaDTO, 0, len(result.Items))
	for i := range result.Items {
		row := &result.Items[i]
		items = append(items, CollectionMediaDTO{
			LinkID:   row.LinkID,
			Position: row.Position,
			AddedAt:  row.AddedAt,
			Media:    toMediaDTO(&row.Media),
		})
	}
	return &CollectionListOutput{
		Items:      items,
		Total:      result.Total,
		Pages:      result.Pages,
		NextCursor: result.NextCursor,
	}, nil
}

// UpdateLink repositions a media item within a collection's ordering.
func (s *service) UpdateLink(ctx context.Context, callerID, collectionID, mediaID uuid.UUID, input UpdateLinkInput) (*CollectionMediaDTO, error) {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Curate...); err != nil {
		return nil, err
	}

	link, err := s.repo.GetLink(ctx, collectionID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not in collection")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection media")
	}

	if err := s.repo.UpdateLinkPosition(ctx, link.ID, input.Position); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection media")
	}
	link.Position = input.Position

	item, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}

	dto := toCollectionMediaDTO(link, item)
	return &dto, nil
}

// RemoveFromCollection unlinks a media item. The item itself survives and
// remains reachable through any other collection containing it.
func (s *service) RemoveFromCollection(ctx context.Context, callerID, collectionID, mediaID uuid.UUID) error {
	snapshot, _, err := s.collections.AccessSnapshot(ctx, collectionID, &callerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Curate...); err != nil {
		return err
	}

	link, err := s.repo.GetLink(ctx, collectionID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not in collection")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection media")
	}

	if err := s.repo.DeleteLink(ctx, link.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove collection media")
	}
	return nil
}

func toCollectionMediaDTO(link *models.CollectionMedia, item *models.Media) CollectionMediaDTO {
	return CollectionMediaDTO{
		LinkID:   link.ID,
		Position: link.Position,
		AddedAt:  link.CreatedAt,
		Media:    toMediaDTO(item),
	}
}
