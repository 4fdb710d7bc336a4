package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/internal/access"
	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
)

type collectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	FindVisibleByID(ctx context.Context, id uuid.UUID, callerID *uuid.UUID) (*models.Collection, error)
	AccessSnapshot(ctx context.Context, collectionID uuid.UUID, callerID *uuid.UUID) (access.Snapshot, *models.Collection, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListResult, error)
}

// Service exposes collection operations.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateCollectionInput) (*CollectionDTO, error)
	Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*CollectionDTO, error)
	List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListOutput, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

// ListOutput is the shaped listing result handed to the response layer.
type ListOutput struct {
	Items      []CollectionDTO
	Total      int64
	Pages      int
	NextCursor string
}

type service struct {
	repo collectionRepository
}

// NewService builds a collection service with the provided repository.
func NewService(repo collectionRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("collection repository required")
	}
	return &service{repo: repo}, nil
}

// Create persists a collection owned by the caller. Visibility defaults to
// private when omitted.
func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateCollectionInput) (*CollectionDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection name required")
	}

	visibilityValue := input.Visibility
	if visibilityValue == "" {
		visibilityValue = enums.CollectionVisibilityPrivate
	}
	if !visibilityValue.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility")
	}

	collection := &models.Collection{
		Name:        name,
		Description: input.Description,
		Tags:        pq.StringArray(input.Tags),
		Visibility:  visibilityValue,
		OwnerID:     callerID,
	}
	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create collection")
	}

	dto := toCollectionDTO(collection)
	return &dto, nil
}

// Get fetches one collection through the visibility predicate. An existing
// but invisible collection is reported as not found.
func (s *service) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*CollectionDTO, error) {
	collection, err := s.repo.FindVisibleByID(ctx, id, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection")
	}

	dto := toCollectionDTO(collection)
	return &dto, nil
}

// List returns the collections visible to the caller under the requested
// filters and traversal mode.
func (s *service) List(ctx context.Context, callerID *uuid.UUID, params ListParams) (*ListOutput, error) {
	result, err := s.repo.List(ctx, callerID, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collections")
	}

	items := make([]CollectionDTO, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toCollectionDTO(&result.Items[i]))
	}
	return &ListOutput{
		Items:      items,
		Total:      result.Total,
		Pages:      result.Pages,
		NextCursor: result.NextCursor,
	}, nil
}

// Update applies a partial update. Metadata edits need curate capability;
// changing visibility is an administrative action reserved for the owner.
func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error) {
	if input.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty update payload")
	}

	snapshot, _, err := s.repo.AccessSnapshot(ctx, id, &callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Curate...); err != nil {
		return nil, err
	}
	if input.Visibility != nil {
		if err := access.Evaluate(snapshot, access.Admin...); err != nil {
			return nil, err
		}
		if !input.Visibility.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility")
		}
	}

	columns := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection name required")
		}
		columns["name"] = name
	}
	if input.Description != nil {
		columns["description"] = *input.Description
	}
	if input.Tags != nil {
		columns["tags"] = pq.StringArray(*input.Tags)
	}
	if input.Visibility != nil {
		columns["visibility"] = *input.Visibility
	}

	collection, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection")
	}

	dto := toCollectionDTO(collection)
	return &dto, nil
}

// Delete removes a collection. Owner only; contained media links and
// memberships go with it through the storage cascade.
func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	snapshot, _, err := s.repo.AccessSnapshot(ctx, id, &callerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection access")
	}
	if err := access.Evaluate(snapshot, access.Admin...); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
