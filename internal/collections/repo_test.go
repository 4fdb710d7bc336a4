//go:build db
// +build db

package collections

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("REELIST_DB_DSN")
	if dsn == "" {
		t.Skip("REELIST_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func beginTx(t *testing.T, conn *gorm.DB) *gorm.DB {
	t.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func createUser(t *testing.T, tx *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createCollection(t *testing.T, tx *gorm.DB, ownerID uuid.UUID, name string, vis enums.CollectionVisibility, tags ...string) *models.Collection {
	t.Helper()
	collection := &models.Collection{
		Name:       name,
		Tags:       pq.StringArray(tags),
		Visibility: vis,
		OwnerID:    ownerID,
	}
	if err := tx.Create(collection).Error; err != nil {
		t.Fatalf("create collection %s: %v", name, err)
	}
	return collection
}

func TestFindVisibleByIDHidesPrivateFromStrangers(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	stranger := createUser(t, tx, "stranger@example.com")
	private := createCollection(t, tx, owner.ID, "Private Queue", enums.CollectionVisibilityPrivate)

	if _, err := repo.FindVisibleByID(ctx, private.ID, nil); err != gorm.ErrRecordNotFound {
		t.Fatalf("anonymous fetch of private collection: want not found, got %v", err)
	}
	if _, err := repo.FindVisibleByID(ctx, private.ID, &stranger.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("stranger fetch of private collection: want not found, got %v", err)
	}
	if _, err := repo.FindVisibleByID(ctx, private.ID, &owner.ID); err != nil {
		t.Fatalf("owner fetch of private collection: %v", err)
	}
}

func TestFindVisibleByIDAcceptedMembershipGrantsRead(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	invitee := createUser(t, tx, "invitee@example.com")
	private := createCollection(t, tx, owner.ID, "Private Queue", enums.CollectionVisibilityPrivate)

	membership := &models.CollectionMembership{
		CollectionID: private.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleReader,
		Accepted:     false,
	}
	if err := tx.Create(membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}

	// pending invitation does not reveal the collection
	if _, err := repo.FindVisibleByID(ctx, private.ID, &invitee.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("pending invitee fetch: want not found, got %v", err)
	}

	if err := tx.Model(membership).Update("accepted", true).Error; err != nil {
		t.Fatalf("accept membership: %v", err)
	}
	if _, err := repo.FindVisibleByID(ctx, private.ID, &invitee.ID); err != nil {
		t.Fatalf("accepted invitee fetch: %v", err)
	}
}

func TestListFiltersCombineWithVisibility(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	other := createUser(t, tx, "other@example.com")
	createCollection(t, tx, owner.ID, "Public Horror", enums.CollectionVisibilityPublic, "horror")
	createCollection(t, tx, owner.ID, "Private Horror", enums.CollectionVisibilityPrivate, "horror")
	createCollection(t, tx, owner.ID, "Public Comedy", enums.CollectionVisibilityPublic, "comedy")

	// tag filter never exposes an invisible collection
	result, err := repo.List(ctx, &other.ID, ListParams{Tags: []string{"horror"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected exactly the public horror collection, got %d", result.Total)
	}
	if result.Items[0].Name != "Public Horror" {
		t.Fatalf("unexpected item %s", result.Items[0].Name)
	}

	// owner sees both
	result, err = repo.List(ctx, &owner.ID, ListParams{Tags: []string{"horror"}})
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected both horror collections for owner, got %d", result.Total)
	}
}

func TestListFreeTextSearch(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	desc := "slow burns and long takes"
	c := createCollection(t, tx, owner.ID, "Arthouse", enums.CollectionVisibilityPublic)
	if err := tx.Model(c).Update("description", desc).Error; err != nil {
		t.Fatalf("set description: %v", err)
	}
	createCollection(t, tx, owner.ID, "Blockbusters", enums.CollectionVisibilityPublic)

	result, err := repo.List(ctx, nil, ListParams{Query: "SLOW BURN"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 1 || result.Items[0].Name != "Arthouse" {
		t.Fatalf("expected description match, got %+v", result.Items)
	}
}

func TestListOffsetModeCountsAndPages(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	names := []string{"A", "B", "C", "D", "E"}
	for _, name := range names {
		createCollection(t, tx, owner.ID, name, enums.CollectionVisibilityPublic)
	}

	result, err := repo.List(ctx, nil, ListParams{
		Pagination: pagination.Params{Page: 2, PageSize: 2, Sort: "name", Order: "asc"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 5 || result.Pages != 3 {
		t.Fatalf("expected total 5 pages 3, got %d/%d", result.Total, result.Pages)
	}
	if len(result.Items) != 2 || result.Items[0].Name != "C" || result.Items[1].Name != "D" {
		t.Fatalf("unexpected page contents: %+v", result.Items)
	}
}

func TestListCursorModeWalksAllRowsOnce(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		createCollection(t, tx, owner.ID, name, enums.CollectionVisibilityPublic)
	}

	// cursor mode needs an anchor, so the walk is seeded with the last id of
	// an initial offset page
	seen := map[string]bool{}
	params := ListParams{Pagination: pagination.Params{PageSize: 2, Sort: "name", Order: "asc"}}
	first, err := repo.List(ctx, nil, params)
	if err != nil {
		t.Fatalf("seed page: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected a full seed page, got %d items", len(first.Items))
	}
	for _, item := range first.Items {
		seen[item.Name] = true
	}
	params.Pagination.Cursor = first.Items[len(first.Items)-1].ID.String()

	for page := 0; page < 4; page++ {
		result, err := repo.List(ctx, nil, params)
		if err != nil {
			t.Fatalf("cursor page %d: %v", page, err)
		}
		if result.Total != 0 || result.Pages != 0 {
			t.Fatal("cursor mode must not compute totals")
		}
		for _, item := range result.Items {
			if seen[item.Name] {
				t.Fatalf("item %s returned twice", item.Name)
			}
			seen[item.Name] = true
		}
		if result.NextCursor == "" {
			break
		}
		params.Pagination.Cursor = result.NextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct rows, saw %d", len(seen))
	}
}

func TestListCursorAnchorRespectsVisibilityAndFilters(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	private := createCollection(t, tx, owner.ID, "Private Queue", enums.CollectionVisibilityPrivate)
	public := createCollection(t, tx, owner.ID, "Public Queue", enums.CollectionVisibilityPublic)

	// a private collection's id and a random id must fail identically, or an
	// anonymous caller could tell which private ids exist
	_, errPrivate := repo.List(ctx, nil, ListParams{
		Pagination: pagination.Params{Cursor: private.ID.String()},
	})
	_, errUnknown := repo.List(ctx, nil, ListParams{
		Pagination: pagination.Params{Cursor: uuid.NewString()},
	})
	for name, err := range map[string]error{"private anchor": errPrivate, "random anchor": errUnknown} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: want validation error, got %v", name, err)
		}
	}
	if pkgerrors.As(errPrivate).Message() != pkgerrors.As(errUnknown).Message() {
		t.Fatalf("anchor errors must be indistinguishable: %q vs %q",
			pkgerrors.As(errPrivate).Message(), pkgerrors.As(errUnknown).Message())
	}

	// an anchor excluded by the active filters is rejected the same way
	_, err := repo.List(ctx, nil, ListParams{
		Tags:       []string{"horror"},
		Pagination: pagination.Params{Cursor: public.ID.String()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("filtered-out anchor: want validation error, got %v", err)
	}
}

func TestListOffsetPageBeyondLastIsEmpty(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	for _, name := range []string{"A", "B", "C"} {
		createCollection(t, tx, owner.ID, name, enums.CollectionVisibilityPublic)
	}

	result, err := repo.List(ctx, nil, ListParams{
		Pagination: pagination.Params{Page: 9, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list past the last page: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected an empty page, got %d items", len(result.Items))
	}
	if result.Total != 3 || result.Pages != 2 {
		t.Fatalf("page math must survive an overshoot: total=%d pages=%d", result.Total, result.Pages)
	}
}

func TestDeleteCascadesToLinksAndMemberships(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")
	member := createUser(t, tx, "member@example.com")
	doomed := createCollection(t, tx, owner.ID, "Doomed", enums.CollectionVisibilityPublic)

	item := &models.Media{Title: "Survivor", Type: enums.MediaTypeMovie}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	link := &models.CollectionMedia{CollectionID: doomed.ID, MediaID: item.ID}
	if err := tx.Create(link).Error; err != nil {
		t.Fatalf("create link: %v", err)
	}
	membership := &models.CollectionMembership{
		CollectionID: doomed.ID,
		UserID:       member.ID,
		Role:         enums.CollectionRoleReader,
		Accepted:     true,
	}
	if err := tx.Create(membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}

	if err := repo.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	var links, memberships int64
	if err := tx.Model(&models.CollectionMedia{}).Where("collection_id = ?", doomed.ID).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if err := tx.Model(&models.CollectionMembership{}).Where("collection_id = ?", doomed.ID).Count(&memberships).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if links != 0 || memberships != 0 {
		t.Fatalf("expected cascade to clear join rows: links=%d memberships=%d", links, memberships)
	}

	// the media row itself is shared and must survive
	var mediaRows int64
	if err := tx.Model(&models.Media{}).Where("id = ?", item.ID).Count(&mediaRows).Error; err != nil {
		t.Fatalf("count media: %v", err)
	}
	if mediaRows != 1 {
		t.Fatalf("media row must outlive the collection, got %d rows", mediaRows)
	}
}

func TestGetOrCreateDefaultIsIdempotent(t *testing.T) {
	tx := beginTx(t, openTestDB(t))
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createUser(t, tx, "owner@example.com")

	first, err := repo.GetOrCreateDefault(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}
	second, err := repo.GetOrCreateDefault(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected a single default collection, got %s and %s", first.ID, second.ID)
	}
	if !first.IsDefault || first.Visibility != enums.CollectionVisibilityPrivate {
		t.Fatalf("default collection misconfigured: %+v", first)
	}
}
