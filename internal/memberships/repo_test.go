package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reelist-app/reelist-backend/pkg/db/models"
	"github.com/reelist-app/reelist-backend/pkg/enums"
)

func setupMembershipsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  handle TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	collections := `
CREATE TABLE IF NOT EXISTS collections (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  tags TEXT,
  visibility TEXT NOT NULL DEFAULT 'private',
  owner_id TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	membershipRows := `
CREATE TABLE IF NOT EXISTS collection_memberships (
  id TEXT PRIMARY KEY,
  collection_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'reader',
  accepted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (collection_id, user_id)
);`
	for _, stmt := range []string{users, collections, membershipRows} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, DisplayName: email}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedCollection(t *testing.T, conn *gorm.DB, ownerID uuid.UUID, name string) *models.Collection {
	t.Helper()
	collection := &models.Collection{
		ID:         uuid.New(),
		Name:       name,
		Visibility: enums.CollectionVisibilityPrivate,
		OwnerID:    ownerID,
	}
	require.NoError(t, conn.Create(collection).Error)
	return collection
}

func TestRepositoryInvitationLifecycle(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com")
	invitee := seedUser(t, conn, "invitee@example.com")
	collection := seedCollection(t, conn, owner.ID, "Weekend Queue")

	row := &models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleCollaborator,
	}
	require.NoError(t, repo.Create(ctx, row))

	got, err := repo.Get(ctx, collection.ID, invitee.ID)
	require.NoError(t, err)
	assert.False(t, got.Accepted)
	assert.Equal(t, enums.CollectionRoleCollaborator, got.Role)

	require.NoError(t, repo.SetAccepted(ctx, row.ID, true))
	got, err = repo.Get(ctx, collection.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)

	require.NoError(t, repo.UpdateRole(ctx, row.ID, enums.CollectionRoleReader))
	got, err = repo.Get(ctx, collection.ID, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CollectionRoleReader, got.Role)

	require.NoError(t, repo.Delete(ctx, row.ID))
	_, err = repo.Get(ctx, collection.ID, invitee.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDuplicatePairRejected(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com")
	invitee := seedUser(t, conn, "invitee@example.com")
	collection := seedCollection(t, conn, owner.ID, "Docs")

	first := &models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleReader,
	}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleCollaborator,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestRepositoryListMembersOrdersAcceptedFirst(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com")
	accepted := seedUser(t, conn, "accepted@example.com")
	pending := seedUser(t, conn, "pending@example.com")
	collection := seedCollection(t, conn, owner.ID, "Docs")

	now := time.Now().UTC()
	require.NoError(t, conn.Create(&models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		UserID:       pending.ID,
		Role:         enums.CollectionRoleReader,
		Accepted:     false,
		CreatedAt:    now,
	}).Error)
	require.NoError(t, conn.Create(&models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		UserID:       accepted.ID,
		Role:         enums.CollectionRoleCollaborator,
		Accepted:     true,
		CreatedAt:    now.Add(-time.Hour),
	}).Error)

	members, err := repo.ListMembers(ctx, collection.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, accepted.ID, members[0].UserID)
	assert.True(t, members[0].Accepted)
	assert.Equal(t, "accepted@example.com", members[0].Email)
	assert.Equal(t, pending.ID, members[1].UserID)
}

func TestRepositoryListPendingForUser(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedUser(t, conn, "owner@example.com")
	invitee := seedUser(t, conn, "invitee@example.com")
	older := seedCollection(t, conn, owner.ID, "Older")
	newer := seedCollection(t, conn, owner.ID, "Newer")

	now := time.Now().UTC()
	require.NoError(t, conn.Create(&models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: older.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleReader,
		CreatedAt:    now.Add(-time.Hour),
	}).Error)
	require.NoError(t, conn.Create(&models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: newer.ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleCollaborator,
		CreatedAt:    now,
	}).Error)
	// accepted rows never show up as invitations
	require.NoError(t, conn.Create(&models.CollectionMembership{
		ID:           uuid.New(),
		CollectionID: seedCollection(t, conn, owner.ID, "Joined").ID,
		UserID:       invitee.ID,
		Role:         enums.CollectionRoleReader,
		Accepted:     true,
		CreatedAt:    now.Add(time.Hour),
	}).Error)

	invitations, err := repo.ListPendingForUser(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, invitations, 2)
	assert.Equal(t, "Newer", invitations[0].CollectionName)
	assert.Equal(t, enums.CollectionRoleCollaborator, invitations[0].Role)
	assert.Equal(t, "Older", invitations[1].CollectionName)
	assert.Equal(t, owner.ID, invitations[1].OwnerID)
}
