package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/internal/collections"
	"github.com/reelist-app/reelist-backend/internal/media"
	"github.com/reelist-app/reelist-backend/internal/memberships"
	pkgAuth "github.com/reelist-app/reelist-backend/pkg/auth"
	"github.com/reelist-app/reelist-backend/pkg/config"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

type stubIdentitySyncer struct{}

func (stubIdentitySyncer) EnsureFromClaims(context.Context, *pkgAuth.AccessTokenClaims) error {
	return nil
}

type stubCollectionsService struct {
	listFn   func(ctx context.Context, callerID *uuid.UUID, params collections.ListParams) (*collections.ListOutput, error)
	createFn func(ctx context.Context, callerID uuid.UUID, input collections.CreateCollectionInput) (*collections.CollectionDTO, error)
}

func (s stubCollectionsService) Create(ctx context.Context, callerID uuid.UUID, input collections.CreateCollectionInput) (*collections.CollectionDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, callerID, input)
	}
	return &collections.CollectionDTO{ID: uuid.New(), Name: input.Name}, nil
}

// Get implements [collections.Service].
func (s stubCollectionsService) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*collections.CollectionDTO, error) {
	panic("unimplemented")
}

func (s stubCollectionsService) List(ctx context.Context, callerID *uuid.UUID, params collections.ListParams) (*collections.ListOutput, error) {
	if s.listFn != nil {
		return s.listFn(ctx, callerID, params)
	}
	return &collections.ListOutput{Items: []collections.CollectionDTO{}, Pages: 1}, nil
}

// Update implements [collections.Service].
func (s stubCollectionsService) Update(ctx context.Context, callerID, id uuid.UUID, input collections.UpdateCollectionInput) (*collections.CollectionDTO, error) {
	panic("unimplemented")
}

// Delete implements [collections.Service].
func (s stubCollectionsService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	panic("unimplemented")
}

type stubMediaService struct{}

func (stubMediaService) Create(ctx context.Context, callerID uuid.UUID, input media.CreateMediaInput) (*media.MediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*media.MediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) List(ctx context.Context, callerID *uuid.UUID, params media.ListParams) (*media.ListOutput, error) {
	return &media.ListOutput{Items: []media.MediaDTO{}, Pages: 1}, nil
}

func (stubMediaService) Update(ctx context.Context, callerID, id uuid.UUID, input media.UpdateMediaInput) (*media.MediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubMediaService) AddToCollection(ctx context.Context, callerID, collectionID uuid.UUID, input media.AddToCollectionInput) (*media.CollectionMediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) ListCollection(ctx context.Context, callerID *uuid.UUID, params media.CollectionListParams) (*media.CollectionListOutput, error) {
	panic("unimplemented")
}

func (stubMediaService) UpdateLink(ctx context.Context, callerID, collectionID, mediaID uuid.UUID, input media.UpdateLinkInput) (*media.CollectionMediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) RemoveFromCollection(ctx context.Context, callerID, collectionID, mediaID uuid.UUID) error {
	panic("unimplemented")
}

type stubMembershipsService struct{}

func (stubMembershipsService) Invite(ctx context.Context, callerID, collectionID uuid.UUID, input memberships.InviteInput) (*memberships.MembershipDTO, error) {
	panic("unimplemented")
}

func (stubMembershipsService) Respond(ctx context.Context, callerID, collectionID uuid.UUID, input memberships.RespondInput) (*memberships.MembershipDTO, error) {
	panic("unimplemented")
}

func (stubMembershipsService) UpdateRole(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID, input memberships.UpdateRoleInput) (*memberships.MembershipDTO, error) {
	panic("unimplemented")
}

func (stubMembershipsService) Remove(ctx context.Context, callerID, collectionID, targetUserID uuid.UUID) error {
	panic("unimplemented")
}

func (stubMembershipsService) ListMembers(ctx context.Context, callerID, collectionID uuid.UUID) ([]memberships.MemberDTO, error) {
	panic("unimplemented")
}

func (stubMembershipsService) ListInvitations(ctx context.Context, callerID uuid.UUID) ([]memberships.InvitationDTO, error) {
	return []memberships.InvitationDTO{}, nil
}

func routerConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "idp"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		Users:       stubIdentitySyncer{},
		Collections: stubCollectionsService{},
		Media:       stubMediaService{},
		Memberships: stubMembershipsService{},
	})
}

func bearer(t *testing.T, cfg *config.Config, userID uuid.UUID) string {
	t.Helper()
	now := time.Now()
	claims := pkgAuth.AccessTokenClaims{
		UserID: userID,
		Email:  "router@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, routerConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Reelist-Env") != "test" {
		t.Fatalf("expected env header, got %q", w.Header().Get("X-Reelist-Env"))
	}
}

func TestRouterAnonymousCanListCollections(t *testing.T) {
	router := newTestRouter(t, routerConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouterMutationsRequireAuth(t *testing.T) {
	router := newTestRouter(t, routerConfig())

	body := strings.NewReader(`{"name":"Weekend Queue"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/collections", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRouterAuthenticatedCreateSucceeds(t *testing.T) {
	cfg := routerConfig()
	router := newTestRouter(t, cfg)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/collections", strings.NewReader(`{"name":"Weekend Queue"}`))
	r.Header.Set("Authorization", bearer(t, cfg, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouterRejectsMalformedRouteID(t *testing.T) {
	router := newTestRouter(t, routerConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/collections/not-a-uuid", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRouterInvitationsRequireAuth(t *testing.T) {
	cfg := routerConfig()
	router := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invitations", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/invitations", nil)
	r.Header.Set("Authorization", bearer(t, cfg, uuid.New()))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}
