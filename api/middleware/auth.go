package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/reelist-app/reelist-backend/api/responses"
	pkgAuth "github.com/reelist-app/reelist-backend/pkg/auth"
	"github.com/reelist-app/reelist-backend/pkg/config"
	pkgerrors "github.com/reelist-app/reelist-backend/pkg/errors"
	"github.com/reelist-app/reelist-backend/pkg/logger"
)

// IdentitySyncer mirrors the external provider's identity into local storage
// so membership rows always have a user to join against.
type IdentitySyncer interface {
	EnsureFromClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func authenticate(cfg config.JWTConfig, users IdentitySyncer, logg *logger.Logger, r *http.Request, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	if users != nil {
		if err := users.EnsureFromClaims(r.Context(), claims); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync identity")
		}
	}

	ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"user_id": claims.UserID.String()})
	}
	return ctx, nil
}

// Auth validates a bearer token and seeds the request context with the
// caller's identity. Requests without credentials are rejected.
func Auth(cfg config.JWTConfig, users IdentitySyncer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ctx, err := authenticate(cfg, users, logg, r, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthOptional behaves like Auth for requests that carry credentials and
// passes anonymous requests straight through. A token that is present but
// invalid is still rejected; silently downgrading it to anonymous would mask
// expiry from clients.
func AuthOptional(cfg config.JWTConfig, users IdentitySyncer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := authenticate(cfg, users, logg, r, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
