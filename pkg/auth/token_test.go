package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reelist-app/reelist-backend/pkg/config"
)

func signTestToken(t *testing.T, secret string, claims AccessTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testClaims(userID uuid.UUID, issuer string) AccessTokenClaims {
	now := time.Now()
	return AccessTokenClaims{
		UserID: userID,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "idp"}
	userID := uuid.New()
	signed := signTestToken(t, cfg.Secret, testClaims(userID, cfg.Issuer))

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "idp"}
	signed := signTestToken(t, "other-secret", testClaims(uuid.New(), cfg.Issuer))

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "idp"}
	signed := signTestToken(t, cfg.Secret, testClaims(uuid.New(), "someone-else"))

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "idp"}
	claims := testClaims(uuid.New(), cfg.Issuer)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	signed := signTestToken(t, cfg.Secret, claims)

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseAccessTokenRequiresUserID(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "idp"}
	signed := signTestToken(t, cfg.Secret, testClaims(uuid.Nil, cfg.Issuer))

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected missing user id error")
	}
}

func TestParseAccessTokenRequiresSecret(t *testing.T) {
	if _, err := ParseAccessToken(config.JWTConfig{}, "token"); err == nil {
		t.Fatal("expected configuration error")
	}
}
