// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carterperez-dev/storefront/internal/config"
	"github.com/carterperez-dev/storefront/internal/core"
)

func newTestJWTManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:     filepath.Join(dir, "private.pem"),
		PublicKeyPath:      filepath.Join(dir, "public.pem"),
		AccessTokenExpire:  ttl,
		RefreshTokenExpire: time.Hour,
		Issuer:             "storefront-test",
		Audience:           "storefront-test-api",
	}

	if err := GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
		t.Fatalf("generate key pair: %v", err)
	}

	m, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "8d0f5b7c-1d2e-4f30-9a41-5b6c7d8e9f00",
		Role:         "admin",
		TokenVersion: 3,
	})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	claims, err := m.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.UserID != "8d0f5b7c-1d2e-4f30-9a41-5b6c7d8e9f00" {
		t.Errorf("unexpected subject %q", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("unexpected role %q", claims.Role)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("unexpected token version %d", claims.TokenVersion)
	}
	if claims.JTI == "" {
		t.Error("expected a jti claim")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("expected an expiry")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := newTestJWTManager(t, 15*time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: "user"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	tampered := token[:len(token)-4] + "AAAA"
	if tampered == token {
		tampered = token[:len(token)-4] + "BBBB"
	}

	_, err = m.VerifyAccessToken(context.Background(), tampered)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t, 15*time.Minute)
	verifier := newTestJWTManager(t, 15*time.Minute)

	token, err := issuer.CreateAccessToken(AccessTokenClaims{UserID: "u-1", Role: "user"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(context.Background(), token); err == nil {
		t.Fatal("token signed by another key was accepted")
	}
}
