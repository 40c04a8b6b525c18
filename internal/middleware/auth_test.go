// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func okHandler(t *testing.T, seen *access.Caller) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = CallerFrom(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorAttachesCaller(t *testing.T) {
	verifier := stubVerifier{claims: &AccessTokenClaims{UserID: "u-1", Role: "user"}}

	var seen access.Caller
	h := Authenticator(verifier)(okHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.ID != "u-1" || seen.Role != access.RoleUser {
		t.Errorf("unexpected caller %+v", seen)
	}
}

func TestAuthenticatorRejects(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
	}{
		{"missing token", "", stubVerifier{}},
		{"wrong scheme", "Basic abc", stubVerifier{}},
		{"expired", "Bearer abc", stubVerifier{err: core.ErrTokenExpired}},
		{"unknown role", "Bearer abc", stubVerifier{
			claims: &AccessTokenClaims{UserID: "u-1", Role: "root"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tt.verifier)(okHandler(t, nil))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		caller access.Caller
		res    access.Resource
		act    access.Action
		want   int
	}{
		{"anonymous", access.Caller{}, access.ResourceProduct, access.ActionList, http.StatusUnauthorized},
		{"user lists products", access.Caller{ID: "u", Role: access.RoleUser}, access.ResourceProduct, access.ActionList, http.StatusOK},
		{"user creates product", access.Caller{ID: "u", Role: access.RoleUser}, access.ResourceProduct, access.ActionNew, http.StatusForbidden},
		{"user lists settings", access.Caller{ID: "u", Role: access.RoleUser}, access.ResourceSetting, access.ActionList, http.StatusForbidden},
		{"admin deletes setting", access.Caller{ID: "a", Role: access.RoleAdmin}, access.ResourceSetting, access.ActionDelete, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authorize(tt.res, tt.act)(okHandler(t, nil))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.caller.ID != "" {
				req = req.WithContext(WithCaller(req.Context(), tt.caller))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithCaller(req.Context(), access.Caller{ID: "u", Role: access.RoleUser}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithCaller(req.Context(), access.Caller{ID: "a", Role: access.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", rec.Code)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	got := normalizeEndpoint("/v1/orders/0b7e6c1a-4f7d-4c1e-9a43-6a1f7e0d2c11/status")
	if got != "/v1/orders/{id}/status" {
		t.Errorf("unexpected normalized path %q", got)
	}
}
