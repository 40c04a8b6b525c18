// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/core"
)

const (
	CallerKey contextKey = "caller"
	ClaimsKey contextKey = "jwt_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID       string
	Role         string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

// Authenticator verifies the bearer token and attaches an explicit
// access.Caller to the request context. Tokens carrying a role outside
// the known set are rejected.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			role, ok := access.ParseRole(claims.Role)
			if !ok {
				core.JSONError(w, core.TokenInvalidError())
				return
			}

			ctx := WithCaller(r.Context(), access.Caller{
				ID:   claims.UserID,
				Role: role,
			})
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize gates a route on a collection-level decision, one that needs
// no record owner.
func Authorize(
	resource access.Resource,
	action access.Action,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFrom(r.Context())

			if caller.ID == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !caller.Can(action, access.Target{Resource: resource}) {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFrom(r.Context())

		if caller.ID == "" {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if !caller.IsAdmin() {
			core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func WithCaller(ctx context.Context, caller access.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFrom returns the request's caller, or the zero Caller when the
// request was not authenticated.
func CallerFrom(ctx context.Context) access.Caller {
	if c, ok := ctx.Value(CallerKey).(access.Caller); ok {
		return c
	}
	return access.Caller{}
}

func GetUserID(ctx context.Context) string {
	return CallerFrom(ctx).ID
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}
