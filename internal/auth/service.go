// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/storefront/internal/core"
	"github.com/carterperez-dev/storefront/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = fmt.Errorf("login: %w", core.ErrAccountLocked)
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	TokenVersion int
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

const (
	blacklistPrefix = "storefront:blacklist:"
	maxListed       = 50
	purgeGrace      = 24 * time.Hour
)

// Client identifies the device a session was opened from.
type Client struct {
	UserAgent string
	IP        string
}

type Service struct {
	sessions SessionStore
	tokens   *JWTManager
	users    UserProvider
	redis    *redis.Client
	now      func() time.Time
}

func NewService(
	sessions SessionStore,
	tokens *JWTManager,
	users UserProvider,
	redisClient *redis.Client,
) *Service {
	return &Service{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
		redis:    redisClient,
		now:      time.Now,
	}
}

// VerifyCredentials resolves email and password to an identity. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials, and both
// pay for one hash comparison.
func (s *Service) VerifyCredentials(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		//nolint:errcheck // equalises timing with the known-email path
		_, _, _ = core.CheckPassword(password, "")
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}

	ok, stale, err := core.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if stale {
		s.upgradeHash(ctx, user.ID, password)
	}
	return user, nil
}

func (s *Service) upgradeHash(ctx context.Context, userID, password string) {
	hash, err := core.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, userID, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "password rehash skipped",
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client Client,
) (*AuthResponse, error) {
	user, err := s.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.open(ctx, user, client, nil)
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client Client,
) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.open(ctx, user, client, nil)
}

// Refresh exchanges a refresh token for a new pair. A token that was
// already rotated is a replay: its whole family is revoked.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client Client,
) (*AuthResponse, error) {
	current, err := s.sessions.ByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if err := current.Usable(s.now()); err != nil {
		if errors.Is(err, ErrTokenReuse) {
			s.revokeFamily(ctx, current, "refresh token replayed")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		s.revokeFamily(ctx, current, "account deactivated")
		return nil, ErrAccountDisabled
	}

	return s.open(ctx, user, client, current)
}

func (s *Service) revokeFamily(ctx context.Context, sess *Session, reason string) {
	n, err := s.sessions.RevokeFamily(ctx, sess.FamilyID)
	if err != nil {
		slog.ErrorContext(ctx, "session family revocation failed",
			"family_id", sess.FamilyID,
			"error", err,
		)
		return
	}
	slog.WarnContext(ctx, "session family revoked",
		"reason", reason,
		"user_id", sess.UserID,
		"family_id", sess.FamilyID,
		"sessions", n,
	)
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID, accessJTI string,
	accessExpiresAt time.Time,
) error {
	if accessJTI != "" {
		if err := s.RevokeAccessToken(ctx, accessJTI, accessExpiresAt); err != nil {
			slog.WarnContext(ctx, "access token blacklist failed",
				"user_id", userID,
				"error", err,
			)
		}
	}

	sess, err := s.sessions.ByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return s.closeSession(ctx, userID, sess)
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if _, err := s.sessions.RevokeUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions that expired more than a day ago.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.Purge(ctx, s.now().Add(-purgeGrace))
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	n, err := s.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

// VerifyAccessToken checks the signature and claims, then the logout
// blacklist. A blacklist lookup failure is logged and does not reject the
// token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.JTI == "" {
		return claims, nil
	}

	revoked, err := s.IsAccessTokenBlacklisted(ctx, claims.JTI)
	if err != nil {
		slog.WarnContext(ctx, "blacklist lookup failed", "error", err)
		return claims, nil
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	return claims, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	active, err := s.sessions.Active(ctx, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	infos := make([]SessionInfo, len(active))
	for i := range active {
		infos[i] = active[i].Info()
	}
	return infos, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	sess, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return s.closeSession(ctx, userID, sess)
}

// closeSession revokes a session owned by userID. Revoking one that is
// already revoked is not an error.
func (s *Service) closeSession(ctx context.Context, userID string, sess *Session) error {
	if sess.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}
	err := s.sessions.Revoke(ctx, sess.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	ok, _, err := core.CheckPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := userResponse(user)
	return &resp, nil
}

// open issues an access token and a new session. With a predecessor the
// new session joins its family, and the predecessor is claimed first so
// that two concurrent refreshes of one token cannot both succeed.
func (s *Service) open(
	ctx context.Context,
	user *UserInfo,
	client Client,
	predecessor *Session,
) (*AuthResponse, error) {
	var familyID string
	sessionID := uuid.New().String()

	if predecessor != nil {
		familyID = predecessor.FamilyID
		err := s.sessions.Rotate(ctx, predecessor.ID, sessionID)
		if errors.Is(err, core.ErrNotFound) {
			s.revokeFamily(ctx, predecessor, "concurrent refresh")
			return nil, ErrTokenReuse
		}
		if err != nil {
			return nil, fmt.Errorf("rotate session: %w", err)
		}
	}

	accessToken, err := s.tokens.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.tokens.CreateRefreshToken(familyID, s.now())
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	if err := s.sessions.Insert(ctx, &Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IP,
	}); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	ttl := s.tokens.AccessTokenTTL()
	return &AuthResponse{
		User: userResponse(user),
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    s.now().Add(ttl),
		},
	}, nil
}

func userResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
