// AngelaMos | 2026
// entity.go

package auth

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/storefront/internal/core"
)

type SessionState int

const (
	SessionActive SessionState = iota
	SessionRotated
	SessionRevoked
	SessionExpired
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionRotated:
		return "rotated"
	case SessionRevoked:
		return "revoked"
	case SessionExpired:
		return "expired"
	}
	return "unknown"
}

// Session is one refresh token in a rotation family. Only the hash of the
// token is stored. Rotating a session links it to its successor; presenting
// a rotated session again revokes the whole family.
type Session struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	TokenHash   string     `db:"token_hash"`
	FamilyID    string     `db:"family_id"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	RotatedAt   *time.Time `db:"rotated_at"`
	SuccessorID *string    `db:"successor_id"`
	RevokedAt   *time.Time `db:"revoked_at"`
	UserAgent   string     `db:"user_agent"`
	IPAddress   string     `db:"ip_address"`
}

// StateAt reports the session state at now. Revocation wins over rotation
// and rotation over expiry, so a replayed token is always detected.
func (s *Session) StateAt(now time.Time) SessionState {
	switch {
	case s.RevokedAt != nil:
		return SessionRevoked
	case s.RotatedAt != nil:
		return SessionRotated
	case !now.Before(s.ExpiresAt):
		return SessionExpired
	}
	return SessionActive
}

// Usable returns nil when the session may be exchanged for new tokens.
func (s *Session) Usable(now time.Time) error {
	switch s.StateAt(now) {
	case SessionActive:
		return nil
	case SessionRotated:
		return ErrTokenReuse
	case SessionRevoked:
		return fmt.Errorf("session %s: %w", s.ID, core.ErrTokenRevoked)
	default:
		return fmt.Errorf("session %s: %w", s.ID, core.ErrTokenExpired)
	}
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
