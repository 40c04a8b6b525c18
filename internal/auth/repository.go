// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/storefront/internal/core"
)

// SessionStore persists refresh sessions.
type SessionStore interface {
	Insert(ctx context.Context, s *Session) error
	ByHash(ctx context.Context, tokenHash string) (*Session, error)
	ByID(ctx context.Context, id string) (*Session, error)
	Rotate(ctx context.Context, id, successorID string) error
	Revoke(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) (int64, error)
	RevokeUser(ctx context.Context, userID string) (int64, error)
	Active(ctx context.Context, userID string, limit int) ([]Session, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

const sessionColumns = `
	id, user_id, token_hash, family_id, expires_at, created_at,
	rotated_at, successor_id, revoked_at, user_agent, ip_address`

type sessionStore struct {
	db core.DBTX
}

func NewSessionStore(db core.DBTX) SessionStore {
	return &sessionStore{db: db}
}

func (r *sessionStore) Insert(ctx context.Context, s *Session) error {
	const query = `
		INSERT INTO sessions (
			id, user_id, token_hash, family_id, expires_at,
			user_agent, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if err := r.db.GetContext(ctx, &s.CreatedAt, query,
		s.ID, s.UserID, s.TokenHash, s.FamilyID, s.ExpiresAt,
		s.UserAgent, s.IPAddress,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionStore) ByHash(
	ctx context.Context,
	tokenHash string,
) (*Session, error) {
	return r.one(ctx, "session by hash",
		`SELECT`+sessionColumns+` FROM sessions WHERE token_hash = $1`,
		tokenHash,
	)
}

func (r *sessionStore) ByID(ctx context.Context, id string) (*Session, error) {
	return r.one(ctx, "session by id",
		`SELECT`+sessionColumns+` FROM sessions WHERE id = $1`,
		id,
	)
}

func (r *sessionStore) one(
	ctx context.Context,
	op, query string,
	arg any,
) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// Rotate links id to its successor. It fails with ErrNotFound when the
// session was already rotated or revoked, which lets two concurrent
// refreshes of the same token race safely.
func (r *sessionStore) Rotate(
	ctx context.Context,
	id, successorID string,
) error {
	const query = `
		UPDATE sessions
		SET rotated_at = NOW(), successor_id = $2
		WHERE id = $1 AND rotated_at IS NULL AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, successorID)
	return exactlyOne("rotate session", res, err)
}

func (r *sessionStore) Revoke(ctx context.Context, id string) error {
	const query = `
		UPDATE sessions SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	return exactlyOne("revoke session", res, err)
}

func (r *sessionStore) RevokeFamily(
	ctx context.Context,
	familyID string,
) (int64, error) {
	const query = `
		UPDATE sessions SET revoked_at = NOW()
		WHERE family_id = $1 AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, familyID)
	return affected("revoke session family", res, err)
}

func (r *sessionStore) RevokeUser(
	ctx context.Context,
	userID string,
) (int64, error) {
	const query = `
		UPDATE sessions SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, userID)
	return affected("revoke user sessions", res, err)
}

// Active lists the user's live sessions, newest first.
func (r *sessionStore) Active(
	ctx context.Context,
	userID string,
	limit int,
) ([]Session, error) {
	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND rotated_at IS NULL
			AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT $2`

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("active sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionStore) Purge(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, before)
	return affected("purge sessions", res, err)
}

func affected(op string, res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func exactlyOne(op string, res sql.Result, err error) error {
	n, err := affected(op, res, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
