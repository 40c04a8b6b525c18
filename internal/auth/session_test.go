// AngelaMos | 2026
// session_test.go

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/storefront/internal/core"
)

type memSessions struct {
	mu   sync.Mutex
	rows map[string]*Session
	now  func() time.Time
}

func newMemSessions(now func() time.Time) *memSessions {
	return &memSessions{rows: map[string]*Session{}, now: now}
}

func (m *memSessions) Insert(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = m.now()
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memSessions) ByHash(_ context.Context, hash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.TokenHash == hash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memSessions) ByID(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Rotate(_ context.Context, id, successorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || s.RotatedAt != nil || s.RevokedAt != nil {
		return core.ErrNotFound
	}
	at := m.now()
	s.RotatedAt = &at
	s.SuccessorID = &successorID
	return nil
}

func (m *memSessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || s.RevokedAt != nil {
		return core.ErrNotFound
	}
	at := m.now()
	s.RevokedAt = &at
	return nil
}

func (m *memSessions) revokeWhere(match func(*Session) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	at := m.now()
	for _, s := range m.rows {
		if s.RevokedAt == nil && match(s) {
			s.RevokedAt = &at
			n++
		}
	}
	return n
}

func (m *memSessions) RevokeFamily(_ context.Context, familyID string) (int64, error) {
	return m.revokeWhere(func(s *Session) bool { return s.FamilyID == familyID }), nil
}

func (m *memSessions) RevokeUser(_ context.Context, userID string) (int64, error) {
	return m.revokeWhere(func(s *Session) bool { return s.UserID == userID }), nil
}

func (m *memSessions) Active(_ context.Context, userID string, limit int) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Session{}
	for _, s := range m.rows {
		if s.UserID == userID && s.StateAt(m.now()) == SessionActive && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSessions) Purge(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.rows {
		if s.ExpiresAt.Before(before) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSessionService(t *testing.T) (*Service, *memSessions, *clock) {
	t.Helper()
	clk := &clock{t: time.Now()}
	store := newMemSessions(clk.now)
	svc := NewService(store, newTestJWTManager(t, 15*time.Minute), newFakeUsers(t, true), nil)
	svc.now = clk.now
	return svc, store, clk
}

func login(t *testing.T, svc *Service) *AuthResponse {
	t.Helper()
	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	}, Client{UserAgent: "cli", IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp
}

func TestSessionStateOrder(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		sess Session
		want SessionState
	}{
		{"active", Session{ExpiresAt: now.Add(time.Hour)}, SessionActive},
		{"expired", Session{ExpiresAt: past}, SessionExpired},
		{"rotated beats expired", Session{ExpiresAt: past, RotatedAt: &past}, SessionRotated},
		{"revoked beats rotated", Session{ExpiresAt: past, RotatedAt: &past, RevokedAt: &past}, SessionRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sess.StateAt(now); got != tt.want {
				t.Errorf("StateAt = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRefreshRotatesWithinFamily(t *testing.T) {
	svc, store, _ := newSessionService(t)
	ctx := context.Background()

	first := login(t, svc)
	second, err := svc.Refresh(ctx, first.Tokens.RefreshToken, Client{})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	old, _ := store.ByHash(ctx, core.HashToken(first.Tokens.RefreshToken))
	next, _ := store.ByHash(ctx, core.HashToken(second.Tokens.RefreshToken))
	if old.FamilyID != next.FamilyID {
		t.Error("rotated session left its family")
	}
	if old.SuccessorID == nil || *old.SuccessorID != next.ID {
		t.Error("rotated session does not point at its successor")
	}
}

func TestRefreshReplayRevokesFamily(t *testing.T) {
	svc, store, _ := newSessionService(t)
	ctx := context.Background()

	first := login(t, svc)
	second, err := svc.Refresh(ctx, first.Tokens.RefreshToken, Client{})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if _, err := svc.Refresh(ctx, first.Tokens.RefreshToken, Client{}); !errors.Is(err, ErrTokenReuse) {
		t.Fatalf("replay: expected ErrTokenReuse, got %v", err)
	}

	if _, err := svc.Refresh(ctx, second.Tokens.RefreshToken, Client{}); !errors.Is(err, core.ErrTokenRevoked) {
		t.Fatalf("successor after replay: expected ErrTokenRevoked, got %v", err)
	}

	active, _ := store.Active(ctx, "u-1", maxListed)
	if len(active) != 0 {
		t.Errorf("expected no active sessions, got %d", len(active))
	}
}

func TestRefreshExpired(t *testing.T) {
	svc, _, clk := newSessionService(t)

	first := login(t, svc)
	clk.advance(2 * time.Hour)

	_, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken, Client{})
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _ := newSessionService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token", Client{})
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRevokeSessionOwnership(t *testing.T) {
	svc, store, _ := newSessionService(t)
	ctx := context.Background()

	resp := login(t, svc)
	sess, _ := store.ByHash(ctx, core.HashToken(resp.Tokens.RefreshToken))

	if err := svc.RevokeSession(ctx, "someone-else", sess.ID); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.RevokeSession(ctx, "u-1", sess.ID); err != nil {
		t.Fatalf("revoke own session: %v", err)
	}
	if err := svc.RevokeSession(ctx, "u-1", sess.ID); err != nil {
		t.Fatalf("revoking twice should be a no-op, got %v", err)
	}
}

func TestLogoutClosesSession(t *testing.T) {
	svc, store, _ := newSessionService(t)
	ctx := context.Background()

	resp := login(t, svc)
	if err := svc.Logout(ctx, resp.Tokens.RefreshToken, "u-1", "", time.Time{}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	infos, err := svc.GetActiveSessions(ctx, "u-1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected no sessions after logout, got %d", len(infos))
	}

	if err := svc.Logout(ctx, "unknown", "u-1", "", time.Time{}); err != nil {
		t.Errorf("logout with unknown token: %v", err)
	}

	if len(store.rows) != 1 {
		t.Errorf("logout should revoke, not delete; rows = %d", len(store.rows))
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, store, clk := newSessionService(t)

	login(t, svc)
	clk.advance(time.Hour + purgeGrace + time.Minute)
	login(t, svc)

	n, err := svc.PurgeExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || len(store.rows) != 1 {
		t.Errorf("purged %d, %d left; want 1 and 1", n, len(store.rows))
	}
}
