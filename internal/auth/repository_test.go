// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/storefront/internal/core"
)

func newMockSessions(t *testing.T) (SessionStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewSessionStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSessionStoreRotateLosesRace(t *testing.T) {
	store, mock := newMockSessions(t)

	mock.ExpectExec(regexp.QuoteMeta("SET rotated_at = NOW(), successor_id = $2")).
		WithArgs("s-1", "s-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Rotate(context.Background(), "s-1", "s-2")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSessionStoreByHashMissing(t *testing.T) {
	store, mock := newMockSessions(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash = $1")).
		WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.ByHash(context.Background(), "h"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStorePurgeCountsRows(t *testing.T) {
	store, mock := newMockSessions(t)
	cutoff := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.Purge(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 4 {
		t.Errorf("purged %d, want 4", n)
	}
}
