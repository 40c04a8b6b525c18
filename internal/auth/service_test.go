// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/carterperez-dev/storefront/internal/core"
)

type fakeUsers struct {
	byEmail map[string]*UserInfo
	updated map[string]string
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, _, _, _ string) (*UserInfo, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUsers) IncrementTokenVersion(_ context.Context, _ string) error {
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.updated[id] = hash
	return nil
}

func newFakeUsers(t *testing.T, active bool) *fakeUsers {
	t.Helper()

	hash, err := core.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	return &fakeUsers{
		byEmail: map[string]*UserInfo{
			"ada@example.com": {
				ID:           "u-1",
				Email:        "ada@example.com",
				PasswordHash: hash,
				Role:         "user",
				IsActive:     active,
			},
		},
		updated: map[string]string{},
	}
}

func TestVerifyCredentials(t *testing.T) {
	svc := &Service{users: newFakeUsers(t, true)}
	ctx := context.Background()

	user, err := svc.VerifyCredentials(ctx, "ada@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if user.ID != "u-1" {
		t.Errorf("unexpected user %q", user.ID)
	}

	if _, err := svc.VerifyCredentials(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.VerifyCredentials(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc := &Service{users: newFakeUsers(t, false)}

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	}, Client{UserAgent: "test", IP: "127.0.0.1"})

	if !errors.Is(err, core.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}
