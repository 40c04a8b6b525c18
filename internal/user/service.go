// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/auth"
	"github.com/carterperez-dev/storefront/internal/config"
	"github.com/carterperez-dev/storefront/internal/core"
)

type Service struct {
	repo Store
}

func NewService(store Store) *Service {
	return &Service{repo: store}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user.identity(), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return user.identity(), nil
}

// Create stores a self-registered account. passwordHash must already be
// the output of core.HashPassword.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user, err := s.insert(ctx, email, passwordHash, name, RoleUser)
	if err != nil {
		return nil, err
	}

	return user.identity(), nil
}

// CreateUser is the administrative create. The password is hashed here,
// before the row is written.
func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	role := req.Role
	if role == "" {
		role = RoleUser
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.insert(ctx, req.Email, hash, req.Name, role)
}

func (s *Service) insert(
	ctx context.Context,
	email, passwordHash, name, role string,
) (*User, error) {
	if _, ok := access.ParseRole(role); !ok {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	if !core.IsPasswordHash(passwordHash) {
		return nil, fmt.Errorf(
			"create user: password is not hashed: %w",
			core.ErrInvalidInput,
		)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureAdmin creates the configured administrator if no account with
// that email exists yet. An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}

	_, err := s.repo.GetByEmail(ctx, strings.ToLower(cfg.Email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.CreateUser(ctx, CreateUserRequest{
		Email:    cfg.Email,
		Password: cfg.Password,
		Name:     cfg.Name,
		Role:     RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("ensure admin: %w", err)
	}

	slog.InfoContext(ctx, "bootstrap admin created", "user_id", user.ID)
	return nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies a profile edit. A new password is hashed before it
// reaches the repository and bumps the token version so existing access
// tokens stop being refreshed.
func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}

	var hash string
	if req.Password != nil {
		if hash, err = core.HashPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.Update(ctx, user); err != nil {
			return err
		}
		if hash == "" {
			return nil
		}
		if err := tx.UpdatePassword(ctx, id, hash); err != nil {
			return err
		}
		return tx.IncrementTokenVersion(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	if _, ok := access.ParseRole(role); !ok {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Deactivate flips is_active off. Admins cannot deactivate themselves.
func (s *Service) Deactivate(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return fmt.Errorf("deactivate self: %w", core.ErrForbidden)
	}

	return s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.SetActive(ctx, targetID, false); err != nil {
			return err
		}
		return tx.IncrementTokenVersion(ctx, targetID)
	})
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// CanDeleteUser allows admins to delete non-admin accounts other than
// their own.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return fmt.Errorf("delete self: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}

var _ auth.UserProvider = (*Service)(nil)
