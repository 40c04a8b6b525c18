// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/storefront/internal/core"
)

// Repository reads and writes live accounts. Soft-deleted rows are
// invisible to every method.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Count(ctx context.Context) (int, error)
}

// Store runs several account writes as one unit.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type pgStore struct {
	Repository
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &pgStore{Repository: NewRepository(db), db: db}
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	return core.InTxWithOptions(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx))
	})
}

const (
	userColumns = `id, email, password_hash, name, role, is_active,
		token_version, created_at, updated_at, deleted_at`
	live = `deleted_at IS NULL`
)

func (r *repository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, user, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive,
	)
	return translate("create user", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.lookup(ctx, "id", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.lookup(ctx, "email", email)
}

func (r *repository) lookup(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 AND %s`,
		userColumns, column, live)

	var u User
	if err := r.db.GetContext(ctx, &u, query, value); err != nil {
		return nil, translate("get user by "+column, err)
	}
	return &u, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, updated_at = NOW()
		WHERE id = $1 AND ` + live + `
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID, user.Name, user.Email, user.Role,
	)
	return translate("update user", err)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.set(ctx, "update password", id, "password_hash = $2", passwordHash)
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, "set user active", id, "is_active = $2", active)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.set(ctx, "bump token version", id, "token_version = token_version + 1")
}

// SoftDelete hides the account and disables it. The row stays so orders
// placed by the user keep their owner.
func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.set(ctx, "delete user", id, "deleted_at = NOW(), is_active = false")
}

// set updates one live row. assignments may reference $2 onward.
func (r *repository) set(
	ctx context.Context,
	op, id, assignments string,
	args ...any,
) error {
	query := `UPDATE users SET ` + assignments + `, updated_at = NOW()
		WHERE id = $1 AND ` + live

	res, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}

// filter accumulates WHERE conditions with positional arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(f.args))))
}

func (f *filter) where() string {
	return strings.Join(append([]string{live}, f.conds...), " AND ")
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var f filter
	if params.Search != "" {
		f.add("(email ILIKE ? OR name ILIKE ?)", core.LikeContains(params.Search))
	}
	if params.Role != "" {
		f.add("role = ?", params.Role)
	}
	if params.Active != nil {
		f.add("is_active = ?", *params.Active)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE `+f.where(), f.args...,
	); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	n := len(f.args)
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, f.where(), n+1, n+2)

	users := []User{}
	args := append(f.args, params.PageSize, params.Offset())
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+live); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), core.IsMalformedInput(err):
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	case core.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, core.ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}
