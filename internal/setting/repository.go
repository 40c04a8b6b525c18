// AngelaMos | 2026
// repository.go

package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/storefront/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, s *Setting) error
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Delete(ctx context.Context, key string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert writes s by key. On conflict the existing row keeps its id and
// takes the new value; s is refreshed from the stored row.
func (r *repository) Upsert(ctx context.Context, s *Setting) error {
	query := `
		INSERT INTO settings (id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, key, value, updated_at`

	if err := r.db.GetContext(ctx, s, query, s.ID, s.Key, s.Value); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}

	return nil
}

func (r *repository) Get(ctx context.Context, key string) (*Setting, error) {
	query := `SELECT id, key, value, updated_at FROM settings WHERE key = $1`

	var s Setting
	err := r.db.GetContext(ctx, &s, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get setting: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	query := `SELECT id, key, value, updated_at FROM settings ORDER BY key`

	settings := []Setting{}
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return settings, nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete setting: %w", core.ErrNotFound)
	}

	return nil
}
