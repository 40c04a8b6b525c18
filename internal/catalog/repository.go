// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/storefront/internal/core"
)

// ErrInUse is returned when a row cannot be removed because other rows
// still reference it.
var ErrInUse = errors.New("resource in use")

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetCategory(ctx context.Context, id string) (*Category, error) {
	query := `SELECT id, name, description FROM categories WHERE id = $1`

	var c Category
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, description FROM categories ORDER BY name`

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) UpdateCategory(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update category: %w", err)
	}

	return expectOne("update category", result)
}

func (r *repository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("delete category: %w", ErrInUse)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	return expectOne("delete category", result)
}

const productColumns = `id, name, price, stock, category_id, created_at, updated_at`

func (r *repository) CreateProduct(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Name,
		p.Price,
		p.Stock,
		p.CategoryID,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrInvalidReference)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetProduct(ctx context.Context, id string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

func (r *repository) ListProducts(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, core.LikeContains(params.Search))
		argIdx++
	}

	if params.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIdx))
		args = append(args, params.CategoryID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

func (r *repository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, stock = $4, category_id = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.Price,
		p.Stock,
		p.CategoryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("update product: %w", core.ErrInvalidReference)
		}
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("delete product: %w", ErrInUse)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	return expectOne("delete product", result)
}

func (r *repository) CountProducts(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func expectOne(op string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
