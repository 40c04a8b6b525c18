// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/catalog"
	"github.com/carterperez-dev/storefront/internal/core"
)

// Repository is the set of order queries. Bound to a transaction it is the
// write path of the engine; bound to the pool it serves reads.
type Repository interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	LockProduct(ctx context.Context, productID string) (*catalog.Product, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertLine(ctx context.Context, l *Line) error
	SetStock(ctx context.Context, productID string, stock int) error
	SetTotal(ctx context.Context, orderID string, total decimal.Decimal) error

	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, int, error)
	GetLine(ctx context.Context, id string) (*Line, error)
	ListLines(ctx context.Context, params ListLinesParams) ([]Line, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	DeleteOrder(ctx context.Context, id string) error
	Totals(ctx context.Context, userID string) (int, decimal.Decimal, error)
}

// Store adds a transactional scope to Repository. Everything fn writes is
// committed together or not at all.
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

func (s *pgStore) WithinTx(
	ctx context.Context,
	fn func(tx Repository) error,
) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}

	return core.InTxWithOptions(ctx, s.db, opts, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) UserExists(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID)
	if core.IsMalformedInput(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}

	return exists, nil
}

func (r *repository) LockProduct(
	ctx context.Context,
	productID string,
) (*catalog.Product, error) {
	query := `
		SELECT id, name, price, stock, category_id, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE`

	var p catalog.Product
	err := r.db.GetContext(ctx, &p, query, productID)
	if missing(err) {
		return nil, fmt.Errorf("lock product: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}

	return &p, nil
}

func (r *repository) InsertOrder(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, o, query,
		o.ID,
		o.UserID,
		o.TotalAmount,
		o.Status,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("insert order: %w", core.ErrInvalidReference)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *repository) InsertLine(ctx context.Context, l *Line) error {
	query := `
		INSERT INTO order_lines (id, order_id, product_id, position, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.OrderID,
		l.ProductID,
		l.Position,
		l.Quantity,
		l.Price,
	)
	switch {
	case err == nil:
	case core.IsForeignKeyError(err):
		return fmt.Errorf("insert line: %w", core.ErrInvalidReference)
	case core.IsOutOfRange(err):
		return fmt.Errorf("insert line: quantity or price out of range: %w", core.ErrInvalidRequest)
	default:
		return fmt.Errorf("insert line: %w", err)
	}

	return nil
}

func (r *repository) SetStock(ctx context.Context, productID string, stock int) error {
	query := `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, productID, stock)
	if err != nil {
		if core.IsCheckViolation(err) {
			return fmt.Errorf("set stock: %w", core.ErrStockConstraint)
		}
		return fmt.Errorf("set stock: %w", err)
	}

	return expectOne("set stock", result, core.ErrInvalidReference)
}

func (r *repository) SetTotal(
	ctx context.Context,
	orderID string,
	total decimal.Decimal,
) error {
	query := `UPDATE orders SET total_amount = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, orderID, total)
	if core.IsOutOfRange(err) {
		return fmt.Errorf("set total %s: out of range: %w", total, core.ErrInvalidRequest)
	}
	if err != nil {
		return fmt.Errorf("set total: %w", err)
	}

	return expectOne("set total", result, core.ErrNotFound)
}

const orderColumns = `id, user_id, total_amount, status, created_at, updated_at`

// GetOrder loads the full graph: the order, its lines in placement order
// with their products, and the owning user.
func (r *repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if missing(err) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	lines := []Line{}
	err = r.db.SelectContext(ctx, &lines, lineSelect+`
		WHERE l.order_id = $1
		ORDER BY l.position`, id)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	o.Lines = lines

	var c Customer
	err = r.db.GetContext(ctx, &c,
		`SELECT id, email, name FROM users WHERE id = $1`, o.UserID)
	switch {
	case err == nil:
		o.User = &c
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("get order user: %w", err)
	}

	return &o, nil
}

func (r *repository) ListOrders(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM orders WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

const lineSelect = `
		SELECT l.id, l.order_id, l.product_id, l.position, l.quantity, l.price,
		       p.id          AS "product.id",
		       p.name        AS "product.name",
		       p.price       AS "product.price",
		       p.stock       AS "product.stock",
		       p.category_id AS "product.category_id",
		       p.created_at  AS "product.created_at",
		       p.updated_at  AS "product.updated_at"
		FROM order_lines l
		JOIN products p ON p.id = l.product_id`

func (r *repository) GetLine(ctx context.Context, id string) (*Line, error) {
	var l Line
	err := r.db.GetContext(ctx, &l, lineSelect+` WHERE l.id = $1`, id)
	if missing(err) {
		return nil, fmt.Errorf("get line: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get line: %w", err)
	}

	return &l, nil
}

func (r *repository) ListLines(
	ctx context.Context,
	params ListLinesParams,
) ([]Line, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.OrderID != "" {
		conditions = append(conditions, fmt.Sprintf("l.order_id = $%d", argIdx))
		args = append(args, params.OrderID)
		argIdx++
	}

	if params.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf("l.product_id = $%d", argIdx))
		args = append(args, params.ProductID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM order_lines l WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lines: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY l.order_id, l.position
		LIMIT $%d OFFSET $%d`,
		lineSelect, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	lines := []Line{}
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lines: %w", err)
	}

	return lines, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if core.IsMalformedInput(err) {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	return expectOne("update status", result, core.ErrNotFound)
}

// DeleteOrder removes the order. Its lines go with it through the
// ON DELETE CASCADE foreign key.
func (r *repository) DeleteOrder(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if core.IsMalformedInput(err) {
		return fmt.Errorf("delete order: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	return expectOne("delete order", result, core.ErrNotFound)
}

// Totals returns the order count and summed total_amount for userID, or
// across all users when userID is empty. Cancelled orders are excluded.
func (r *repository) Totals(
	ctx context.Context,
	userID string,
) (int, decimal.Decimal, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS spent
		FROM orders
		WHERE status <> 'cancelled' AND ($1 = '' OR user_id::text = $1)`

	var row struct {
		Count int             `db:"count"`
		Spent decimal.Decimal `db:"spent"`
	}
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return 0, decimal.Zero, fmt.Errorf("order totals: %w", err)
	}

	return row.Count, row.Spent, nil
}

// missing reports a lookup that found no row. An id Postgres cannot parse
// as a uuid cannot name a row either.
func missing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || core.IsMalformedInput(err)
}

func expectOne(op string, result sql.Result, missing error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, missing)
	}

	return nil
}
