// AngelaMos | 2026
// entity.go

package order

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a committed purchase. TotalAmount always equals the sum of
// Price * Quantity over its lines.
type Order struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      Status          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`

	Lines []Line    `db:"-"`
	User  *Customer `db:"-"`
}

// Line is one product entry of an order. Price is the product's unit price
// at the moment the order was placed and never follows later catalog edits.
type Line struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Position  int             `db:"position"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`

	Product *catalog.Product `db:"product"`
}

func (l Line) Total() decimal.Decimal {
	return catalog.LineTotal(l.Price, l.Quantity)
}

// Customer is the owning user as embedded in an order read-back.
type Customer struct {
	ID    string `db:"id"    json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name"  json:"name"`
}

// MaxQuantity is the largest quantity a single line may carry. It keeps
// the quantity inside the INTEGER column.
const MaxQuantity = math.MaxInt32

// LineRequest is one requested line. A zero Quantity means unspecified and
// is treated as 1.
type LineRequest struct {
	ProductID string
	Quantity  int
}

type Summary struct {
	RecentOrders      []Order
	TotalOrders       int
	TotalSpent        decimal.Decimal
	AverageOrderValue decimal.Decimal
}
