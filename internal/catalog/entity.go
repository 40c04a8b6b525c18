// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string `db:"id"          json:"id"`
	Name        string `db:"name"        json:"name"`
	Description string `db:"description" json:"description"`
}

// Product is a catalog entry. A nil Stock means the product's inventory
// is not tracked.
type Product struct {
	ID         string          `db:"id"          json:"id"`
	Name       string          `db:"name"        json:"name"`
	Price      decimal.Decimal `db:"price"       json:"price"`
	Stock      *int            `db:"stock"       json:"stock"`
	CategoryID *string         `db:"category_id" json:"category_id"`
	CreatedAt  time.Time       `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"  json:"updated_at"`
}

func (p *Product) TracksStock() bool {
	return p.Stock != nil
}
