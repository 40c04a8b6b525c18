// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/core"
)

type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type CreateProductRequest struct {
	Name       string          `json:"name"        validate:"required,min=1,max=200"`
	Price      decimal.Decimal `json:"price"`
	Stock      *int            `json:"stock"       validate:"omitempty,min=0"`
	CategoryID *string         `json:"category_id" validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name       *string          `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Stock      *int             `json:"stock,omitempty"       validate:"omitempty,min=0"`
	CategoryID *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
}

type ProductResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      *int            `json:"stock"`
	CategoryID *string         `json:"category_id,omitempty"`
	Category   *Category       `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type ListProductsParams struct {
	core.Pagination
	Search     string
	CategoryID string
}

func ToProductResponse(p *Product, c *Category) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		CategoryID: p.CategoryID,
		Category:   c,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
