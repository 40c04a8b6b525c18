// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/catalog"
	"github.com/carterperez-dev/storefront/internal/core"
)

type PlaceOrderRequest struct {
	UserID *string       `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Items  []ItemRequest `json:"items"             validate:"required,min=1,max=100,dive"`
}

type ItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=10000"`
}

func (r PlaceOrderRequest) Lines() []LineRequest {
	lines := make([]LineRequest, len(r.Items))
	for i, item := range r.Items {
		lines[i] = LineRequest{ProductID: item.ProductID}
		if item.Quantity != nil {
			lines[i].Quantity = *item.Quantity
		}
	}
	return lines
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

type OrderResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Lines       []LineResponse  `json:"lines,omitempty"`
	User        *Customer       `json:"user,omitempty"`
}

type LineResponse struct {
	ID        string           `json:"id"`
	OrderID   string           `json:"order_id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	LineTotal decimal.Decimal  `json:"line_total"`
	Product   *catalog.Product `json:"product,omitempty"`
}

type SummaryResponse struct {
	RecentOrders      []OrderResponse `json:"recent_orders"`
	TotalOrders       int             `json:"total_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type ListOrdersParams struct {
	core.Pagination
	UserID string
	Status Status
}

type ListLinesParams struct {
	core.Pagination
	OrderID   string
	ProductID string
}

func ToOrderResponse(o *Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		User:        o.User,
	}

	if len(o.Lines) > 0 {
		resp.Lines = ToLineResponseList(o.Lines)
	}

	return resp
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func ToLineResponse(l *Line) LineResponse {
	return LineResponse{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Price:     l.Price,
		LineTotal: l.Total(),
		Product:   l.Product,
	}
}

func ToLineResponseList(lines []Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i := range lines {
		out[i] = ToLineResponse(&lines[i])
	}
	return out
}

func ToSummaryResponse(s *Summary) SummaryResponse {
	return SummaryResponse{
		RecentOrders:      ToOrderResponseList(s.RecentOrders),
		TotalOrders:       s.TotalOrders,
		TotalSpent:        s.TotalSpent,
		AverageOrderValue: s.AverageOrderValue,
	}
}
