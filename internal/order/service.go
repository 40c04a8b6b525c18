// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/core"
)

const recentOrderCount = 5

type Service struct {
	store  Store
	engine *Engine
}

func NewService(store Store, engine *Engine) *Service {
	return &Service{store: store, engine: engine}
}

func (s *Service) Place(
	ctx context.Context,
	userID string,
	lines []LineRequest,
) (*Order, error) {
	return s.engine.PlaceOrder(ctx, userID, lines)
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	return s.store.ListOrders(ctx, params)
}

func (s *Service) GetLine(ctx context.Context, id string) (*Line, error) {
	return s.store.GetLine(ctx, id)
}

func (s *Service) ListLines(
	ctx context.Context,
	params ListLinesParams,
) ([]Line, int, error) {
	return s.store.ListLines(ctx, params)
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	id string,
	status Status,
) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, core.ErrInvalidInput)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.store.GetOrder(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteOrder(ctx, id)
}

// Summary is the buyer profile for userID: the most recent orders plus
// lifetime count, spend and average order value.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	recent, _, err := s.store.ListOrders(ctx, ListOrdersParams{
		Pagination: core.Pagination{Page: 1, PageSize: recentOrderCount},
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	count, spent, err := s.store.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = spent.DivRound(decimal.NewFromInt(int64(count)), 2)
	}

	return &Summary{
		RecentOrders:      recent,
		TotalOrders:       count,
		TotalSpent:        spent,
		AverageOrderValue: avg,
	}, nil
}

// Revenue is the order count and summed value across all users.
func (s *Service) Revenue(ctx context.Context) (int, decimal.Decimal, error) {
	return s.store.Totals(ctx, "")
}
