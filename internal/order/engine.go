// AngelaMos | 2026
// engine.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/storefront/internal/config"
	"github.com/carterperez-dev/storefront/internal/core"
)

const tracerName = "storefront/order"

// StockPolicy decides the stock left after qty units are taken from a
// tracked product holding stock units.
type StockPolicy interface {
	Apply(stock, qty int) (int, error)
	Name() string
}

// ClampPolicy never rejects. Stock bottoms out at zero.
type ClampPolicy struct{}

func (ClampPolicy) Apply(stock, qty int) (int, error) {
	return max(0, stock-qty), nil
}

func (ClampPolicy) Name() string { return config.StockPolicyClamp }

// StrictPolicy rejects any line asking for more than is in stock.
type StrictPolicy struct{}

func (StrictPolicy) Apply(stock, qty int) (int, error) {
	if qty > stock {
		return stock, fmt.Errorf(
			"requested %d, %d in stock: %w",
			qty,
			stock,
			core.ErrStockConstraint,
		)
	}
	return stock - qty, nil
}

func (StrictPolicy) Name() string { return config.StockPolicyStrict }

func PolicyFor(name string) StockPolicy {
	if name == config.StockPolicyStrict {
		return StrictPolicy{}
	}
	return ClampPolicy{}
}

type Engine struct {
	store  Store
	policy StockPolicy
	logger *slog.Logger
}

func NewEngine(store Store, policy StockPolicy, logger *slog.Logger) *Engine {
	if policy == nil {
		policy = ClampPolicy{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, policy: policy, logger: logger}
}

// PlaceOrder creates an order for userID from lines in one transaction.
// Lines are priced from the catalog at the time of the call and stock is
// taken from tracked products. On any error nothing is written; errors
// that are not InvalidRequest, InvalidReference or StockConstraint are
// reported as StorageFailure.
func (e *Engine) PlaceOrder(
	ctx context.Context,
	userID string,
	reqs []LineRequest,
) (_ *Order, err error) {
	lines, err := normalizeLines(reqs)
	if err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, tracerName, "order.PlaceOrder",
		attribute.String("order.user_id", userID),
		attribute.Int("order.lines", len(lines)),
		attribute.String("order.stock_policy", e.policy.Name()),
	)
	defer func() { core.EndSpan(span, err) }()

	var placed *Order
	err = e.store.WithinTx(ctx, func(tx Repository) error {
		o, txErr := e.place(ctx, tx, userID, lines)
		placed = o
		return txErr
	})
	if err != nil {
		err = classify(err)
		e.logger.WarnContext(ctx, "order rejected",
			"user_id", userID,
			"lines", len(lines),
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID),
		attribute.String("order.total", placed.TotalAmount.StringFixed(2)),
	)
	e.logger.InfoContext(ctx, "order placed",
		"order_id", placed.ID,
		"user_id", userID,
		"lines", len(lines),
		"total", placed.TotalAmount.StringFixed(2),
	)

	full, readErr := e.store.GetOrder(ctx, placed.ID)
	if readErr != nil {
		e.logger.WarnContext(ctx, "order read-back failed, returning written state",
			"order_id", placed.ID,
			"error", readErr,
		)
		return placed, nil
	}

	return full, nil
}

func (e *Engine) place(
	ctx context.Context,
	tx Repository,
	userID string,
	lines []LineRequest,
) (*Order, error) {
	exists, err := tx.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, core.ErrInvalidReference)
	}

	for _, id := range lockOrder(lines) {
		if _, err := tx.LockProduct(ctx, id); err != nil {
			return nil, productError(id, err)
		}
	}

	o := &Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		TotalAmount: decimal.Zero,
		Status:      StatusPending,
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, err
	}

	total := decimal.Zero
	o.Lines = make([]Line, 0, len(lines))

	for i, req := range lines {
		p, err := tx.LockProduct(ctx, req.ProductID)
		if err != nil {
			return nil, productError(req.ProductID, err)
		}

		line := Line{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Position:  i,
			Quantity:  req.Quantity,
			Price:     p.Price,
		}
		if err := tx.InsertLine(ctx, &line); err != nil {
			return nil, err
		}

		total = total.Add(line.Total())

		if p.TracksStock() {
			left, err := e.policy.Apply(*p.Stock, req.Quantity)
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", p.ID, err)
			}
			if err := tx.SetStock(ctx, p.ID, left); err != nil {
				return nil, err
			}
			p.Stock = &left
		}

		line.Product = p
		o.Lines = append(o.Lines, line)
	}

	if err := tx.SetTotal(ctx, o.ID, total); err != nil {
		return nil, err
	}
	o.TotalAmount = total

	return o, nil
}

func normalizeLines(reqs []LineRequest) ([]LineRequest, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no lines: %w", core.ErrInvalidRequest)
	}

	out := make([]LineRequest, len(reqs))
	for i, r := range reqs {
		if r.ProductID == "" {
			return nil, fmt.Errorf(
				"line %d: missing product: %w",
				i+1,
				core.ErrInvalidRequest,
			)
		}
		if r.Quantity < 0 {
			return nil, fmt.Errorf(
				"line %d: negative quantity %d: %w",
				i+1,
				r.Quantity,
				core.ErrInvalidRequest,
			)
		}
		if r.Quantity > MaxQuantity {
			return nil, fmt.Errorf(
				"line %d: quantity %d exceeds %d: %w",
				i+1,
				r.Quantity,
				MaxQuantity,
				core.ErrInvalidRequest,
			)
		}
		if r.Quantity == 0 {
			r.Quantity = 1
		}
		out[i] = r
	}

	return out, nil
}

// lockOrder returns the distinct product ids in ascending order. Taking row
// locks in this order keeps concurrent orders over overlapping products
// from deadlocking.
func lockOrder(lines []LineRequest) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))

	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}

	sort.Strings(ids)
	return ids
}

func productError(id string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("product %s: %w", id, core.ErrInvalidReference)
	}
	return err
}

func classify(err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, core.ErrInvalidReference),
		errors.Is(err, core.ErrStockConstraint):
		return fmt.Errorf("place order: %w", err)
	}
	return fmt.Errorf("place order: %w: %w", core.ErrStorageFailure, err)
}
