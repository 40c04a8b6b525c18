// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront/internal/core"
)

var ErrNegativePrice = fmt.Errorf("price must not be negative: %w", core.ErrInvalidInput)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCategory(
	ctx context.Context,
	req CategoryRequest,
) (*Category, error) {
	c := &Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) UpdateCategory(
	ctx context.Context,
	id string,
	req CategoryRequest,
) (*Category, error) {
	c := &Category{ID: id, Name: req.Name, Description: req.Description}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) CreateProduct(
	ctx context.Context,
	req CreateProductRequest,
) (*Product, *Category, error) {
	if req.Price.IsNegative() {
		return nil, nil, ErrNegativePrice
	}

	category, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, nil, err
	}

	p := &Product{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Price:      req.Price.Round(2),
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, nil, err
	}

	return p, category, nil
}

func (s *Service) GetProduct(
	ctx context.Context,
	id string,
) (*Product, *Category, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var category *Category
	if p.CategoryID != nil {
		category, err = s.repo.GetCategory(ctx, *p.CategoryID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, nil, err
		}
	}

	return p, category, nil
}

func (s *Service) ListProducts(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	return s.repo.ListProducts(ctx, params)
}

func (s *Service) UpdateProduct(
	ctx context.Context,
	id string,
	req UpdateProductRequest,
) (*Product, *Category, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, nil, ErrNegativePrice
		}
		p.Price = req.Price.Round(2)
	}
	if req.Stock != nil {
		p.Stock = req.Stock
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}

	category, err := s.resolveCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, nil, err
	}

	return p, category, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) CountProducts(ctx context.Context) (int, error) {
	return s.repo.CountProducts(ctx)
}

// resolveCategory loads the referenced category. A reference to a missing
// category is an invalid reference rather than a not-found.
func (s *Service) resolveCategory(
	ctx context.Context,
	id *string,
) (*Category, error) {
	if id == nil || *id == "" {
		return nil, nil
	}

	c, err := s.repo.GetCategory(ctx, *id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf(
			"category %s: %w",
			*id,
			core.ErrInvalidReference,
		)
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// LineTotal is the price of qty units at the given unit price.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
