package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

type ProductRepository interface {
	List(ctx context.Context, f store.ProductFilter, page store.Page) ([]model.Product, int64, error)
	GetActive(ctx context.Context, id uuid.UUID) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (model.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ProductInput is the body accepted by create and update. Nil pointers mean
// "not given": create defaults them, update leaves the column alone.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      *bool           `json:"is_active"`
}

type ProductService struct {
	products ProductRepository
	log      *slog.Logger
}

func NewProductService(products ProductRepository, log *slog.Logger) *ProductService {
	return &ProductService{products: products, log: log}
}

// List pages through active products; search narrows by name.
func (s *ProductService) List(ctx context.Context, search string, p PageRequest) (Paged[model.Product], error) {
	f := store.ProductFilter{ActiveOnly: true}
	if search = strings.TrimSpace(search); search != "" {
		f.Search = mo.Some(search)
	}
	ps, total, err := s.products.List(ctx, f, p.window())
	if err != nil {
		return Paged[model.Product]{}, Unexpected(err, "failed to list products")
	}
	return newPaged(ps, p, total), nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := s.products.GetActive(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Product{}, NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, Unexpected(err, "failed to load product")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	p := model.Product{
		Name:          in.Name,
		Description:   lo.FromPtrOr(in.Description, ""),
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsActive:      lo.FromPtrOr(in.IsActive, true),
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return model.Product{}, Domain(err, "failed to create product")
	}
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (model.Product, error) {
	fields := map[string]any{
		"name":           in.Name,
		"price":          in.Price,
		"stock_quantity": in.StockQuantity,
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	p, err := s.products.Update(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return model.Product{}, NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, Domain(err, "failed to update product")
	}
	s.log.Info("product updated", "product_id", id)
	return p, nil
}

// Deactivate hides the product from the catalog; the row is kept so existing
// order items still resolve it.
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := s.products.Deactivate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("product not found")
	}
	if err != nil {
		return Unexpected(err, "failed to deactivate product")
	}
	s.log.Info("product deactivated", "product_id", id)
	return nil
}
