package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"gorm.io/gorm"

	"example.com/storefront/internal/model"
)

type ProductFilter struct {
	// Search matches a case-insensitive substring of the name.
	Search     mo.Option[string]
	ActiveOnly bool
}

func (f ProductFilter) scope(db *gorm.DB) *gorm.DB {
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if s, ok := f.Search.Get(); ok {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	return db
}

type Products struct{ db *gorm.DB }

func NewProducts(db *gorm.DB) *Products { return &Products{db: db} }

func (s *Products) List(ctx context.Context, f ProductFilter, page Page) ([]model.Product, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var ps []model.Product
	err := s.db.WithContext(ctx).Scopes(f.scope, page.scope).Order("created_at desc").Find(&ps).Error
	return ps, total, translate(err)
}

func (s *Products) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, translate(err)
}

func (s *Products) GetActive(ctx context.Context, id uuid.UUID) (model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&p).Error
	return p, translate(err)
}

// FindByIDs loads the pricing columns of the given products in one query.
// Ids with no matching row are simply absent from the result.
func (s *Products) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var ps []model.Product
	if len(ids) == 0 {
		return ps, nil
	}
	err := s.db.WithContext(ctx).
		Select("id", "price", "stock_quantity").
		Where("id IN ?", ids).
		Find(&ps).Error
	return ps, translate(err)
}

func (s *Products) Create(ctx context.Context, p *model.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

// Update applies the given columns and returns the stored row.
func (s *Products) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (model.Product, error) {
	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return model.Product{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Product{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Deactivate is the logical delete: the row stays, is_active goes false.
func (s *Products) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
