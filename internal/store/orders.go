package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"gorm.io/gorm"

	"example.com/storefront/internal/model"
)

type OrderFilter struct {
	CustomerID mo.Option[uuid.UUID]
	Status     mo.Option[model.OrderStatus]
	// WithCustomer attaches the owning profile to each order.
	WithCustomer bool
}

func (f OrderFilter) scope(db *gorm.DB) *gorm.DB {
	if id, ok := f.CustomerID.Get(); ok {
		db = db.Where("customer_id = ?", id)
	}
	if st, ok := f.Status.Get(); ok {
		db = db.Where("status = ?", st)
	}
	return db
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no asc") }).
		Preload("Items.Product")
}

type Orders struct{ db *gorm.DB }

func NewOrders(db *gorm.DB) *Orders { return &Orders{db: db} }

func (s *Orders) Create(ctx context.Context, o *model.Order) error {
	return translate(s.db.WithContext(ctx).Omit("Customer", "Items").Create(o).Error)
}

// Delete removes the order and any line items already written for it.
func (s *Orders) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return translate(err)
	}
	return translate(db.Where("id = ?", id).Delete(&model.Order{}).Error)
}

func (s *Orders) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Omit("Product").Create(&items).Error)
}

// Detail loads one order with its items and each item's product display fields.
func (s *Orders) Detail(ctx context.Context, id uuid.UUID) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Scopes(withItems).Where("id = ?", id).First(&o).Error
	return o, translate(err)
}

// Owned is Detail restricted to orders belonging to customerID.
func (s *Orders) Owned(ctx context.Context, id, customerID uuid.UUID) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Scopes(withItems).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&o).Error
	return o, translate(err)
}

func (s *Orders) List(ctx context.Context, f OrderFilter, page Page) ([]model.Order, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Order{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	q := s.db.WithContext(ctx).Scopes(f.scope, page.scope, withItems)
	if f.WithCustomer {
		q = q.Preload("Customer")
	}
	var orders []model.Order
	err := q.Order("created_at desc").Find(&orders).Error
	return orders, total, translate(err)
}

func (s *Orders) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (model.Order, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return model.Order{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Order{}, ErrNotFound
	}
	var o model.Order
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	return o, translate(err)
}

// CancelPending flips a pending order owned by customerID to cancelled. The
// ownership and status checks live in the update predicate itself; false means
// no row matched.
func (s *Orders) CancelPending(ctx context.Context, id, customerID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND customer_id = ? AND status = ?", id, customerID, model.StatusPending).
		Update("status", model.StatusCancelled)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
