package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	Detail(ctx context.Context, id uuid.UUID) (model.Order, error)
	Owned(ctx context.Context, id, customerID uuid.UUID) (model.Order, error)
	List(ctx context.Context, f store.OrderFilter, page store.Page) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (model.Order, error)
	CancelPending(ctx context.Context, id, customerID uuid.UUID) (bool, error)
}

// PriceLookup resolves the current price and stock of products in one batch.
type PriceLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

// Notifier hands an order id to the confirmation pipeline. It must not block
// and has no way to report failure back: delivery errors stay on the
// notifier's side.
type Notifier interface {
	NotifyOrderPlaced(orderID uuid.UUID)
}

type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type OrderService struct {
	orders   OrderRepository
	prices   PriceLookup
	notifier Notifier
	log      *slog.Logger
}

func NewOrderService(orders OrderRepository, prices PriceLookup, notifier Notifier, log *slog.Logger) *OrderService {
	return &OrderService{orders: orders, prices: prices, notifier: notifier, log: log}
}

// Create places an order for customerID.
//
// The order row is written first, then the line items priced from a single
// product lookup. The steps are separate statements: when a later step fails
// the order row is deleted again, but that delete is best effort and its
// failure is only logged. Stock is checked, not reserved or decremented, so
// concurrent orders may together exceed it.
func (s *OrderService) Create(ctx context.Context, customerID uuid.UUID, lines []OrderLine) (model.Order, error) {
	order := model.Order{CustomerID: customerID, Status: model.StatusPending}
	if err := s.orders.Create(ctx, &order); err != nil {
		return model.Order{}, Domain(err, "failed to create order")
	}
	log := s.log.With("order_id", order.ID, "customer_id", customerID)

	ids := lo.Uniq(lo.Map(lines, func(l OrderLine, _ int) uuid.UUID { return l.ProductID }))
	products, err := s.prices.FindByIDs(ctx, ids)
	if err != nil {
		s.compensate(ctx, log, order.ID)
		return model.Order{}, Domain(err, "failed to load products")
	}
	byID := lo.KeyBy(products, func(p model.Product) uuid.UUID { return p.ID })

	items := make([]model.OrderItem, 0, len(lines))
	for i, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			s.compensate(ctx, log, order.ID)
			return model.Order{}, Domain(ErrProductNotFound, "product %s not found", l.ProductID)
		}
		if l.Quantity > p.StockQuantity {
			s.compensate(ctx, log, order.ID)
			return model.Order{}, Domain(ErrInsufficientStock, "insufficient stock for product %s", p.ID)
		}
		items = append(items, model.OrderItem{
			OrderID:   order.ID,
			ProductID: p.ID,
			LineNo:    i,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
	}

	if err := s.orders.CreateItems(ctx, items); err != nil {
		s.compensate(ctx, log, order.ID)
		return model.Order{}, Domain(err, "failed to create order items")
	}

	// from here on the order exists; a failed read does not undo it
	full, err := s.orders.Detail(ctx, order.ID)
	if err != nil {
		return model.Order{}, Domain(err, "order %s was created but could not be loaded", order.ID)
	}

	s.notifier.NotifyOrderPlaced(order.ID)
	log.Info("order placed", "items", len(full.Items), "total", full.Total().StringFixed(2))
	return full, nil
}

func (s *OrderService) compensate(ctx context.Context, log *slog.Logger, orderID uuid.UUID) {
	if err := s.orders.Delete(context.WithoutCancel(ctx), orderID); err != nil {
		log.Error("compensating order delete failed, order row may be orphaned", "err", err)
	}
}

func parseStatus(status string) (mo.Option[model.OrderStatus], error) {
	if status == "" {
		return mo.None[model.OrderStatus](), nil
	}
	st := model.OrderStatus(status)
	if !st.Valid() {
		return mo.None[model.OrderStatus](), Invalid("unknown order status %q", status)
	}
	return mo.Some(st), nil
}

// ListOwn pages through the customer's orders, newest first.
func (s *OrderService) ListOwn(ctx context.Context, customerID uuid.UUID, status string, p PageRequest) (Paged[model.Order], error) {
	st, err := parseStatus(status)
	if err != nil {
		return Paged[model.Order]{}, err
	}
	f := store.OrderFilter{CustomerID: mo.Some(customerID), Status: st}
	orders, total, err := s.orders.List(ctx, f, p.window())
	if err != nil {
		return Paged[model.Order]{}, Unexpected(err, "failed to list orders")
	}
	return newPaged(orders, p, total), nil
}

// ListAll is the admin listing across customers.
func (s *OrderService) ListAll(ctx context.Context, status string, p PageRequest) (Paged[model.Order], error) {
	st, err := parseStatus(status)
	if err != nil {
		return Paged[model.Order]{}, err
	}
	f := store.OrderFilter{Status: st, WithCustomer: true}
	orders, total, err := s.orders.List(ctx, f, p.window())
	if err != nil {
		return Paged[model.Order]{}, Unexpected(err, "failed to list orders")
	}
	return newPaged(orders, p, total), nil
}

// GetOwn returns the order only when customerID owns it.
func (s *OrderService) GetOwn(ctx context.Context, id, customerID uuid.UUID) (model.Order, error) {
	o, err := s.orders.Owned(ctx, id, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Order{}, NotFound("order not found")
	}
	if err != nil {
		return model.Order{}, Unexpected(err, "failed to load order")
	}
	return o, nil
}

// Cancel moves the customer's own pending order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, id, customerID uuid.UUID) error {
	o, err := s.GetOwn(ctx, id, customerID)
	if err != nil {
		return err
	}
	if o.Status != model.StatusPending {
		return Domain(ErrNotCancellable, "only pending orders can be cancelled")
	}
	ok, err := s.orders.CancelPending(ctx, id, customerID)
	if err != nil {
		return Unexpected(err, "failed to cancel order")
	}
	if !ok {
		// status moved on between the read and the update
		return Domain(ErrNotCancellable, "only pending orders can be cancelled")
	}
	s.log.Info("order cancelled", "order_id", id, "customer_id", customerID)
	return nil
}

// SetStatus is the admin override; any status in the enum is accepted.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (model.Order, error) {
	if !status.Valid() {
		return model.Order{}, Invalid("unknown order status %q", status)
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if errors.Is(err, store.ErrNotFound) {
		return model.Order{}, NotFound("order not found")
	}
	if err != nil {
		return model.Order{}, Unexpected(err, "failed to update order status")
	}
	s.log.Info("order status set", "order_id", id, "status", status)
	return o, nil
}
