package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

var quiet = slog.New(slog.DiscardHandler)

type fakeOrders struct {
	created   []model.Order
	items     []model.OrderItem
	deleted   []uuid.UUID
	itemsErr  error
	detailErr error
	createErr error
	cancelled bool
	owned     map[uuid.UUID]model.Order
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = uuid.New()
	f.created = append(f.created, *o)
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOrders) CreateItems(_ context.Context, items []model.OrderItem) error {
	if f.itemsErr != nil {
		return f.itemsErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeOrders) Detail(_ context.Context, id uuid.UUID) (model.Order, error) {
	if f.detailErr != nil {
		return model.Order{}, f.detailErr
	}
	for _, o := range f.created {
		if o.ID == id {
			o.Items = f.items
			return o, nil
		}
	}
	return model.Order{}, store.ErrNotFound
}

func (f *fakeOrders) Owned(_ context.Context, id, customerID uuid.UUID) (model.Order, error) {
	o, ok := f.owned[id]
	if !ok || o.CustomerID != customerID {
		return model.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context, store.OrderFilter, store.Page) ([]model.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) (model.Order, error) {
	o, ok := f.owned[id]
	if !ok {
		return model.Order{}, store.ErrNotFound
	}
	o.Status = status
	return o, nil
}

func (f *fakeOrders) CancelPending(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.cancelled, nil
}

type fakePrices struct {
	products []model.Product
	err      error
}

func (f fakePrices) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type recordingNotifier struct{ ids []uuid.UUID }

func (n *recordingNotifier) NotifyOrderPlaced(id uuid.UUID) { n.ids = append(n.ids, id) }

func widget(price string, stock int) model.Product {
	return model.Product{ID: uuid.New(), Name: "Widget", Price: decimal.RequireFromString(price), StockQuantity: stock, IsActive: true}
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	a, b := widget("9.99", 5), widget("2.50", 10)
	orders := &fakeOrders{}
	notes := &recordingNotifier{}
	svc := NewOrderService(orders, fakePrices{products: []model.Product{a, b}}, notes, quiet)
	customer := uuid.New()

	o, err := svc.Create(context.Background(), customer, []OrderLine{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, customer, o.CustomerID)
	assert.Equal(t, model.StatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[0].UnitPrice.Equal(a.Price))
	assert.Equal(t, []int{0, 1}, []int{o.Items[0].LineNo, o.Items[1].LineNo})
	assert.Equal(t, b.ID, o.Items[1].ProductID)
	assert.Equal(t, "27.48", o.Total().StringFixed(2))
	assert.Empty(t, orders.deleted)
	assert.Equal(t, []uuid.UUID{o.ID}, notes.ids)
}

func TestCreateOrderKeepsDuplicateLines(t *testing.T) {
	a := widget("1.00", 3)
	orders := &fakeOrders{}
	svc := NewOrderService(orders, fakePrices{products: []model.Product{a}}, &recordingNotifier{}, quiet)

	o, err := svc.Create(context.Background(), uuid.New(), []OrderLine{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: a.ID, Quantity: 3},
	})
	require.NoError(t, err)
	// stock is checked per line, not per product
	assert.Len(t, o.Items, 2)
}

func TestCreateOrderMissingProduct(t *testing.T) {
	orders := &fakeOrders{}
	notes := &recordingNotifier{}
	svc := NewOrderService(orders, fakePrices{}, notes, quiet)

	_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: uuid.New(), Quantity: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, KindDomain, KindOf(err))
	require.Len(t, orders.created, 1)
	assert.Equal(t, []uuid.UUID{orders.created[0].ID}, orders.deleted)
	assert.Empty(t, orders.items)
	assert.Empty(t, notes.ids)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	a := widget("9.99", 1)
	orders := &fakeOrders{}
	svc := NewOrderService(orders, fakePrices{products: []model.Product{a}}, &recordingNotifier{}, quiet)

	_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: a.ID, Quantity: 2}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, KindDomain, KindOf(err))
	assert.Empty(t, orders.items)
	assert.Len(t, orders.deleted, 1)
}

func TestCreateOrderCompensatesOnLaterFailures(t *testing.T) {
	a := widget("9.99", 5)
	boom := errors.New("boom")

	t.Run("lookup", func(t *testing.T) {
		orders := &fakeOrders{}
		svc := NewOrderService(orders, fakePrices{err: boom}, &recordingNotifier{}, quiet)
		_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: a.ID, Quantity: 1}})
		assert.ErrorIs(t, err, boom)
		assert.Len(t, orders.deleted, 1)
	})

	t.Run("items", func(t *testing.T) {
		orders := &fakeOrders{itemsErr: boom}
		svc := NewOrderService(orders, fakePrices{products: []model.Product{a}}, &recordingNotifier{}, quiet)
		_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: a.ID, Quantity: 1}})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, KindDomain, KindOf(err))
		assert.Len(t, orders.deleted, 1)
	})

	t.Run("reload keeps the order", func(t *testing.T) {
		orders := &fakeOrders{detailErr: boom}
		notes := &recordingNotifier{}
		svc := NewOrderService(orders, fakePrices{products: []model.Product{a}}, notes, quiet)
		_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: a.ID, Quantity: 1}})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, orders.deleted)
		assert.Len(t, orders.items, 1)
		assert.Empty(t, notes.ids)
	})

	t.Run("order insert", func(t *testing.T) {
		orders := &fakeOrders{createErr: boom}
		svc := NewOrderService(orders, fakePrices{products: []model.Product{a}}, &recordingNotifier{}, quiet)
		_, err := svc.Create(context.Background(), uuid.New(), []OrderLine{{ProductID: a.ID, Quantity: 1}})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, orders.deleted)
	})
}

func TestCancel(t *testing.T) {
	customer := uuid.New()
	pending := model.Order{ID: uuid.New(), CustomerID: customer, Status: model.StatusPending}
	shipped := model.Order{ID: uuid.New(), CustomerID: customer, Status: model.StatusShipped}
	orders := &fakeOrders{cancelled: true, owned: map[uuid.UUID]model.Order{
		pending.ID: pending,
		shipped.ID: shipped,
	}}
	svc := NewOrderService(orders, fakePrices{}, &recordingNotifier{}, quiet)
	ctx := context.Background()

	assert.NoError(t, svc.Cancel(ctx, pending.ID, customer))

	err := svc.Cancel(ctx, shipped.ID, customer)
	assert.ErrorIs(t, err, ErrNotCancellable)

	err = svc.Cancel(ctx, pending.ID, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))

	orders.cancelled = false
	err = svc.Cancel(ctx, pending.ID, customer)
	assert.ErrorIs(t, err, ErrNotCancellable, "lost race with a status change")
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewOrderService(&fakeOrders{}, fakePrices{}, &recordingNotifier{}, quiet)
	_, err := svc.ListAll(context.Background(), "lost", ParsePage("", ""))
	assert.Equal(t, KindValidation, KindOf(err))

	page, err := svc.ListOwn(context.Background(), uuid.New(), "", ParsePage("", ""))
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Zero(t, page.Pagination.TotalPages)
}

func TestSetStatus(t *testing.T) {
	o := model.Order{ID: uuid.New(), CustomerID: uuid.New(), Status: model.StatusPending}
	svc := NewOrderService(&fakeOrders{owned: map[uuid.UUID]model.Order{o.ID: o}}, fakePrices{}, &recordingNotifier{}, quiet)
	ctx := context.Background()

	got, err := svc.SetStatus(ctx, o.ID, model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, got.Status)

	_, err = svc.SetStatus(ctx, uuid.New(), model.StatusDelivered)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.SetStatus(ctx, o.ID, "lost")
	assert.Equal(t, KindValidation, KindOf(err))
}
