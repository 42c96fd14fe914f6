package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
	"example.com/storefront/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	profiles *store.Profiles
	products *store.Products
	orders   *store.Orders
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	db := testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.profiles = store.NewProfiles(db)
	s.products = store.NewProducts(db)
	s.orders = store.NewOrders(db)
}

func (s *StoreSuite) product(name string, price string, stock int, active bool) model.Product {
	p := model.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock, IsActive: active}
	s.Require().NoError(s.products.Create(s.ctx, &p))
	return p
}

func (s *StoreSuite) profile(email string, role model.Role) model.Profile {
	p := model.Profile{ID: uuid.New(), Email: email, FullName: "Test " + email, Role: role}
	s.Require().NoError(s.profiles.Create(s.ctx, &p))
	return p
}

func (s *StoreSuite) TestProductListFiltersAndPages() {
	s.product("Blue Widget", "9.99", 5, true)
	s.product("Red widget", "4.50", 1, true)
	s.product("Gadget", "1.00", 0, true)
	s.product("Hidden Widget", "2.00", 3, false)

	all, total, err := s.products.List(s.ctx, store.ProductFilter{ActiveOnly: true}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(all, 3)

	found, total, err := s.products.List(s.ctx,
		store.ProductFilter{ActiveOnly: true, Search: mo.Some("WIDGET")}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(found, 2)

	page2, total, err := s.products.List(s.ctx, store.ProductFilter{ActiveOnly: true}, store.Page{Offset: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(page2, 1)

	past, total, err := s.products.List(s.ctx, store.ProductFilter{ActiveOnly: true}, store.Page{Offset: 10, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Empty(past)
}

func (s *StoreSuite) TestProductDeactivate() {
	p := s.product("Widget", "9.99", 5, true)

	got, err := s.products.GetActive(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Price.Equal(decimal.RequireFromString("9.99")))

	s.Require().NoError(s.products.Deactivate(s.ctx, p.ID))
	_, err = s.products.GetActive(s.ctx, p.ID)
	s.ErrorIs(err, store.ErrNotFound)

	// the row itself is kept
	kept, err := s.products.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(kept.IsActive)

	s.ErrorIs(s.products.Deactivate(s.ctx, uuid.New()), store.ErrNotFound)
}

func (s *StoreSuite) TestProductCreateKeepsInactiveFlag() {
	p := s.product("Dormant", "3.00", 1, false)
	got, err := s.products.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(got.IsActive)
}

func (s *StoreSuite) TestProductUpdate() {
	p := s.product("Widget", "9.99", 5, true)
	got, err := s.products.Update(s.ctx, p.ID, map[string]any{
		"name":  "Widget Pro",
		"price": decimal.RequireFromString("12.50"),
	})
	s.Require().NoError(err)
	s.Equal("Widget Pro", got.Name)
	s.True(got.Price.Equal(decimal.RequireFromString("12.5")))
	s.Equal(5, got.StockQuantity)

	_, err = s.products.Update(s.ctx, uuid.New(), map[string]any{"name": "ghost"})
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreSuite) TestFindByIDsSkipsUnknown() {
	a := s.product("A", "1.00", 1, true)
	b := s.product("B", "2.00", 2, true)

	ps, err := s.products.FindByIDs(s.ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	s.Require().NoError(err)
	s.Len(ps, 2)

	none, err := s.products.FindByIDs(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestOrderLifecycle() {
	customer := s.profile("c@example.com", model.RoleCustomer)
	p := s.product("Widget", "9.99", 5, true)

	o := model.Order{CustomerID: customer.ID, Status: model.StatusPending}
	s.Require().NoError(s.orders.Create(s.ctx, &o))
	s.NotEqual(uuid.Nil, o.ID)

	s.Require().NoError(s.orders.CreateItems(s.ctx, []model.OrderItem{
		{OrderID: o.ID, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price},
	}))

	full, err := s.orders.Detail(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Require().Len(full.Items, 1)
	s.Require().NotNil(full.Items[0].Product)
	s.Equal("Widget", full.Items[0].Product.Name)
	s.True(full.Total().Equal(decimal.RequireFromString("19.98")))

	_, err = s.orders.Owned(s.ctx, o.ID, uuid.New())
	s.ErrorIs(err, store.ErrNotFound)

	listed, total, err := s.orders.List(s.ctx, store.OrderFilter{WithCustomer: true}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().NotNil(listed[0].Customer)
	s.Equal(customer.Email, listed[0].Customer.Email)

	filtered, total, err := s.orders.List(s.ctx,
		store.OrderFilter{Status: mo.Some(model.StatusShipped)}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(filtered)

	ok, err := s.orders.CancelPending(s.ctx, o.ID, uuid.New())
	s.Require().NoError(err)
	s.False(ok, "other customers cannot cancel")

	ok, err = s.orders.CancelPending(s.ctx, o.ID, customer.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.orders.CancelPending(s.ctx, o.ID, customer.ID)
	s.Require().NoError(err)
	s.False(ok, "already cancelled")
}

func (s *StoreSuite) TestOrderDeleteRemovesItems() {
	customer := s.profile("d@example.com", model.RoleCustomer)
	p := s.product("Widget", "9.99", 5, true)
	o := model.Order{CustomerID: customer.ID, Status: model.StatusPending}
	s.Require().NoError(s.orders.Create(s.ctx, &o))
	s.Require().NoError(s.orders.CreateItems(s.ctx, []model.OrderItem{
		{OrderID: o.ID, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price},
	}))

	s.Require().NoError(s.orders.Delete(s.ctx, o.ID))
	_, err := s.orders.Detail(s.ctx, o.ID)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreSuite) TestDetailKeepsRequestOrderAndRetiredProducts() {
	customer := s.profile("h@example.com", model.RoleCustomer)
	a := s.product("Alpha", "1.00", 5, true)
	b := s.product("Beta", "2.00", 5, true)
	o := model.Order{CustomerID: customer.ID, Status: model.StatusPending}
	s.Require().NoError(s.orders.Create(s.ctx, &o))
	// written in reverse of the requested order, same batch and timestamp
	s.Require().NoError(s.orders.CreateItems(s.ctx, []model.OrderItem{
		{OrderID: o.ID, ProductID: b.ID, LineNo: 1, Quantity: 2, UnitPrice: b.Price},
		{OrderID: o.ID, ProductID: a.ID, LineNo: 0, Quantity: 1, UnitPrice: a.Price},
	}))

	s.Require().NoError(s.products.Deactivate(s.ctx, a.ID))

	full, err := s.orders.Detail(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Require().Len(full.Items, 2)
	s.Equal(a.ID, full.Items[0].ProductID)
	s.Equal(b.ID, full.Items[1].ProductID)
	s.Require().NotNil(full.Items[0].Product, "deactivated products still resolve")
	s.Equal("Alpha", full.Items[0].Product.Name)
}

func (s *StoreSuite) TestUpdateStatus() {
	customer := s.profile("e@example.com", model.RoleCustomer)
	o := model.Order{CustomerID: customer.ID, Status: model.StatusPending}
	s.Require().NoError(s.orders.Create(s.ctx, &o))

	got, err := s.orders.UpdateStatus(s.ctx, o.ID, model.StatusShipped)
	s.Require().NoError(err)
	s.Equal(model.StatusShipped, got.Status)

	_, err = s.orders.UpdateStatus(s.ctx, uuid.New(), model.StatusShipped)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreSuite) TestProfiles() {
	p := s.profile("f@example.com", model.RoleCustomer)

	taken, err := s.profiles.EmailTaken(s.ctx, "f@example.com")
	s.Require().NoError(err)
	s.True(taken)
	taken, err = s.profiles.EmailTaken(s.ctx, "nobody@example.com")
	s.Require().NoError(err)
	s.False(taken)

	role, err := s.profiles.Role(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(model.RoleCustomer, role)

	byEmail, err := s.profiles.FindByEmail(s.ctx, " F@example.com ")
	s.Require().NoError(err)
	s.Equal(p.ID, byEmail.ID)

	dup := model.Profile{ID: uuid.New(), Email: "f@example.com", Role: model.RoleCustomer}
	s.ErrorIs(s.profiles.Create(s.ctx, &dup), store.ErrDuplicate)
}

func (s *StoreSuite) TestUpdateRoleIsIdempotent() {
	p := s.profile("g@example.com", model.RoleCustomer)

	first, err := s.profiles.UpdateRole(s.ctx, p.ID, model.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, first.Role)

	second, err := s.profiles.UpdateRole(s.ctx, p.ID, model.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, second.Role)
	s.Equal(first.UpdatedAt.UnixNano(), second.UpdatedAt.UnixNano())

	_, err = s.profiles.UpdateRole(s.ctx, uuid.New(), model.RoleAdmin)
	s.ErrorIs(err, store.ErrNotFound)
}

func TestModelsCoverEveryTable(t *testing.T) {
	db := testutil.NewDB(t)
	for _, table := range []string{"accounts", "revoked_tokens", "profiles", "products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	require.Len(t, store.Models(), 6)
}
