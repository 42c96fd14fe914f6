package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// prices go out as JSON numbers, like the rest of the API
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var Roles = []Role{RoleCustomer, RoleAdmin}

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Account is the identity record owned by the identity gateway.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Account) TableName() string { return "accounts" }

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type RevokedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;index"`
	ExpiresAt time.Time `gorm:"index"`
}

func (RevokedToken) TableName() string { return "revoked_tokens" }

// Profile is the application-side account record; ID equals Account.ID.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `gorm:"type:varchar(16);not null;default:customer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   string          `gorm:"size:500" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	IsActive      bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID    `gorm:"type:uuid;index;not null" json:"customer_id"`
	Status     OrderStatus  `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Customer   *CustomerRef `gorm:"foreignKey:CustomerID;-:migration" json:"customer,omitempty"`
	Items      []OrderItem  `gorm:"foreignKey:OrderID;-:migration" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Total sums quantity × snapshot unit price over the loaded items.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	// LineNo is the item's position in the order request.
	LineNo    int             `gorm:"not null;default:0" json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	Product   *ProductRef     `gorm:"foreignKey:ProductID;-:migration" json:"product,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }

func (it *OrderItem) BeforeCreate(*gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ProductRef is the display projection of a product attached to an order item.
type ProductRef struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

func (ProductRef) TableName() string { return "products" }

// CustomerRef is the display projection of the profile owning an order.
type CustomerRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

func (CustomerRef) TableName() string { return "profiles" }
