// Package storage defines the persistence contracts of the point-of-sale
// store. The SQLite implementation lives in the sqlite subpackage.
package storage

import (
	"context"

	"github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/customer"
	"github.com/louisbranch/postpos/internal/services/pos/order"
	"github.com/louisbranch/postpos/internal/services/pos/product"
	"github.com/louisbranch/postpos/internal/services/pos/settings"
	"github.com/louisbranch/postpos/internal/services/pos/user"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// UserStore persists staff accounts. Soft-deleted accounts are invisible to
// lookups by email.
type UserStore interface {
	CreateUser(ctx context.Context, input user.CreateUserInput) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	ListUsers(ctx context.Context, includeDeleted bool) ([]user.User, error)
	RecordLogin(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, id int64) error
}

// ProductStore persists the product catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (product.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CustomerStore persists customers. Listing skips soft-deleted customers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetCustomer(ctx context.Context, id int64) (customer.Customer, error)
	ListCustomers(ctx context.Context) ([]customer.Customer, error)
	UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	UpdateLoyaltyPoints(ctx context.Context, id, delta int64) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// OrderLine requests quantity units of a product.
type OrderLine struct {
	ProductID int64
	Quantity  int64
}

// CreateOrderInput describes a new pending order. Prices and names are read
// from the products at creation time.
type CreateOrderInput struct {
	UserID        *int64
	Lines         []OrderLine
	PaymentMethod *order.PaymentMethod
	Notes         string
}

// OrderStore persists orders and their items.
type OrderStore interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	ListOrders(ctx context.Context, status *order.Status) ([]order.Order, error)
	UpdateOrderItems(ctx context.Context, id int64, lines []OrderLine) (order.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, to order.Status, method *order.PaymentMethod) (order.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// SettingsStore persists the singleton company settings.
type SettingsStore interface {
	GetCompanySettings(ctx context.Context) (settings.CompanySettings, error)
	UpdateCompanySettings(ctx context.Context, s settings.CompanySettings) (settings.CompanySettings, error)
}

// Store is the full point-of-sale persistence surface.
type Store interface {
	UserStore
	ProductStore
	CustomerStore
	OrderStore
	SettingsStore
	Close() error
}
