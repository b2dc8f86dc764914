package migrations

import (
	"fmt"

	"github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/postpos/internal/services/pos/settings"
	"github.com/louisbranch/postpos/internal/services/pos/user"
)

type seedSet struct {
	users     sqlitemigrate.Seed
	products  sqlitemigrate.Seed
	customers sqlitemigrate.Seed
	orders    sqlitemigrate.Seed
	settings  sqlitemigrate.Seed
}

// DefaultUser is a seeded staff account.
type DefaultUser struct {
	ID        int64
	Email     string
	Password  string
	Name      string
	Role      user.Role
	CreatedAt string
	LastLogin string
}

// DefaultUsers are the accounts every new database starts with.
var DefaultUsers = []DefaultUser{
	{ID: 1, Email: "admin@postpos.com", Password: "admin123", Name: "Admin User", Role: user.RoleAdmin,
		CreatedAt: "2024-01-01T00:00:00.000Z", LastLogin: "2025-01-24T10:30:00.000Z"},
	{ID: 2, Email: "manager@postpos.com", Password: "manager123", Name: "Store Manager", Role: user.RoleManager,
		CreatedAt: "2024-01-15T00:00:00.000Z", LastLogin: "2025-01-23T14:45:00.000Z"},
	{ID: 3, Email: "user@postpos.com", Password: "user123", Name: "John Cashier", Role: user.RoleUser,
		CreatedAt: "2024-02-01T00:00:00.000Z", LastLogin: "2025-01-24T09:00:00.000Z"},
}

func buildSeeds() (seedSet, error) {
	users, err := userSeed()
	if err != nil {
		return seedSet{}, err
	}
	return seedSet{
		users:     users,
		products:  productSeed(),
		customers: customerSeed(),
		orders:    orderSeed(),
		settings:  settingsSeed(),
	}, nil
}

func userSeed() (sqlitemigrate.Seed, error) {
	rows := make([][]any, 0, len(DefaultUsers))
	for _, u := range DefaultUsers {
		hash, err := user.HashPassword(u.Password)
		if err != nil {
			return sqlitemigrate.Seed{}, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		permissions, err := user.DefaultPermissions(u.Role).Encode()
		if err != nil {
			return sqlitemigrate.Seed{}, fmt.Errorf("seed user %s permissions: %w", u.Email, err)
		}
		rows = append(rows, []any{u.ID, u.Email, hash, u.Name, string(u.Role), permissions, u.CreatedAt, u.LastLogin})
	}
	return sqlitemigrate.Seed{Tables: []sqlitemigrate.SeedTable{{
		Table:   "users",
		Key:     "id",
		Columns: []string{"id", "email", "password", "name", "role", "permissions", "created_at", "last_login"},
		Rows:    rows,
	}}}, nil
}

// productSeed stock is net of the quantities in orderSeed, whose orders are
// already paid or completed.
func productSeed() sqlitemigrate.Seed {
	return sqlitemigrate.Seed{Tables: []sqlitemigrate.SeedTable{{
		Table: "products",
		Key:   "id",
		Columns: []string{
			"id", "name", "description", "price", "cost", "stock", "category", "barcode", "is_active", "created_at", "updated_at",
		},
		Rows: [][]any{
			{int64(1), "Coca Cola 500ml", "Refreshing soft drink", 2.50, 1.20, int64(118), "Beverages", "7501055363063", int64(1), "2024-01-01T00:00:00.000Z", "2024-01-15T10:30:00.000Z"},
			{int64(2), "Bread Loaf", "Fresh whole wheat bread", 3.99, 1.80, int64(24), "Bakery", "1234567890123", int64(1), "2024-01-02T00:00:00.000Z", "2024-01-16T14:45:00.000Z"},
			{int64(3), "Premium Coffee Beans 1kg", "Arabica coffee beans from Colombia", 24.99, 12.00, int64(7), "Coffee & Tea", "9876543210987", int64(1), "2024-01-03T00:00:00.000Z", "2024-01-17T09:15:00.000Z"},
			{int64(4), "Organic Milk 1L", "Fresh organic whole milk", 4.50, 2.20, int64(45), "Dairy", "5555666677778", int64(1), "2024-01-04T00:00:00.000Z", "2024-01-18T16:20:00.000Z"},
			{int64(5), "Chocolate Bar", "Dark chocolate 70% cocoa", 5.99, 2.80, int64(0), "Snacks", "1111222233334", int64(0), "2024-01-05T00:00:00.000Z", "2024-01-19T11:10:00.000Z"},
			{int64(6), "Fresh Salmon Fillet", "Atlantic salmon, wild-caught", 18.99, 12.50, int64(12), "Seafood", "2222333344445", int64(1), "2024-01-06T00:00:00.000Z", "2024-01-20T08:30:00.000Z"},
			{int64(7), "Frozen Pizza Margherita", "Traditional Italian style pizza", 6.99, 3.50, int64(35), "Frozen Foods", "3333444455556", int64(1), "2024-01-07T00:00:00.000Z", "2024-01-21T15:45:00.000Z"},
			{int64(8), "Bananas (per lb)", "Fresh organic bananas", 1.29, 0.65, int64(150), "Fresh Produce", "4444555566667", int64(1), "2024-01-08T00:00:00.000Z", "2024-01-22T12:15:00.000Z"},
			{int64(9), "Paper Towels (6-pack)", "Ultra-absorbent paper towels", 12.99, 7.20, int64(28), "Household Items", "5555666677779", int64(1), "2024-01-09T00:00:00.000Z", "2024-01-23T09:30:00.000Z"},
			{int64(10), "Shampoo & Conditioner Set", "Moisturizing hair care set", 15.99, 8.90, int64(22), "Personal Care", "6666777788889", int64(1), "2024-01-10T00:00:00.000Z", "2024-01-24T14:20:00.000Z"},
		},
	}}}
}

func customerSeed() sqlitemigrate.Seed {
	return sqlitemigrate.Seed{Tables: []sqlitemigrate.SeedTable{{
		Table: "customers",
		Key:   "id",
		Columns: []string{
			"id", "first_name", "last_name", "email", "phone", "address_line1", "city", "state", "postal_code", "country",
			"loyalty_points", "total_spent", "last_purchase_date", "is_active", "notes", "created_at", "updated_at",
		},
		Rows: [][]any{
			{int64(1), "John", "Doe", "john.doe@email.com", "(555) 123-4567", "123 Main St", "Anytown", "CA", "12345", "USA",
				int64(1250), 2450.75, "2024-01-20T14:30:00.000Z", int64(1), "Prefers morning shopping, regular coffee buyer", "2023-06-15T10:00:00.000Z", "2024-01-20T14:30:00.000Z"},
			{int64(2), "Jane", "Smith", "jane.smith@email.com", "(555) 987-6543", "456 Oak Ave", "Somewhere", "NY", "67890", "USA",
				int64(3500), 5890.25, "2024-01-22T16:45:00.000Z", int64(1), "VIP customer, bulk purchases", "2023-03-10T14:20:00.000Z", "2024-01-22T16:45:00.000Z"},
			{int64(3), "Bob", "Johnson", "bob.johnson@email.com", "(555) 456-7890", "789 Pine St", "Otherville", "TX", "34567", "USA",
				int64(800), 1200.50, "2024-01-18T11:15:00.000Z", int64(1), "Prefers self-checkout, quick shopper", "2023-09-05T09:30:00.000Z", "2024-01-18T11:15:00.000Z"},
			{int64(4), "Alice", "Williams", "alice.williams@email.com", "(555) 234-5678", "321 Elm Blvd", "Newtown", "FL", "45678", "USA",
				int64(2100), 3780.90, "2024-01-21T13:20:00.000Z", int64(1), "Corporate account, monthly billing", "2023-07-20T16:45:00.000Z", "2024-01-21T13:20:00.000Z"},
			{int64(5), "Mike", "Brown", "mike.brown@email.com", "(555) 876-5432", "654 Cedar Rd", "Westville", "WA", "78901", "USA",
				int64(450), 890.25, "2024-01-19T10:30:00.000Z", int64(1), "Student discount, frequent snack purchases", "2023-11-12T12:15:00.000Z", "2024-01-19T10:30:00.000Z"},
		},
	}}}
}

// orderSeed inserts orders before their items so item foreign keys resolve.
func orderSeed() sqlitemigrate.Seed {
	return sqlitemigrate.Seed{Tables: []sqlitemigrate.SeedTable{
		{
			Table:   "orders",
			Key:     "id",
			Columns: []string{"id", "subtotal", "tax", "total", "status", "payment_method", "notes", "created_at", "updated_at", "completed_at"},
			Rows: [][]any{
				{int64(1), 8.99, 0.90, 9.89, "completed", "cash", nil, "2024-01-15T10:30:00.000Z", "2024-01-15T10:35:00.000Z", "2024-01-15T10:35:00.000Z"},
				{int64(2), 24.99, 2.50, 27.49, "paid", "card", nil, "2024-01-16T14:45:00.000Z", "2024-01-16T14:50:00.000Z", nil},
			},
		},
		{
			Table:   "order_items",
			Key:     "id",
			Columns: []string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price", "total_price"},
			Rows: [][]any{
				{int64(1), int64(1), int64(1), "Coca Cola 500ml", int64(2), 2.50, 5.00},
				{int64(2), int64(1), int64(2), "Bread Loaf", int64(1), 3.99, 3.99},
				{int64(3), int64(2), int64(3), "Premium Coffee Beans 1kg", int64(1), 24.99, 24.99},
			},
		},
	}}
}

func settingsSeed() sqlitemigrate.Seed {
	d := settings.Defaults()
	taxEnabled := int64(0)
	if d.TaxEnabled {
		taxEnabled = 1
	}
	taxPercentage, _ := d.TaxPercentage.Float64()
	return sqlitemigrate.Seed{Tables: []sqlitemigrate.SeedTable{{
		Table:   "company_settings",
		Key:     "id",
		Columns: []string{"id", "name", "description", "tax_enabled", "tax_percentage", "currency_symbol", "language"},
		Rows: [][]any{
			{int64(settings.ID), d.Name, d.Description, taxEnabled, taxPercentage, d.CurrencySymbol, d.Language},
		},
	}}}
}
