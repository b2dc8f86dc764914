// Package migrations holds the versioned schema catalog of the point-of-sale
// database. Steps are append-only: a released step is never edited, and new
// behavior always arrives as a new version.
package migrations

import (
	"sync"

	"github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"
)

// Catalog returns the validated catalog. It is built once per process.
var Catalog = sync.OnceValues(build)

// Latest is the newest schema version.
const Latest = 21

func build() (sqlitemigrate.Catalog, error) {
	seeds, err := buildSeeds()
	if err != nil {
		return sqlitemigrate.Catalog{}, err
	}
	return sqlitemigrate.NewCatalog(
		sqlitemigrate.Step{Version: 1, Description: "create_users_table", Effect: sqlitemigrate.CreateTable{Table: usersTable}},
		sqlitemigrate.Step{Version: 2, Description: "insert_default_users", Effect: seeds.users},
		sqlitemigrate.Step{Version: 3, Description: "create_products_table", Effect: sqlitemigrate.CreateTable{Table: productsTable}},
		sqlitemigrate.Step{Version: 4, Description: "insert_sample_products", Effect: seeds.products},
		sqlitemigrate.Step{Version: 5, Description: "create_customers_table", Effect: sqlitemigrate.CreateTable{Table: customersTable}},
		sqlitemigrate.Step{Version: 6, Description: "insert_sample_customers", Effect: seeds.customers},
		sqlitemigrate.Step{Version: 7, Description: "create_orders_table", Effect: sqlitemigrate.CreateTable{Table: ordersTable}},
		sqlitemigrate.Step{Version: 8, Description: "create_order_items_table", Effect: sqlitemigrate.CreateTable{Table: orderItemsTable}},
		sqlitemigrate.Step{Version: 9, Description: "insert_sample_orders", Effect: seeds.orders},
		sqlitemigrate.Step{Version: 10, Description: "create_company_settings_table", Effect: sqlitemigrate.CreateTable{Table: companySettingsTable}},
		sqlitemigrate.Step{Version: 11, Description: "add_user_id_to_orders", Effect: sqlitemigrate.AddColumn{
			Table: "orders",
			Column: sqlitemigrate.Column{
				Name:       "user_id",
				Type:       "INTEGER",
				References: &sqlitemigrate.ForeignKey{Table: "users", Column: "id", OnDelete: sqlitemigrate.SetNull},
			},
		}},
		// Orders created before user tracking belong to the default admin.
		sqlitemigrate.Step{Version: 12, Description: "backfill_orders_user_id", Effect: sqlitemigrate.Backfill{
			Table:  "orders",
			Column: "user_id",
			Expr:   "?",
			Args:   []any{int64(1)},
			Where:  "user_id IS NULL AND EXISTS (SELECT 1 FROM users WHERE id = 1)",
		}},
		sqlitemigrate.Step{Version: 13, Description: "insert_default_company_settings", Effect: seeds.settings},
		sqlitemigrate.Step{Version: 14, Description: "add_deleted_at_to_users", Effect: sqlitemigrate.AddColumn{
			Table:  "users",
			Column: sqlitemigrate.Column{Name: "deleted_at", Type: "TEXT"},
		}},
		sqlitemigrate.Step{Version: 15, Description: "add_deleted_at_to_customers", Effect: sqlitemigrate.AddColumn{
			Table:  "customers",
			Column: sqlitemigrate.Column{Name: "deleted_at", Type: "TEXT"},
		}},
		sqlitemigrate.Step{Version: 16, Description: "add_customer_number_to_customers", Effect: sqlitemigrate.AddColumn{
			Table:  "customers",
			Column: sqlitemigrate.Column{Name: "customer_number", Type: "TEXT"},
		}},
		sqlitemigrate.Step{Version: 17, Description: "backfill_customer_numbers", Effect: sqlitemigrate.Backfill{
			Table:  "customers",
			Column: "customer_number",
			Expr:   "'CUST-' || printf('%06d', id)",
			Where:  "customer_number IS NULL",
		}},
		sqlitemigrate.Step{Version: 18, Description: "create_customers_customer_number_index", Effect: sqlitemigrate.CreateIndex{
			Name:    "idx_customers_customer_number",
			Table:   "customers",
			Columns: []string{"customer_number"},
			Unique:  true,
		}},
		sqlitemigrate.Step{Version: 19, Description: "create_completed_orders_guard", Effect: completedOrdersGuard},
		sqlitemigrate.Step{Version: 20, Description: "create_completed_order_items_insert_guard", Effect: completedOrderItemsInsertGuard},
		sqlitemigrate.Step{Version: 21, Description: "create_completed_order_items_update_guard", Effect: completedOrderItemsUpdateGuard},
	)
}
