package migrations

import "github.com/louisbranch/postpos/internal/platform/storage/sqlitemigrate"

// nowDefault stores ISO-8601 UTC timestamps with milliseconds, the format
// the desktop UI writes.
const nowDefault = "(strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))"

func idColumn() sqlitemigrate.Column {
	return sqlitemigrate.Column{Name: "id", Type: "INTEGER", PrimaryKey: true, AutoIncrement: true}
}

func timestampColumn(name string) sqlitemigrate.Column {
	return sqlitemigrate.Column{Name: name, Type: "TEXT", NotNull: true, Default: nowDefault}
}

func amountColumn(name string) sqlitemigrate.Column {
	return sqlitemigrate.Column{Name: name, Type: "REAL", NotNull: true, Default: "0", Check: name + " >= 0"}
}

func flagColumn(name, def string) sqlitemigrate.Column {
	return sqlitemigrate.Column{Name: name, Type: "INTEGER", NotNull: true, Default: def, Check: name + " IN (0, 1)"}
}

func textColumn(name string) sqlitemigrate.Column {
	return sqlitemigrate.Column{Name: name, Type: "TEXT"}
}

var usersTable = sqlitemigrate.Table{
	Name: "users",
	Columns: []sqlitemigrate.Column{
		idColumn(),
		{Name: "email", Type: "TEXT", NotNull: true, Unique: true},
		{Name: "password", Type: "TEXT", NotNull: true},
		{Name: "name", Type: "TEXT", NotNull: true},
		{Name: "role", Type: "TEXT", NotNull: true, Check: "role IN ('admin', 'manager', 'user')"},
		{Name: "permissions", Type: "TEXT", NotNull: true, Default: "'[]'"},
		timestampColumn("created_at"),
		textColumn("last_login"),
	},
}

var productsTable = sqlitemigrate.Table{
	Name: "products",
	Columns: []sqlitemigrate.Column{
		idColumn(),
		{Name: "name", Type: "TEXT", NotNull: true},
		textColumn("description"),
		amountColumn("price"),
		amountColumn("cost"),
		{Name: "stock", Type: "INTEGER", NotNull: true, Default: "0", Check: "stock >= 0"},
		textColumn("category"),
		{Name: "barcode", Type: "TEXT", Unique: true},
		textColumn("image"),
		flagColumn("is_active", "1"),
		timestampColumn("created_at"),
		timestampColumn("updated_at"),
	},
}

var customersTable = sqlitemigrate.Table{
	Name: "customers",
	Columns: []sqlitemigrate.Column{
		idColumn(),
		{Name: "first_name", Type: "TEXT", NotNull: true},
		{Name: "last_name", Type: "TEXT", NotNull: true},
		{Name: "email", Type: "TEXT", Unique: true},
		{Name: "phone", Type: "TEXT", Unique: true},
		textColumn("address_line1"),
		textColumn("address_line2"),
		textColumn("city"),
		textColumn("state"),
		textColumn("postal_code"),
		textColumn("country"),
		{Name: "loyalty_points", Type: "INTEGER", NotNull: true, Default: "0", Check: "loyalty_points >= 0"},
		amountColumn("total_spent"),
		textColumn("last_purchase_date"),
		flagColumn("is_active", "1"),
		textColumn("notes"),
		timestampColumn("created_at"),
		timestampColumn("updated_at"),
	},
}

var ordersTable = sqlitemigrate.Table{
	Name: "orders",
	Columns: []sqlitemigrate.Column{
		idColumn(),
		amountColumn("subtotal"),
		amountColumn("tax"),
		amountColumn("total"),
		{Name: "status", Type: "TEXT", NotNull: true, Default: "'pending'", Check: "status IN ('pending', 'paid', 'cancelled', 'completed')"},
		{Name: "payment_method", Type: "TEXT", Check: "payment_method IS NULL OR payment_method IN ('cash', 'card', 'transfer')"},
		textColumn("notes"),
		timestampColumn("created_at"),
		timestampColumn("updated_at"),
		textColumn("completed_at"),
	},
}

var orderItemsTable = sqlitemigrate.Table{
	Name: "order_items",
	Columns: []sqlitemigrate.Column{
		idColumn(),
		{
			Name: "order_id", Type: "INTEGER", NotNull: true,
			References: &sqlitemigrate.ForeignKey{Table: "orders", Column: "id", OnDelete: sqlitemigrate.Cascade},
		},
		{
			Name: "product_id", Type: "INTEGER", NotNull: true,
			References: &sqlitemigrate.ForeignKey{Table: "products", Column: "id", OnDelete: sqlitemigrate.Restrict},
		},
		{Name: "product_name", Type: "TEXT", NotNull: true},
		{Name: "quantity", Type: "INTEGER", NotNull: true, Check: "quantity > 0"},
		{Name: "unit_price", Type: "REAL", NotNull: true, Check: "unit_price >= 0"},
		{Name: "total_price", Type: "REAL", NotNull: true, Check: "total_price >= 0"},
	},
}

var companySettingsTable = sqlitemigrate.Table{
	Name: "company_settings",
	Columns: []sqlitemigrate.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true, Check: "id = 1"},
		{Name: "name", Type: "TEXT", NotNull: true},
		textColumn("description"),
		flagColumn("tax_enabled", "1"),
		{Name: "tax_percentage", Type: "REAL", NotNull: true, Default: "0", Check: "tax_percentage BETWEEN 0 AND 100"},
		{Name: "currency_symbol", Type: "TEXT", NotNull: true, Default: "'$'"},
		{Name: "language", Type: "TEXT", NotNull: true, Default: "'en'"},
		textColumn("logo_url"),
		textColumn("address"),
		textColumn("phone"),
		textColumn("email"),
		textColumn("website"),
		timestampColumn("created_at"),
		timestampColumn("updated_at"),
	},
}

const completedOrderAbort = "SELECT RAISE(ABORT, 'completed orders are immutable')"

// Receipts are printed from completed orders, so their amounts, status and
// items are frozen. Notes and user_id stay editable.
var completedOrdersGuard = sqlitemigrate.CreateTrigger{
	Name:  "orders_completed_guard",
	Table: "orders",
	Event: sqlitemigrate.BeforeUpdate,
	When: "OLD.status = 'completed' AND (" +
		"NEW.subtotal IS NOT OLD.subtotal OR NEW.tax IS NOT OLD.tax OR NEW.total IS NOT OLD.total OR " +
		"NEW.status IS NOT OLD.status OR NEW.payment_method IS NOT OLD.payment_method OR " +
		"NEW.created_at IS NOT OLD.created_at OR NEW.completed_at IS NOT OLD.completed_at)",
	Body: completedOrderAbort,
}

var completedOrderItemsInsertGuard = sqlitemigrate.CreateTrigger{
	Name:  "order_items_completed_insert_guard",
	Table: "order_items",
	Event: sqlitemigrate.BeforeInsert,
	When:  "(SELECT status FROM orders WHERE id = NEW.order_id) = 'completed'",
	Body:  completedOrderAbort,
}

var completedOrderItemsUpdateGuard = sqlitemigrate.CreateTrigger{
	Name:  "order_items_completed_update_guard",
	Table: "order_items",
	Event: sqlitemigrate.BeforeUpdate,
	When: "(SELECT status FROM orders WHERE id = OLD.order_id) = 'completed' OR " +
		"(SELECT status FROM orders WHERE id = NEW.order_id) = 'completed'",
	Body: completedOrderAbort,
}
