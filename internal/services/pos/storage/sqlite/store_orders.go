package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/louisbranch/postpos/internal/services/pos/order"
	"github.com/louisbranch/postpos/internal/services/pos/storage"
	"github.com/shopspring/decimal"
)

const orderColumns = "id, user_id, subtotal, tax, total, status, payment_method, notes, created_at, updated_at, completed_at"

const orderItemColumns = "id, order_id, product_id, product_name, quantity, unit_price, total_price"

type txQuerier interface {
	queryRower
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateOrder prices the requested lines from the current products and the
// company tax rate, and stores a pending order.
func (s *Store) CreateOrder(ctx context.Context, input storage.CreateOrderInput) (order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return order.Order{}, err
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.Valid() {
		return order.Order{}, order.ErrInvalidPaymentMethod
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, storeError("start transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.timestamp()
	o := order.Order{
		UserID:        input.UserID,
		Status:        order.StatusPending,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if o, err = priceOrder(ctx, tx, o, input.Lines); err != nil {
		return order.Order{}, err
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO orders (user_id, subtotal, tax, total, status, payment_method, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64Ptr(o.UserID), money.Float(o.Subtotal), money.Float(o.Tax), money.Float(o.Total), string(o.Status),
		nullPaymentMethod(o.PaymentMethod), nullString(o.Notes), formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return order.Order{}, storeError("insert order", err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return order.Order{}, fmt.Errorf("order id: %w", err)
	}
	if o.Items, err = insertOrderItems(ctx, tx, o.ID, o.Items); err != nil {
		return order.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return order.Order{}, storeError("commit order", err)
	}
	return o, nil
}

// GetOrder fetches an order with its items.
func (s *Store) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return order.Order{}, err
	}
	return getOrder(ctx, s.sqlDB, id)
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *Store) ListOrders(ctx context.Context, status *order.Status) ([]order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	where := ""
	var args []any
	if status != nil {
		if !status.Valid() {
			return nil, fmt.Errorf("list orders: unknown status %q", *status)
		}
		where = " WHERE status = ?"
		args = append(args, string(*status))
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders"+where+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	var orders []order.Order
	index := make(map[int64]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeError("list orders", err)
	}
	rows.Close()
	if len(orders) == 0 {
		return orders, nil
	}

	// The pool holds one connection, so items are read after the order rows close.
	itemRows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id IN (SELECT id FROM orders"+where+") ORDER BY order_id, id", args...)
	if err != nil {
		return nil, storeError("list order items", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, storeError("list order items", err)
	}
	return orders, nil
}

// UpdateOrderItems replaces the items of a pending order and recomputes its
// totals.
func (s *Store) UpdateOrderItems(ctx context.Context, id int64, lines []storage.OrderLine) (order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return order.Order{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, storeError("start transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	o, err := getOrder(ctx, tx, id)
	if err != nil {
		return order.Order{}, err
	}
	if !o.Editable() {
		return order.Order{}, order.NotEditable(o.Status)
	}
	if o, err = priceOrder(ctx, tx, o, lines); err != nil {
		return order.Order{}, err
	}
	o.UpdatedAt = s.timestamp()

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", id); err != nil {
		return order.Order{}, storeError("clear order items", err)
	}
	if o.Items, err = insertOrderItems(ctx, tx, id, o.Items); err != nil {
		return order.Order{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET subtotal = ?, tax = ?, total = ?, updated_at = ? WHERE id = ?",
		money.Float(o.Subtotal), money.Float(o.Tax), money.Float(o.Total), formatTime(o.UpdatedAt), id,
	); err != nil {
		return order.Order{}, storeError("update order totals", err)
	}
	if err := tx.Commit(); err != nil {
		return order.Order{}, storeError("commit order items", err)
	}
	return o, nil
}

// UpdateOrderStatus moves an order through its lifecycle. Paying takes the
// items out of stock and fails without changes when any product is short.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, to order.Status, method *order.PaymentMethod) (order.Order, error) {
	if err := s.ready(ctx); err != nil {
		return order.Order{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, storeError("start transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := getOrder(ctx, tx, id)
	if err != nil {
		return order.Order{}, err
	}
	next, err := current.Advance(to, method, s.timestamp())
	if err != nil {
		return order.Order{}, err
	}
	if !current.HoldsStock() && next.HoldsStock() {
		if err := adjustStock(ctx, tx, next.Items, -1, next.UpdatedAt); err != nil {
			return order.Order{}, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = ?, payment_method = ?, completed_at = ?, updated_at = ? WHERE id = ?",
		string(next.Status), nullPaymentMethod(next.PaymentMethod), formatOptionalTime(next.CompletedAt),
		formatTime(next.UpdatedAt), id,
	); err != nil {
		return order.Order{}, storeError("update order status", err)
	}
	if err := tx.Commit(); err != nil {
		return order.Order{}, storeError("commit order status", err)
	}
	s.logger.Debug().
		Int64("order_id", id).
		Str("from", string(current.Status)).
		Str("to", string(next.Status)).
		Msg("order status changed")
	return next, nil
}

// DeleteOrder removes an order and its items. Stock taken by a paid or
// completed order is returned to the products.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storeError("start transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	o, err := getOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	if o.HoldsStock() {
		if err := adjustStock(ctx, tx, o.Items, 1, s.timestamp()); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return storeError("delete order", err)
	}
	if err := requireAffected(res, "delete order"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit order delete", err)
	}
	return nil
}

// priceOrder snapshots product names and prices for lines and recomputes the
// order totals with the current tax rate.
func priceOrder(ctx context.Context, q txQuerier, o order.Order, lines []storage.OrderLine) (order.Order, error) {
	if len(lines) == 0 {
		return order.Order{}, order.ErrEmpty
	}
	rate, err := taxRate(ctx, q)
	if err != nil {
		return order.Order{}, err
	}

	requested := make(map[int64]int64, len(lines))
	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return order.Order{}, order.ErrInvalidQuantity
		}
		p, err := getProduct(ctx, q, line.ProductID)
		if err != nil {
			return order.Order{}, err
		}
		requested[p.ID] += line.Quantity
		if !p.CanFulfill(requested[p.ID]) {
			return order.Order{}, order.InsufficientStock(p.Name)
		}
		items = append(items, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
		})
	}

	totals, priced, err := order.ComputeTotals(items, rate)
	if err != nil {
		return order.Order{}, err
	}
	o.Subtotal = totals.Subtotal
	o.Tax = totals.Tax
	o.Total = totals.Total
	o.Items = priced
	return o, nil
}

func insertOrderItems(ctx context.Context, q txQuerier, orderID int64, items []order.Item) ([]order.Item, error) {
	out := make([]order.Item, len(items))
	for i, item := range items {
		item.OrderID = orderID
		res, err := q.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price) VALUES (?, ?, ?, ?, ?, ?)",
			item.OrderID, item.ProductID, item.ProductName, item.Quantity, money.Float(item.UnitPrice), money.Float(item.TotalPrice),
		)
		if err != nil {
			return nil, storeError("insert order item", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("order item id: %w", err)
		}
		out[i] = item
	}
	return out, nil
}

// adjustStock moves stock by sign*quantity for every item. Taking stock
// never drives a product below zero.
func adjustStock(ctx context.Context, q txQuerier, items []order.Item, sign int64, now time.Time) error {
	for _, item := range items {
		delta := sign * item.Quantity
		res, err := q.ExecContext(ctx,
			"UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ? AND stock + ? >= 0",
			delta, formatTime(now), item.ProductID, delta,
		)
		if err != nil {
			return storeError("adjust stock", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("adjust stock: rows affected: %w", err)
		}
		if n == 0 {
			return order.InsufficientStock(item.ProductName)
		}
	}
	return nil
}

func taxRate(ctx context.Context, q queryRower) (decimal.Decimal, error) {
	current, err := getSettings(ctx, q)
	if errors.Is(err, storage.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return current.TaxRate(), nil
}

func getOrder(ctx context.Context, q txQuerier, id int64) (order.Order, error) {
	row := q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, storeError("get order", err)
	}
	rows, err := q.QueryContext(ctx, "SELECT "+orderItemColumns+" FROM order_items WHERE order_id = ? ORDER BY id", id)
	if err != nil {
		return order.Order{}, storeError("get order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return order.Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return order.Order{}, storeError("get order items", err)
	}
	return o, nil
}

func scanOrder(row scanner) (order.Order, error) {
	var (
		o                    order.Order
		userID               sql.NullInt64
		subtotal, tax, total float64
		status               string
		method, notes        sql.NullString
		createdAt, updatedAt string
		completedAt          sql.NullString
	)
	if err := row.Scan(&o.ID, &userID, &subtotal, &tax, &total, &status, &method, &notes, &createdAt, &updatedAt, &completedAt); err != nil {
		return order.Order{}, err
	}
	if userID.Valid {
		id := userID.Int64
		o.UserID = &id
	}
	o.Subtotal = money.FromFloat(subtotal)
	o.Tax = money.FromFloat(tax)
	o.Total = money.FromFloat(total)
	o.Status = order.Status(status)
	if method.Valid {
		m := order.PaymentMethod(method.String)
		o.PaymentMethod = &m
	}
	o.Notes = notes.String

	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return order.Order{}, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return order.Order{}, err
	}
	if o.CompletedAt, err = parseOptionalTime(completedAt); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func scanOrderItem(row scanner) (order.Item, error) {
	var item order.Item
	var unitPrice, totalPrice float64
	if err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &unitPrice, &totalPrice); err != nil {
		return order.Item{}, err
	}
	item.UnitPrice = money.FromFloat(unitPrice)
	item.TotalPrice = money.FromFloat(totalPrice)
	return item, nil
}

func nullInt64Ptr(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func nullPaymentMethod(method *order.PaymentMethod) sql.NullString {
	if method == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*method), Valid: true}
}
