package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/postpos/internal/services/pos/customer"
	"github.com/louisbranch/postpos/internal/services/pos/money"
)

const customerColumns = `id, customer_number, first_name, last_name, email, phone, address_line1, address_line2,
city, state, postal_code, country, loyalty_points, total_spent, last_purchase_date, is_active, notes,
created_at, updated_at, deleted_at`

// CreateCustomer inserts a customer and assigns a customer number derived
// from its id when none was given.
func (s *Store) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if err := s.ready(ctx); err != nil {
		return customer.Customer{}, err
	}
	c, err := customer.Normalize(c)
	if err != nil {
		return customer.Customer{}, err
	}
	now := s.timestamp()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.DeletedAt = nil

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return customer.Customer{}, storeError("start transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
INSERT INTO customers (customer_number, first_name, last_name, email, phone, address_line1, address_line2,
	city, state, postal_code, country, loyalty_points, total_spent, last_purchase_date, is_active, notes,
	created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullStringPtr(c.CustomerNumber), c.FirstName, c.LastName, nullStringPtr(c.Email), nullStringPtr(c.Phone),
		nullString(c.AddressLine1), nullString(c.AddressLine2), nullString(c.City), nullString(c.State),
		nullString(c.PostalCode), nullString(c.Country), c.LoyaltyPoints, money.Float(c.TotalSpent),
		formatOptionalTime(c.LastPurchaseDate), boolInt(c.IsActive), nullString(c.Notes),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return customer.Customer{}, storeError("insert customer", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return customer.Customer{}, fmt.Errorf("customer id: %w", err)
	}
	if c.CustomerNumber == nil {
		number := customer.FormatNumber(c.ID)
		if _, err := tx.ExecContext(ctx, "UPDATE customers SET customer_number = ? WHERE id = ?", number, c.ID); err != nil {
			return customer.Customer{}, storeError("assign customer number", err)
		}
		c.CustomerNumber = &number
	}
	if err := tx.Commit(); err != nil {
		return customer.Customer{}, storeError("commit customer", err)
	}
	return c, nil
}

// GetCustomer fetches a customer by id, including soft-deleted customers.
func (s *Store) GetCustomer(ctx context.Context, id int64) (customer.Customer, error) {
	if err := s.ready(ctx); err != nil {
		return customer.Customer{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
	c, err := scanCustomer(row)
	if err != nil {
		return customer.Customer{}, storeError("get customer", err)
	}
	return c, nil
}

// ListCustomers returns customers that are not soft-deleted, by last name.
func (s *Store) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE deleted_at IS NULL ORDER BY last_name, first_name, id")
	if err != nil {
		return nil, storeError("list customers", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list customers", err)
	}
	return customers, nil
}

// UpdateCustomer replaces the profile of a customer that is not
// soft-deleted. The customer number is never changed.
func (s *Store) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if err := s.ready(ctx); err != nil {
		return customer.Customer{}, err
	}
	c, err := customer.Normalize(c)
	if err != nil {
		return customer.Customer{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE customers
SET first_name = ?, last_name = ?, email = ?, phone = ?, address_line1 = ?, address_line2 = ?,
	city = ?, state = ?, postal_code = ?, country = ?, loyalty_points = ?, total_spent = ?,
	last_purchase_date = ?, is_active = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		c.FirstName, c.LastName, nullStringPtr(c.Email), nullStringPtr(c.Phone),
		nullString(c.AddressLine1), nullString(c.AddressLine2), nullString(c.City), nullString(c.State),
		nullString(c.PostalCode), nullString(c.Country), c.LoyaltyPoints, money.Float(c.TotalSpent),
		formatOptionalTime(c.LastPurchaseDate), boolInt(c.IsActive), nullString(c.Notes),
		formatTime(s.timestamp()), c.ID,
	)
	if err != nil {
		return customer.Customer{}, storeError("update customer", err)
	}
	if err := requireAffected(res, "update customer"); err != nil {
		return customer.Customer{}, err
	}
	return s.GetCustomer(ctx, c.ID)
}

// UpdateLoyaltyPoints adds delta, which may be negative, to a customer's
// points. A balance that would drop below zero is a constraint violation.
func (s *Store) UpdateLoyaltyPoints(ctx context.Context, id, delta int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE customers SET loyalty_points = loyalty_points + ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		delta, formatTime(s.timestamp()), id)
	if err != nil {
		return storeError("update loyalty points", err)
	}
	return requireAffected(res, "update loyalty points")
}

// DeleteCustomer soft-deletes a customer.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	now := formatTime(s.timestamp())
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE customers SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL", now, now, id)
	if err != nil {
		return storeError("delete customer", err)
	}
	return requireAffected(res, "delete customer")
}

func scanCustomer(row scanner) (customer.Customer, error) {
	var (
		c                                       customer.Customer
		number, email, phone                    sql.NullString
		address1, address2, city, state, postal sql.NullString
		country, notes, lastPurchase, deletedAt sql.NullString
		totalSpent                              float64
		isActive                                int64
		createdAt, updatedAt                    string
	)
	if err := row.Scan(&c.ID, &number, &c.FirstName, &c.LastName, &email, &phone, &address1, &address2,
		&city, &state, &postal, &country, &c.LoyaltyPoints, &totalSpent, &lastPurchase, &isActive, &notes,
		&createdAt, &updatedAt, &deletedAt); err != nil {
		return customer.Customer{}, err
	}
	c.CustomerNumber = stringPtr(number)
	c.Email = stringPtr(email)
	c.Phone = stringPtr(phone)
	c.AddressLine1 = address1.String
	c.AddressLine2 = address2.String
	c.City = city.String
	c.State = state.String
	c.PostalCode = postal.String
	c.Country = country.String
	c.Notes = notes.String
	c.TotalSpent = money.FromFloat(totalSpent)
	c.IsActive = isActive == 1

	var err error
	if c.LastPurchaseDate, err = parseOptionalTime(lastPurchase); err != nil {
		return customer.Customer{}, err
	}
	if c.DeletedAt, err = parseOptionalTime(deletedAt); err != nil {
		return customer.Customer{}, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return customer.Customer{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return customer.Customer{}, err
	}
	return c, nil
}
