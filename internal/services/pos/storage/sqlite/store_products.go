package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/louisbranch/postpos/internal/services/pos/product"
	"github.com/louisbranch/postpos/internal/services/pos/storage"
)

const productColumns = "id, name, description, price, cost, stock, category, barcode, image, is_active, created_at, updated_at"

// CreateProduct inserts a normalized product.
func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if err := s.ready(ctx); err != nil {
		return product.Product{}, err
	}
	p, err := product.Normalize(p)
	if err != nil {
		return product.Product{}, err
	}
	now := s.timestamp()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO products (name, description, price, cost, stock, category, barcode, image, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, nullString(p.Description), money.Float(p.Price), money.Float(p.Cost), p.Stock,
		nullString(p.Category), nullStringPtr(p.Barcode), nullString(p.Image), boolInt(p.IsActive),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return product.Product{}, storeError("insert product", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return product.Product{}, fmt.Errorf("product id: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces the editable fields of an existing product. Order
// items keep the name and price they were sold at.
func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if err := s.ready(ctx); err != nil {
		return product.Product{}, err
	}
	p, err := product.Normalize(p)
	if err != nil {
		return product.Product{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE products
SET name = ?, description = ?, price = ?, cost = ?, stock = ?, category = ?, barcode = ?, image = ?,
	is_active = ?, updated_at = ?
WHERE id = ?`,
		p.Name, nullString(p.Description), money.Float(p.Price), money.Float(p.Cost), p.Stock,
		nullString(p.Category), nullStringPtr(p.Barcode), nullString(p.Image), boolInt(p.IsActive),
		formatTime(s.timestamp()), p.ID,
	)
	if err != nil {
		return product.Product{}, storeError("update product", err)
	}
	if err := requireAffected(res, "update product"); err != nil {
		return product.Product{}, err
	}
	return getProduct(ctx, s.sqlDB, p.ID)
}

// DeleteProduct removes a product. Products referenced by order items cannot
// be deleted; deactivate them instead.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return storeError("delete product", err)
	}
	return requireAffected(res, "delete product")
}

// GetProduct fetches a product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (product.Product, error) {
	if err := s.ready(ctx); err != nil {
		return product.Product{}, err
	}
	return getProduct(ctx, s.sqlDB, id)
}

// GetProductByBarcode fetches a product by its exact barcode.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (product.Product, error) {
	if err := s.ready(ctx); err != nil {
		return product.Product{}, err
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return product.Product{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE barcode = ?", barcode)
	p, err := scanProduct(row)
	if err != nil {
		return product.Product{}, storeError("get product by barcode", err)
	}
	return p, nil
}

// ListProducts returns products ordered by name.
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := "SELECT " + productColumns + " FROM products"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	rows, err := s.sqlDB.QueryContext(ctx, query+" ORDER BY name, id")
	if err != nil {
		return nil, storeError("list products", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list products", err)
	}
	return products, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProduct(ctx context.Context, q queryRower, id int64) (product.Product, error) {
	row := q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		return product.Product{}, storeError("get product", err)
	}
	return p, nil
}

func scanProduct(row scanner) (product.Product, error) {
	var (
		p           product.Product
		description sql.NullString
		price, cost float64
		category    sql.NullString
		barcode     sql.NullString
		image       sql.NullString
		isActive    int64
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &price, &cost, &p.Stock, &category, &barcode, &image, &isActive, &createdAt, &updatedAt); err != nil {
		return product.Product{}, err
	}
	p.Description = description.String
	p.Price = money.FromFloat(price)
	p.Cost = money.FromFloat(cost)
	p.Category = category.String
	p.Barcode = stringPtr(barcode)
	p.Image = image.String
	p.IsActive = isActive == 1
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return product.Product{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return product.Product{}, err
	}
	return p, nil
}
