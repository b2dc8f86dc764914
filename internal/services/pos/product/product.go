package product

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyName indicates a missing product name.
	ErrEmptyName = apperrors.New(apperrors.CodeProductEmptyName, "product name is required")
	// ErrInvalidPrice indicates a negative price or cost.
	ErrInvalidPrice = apperrors.New(apperrors.CodeProductInvalidPrice, "price and cost must not be negative")
	// ErrInvalidStock indicates a negative stock level.
	ErrInvalidStock = apperrors.New(apperrors.CodeProductInvalidStock, "stock must not be negative")
)

// Product is a sellable item. Barcode is nil when the item has none; any
// number of products may lack a barcode.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Stock       int64
	Category    string
	Barcode     *string
	Image       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize trims text fields, rounds amounts and clears a blank barcode.
func Normalize(p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, ErrEmptyName
	}
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.Image = strings.TrimSpace(p.Image)
	if p.Barcode != nil {
		code := strings.TrimSpace(*p.Barcode)
		if code == "" {
			p.Barcode = nil
		} else {
			p.Barcode = &code
		}
	}
	p.Price = money.Round(p.Price)
	p.Cost = money.Round(p.Cost)
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	if p.Stock < 0 {
		return Product{}, ErrInvalidStock
	}
	return p, nil
}

// Margin is the per-unit profit at the current price.
func (p Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// CanFulfill reports whether an active product has quantity units on hand.
func (p Product) CanFulfill(quantity int64) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}
