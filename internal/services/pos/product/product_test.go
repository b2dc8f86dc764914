package product

import (
	"errors"
	"testing"

	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/shopspring/decimal"
)

func TestNormalize(t *testing.T) {
	blank := "  "
	got, err := Normalize(Product{
		Name:     "  Coffee ",
		Price:    decimal.RequireFromString("4.499"),
		Cost:     decimal.RequireFromString("1.2"),
		Stock:    10,
		Category: " Beverages ",
		Barcode:  &blank,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Name != "Coffee" || got.Category != "Beverages" {
		t.Fatalf("expected trimmed fields, got %q %q", got.Name, got.Category)
	}
	if got.Barcode != nil {
		t.Fatalf("expected blank barcode cleared, got %q", *got.Barcode)
	}
	if !got.Price.Equal(money.Cents(450)) {
		t.Fatalf("price = %s, want 4.50", got.Price)
	}
	if !got.Margin().Equal(money.Cents(330)) {
		t.Fatalf("margin = %s, want 3.30", got.Margin())
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr error
	}{
		{name: "empty name", product: Product{Name: " "}, wantErr: ErrEmptyName},
		{name: "negative price", product: Product{Name: "x", Price: decimal.NewFromInt(-1)}, wantErr: ErrInvalidPrice},
		{name: "negative cost", product: Product{Name: "x", Cost: decimal.RequireFromString("-0.01")}, wantErr: ErrInvalidPrice},
		{name: "negative stock", product: Product{Name: "x", Stock: -1}, wantErr: ErrInvalidStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.product); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCanFulfill(t *testing.T) {
	p := Product{Name: "Bagel", Stock: 3, IsActive: true}
	if !p.CanFulfill(3) || p.CanFulfill(4) || p.CanFulfill(0) {
		t.Fatal("unexpected fulfillment for active product")
	}
	p.IsActive = false
	if p.CanFulfill(1) {
		t.Fatal("expected inactive product to be unavailable")
	}
}
