package order

import (
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmpty indicates an order without items.
	ErrEmpty = apperrors.New(apperrors.CodeOrderEmpty, "order has no items")
	// ErrInvalidQuantity indicates an item quantity below one.
	ErrInvalidQuantity = apperrors.New(apperrors.CodeOrderInvalidQuantity, "item quantity must be positive")
)

// InsufficientStock reports that product cannot cover the requested quantity.
func InsufficientStock(product string) error {
	return apperrors.WithMetadata(apperrors.CodeOrderInsufficientStock, "insufficient stock",
		map[string]string{"product": product})
}

// NotEditable reports that an order's items can no longer change.
func NotEditable(status Status) error {
	return apperrors.WithMetadata(apperrors.CodeOrderNotEditable, "order items are locked",
		map[string]string{"status": string(status)})
}

// Editable reports whether the order's items may still be replaced.
func (o Order) Editable() bool {
	return o.Status == StatusPending
}

// HoldsStock reports whether the order's items have been taken out of stock.
func (o Order) HoldsStock() bool {
	return o.Status == StatusPaid || o.Status == StatusCompleted
}

// Item is one line of an order. ProductName and UnitPrice are copied from
// the product when the order is created so receipts survive product edits.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Order is a sale.
type Order struct {
	ID            int64
	UserID        *int64
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	PaymentMethod *PaymentMethod
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	Items         []Item
}

// Totals are the derived amounts of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices items and sums them. taxRate is a fraction (0.1 for
// 10%). The returned items carry rounded unit and total prices.
func ComputeTotals(items []Item, taxRate decimal.Decimal) (Totals, []Item, error) {
	if len(items) == 0 {
		return Totals{}, nil, ErrEmpty
	}
	priced := make([]Item, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity < 1 {
			return Totals{}, nil, ErrInvalidQuantity
		}
		item.UnitPrice = money.Round(item.UnitPrice)
		item.TotalPrice = lineTotal(item)
		subtotal = subtotal.Add(item.TotalPrice)
		priced[i] = item
	}
	tax := money.Round(subtotal.Mul(taxRate))
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, priced, nil
}

func lineTotal(item Item) decimal.Decimal {
	return money.Round(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
}

// Consistent reports whether the stored derived amounts agree with the items
// to the cent. Orders written before totals were recomputed on every write
// can carry float drift and fail this check.
func (o Order) Consistent() bool {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		if !money.Round(item.TotalPrice).Equal(lineTotal(item)) {
			return false
		}
		subtotal = subtotal.Add(money.Round(item.TotalPrice))
	}
	if len(o.Items) > 0 && !money.Round(o.Subtotal).Equal(subtotal) {
		return false
	}
	return money.Round(o.Total).Equal(money.Round(o.Subtotal).Add(money.Round(o.Tax)))
}

// Advance moves o to status to. Paying requires a payment method; completing
// stamps CompletedAt.
func (o Order) Advance(to Status, method *PaymentMethod, now time.Time) (Order, error) {
	if !to.Valid() {
		return Order{}, apperrors.WithMetadata(apperrors.CodeOrderInvalidStatus, "unknown order status",
			map[string]string{"status": string(to)})
	}
	if !CanTransition(o.Status, to) {
		return Order{}, apperrors.WithMetadata(apperrors.CodeOrderInvalidStatusTransition, "invalid order status transition",
			map[string]string{"from": string(o.Status), "to": string(to)})
	}
	now = now.UTC()
	if to == StatusPaid {
		if method == nil {
			method = o.PaymentMethod
		}
		if method == nil || !method.Valid() {
			return Order{}, ErrInvalidPaymentMethod
		}
		chosen := *method
		o.PaymentMethod = &chosen
	}
	if to == StatusCompleted {
		o.CompletedAt = &now
	}
	o.Status = to
	o.UpdatedAt = now
	return o, nil
}
