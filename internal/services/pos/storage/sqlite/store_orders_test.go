package sqlite

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/louisbranch/postpos/internal/services/pos/order"
	"github.com/louisbranch/postpos/internal/services/pos/storage"
)

func TestOrderLifecycle(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	cashier := int64(3)

	created, err := store.CreateOrder(ctx, storage.CreateOrderInput{
		UserID: &cashier,
		Lines:  []storage.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		Notes:  "bag please",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Status != order.StatusPending || len(created.Items) != 2 {
		t.Fatalf("unexpected order: %+v", created)
	}
	assertAmounts(t, created, 899, 90, 989)
	if created.Items[0].ProductName != "Coca Cola 500ml" || !created.Items[0].TotalPrice.Equal(money.Cents(500)) {
		t.Fatalf("unexpected first item: %+v", created.Items[0])
	}

	// Pending orders do not hold stock.
	assertStock(t, store, 1, 118)

	cash := order.PaymentCash
	paid, err := store.UpdateOrderStatus(ctx, created.ID, order.StatusPaid, &cash)
	if err != nil {
		t.Fatalf("pay order: %v", err)
	}
	if paid.Status != order.StatusPaid || paid.PaymentMethod == nil || *paid.PaymentMethod != cash {
		t.Fatalf("unexpected paid order: %+v", paid)
	}
	assertStock(t, store, 1, 116)
	assertStock(t, store, 2, 23)

	completed, err := store.UpdateOrderStatus(ctx, created.ID, order.StatusCompleted, nil)
	if err != nil {
		t.Fatalf("complete order: %v", err)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(testNow) {
		t.Fatalf("completed_at = %v", completed.CompletedAt)
	}
	assertStock(t, store, 1, 116)

	stored, err := store.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Status != order.StatusCompleted || stored.UserID == nil || *stored.UserID != cashier || stored.Notes != "bag please" {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
	if !stored.Consistent() || len(stored.Items) != 2 {
		t.Fatalf("stored order is inconsistent: %+v", stored)
	}

	_, err = store.UpdateOrderStatus(ctx, created.ID, order.StatusCancelled, nil)
	if got := apperrors.CodeOf(err); got != apperrors.CodeOrderInvalidStatusTransition {
		t.Fatalf("transition code = %s (err %v)", got, err)
	}
	_, err = store.UpdateOrderItems(ctx, created.ID, []storage.OrderLine{{ProductID: 1, Quantity: 1}})
	if got := apperrors.CodeOf(err); got != apperrors.CodeOrderNotEditable {
		t.Fatalf("edit code = %s (err %v)", got, err)
	}

	if err := store.DeleteOrder(ctx, created.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	assertStock(t, store, 1, 118)
	assertStock(t, store, 2, 24)
	if _, err := store.GetOrder(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected deleted order to be gone, got %v", err)
	}
	var items int64
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM order_items WHERE order_id = ?", created.ID).Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if items != 0 {
		t.Fatalf("items left after delete = %d", items)
	}
}

func TestPayRequiresPaymentMethod(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 4, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := store.UpdateOrderStatus(ctx, created.ID, order.StatusPaid, nil); !errors.Is(err, order.ErrInvalidPaymentMethod) {
		t.Fatalf("expected payment method error, got %v", err)
	}
	assertStock(t, store, 4, 45)
}

func TestPayFailsWhenStockRunsOut(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	card := order.PaymentCard

	first, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 3, Quantity: 7}}})
	if err != nil {
		t.Fatalf("create first order: %v", err)
	}
	second, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{
		{ProductID: 4, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	}})
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}
	if _, err := store.UpdateOrderStatus(ctx, first.ID, order.StatusPaid, &card); err != nil {
		t.Fatalf("pay first order: %v", err)
	}
	assertStock(t, store, 3, 0)

	_, err = store.UpdateOrderStatus(ctx, second.ID, order.StatusPaid, &card)
	if got := apperrors.CodeOf(err); got != apperrors.CodeOrderInsufficientStock {
		t.Fatalf("code = %s (err %v)", got, err)
	}
	// The whole payment rolls back, including lines that had stock.
	assertStock(t, store, 4, 45)
	still, err := store.GetOrder(ctx, second.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if still.Status != order.StatusPending {
		t.Fatalf("status = %s, want pending", still.Status)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	bogus := order.PaymentMethod("crypto")
	missingUser := int64(99)

	tests := []struct {
		name  string
		input storage.CreateOrderInput
		check func(error) bool
	}{
		{"empty", storage.CreateOrderInput{}, func(err error) bool { return errors.Is(err, order.ErrEmpty) }},
		{"zero quantity", storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 1}}},
			func(err error) bool { return errors.Is(err, order.ErrInvalidQuantity) }},
		{"missing product", storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 999, Quantity: 1}}},
			func(err error) bool { return errors.Is(err, storage.ErrNotFound) }},
		{"inactive product", storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 5, Quantity: 1}}},
			func(err error) bool { return apperrors.CodeOf(err) == apperrors.CodeOrderInsufficientStock }},
		{"over stock across lines", storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 3, Quantity: 5}, {ProductID: 3, Quantity: 4}}},
			func(err error) bool { return apperrors.CodeOf(err) == apperrors.CodeOrderInsufficientStock }},
		{"bad payment method", storage.CreateOrderInput{PaymentMethod: &bogus, Lines: []storage.OrderLine{{ProductID: 1, Quantity: 1}}},
			func(err error) bool { return errors.Is(err, order.ErrInvalidPaymentMethod) }},
		{"unknown user", storage.CreateOrderInput{UserID: &missingUser, Lines: []storage.OrderLine{{ProductID: 1, Quantity: 1}}},
			func(err error) bool { return apperrors.CodeOf(err) == apperrors.CodeConstraintViolation }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateOrder(ctx, tt.input)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	orders, err := store.ListOrders(ctx, nil)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected only the seeded orders, got %d", len(orders))
	}
}

func TestUpdateOrderItems(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 1, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	updated, err := store.UpdateOrderItems(ctx, created.ID, []storage.OrderLine{{ProductID: 4, Quantity: 2}})
	if err != nil {
		t.Fatalf("update items: %v", err)
	}
	assertAmounts(t, updated, 900, 90, 990)

	stored, err := store.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].ProductID != 4 || stored.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", stored.Items)
	}
	assertAmounts(t, stored, 900, 90, 990)

	if _, err := store.UpdateOrderItems(ctx, created.ID, nil); !errors.Is(err, order.ErrEmpty) {
		t.Fatalf("expected empty order error, got %v", err)
	}
	if _, err := store.UpdateOrderItems(ctx, 404, []storage.OrderLine{{ProductID: 1, Quantity: 1}}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrderTaxFollowsSettings(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	current, err := store.GetCompanySettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	current.TaxEnabled = false
	if _, err := store.UpdateCompanySettings(ctx, current); err != nil {
		t.Fatalf("disable tax: %v", err)
	}

	created, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 3, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	assertAmounts(t, created, 2499, 0, 2499)
}

func TestSeededOrders(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	completed := order.StatusCompleted
	orders, err := store.ListOrders(ctx, &completed)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("unexpected completed orders: %+v", orders)
	}
	assertAmounts(t, orders[0], 899, 90, 989)
	if orders[0].UserID == nil || *orders[0].UserID != 1 {
		t.Fatalf("expected seeded order to belong to admin, got %v", orders[0].UserID)
	}

	all, err := store.ListOrders(ctx, nil)
	if err != nil {
		t.Fatalf("list all orders: %v", err)
	}
	if len(all) != 2 || all[0].ID != 2 {
		t.Fatalf("expected newest first, got %+v", all)
	}

	// Seeded stock already excludes the seeded orders' quantities.
	assertStock(t, store, 1, 118)
	assertStock(t, store, 2, 24)
	assertStock(t, store, 3, 7)

	// A completed order can still be removed; its stock comes back.
	if err := store.DeleteOrder(ctx, 1); err != nil {
		t.Fatalf("delete completed order: %v", err)
	}
	assertStock(t, store, 1, 120)
	assertStock(t, store, 2, 25)
	if err := store.DeleteOrder(ctx, 2); err != nil {
		t.Fatalf("delete paid order: %v", err)
	}
	assertStock(t, store, 3, 8)
	if err := store.DeleteOrder(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	store := openTempStore(t)
	bogus := order.Status("refunded")
	if _, err := store.ListOrders(context.Background(), &bogus); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func assertAmounts(t *testing.T, o order.Order, subtotal, tax, total int64) {
	t.Helper()
	if !o.Subtotal.Equal(money.Cents(subtotal)) || !o.Tax.Equal(money.Cents(tax)) || !o.Total.Equal(money.Cents(total)) {
		t.Fatalf("amounts = %s/%s/%s, want %s/%s/%s", o.Subtotal, o.Tax, o.Total,
			money.Cents(subtotal), money.Cents(tax), money.Cents(total))
	}
}

func assertStock(t *testing.T, store *Store, productID, want int64) {
	t.Helper()
	p, err := store.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	if p.Stock != want {
		t.Fatalf("product %d stock = %d, want %d", productID, p.Stock, want)
	}
}

func TestOrderItemsKeepSoldNameAndPrice(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.CreateOrder(ctx, storage.CreateOrderInput{Lines: []storage.OrderLine{{ProductID: 2, Quantity: 2}}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	bread, err := store.GetProduct(ctx, 2)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	bread.Name = "Sourdough Loaf"
	bread.Price = money.Cents(599)
	if _, err := store.UpdateProduct(ctx, bread); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, err := store.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(stored.Items))
	}
	item := stored.Items[0]
	if item.ProductName != "Bread Loaf" || !item.UnitPrice.Equal(money.Cents(399)) || !item.TotalPrice.Equal(money.Cents(798)) {
		t.Fatalf("item followed the product edit: %+v", item)
	}
	assertAmounts(t, stored, 798, 80, 878)
}
