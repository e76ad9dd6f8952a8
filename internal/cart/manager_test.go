package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"tajirpos/internal/domain"
	"tajirpos/internal/ledger"
	"tajirpos/internal/store"
	"tajirpos/internal/store/memory"
)

func newTestManager() (*Manager, *ledger.Ledger) {
	l := ledger.New(memory.New())
	return NewManager(l), l
}

func TestCheckoutLifecycle(t *testing.T) {
	m, l := newTestManager()
	ctx := context.Background()

	cartID := m.Open()

	// Seed product "5" has five units. Fill the cart to the cap.
	for i := 0; i < 5; i++ {
		if err := m.AddProduct(ctx, cartID, "5"); err != nil {
			t.Fatalf("add %d: %v", i+1, err)
		}
	}
	if err := m.AddProduct(ctx, cartID, "5"); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded on sixth add, got %v", err)
	}

	sale, err := m.Checkout(ctx, cartID, domain.PaymentCash)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if sale.ID == "" || sale.Timestamp.IsZero() {
		t.Fatalf("expected populated sale, got %+v", sale)
	}
	if sale.Total != 4000 {
		t.Fatalf("expected total 4000, got %v", sale.Total)
	}
	if sale.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", sale.Timestamp.Location())
	}

	// Stock is drained, and the drained product can no longer be added.
	product, err := l.GetProduct(ctx, "5")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.Quantity != 0 {
		t.Fatalf("expected quantity 0 after checkout, got %d", product.Quantity)
	}
	if err := m.AddProduct(ctx, cartID, "5"); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock after drain, got %v", err)
	}

	// The sale landed in history.
	recorded, err := l.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if recorded.Total != 4000 || len(recorded.Items) != 1 {
		t.Fatalf("unexpected recorded sale: %+v", recorded)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	m, _ := newTestManager()
	cartID := m.Open()

	if _, err := m.Checkout(context.Background(), cartID, domain.PaymentCash); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutInvalidPayment(t *testing.T) {
	m, _ := newTestManager()
	cartID := m.Open()

	if _, err := m.Checkout(context.Background(), cartID, "gold"); !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}
}

func TestCheckoutResetsCart(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	cartID := m.Open()

	if err := m.AddProduct(ctx, cartID, "1"); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := m.Checkout(ctx, cartID, domain.PaymentCard); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	lines, total, err := m.Snapshot(cartID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(lines) != 0 || total != 0 {
		t.Fatalf("expected empty cart after checkout, got %d lines total %v", len(lines), total)
	}
}

func TestSaleTotalFrozenAgainstPriceEdits(t *testing.T) {
	m, l := newTestManager()
	ctx := context.Background()
	cartID := m.Open()

	if err := m.AddProduct(ctx, cartID, "1"); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	sale, err := m.Checkout(ctx, cartID, domain.PaymentCash)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	product, err := l.GetProduct(ctx, "1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	product.Price = 5000
	if _, err := l.SaveProduct(ctx, *product); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}

	recorded, err := l.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if recorded.Total != 120 {
		t.Fatalf("sale total must stay frozen at 120, got %v", recorded.Total)
	}
}

func TestManagerUnknownCartAndProduct(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if err := m.AddProduct(ctx, "ghost-cart", "1"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	cartID := m.Open()
	if err := m.AddProduct(ctx, cartID, "no-such-product"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
	if _, _, err := m.Snapshot("ghost-cart"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestDropDiscardsCart(t *testing.T) {
	m, _ := newTestManager()
	cartID := m.Open()

	m.Drop(cartID)
	if _, _, err := m.Snapshot(cartID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after drop, got %v", err)
	}
}
