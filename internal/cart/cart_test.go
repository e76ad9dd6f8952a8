package cart

import (
	"errors"
	"testing"

	"tajirpos/internal/domain"
)

func watch() domain.Product {
	// Mirrors the scarcest seed product: five units on hand.
	return domain.Product{ID: "5", Name: "ساعة يد", Barcode: "1005", Price: 800, Cost: 500, Quantity: 5, Category: "اكسسوارات"}
}

func TestAddLineRejectsOutOfStock(t *testing.T) {
	c := &Cart{}
	p := watch()
	p.Quantity = 0

	if err := c.AddLine(p); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if !c.Empty() {
		t.Fatal("rejected add must leave the cart unchanged")
	}
}

func TestAddLineCapsAtOnHand(t *testing.T) {
	c := &Cart{}
	p := watch()

	for i := 0; i < 5; i++ {
		if err := c.AddLine(p); err != nil {
			t.Fatalf("add %d: %v", i+1, err)
		}
	}
	if err := c.AddLine(p); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded on sixth add, got %v", err)
	}

	lines := c.Lines()
	if len(lines) != 1 || lines[0].CartQuantity != 5 {
		t.Fatalf("expected one line of 5, got %v", lines)
	}
}

func TestAdjustLineRules(t *testing.T) {
	c := &Cart{}
	p := watch()
	if err := c.AddLine(p); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	if err := c.AdjustLine("5", 10, p.Quantity); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}
	if err := c.AdjustLine("5", -1, p.Quantity); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity going to zero, got %v", err)
	}
	if got := c.Lines()[0].CartQuantity; got != 1 {
		t.Fatalf("rejected adjust must not change the line, got %d", got)
	}

	if err := c.AdjustLine("5", 3, p.Quantity); err != nil {
		t.Fatalf("AdjustLine +3: %v", err)
	}
	if got := c.Lines()[0].CartQuantity; got != 4 {
		t.Fatalf("expected quantity 4, got %d", got)
	}

	if err := c.AdjustLine("missing", 1, 10); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestRemoveLineIsUnconditional(t *testing.T) {
	c := &Cart{}
	if err := c.AddLine(watch()); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	c.RemoveLine("5")
	if !c.Empty() {
		t.Fatal("expected empty cart after remove")
	}

	// Removing an absent line is a no-op.
	c.RemoveLine("5")
}

func TestTotalIsRecomputed(t *testing.T) {
	c := &Cart{}
	p := watch()
	if err := c.AddLine(p); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := c.AdjustLine("5", 2, p.Quantity); err != nil {
		t.Fatalf("AdjustLine: %v", err)
	}

	if got := c.Total(); got != 2400 {
		t.Fatalf("expected total 2400, got %v", got)
	}
}

func TestLinesReturnsSnapshot(t *testing.T) {
	c := &Cart{}
	if err := c.AddLine(watch()); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	lines := c.Lines()
	lines[0].CartQuantity = 99

	if got := c.Lines()[0].CartQuantity; got != 1 {
		t.Fatalf("cart mutated through snapshot, got %d", got)
	}
}
