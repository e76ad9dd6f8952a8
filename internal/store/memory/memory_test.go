package memory

import (
	"context"
	"testing"

	"tajirpos/internal/domain"
)

func TestGetProductsSeedsOnFirstRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	products, err := s.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("expected 5 seed products, got %d", len(products))
	}
	for i, wantID := range []string{"1", "2", "3", "4", "5"} {
		if products[i].ID != wantID {
			t.Fatalf("product %d: expected id %s, got %s", i, wantID, products[i].ID)
		}
	}
	if products[0].Price != 120 || products[4].Price != 800 {
		t.Fatalf("unexpected seed prices: %v, %v", products[0].Price, products[4].Price)
	}
}

func TestPutProductsReplacesCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PutProducts(ctx, []domain.Product{{ID: "x1", Name: "شاحن", Price: 50, Quantity: 3}}); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}

	products, err := s.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(products) != 1 || products[0].ID != "x1" {
		t.Fatalf("expected the replaced collection, got %v", products)
	}
}

func TestPutEmptyProductsIsNotAbsent(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PutProducts(ctx, []domain.Product{}); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}

	products, err := s.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	// An explicitly empty collection must not fall back to the seed.
	if len(products) != 0 {
		t.Fatalf("expected empty collection, got %d products", len(products))
	}
}

func TestClearResurfacesSeedOnNextRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PutProducts(ctx, []domain.Product{{ID: "x1", Name: "شاحن", Price: 50, Quantity: 3}}); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}
	if err := s.PutSales(ctx, []domain.Sale{{ID: "sale-1", Total: 50}}); err != nil {
		t.Fatalf("PutSales: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	sales, err := s.GetSales(ctx)
	if err != nil {
		t.Fatalf("GetSales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sales after clear, got %d", len(sales))
	}

	products, err := s.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(products) != 5 || products[0].ID != "1" {
		t.Fatalf("expected seed catalog after clear, got %v", products)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PutProducts(ctx, []domain.Product{{ID: "x1", Name: "شاحن", Price: 50, Quantity: 3}}); err != nil {
		t.Fatalf("PutProducts: %v", err)
	}

	first, _ := s.GetProducts(ctx)
	first[0].Price = 999

	second, _ := s.GetProducts(ctx)
	if second[0].Price != 50 {
		t.Fatalf("store contents mutated through a read snapshot: %v", second[0].Price)
	}
}

func TestNewSeededHasUsers(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	users, err := s.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 seed users, got %d", len(users))
	}
	if users[0].Username != "admin" || users[1].Username != "cashier" {
		t.Fatalf("unexpected seed usernames: %s, %s", users[0].Username, users[1].Username)
	}
	for _, u := range users {
		if u.Password == "" || u.Password[0] != '$' {
			t.Fatalf("expected bcrypt hash for %s", u.Username)
		}
	}
}
