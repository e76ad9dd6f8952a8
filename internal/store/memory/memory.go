package memory

import (
	"context"
	"sync"

	"tajirpos/internal/domain"
	"tajirpos/internal/store"
)

// Store keeps every collection in process memory. Collections are tracked
// with presence flags so that the seed-on-absent-read rule for products
// behaves exactly like the durable store: Clear drops the flag and the seed
// catalog reappears on the next read.
type Store struct {
	mu          sync.RWMutex
	products    []domain.Product
	hasProducts bool
	sales       []domain.Sale
	expenses    []domain.Expense
	users       []domain.UserAccount
	hasUsers    bool
}

// New returns an empty store: products read the seed catalog, everything
// else reads empty.
func New() *Store {
	return &Store{}
}

// NewSeeded returns a store with the seed users already present, matching
// what the durable store bootstraps on first run.
func NewSeeded() *Store {
	return &Store{
		users:    store.SeedUsers(),
		hasUsers: true,
	}
}

func (s *Store) GetProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasProducts {
		return store.Seed(), nil
	}
	return copySlice(s.products), nil
}

func (s *Store) PutProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = copySlice(products)
	s.hasProducts = true
	return nil
}

func (s *Store) GetSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySales(s.sales), nil
}

func (s *Store) PutSales(_ context.Context, sales []domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = copySales(sales)
	return nil
}

func (s *Store) GetExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySlice(s.expenses), nil
}

func (s *Store) PutExpenses(_ context.Context, expenses []domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses = copySlice(expenses)
	return nil
}

func (s *Store) GetUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasUsers {
		return []domain.UserAccount{}, nil
	}
	return copySlice(s.users), nil
}

func (s *Store) PutUsers(_ context.Context, users []domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = copySlice(users)
	s.hasUsers = true
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	s.hasProducts = false
	s.sales = nil
	s.expenses = nil
	s.users = nil
	s.hasUsers = false
	return nil
}

func copySlice[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}

// copySales deep-copies the item snapshots so callers cannot mutate stored
// sale history through the returned slices.
func copySales(src []domain.Sale) []domain.Sale {
	dst := make([]domain.Sale, len(src))
	copy(dst, src)
	for i := range dst {
		items := make([]domain.CartLine, len(dst[i].Items))
		copy(items, dst[i].Items)
		dst[i].Items = items
	}
	return dst
}
