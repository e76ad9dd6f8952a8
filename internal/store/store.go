package store

import (
	"context"
	"errors"

	"tajirpos/internal/domain"
)

// Collection names under which the store keeps its documents. The app_
// prefix keeps them grouped when the backing storage is shared.
const (
	CollectionProducts = "app_products"
	CollectionSales    = "app_sales"
	CollectionExpenses = "app_expenses"
	CollectionUsers    = "app_users"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

// Store is the persistent collection space. Each collection is an ordered
// sequence of records; a Put replaces the collection wholesale. Reading an
// absent collection yields an empty slice, except Products which falls back
// to the seed catalog (see Seed). Clear erases every collection; the seed
// reappears on the next products read, not before.
type Store interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	PutProducts(ctx context.Context, products []domain.Product) error
	GetSales(ctx context.Context) ([]domain.Sale, error)
	PutSales(ctx context.Context, sales []domain.Sale) error
	GetExpenses(ctx context.Context) ([]domain.Expense, error)
	PutExpenses(ctx context.Context, expenses []domain.Expense) error
	GetUsers(ctx context.Context) ([]domain.UserAccount, error)
	PutUsers(ctx context.Context, users []domain.UserAccount) error
	Clear(ctx context.Context) error
}
