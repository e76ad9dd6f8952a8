package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tajirpos/internal/domain"
	"tajirpos/internal/store"
	"tajirpos/internal/xid"
)

// ErrSaleNotFound is returned when a sale id has no matching record.
var ErrSaleNotFound = errors.New("sale not found")

// Ledger owns all reads and writes against the durable collections. Every
// operation is a read-modify-write of one whole collection; no operation
// spans two collections, so the RecordSale/DecrementStock pair at checkout
// stays two independent writes (a deliberate, documented gap).
type Ledger struct {
	store store.Store
}

func New(st store.Store) *Ledger {
	return &Ledger{store: st}
}

func (l *Ledger) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return l.store.GetProducts(ctx)
}

func (l *Ledger) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	products, err := l.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

// SaveProduct inserts the product when its id is unseen, otherwise replaces
// the matching record wholesale. A missing id is assigned. Partial merges are
// not supported.
func (l *Ledger) SaveProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name required", store.ErrInvalidRecord)
	}
	if p.Price < 0 || p.Cost < 0 || p.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("%w: negative price, cost or quantity", store.ErrInvalidRecord)
	}
	if p.ID == "" {
		p.ID = xid.New("prod")
	}

	products, err := l.store.GetProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, p)
	}

	if err := l.store.PutProducts(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes the matching record; absent ids are a no-op. Sales
// keep their own item snapshots, so history is unaffected.
func (l *Ledger) DeleteProduct(ctx context.Context, id string) error {
	products, err := l.store.GetProducts(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return l.store.PutProducts(ctx, kept)
}

func (l *Ledger) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return l.store.GetSales(ctx)
}

func (l *Ledger) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sales, err := l.store.GetSales(ctx)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		if sale.ID == id {
			found := sale
			return &found, nil
		}
	}
	return nil, ErrSaleNotFound
}

// RecordSale appends the sale unconditionally. Stock validation is the
// cart's responsibility before this is called.
func (l *Ledger) RecordSale(ctx context.Context, sale domain.Sale) error {
	sales, err := l.store.GetSales(ctx)
	if err != nil {
		return err
	}
	sales = append(sales, sale)
	return l.store.PutSales(ctx, sales)
}

// DecrementStock applies each decrement to the matching product, clamping
// quantity at zero. Unknown product ids are skipped.
func (l *Ledger) DecrementStock(ctx context.Context, lines []domain.StockDecrement) error {
	products, err := l.store.GetProducts(ctx)
	if err != nil {
		return err
	}

	for _, line := range lines {
		for i := range products {
			if products[i].ID != line.ProductID {
				continue
			}
			products[i].Quantity -= line.Quantity
			if products[i].Quantity < 0 {
				products[i].Quantity = 0
			}
			break
		}
	}
	return l.store.PutProducts(ctx, products)
}

func (l *Ledger) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return l.store.GetExpenses(ctx)
}

func (l *Ledger) AddExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return domain.Expense{}, fmt.Errorf("%w: expense description required", store.ErrInvalidRecord)
	}
	if req.Amount < 0 {
		return domain.Expense{}, fmt.Errorf("%w: negative amount", store.ErrInvalidRecord)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = domain.DefaultExpenseCategory
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return domain.Expense{}, fmt.Errorf("%w: bad date %q", store.ErrInvalidRecord, req.Date)
		}
		date = parsed.UTC()
	}

	expense := domain.Expense{
		ID:          xid.New("exp"),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    category,
		Date:        date,
	}

	expenses, err := l.store.GetExpenses(ctx)
	if err != nil {
		return domain.Expense{}, err
	}
	expenses = append(expenses, expense)
	if err := l.store.PutExpenses(ctx, expenses); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

// DeleteExpense filters out the matching record; absent ids are a no-op.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	expenses, err := l.store.GetExpenses(ctx)
	if err != nil {
		return err
	}

	kept := expenses[:0]
	for _, e := range expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return l.store.PutExpenses(ctx, kept)
}

func (l *Ledger) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	return l.store.GetUsers(ctx)
}

// Reset erases all collections. Products reseed on the next read.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.store.Clear(ctx)
}
