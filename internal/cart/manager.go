package cart

import (
	"context"
	"sync"
	"time"

	"tajirpos/internal/domain"
	"tajirpos/internal/ledger"
	"tajirpos/internal/xid"
)

// Manager tracks one cart per register session. Carts exist only in memory
// and gain no durable identity until checkout commits a sale.
type Manager struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	carts  map[string]*Cart
}

func NewManager(l *ledger.Ledger) *Manager {
	return &Manager{
		ledger: l,
		carts:  make(map[string]*Cart),
	}
}

// Open starts a fresh empty cart and returns its id.
func (m *Manager) Open() string {
	id := xid.New("cart")
	m.mu.Lock()
	m.carts[id] = &Cart{}
	m.mu.Unlock()
	return id
}

// Snapshot returns the cart's current lines and total.
func (m *Manager) Snapshot(cartID string) ([]domain.CartLine, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return nil, 0, ErrCartNotFound
	}
	return c.Lines(), c.Total(), nil
}

// AddProduct looks up the product's current record and adds one unit to the
// cart, subject to the stock rules.
func (m *Manager) AddProduct(ctx context.Context, cartID string, productID string) error {
	product, err := m.ledger.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	return c.AddLine(*product)
}

// Adjust changes a line's quantity by delta, validated against the product's
// current on-hand quantity.
func (m *Manager) Adjust(ctx context.Context, cartID string, productID string, delta int) error {
	product, err := m.ledger.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	return c.AdjustLine(productID, delta, product.Quantity)
}

func (m *Manager) Remove(cartID string, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	c.RemoveLine(productID)
	return nil
}

// Checkout finalizes the cart into an immutable sale: record the sale, then
// decrement stock per line, then reset the cart. The two ledger writes are
// intentionally separate and ordered sale-first; a crash in between leaves a
// recorded sale without its stock decrement.
func (m *Manager) Checkout(ctx context.Context, cartID string, paymentMethod string) (domain.Sale, error) {
	if paymentMethod != domain.PaymentCash && paymentMethod != domain.PaymentCard {
		return domain.Sale{}, ErrInvalidPayment
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[cartID]
	if !ok {
		return domain.Sale{}, ErrCartNotFound
	}
	if c.Empty() {
		return domain.Sale{}, ErrEmptyCart
	}

	lines := c.Lines()
	sale := domain.Sale{
		ID:            xid.New("sale"),
		Timestamp:     time.Now().UTC(),
		Items:         lines,
		Total:         c.Total(),
		PaymentMethod: paymentMethod,
	}

	if err := m.ledger.RecordSale(ctx, sale); err != nil {
		return domain.Sale{}, err
	}

	decrements := make([]domain.StockDecrement, 0, len(lines))
	for _, line := range lines {
		decrements = append(decrements, domain.StockDecrement{
			ProductID: line.ID,
			Quantity:  line.CartQuantity,
		})
	}
	if err := m.ledger.DecrementStock(ctx, decrements); err != nil {
		return domain.Sale{}, err
	}

	c.clear()
	return sale, nil
}

// Drop discards a cart without checking out. Absent ids are a no-op.
func (m *Manager) Drop(cartID string) {
	m.mu.Lock()
	delete(m.carts, cartID)
	m.mu.Unlock()
}
