package cart

import (
	"errors"

	"tajirpos/internal/domain"
)

var (
	ErrOutOfStock      = errors.New("product out of stock")
	ErrStockExceeded   = errors.New("cart quantity would exceed stock")
	ErrInvalidQuantity = errors.New("cart quantity must stay positive")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidPayment  = errors.New("unsupported payment method")
	ErrCartNotFound    = errors.New("cart not found")
)

// Cart is the transient per-session selection awaiting checkout. All stock
// checks use the product snapshot handed in by the caller; a rejected
// mutation returns an error and leaves the cart exactly as it was.
type Cart struct {
	lines []domain.CartLine
}

// AddLine puts one unit of the product in the cart. Products with no stock
// are rejected; an existing line grows by one unless that would exceed the
// product's current on-hand quantity.
func (c *Cart) AddLine(p domain.Product) error {
	if p.Quantity <= 0 {
		return ErrOutOfStock
	}
	for i := range c.lines {
		if c.lines[i].ID == p.ID {
			if c.lines[i].CartQuantity >= p.Quantity {
				return ErrStockExceeded
			}
			c.lines[i].CartQuantity++
			return nil
		}
	}
	c.lines = append(c.lines, domain.CartLine{Product: p, CartQuantity: 1})
	return nil
}

// AdjustLine applies delta to the matching line. Adjustments above the
// on-hand quantity or down to zero and below are rejected; only RemoveLine
// deletes a line.
func (c *Cart) AdjustLine(productID string, delta int, onHand int) error {
	for i := range c.lines {
		if c.lines[i].ID != productID {
			continue
		}
		next := c.lines[i].CartQuantity + delta
		if next > onHand {
			return ErrStockExceeded
		}
		if next <= 0 {
			return ErrInvalidQuantity
		}
		c.lines[i].CartQuantity = next
		return nil
	}
	return ErrLineNotFound
}

// RemoveLine deletes the matching line unconditionally.
func (c *Cart) RemoveLine(productID string) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.ID != productID {
			kept = append(kept, line)
		}
	}
	c.lines = kept
}

// Lines returns a snapshot of the current selection.
func (c *Cart) Lines() []domain.CartLine {
	snapshot := make([]domain.CartLine, len(c.lines))
	copy(snapshot, c.lines)
	return snapshot
}

// Total sums line subtotals. It is recomputed on every call, never cached.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) clear() {
	c.lines = nil
}
