package domain

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// User roles. Roles are informational only; no route is gated on them.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// ExpenseCategories is the label set offered by the expense form. The set is
// extensible: unknown labels are stored as-is.
var ExpenseCategories = []string{"تشغيلية", "رواتب", "بضاعة", "أخرى"}

// DefaultExpenseCategory is applied when a request carries no category.
const DefaultExpenseCategory = "تشغيلية"

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Barcode  string  `json:"barcode"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

// CartLine is a snapshot of a product plus the quantity selected at the
// register. Lines live only inside an active cart until checkout copies them
// into a Sale; they are never persisted on their own.
type CartLine struct {
	Product
	CartQuantity int `json:"cart_quantity"`
}

// Subtotal is unit price times selected quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.CartQuantity)
}

// Sale is an immutable checkout record. Total is fixed at creation time and
// never recomputed, so later product price edits do not affect history.
type Sale struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Items         []CartLine `json:"items"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"`
}

type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

// StockDecrement names a product and the quantity consumed by a sale.
type StockDecrement struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UserAccount is the persisted user record. Password holds a bcrypt hash.
type UserAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserView is the API shape of a user account, without credentials.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u UserAccount) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

type ExpenseCreateRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date,omitempty"`
}

type CartLineRequest struct {
	ProductID string `json:"product_id"`
}

type CartAdjustRequest struct {
	Delta int `json:"delta"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies the logged-in user on a request, when a token is present.
type Actor struct {
	Username string
	Role     string
}
