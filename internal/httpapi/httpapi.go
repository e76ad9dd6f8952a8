package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"tajirpos/internal/cart"
	"tajirpos/internal/domain"
	"tajirpos/internal/insights"
	"tajirpos/internal/invoice"
	"tajirpos/internal/ledger"
	"tajirpos/internal/report"
	"tajirpos/internal/store"
)

type API struct {
	ledger            *ledger.Ledger
	carts             *cart.Manager
	insights          *insights.Service
	auth              *AuthManager
	allowedOrigin     string
	lowStockThreshold int
	loginLimiter      *attemptLimiter
}

func New(l *ledger.Ledger, carts *cart.Manager, insightsSvc *insights.Service, auth *AuthManager, allowedOrigin string, lowStockThreshold int) *API {
	if lowStockThreshold < 1 {
		lowStockThreshold = report.DefaultLowStockThreshold
	}
	return &API{
		ledger:            l,
		carts:             carts,
		insights:          insightsSvc,
		auth:              auth,
		allowedOrigin:     allowedOrigin,
		lowStockThreshold: lowStockThreshold,
		loginLimiter:      newAttemptLimiter(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/me", a.handleMe)

	mux.HandleFunc("/api/v1/products", a.handleProducts)
	mux.HandleFunc("/api/v1/products/", a.handleProductActions)
	mux.HandleFunc("/api/v1/expenses", a.handleExpenses)
	mux.HandleFunc("/api/v1/expenses/", a.handleExpenseActions)
	mux.HandleFunc("/api/v1/sales", a.handleSales)
	mux.HandleFunc("/api/v1/sales/", a.handleSaleActions)
	mux.HandleFunc("/api/v1/carts", a.handleCarts)
	mux.HandleFunc("/api/v1/carts/", a.handleCartActions)
	mux.HandleFunc("/api/v1/reports/dashboard", a.handleDashboard)
	mux.HandleFunc("/api/v1/reports/monthly", a.handleMonthlyReport)
	mux.HandleFunc("/api/v1/reports/annual", a.handleAnnualReport)
	mux.HandleFunc("/api/v1/insights", a.handleInsights)
	mux.HandleFunc("/api/v1/users", a.handleUsers)
	mux.HandleFunc("/api/v1/reset", a.handleReset)

	return a.withMiddleware(mux)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if a.auth == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("authentication is not configured"))
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if a.auth == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("authentication is not configured"))
		return
	}

	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
		return
	}
	actor, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username": actor.Username,
		"role":     actor.Role,
	})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.ledger.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		products = report.SearchProducts(products, r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.Product
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		saved, err := a.ledger.SaveProduct(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": saved})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/api/v1/products/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := a.ledger.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodPut:
		var req domain.Product
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.ID = id

		saved, err := a.ledger.SaveProduct(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": saved})
	case http.MethodDelete:
		if err := a.ledger.DeleteProduct(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := a.ledger.ListExpenses(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"expenses":   expenses,
			"categories": domain.ExpenseCategories,
		})
	case http.MethodPost:
		var req domain.ExpenseCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		expense, err := a.ledger.AddExpense(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenseActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	id := pathTail(r.URL.Path, "/api/v1/expenses/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("expense id required"))
		return
	}
	if err := a.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	sales, err := a.ledger.ListSales(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleSaleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	rest := pathTail(r.URL.Path, "/api/v1/sales/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, errors.New("sale id required"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/invoice"); ok {
		a.renderInvoice(w, r, strings.Trim(id, "/"))
		return
	}

	sale, err := a.ledger.GetSale(r.Context(), rest)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) renderInvoice(w http.ResponseWriter, r *http.Request, saleID string) {
	if saleID == "" {
		writeError(w, http.StatusBadRequest, errors.New("sale id required"))
		return
	}

	sale, err := a.ledger.GetSale(r.Context(), saleID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := invoice.Render(w, *sale); err != nil {
		log.Printf("[httpapi] invoice render failed for %s: %v", saleID, err)
	}
}

func (a *API) handleCarts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"cart_id": a.carts.Open()})
}

func (a *API) handleCartActions(w http.ResponseWriter, r *http.Request) {
	rest := pathTail(r.URL.Path, "/api/v1/carts/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, errors.New("cart id required"))
		return
	}

	parts := strings.Split(rest, "/")
	cartID := parts[0]

	switch {
	case len(parts) == 1:
		a.handleCart(w, r, cartID)
	case len(parts) == 2 && parts[1] == "lines":
		a.handleCartLineAdd(w, r, cartID)
	case len(parts) == 3 && parts[1] == "lines":
		a.handleCartLine(w, r, cartID, parts[2])
	case len(parts) == 2 && parts[1] == "checkout":
		a.handleCheckout(w, r, cartID)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown cart action"))
	}
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request, cartID string) {
	switch r.Method {
	case http.MethodGet:
		lines, total, err := a.carts.Snapshot(cartID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": lines, "total": total})
	case http.MethodDelete:
		a.carts.Drop(cartID)
		writeJSON(w, http.StatusOK, map[string]any{"dropped": cartID})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCartLineAdd(w http.ResponseWriter, r *http.Request, cartID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	if err := a.carts.AddProduct(r.Context(), cartID, req.ProductID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.writeCartSnapshot(w, cartID)
}

func (a *API) handleCartLine(w http.ResponseWriter, r *http.Request, cartID string, productID string) {
	switch r.Method {
	case http.MethodPatch:
		var req domain.CartAdjustRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if err := a.carts.Adjust(r.Context(), cartID, productID, req.Delta); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		a.writeCartSnapshot(w, cartID)
	case http.MethodDelete:
		if err := a.carts.Remove(cartID, productID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		a.writeCartSnapshot(w, cartID)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) writeCartSnapshot(w http.ResponseWriter, cartID string) {
	lines, total, err := a.carts.Snapshot(cartID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": lines, "total": total})
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request, cartID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sale, err := a.carts.Checkout(r.Context(), cartID, req.PaymentMethod)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	ctx := r.Context()
	products, err := a.ledger.ListProducts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sales, err := a.ledger.ListSales(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	expenses, err := a.ledger.ListExpenses(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":          report.Dashboard(sales, expenses, products, a.lowStockThreshold),
		"revenue_by_day": report.RevenueByDay(sales, 7, time.Now()),
		"low_stock":      report.LowStock(products, a.lowStockThreshold),
	})
}

func (a *API) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	year := parseYear(r.URL.Query().Get("year"))

	sales, expenses, err := a.loadLedgerTotalsInput(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	rollup := report.MonthlyRollup(sales, expenses, year)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": rollup,
	})
}

func (a *API) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	year := parseYear(r.URL.Query().Get("year"))

	sales, expenses, err := a.loadLedgerTotalsInput(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	rollup := report.MonthlyRollup(sales, expenses, year)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"summary": report.Annual(rollup, sales, year),
	})
}

func (a *API) loadLedgerTotalsInput(r *http.Request) ([]domain.Sale, []domain.Expense, error) {
	sales, err := a.ledger.ListSales(r.Context())
	if err != nil {
		return nil, nil, err
	}
	expenses, err := a.ledger.ListExpenses(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return sales, expenses, nil
}

func (a *API) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	ctx := r.Context()
	products, err := a.ledger.ListProducts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sales, err := a.ledger.ListSales(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	expenses, err := a.ledger.ListExpenses(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	analysis, err := a.insights.Analyze(ctx, report.BuildStats(sales, expenses, products))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	users, err := a.ledger.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if err := a.ledger.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

// statusFor maps domain sentinels onto HTTP statuses. Unknown errors are
// treated as storage failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ledger.ErrSaleNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRecord),
		errors.Is(err, cart.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrInvalidPayment):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrStockExceeded),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, insights.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func pathTail(path string, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

func parseYear(raw string) int {
	if year, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && year > 0 {
		return year
	}
	return time.Now().UTC().Year()
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log; clients get a generic message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
