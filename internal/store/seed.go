package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tajirpos/internal/domain"
)

// Seed returns the default product catalog served whenever the Products
// collection is absent (first run, or after Clear). Callers get a fresh copy.
func Seed() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "قميص قطني أبيض", Barcode: "1001", Price: 120, Cost: 80, Quantity: 50, Category: "ملابس"},
		{ID: "2", Name: "بنطال جينز", Barcode: "1002", Price: 200, Cost: 130, Quantity: 30, Category: "ملابس"},
		{ID: "3", Name: "حذاء رياضي", Barcode: "1003", Price: 350, Cost: 250, Quantity: 15, Category: "أحذية"},
		{ID: "4", Name: "عطر فاخر", Barcode: "1004", Price: 500, Cost: 300, Quantity: 10, Category: "عطور"},
		{ID: "5", Name: "ساعة يد", Barcode: "1005", Price: 800, Cost: 500, Quantity: 5, Category: "اكسسوارات"},
	}
}

// SeedUsers builds the initial user accounts for dev/demo mode. Credentials
// come from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD; hardcoded dev
// defaults are used with a warning when unset.
func SeedUsers() []domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := make([]domain.UserAccount, 0, 2)
	for i, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[store] failed to hash seed password for %s: %v", u.username, err)
		}
		users = append(users, domain.UserAccount{
			ID:        fmt.Sprintf("u%d", i+1),
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		})
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
