package httpapi

import (
	"net/http"
	"testing"
	"time"

	"tajirpos/internal/cart"
	"tajirpos/internal/insights"
	"tajirpos/internal/ledger"
	"tajirpos/internal/store/memory"
)

func TestLoginAndMe(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec, body := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", rec.Code, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("expected access_token, got %v", body)
	}
	if body["role"] != "admin" {
		t.Fatalf("expected admin role, got %v", body["role"])
	}

	req := newAuthedRequest(http.MethodGet, "/api/v1/auth/me", token)
	rec2 := doRequest(handler, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", rec2.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	handler := newTestAPI(t).Handler()

	// The limiter allows five attempts per minute from one address.
	var last int
	for i := 0; i < 6; i++ {
		rec, _ := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"username": "admin",
			"password": "wrong",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on sixth attempt, got %d", last)
	}
}

func TestLoginDisabledWithoutSecret(t *testing.T) {
	bookkeeper := ledger.New(memory.NewSeeded())
	api := New(bookkeeper, cart.NewManager(bookkeeper), insights.NewService(nil, nil, 0), nil, "*", 5)
	handler := api.Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when auth is disabled, got %d", rec.Code)
	}

	// Everything else stays open.
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open product listing, got %d", rec.Code)
	}
}

func TestMeRejectsBadToken(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := newAuthedRequest(http.MethodGet, "/api/v1/auth/me", "not-a-token")
	rec := doRequest(handler, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	bookkeeper := ledger.New(memory.NewSeeded())
	issuer := NewAuthManager("issuer-secret", time.Hour, bookkeeper)
	verifier := NewAuthManager("other-secret", time.Hour, bookkeeper)

	token, err := issuer.sign("admin", "admin", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected verification failure across secrets")
	}
	if actor, err := issuer.ParseToken(token); err != nil || actor.Username != "admin" {
		t.Fatalf("expected issuer to accept its own token, got %v / %v", actor, err)
	}
}
