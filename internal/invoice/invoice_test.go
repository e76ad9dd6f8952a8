package invoice

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tajirpos/internal/domain"
)

func testSale() domain.Sale {
	return domain.Sale{
		ID:        "sale-9f3b2c81-aa55-4f3e-9012-3456789abcde",
		Timestamp: time.Date(2026, time.August, 30, 18, 45, 0, 0, time.UTC),
		Items: []domain.CartLine{
			{Product: domain.Product{ID: "1", Name: "قميص قطني أبيض", Price: 120}, CartQuantity: 2},
			{Product: domain.Product{ID: "4", Name: "عطر فاخر", Price: 500}, CartQuantity: 1},
		},
		Total:         740,
		PaymentMethod: domain.PaymentCash,
	}
}

func TestRenderInvoice(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testSale()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`dir="rtl"`,
		StoreName,
		"#9abcde", // short invoice number
		"قميص قطني أبيض",
		"عطر فاخر",
		"740.00",
		"نقدي",
		"2026-08-30 18:45",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("invoice missing %q", want)
		}
	}
}

func TestShortNumber(t *testing.T) {
	if got := ShortNumber("sale-9f3b2c81-aa55-4f3e-9012-3456789abcde"); got != "9abcde" {
		t.Fatalf("unexpected short number: %q", got)
	}
	if got := ShortNumber("abc"); got != "abc" {
		t.Fatalf("short ids pass through, got %q", got)
	}
}

func TestPaymentLabel(t *testing.T) {
	if got := PaymentLabel(domain.PaymentCash); got != "نقدي" {
		t.Fatalf("cash label: %q", got)
	}
	if got := PaymentLabel(domain.PaymentCard); got != "بطاقة" {
		t.Fatalf("card label: %q", got)
	}
}

func TestRenderEscapesProductNames(t *testing.T) {
	sale := testSale()
	sale.Items[0].Name = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := Render(&buf, sale); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Fatal("product names must be HTML-escaped")
	}
}

func TestRenderItemCount(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testSale()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// 2 shirts + 1 perfume.
	if !strings.Contains(buf.String(), "<span>3</span>") {
		t.Fatal("expected item count 3 in the totals box")
	}
}
