package report

import (
	"strings"
	"time"

	"tajirpos/internal/domain"
)

// DefaultLowStockThreshold is the alert threshold used by the dashboard.
const DefaultLowStockThreshold = 5

// All functions here are pure: they derive their answer from the full
// collections on every call. There is no cached aggregate to invalidate.

// LowStock returns the products whose on-hand quantity is strictly below
// threshold, in stored order.
func LowStock(products []domain.Product, threshold int) []domain.Product {
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}
	return low
}

type Totals struct {
	Revenue      float64 `json:"revenue"`
	ExpenseTotal float64 `json:"expense_total"`
	Profit       float64 `json:"profit"`
}

func ComputeTotals(sales []domain.Sale, expenses []domain.Expense) Totals {
	t := Totals{}
	for _, s := range sales {
		t.Revenue += s.Total
	}
	for _, e := range expenses {
		t.ExpenseTotal += e.Amount
	}
	t.Profit = t.Revenue - t.ExpenseTotal
	return t
}

// MonthBucket is one calendar month of activity.
type MonthBucket struct {
	SalesTotal    float64 `json:"sales_total"`
	ExpensesTotal float64 `json:"expenses_total"`
	Profit        float64 `json:"profit"`
}

// MonthlyRollup buckets the given year's sales and expenses by calendar
// month (index 0 = January). Months without activity stay zero. Timestamps
// are bucketed in UTC, the zone everything is stored in.
func MonthlyRollup(sales []domain.Sale, expenses []domain.Expense, year int) [12]MonthBucket {
	var buckets [12]MonthBucket

	for _, s := range sales {
		ts := s.Timestamp.UTC()
		if ts.Year() == year {
			buckets[int(ts.Month())-1].SalesTotal += s.Total
		}
	}
	for _, e := range expenses {
		d := e.Date.UTC()
		if d.Year() == year {
			buckets[int(d.Month())-1].ExpensesTotal += e.Amount
		}
	}
	for i := range buckets {
		buckets[i].Profit = buckets[i].SalesTotal - buckets[i].ExpensesTotal
	}
	return buckets
}

type AnnualSummary struct {
	SalesTotal       float64 `json:"sales_total"`
	ExpensesTotal    float64 `json:"expenses_total"`
	Profit           float64 `json:"profit"`
	TransactionCount int     `json:"transaction_count"`
}

// Annual sums the twelve rollup buckets and counts the year's sales.
func Annual(rollup [12]MonthBucket, sales []domain.Sale, year int) AnnualSummary {
	summary := AnnualSummary{}
	for _, b := range rollup {
		summary.SalesTotal += b.SalesTotal
		summary.ExpensesTotal += b.ExpensesTotal
	}
	summary.Profit = summary.SalesTotal - summary.ExpensesTotal
	for _, s := range sales {
		if s.Timestamp.UTC().Year() == year {
			summary.TransactionCount++
		}
	}
	return summary
}

// CategoryUnits sums line quantities per category label across the sales.
func CategoryUnits(sales []domain.Sale) map[string]int {
	units := make(map[string]int)
	for _, s := range sales {
		for _, line := range s.Items {
			units[line.Category] += line.CartQuantity
		}
	}
	return units
}

type DashboardStats struct {
	Revenue       float64 `json:"revenue"`
	ExpenseTotal  float64 `json:"expense_total"`
	Profit        float64 `json:"profit"`
	SaleCount     int     `json:"sale_count"`
	LowStockCount int     `json:"low_stock_count"`
}

func Dashboard(sales []domain.Sale, expenses []domain.Expense, products []domain.Product, lowStockThreshold int) DashboardStats {
	totals := ComputeTotals(sales, expenses)
	return DashboardStats{
		Revenue:       totals.Revenue,
		ExpenseTotal:  totals.ExpenseTotal,
		Profit:        totals.Profit,
		SaleCount:     len(sales),
		LowStockCount: len(LowStock(products, lowStockThreshold)),
	}
}

type DailyPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// RevenueByDay returns one point per day for the trailing window ending at
// now, oldest first. Dates use YYYY-MM-DD in UTC.
func RevenueByDay(sales []domain.Sale, days int, now time.Time) []DailyPoint {
	if days < 1 {
		days = 7
	}
	now = now.UTC()

	byDate := make(map[string]float64, days)
	for _, s := range sales {
		byDate[s.Timestamp.UTC().Format("2006-01-02")] += s.Total
	}

	points := make([]DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, DailyPoint{Date: date, Total: byDate[date]})
	}
	return points
}

// SearchProducts filters by name or barcode substring. An empty query
// returns everything.
func SearchProducts(products []domain.Product, query string) []domain.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(p.Name, query) || strings.Contains(p.Barcode, query) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Stats is the condensed business summary handed to the insights advisor.
type Stats struct {
	Revenue       float64        `json:"revenue"`
	ExpenseTotal  float64        `json:"expense_total"`
	Profit        float64        `json:"profit"`
	LowStock      []string       `json:"low_stock"`
	CategoryUnits map[string]int `json:"category_units"`
}

func BuildStats(sales []domain.Sale, expenses []domain.Expense, products []domain.Product) Stats {
	totals := ComputeTotals(sales, expenses)
	low := LowStock(products, DefaultLowStockThreshold)
	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}
	return Stats{
		Revenue:       totals.Revenue,
		ExpenseTotal:  totals.ExpenseTotal,
		Profit:        totals.Profit,
		LowStock:      names,
		CategoryUnits: CategoryUnits(sales),
	}
}
