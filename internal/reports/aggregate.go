package reports

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"smartstock/internal/models"
)

// Record is anything with a calendar date and free-text fields to search.
type Record interface {
	RecordDate() string
	SearchFields() []string
}

// FilterByRange keeps records dated inside r whose searchable fields contain
// search (case-insensitive). An empty search matches everything.
func FilterByRange[T Record](records []T, r Range, search string) []T {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if !r.Contains(rec.RecordDate()) {
			continue
		}
		if needle != "" && !matches(rec.SearchFields(), needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Search applies only the text filter.
func Search[T Record](records []T, search string) []T {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if matches(rec.SearchFields(), needle) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Entry is one group of a TopN result.
type Entry struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// TopN groups records by key, sums value per group and returns the n largest
// groups. Groups with equal sums keep the order in which they were first seen.
func TopN[T any](records []T, key func(T) string, value func(T) decimal.Decimal, n int) []Entry {
	index := make(map[string]int)
	var groups []Entry
	for _, rec := range records {
		k := key(rec)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Entry{Key: k, Value: decimal.Zero})
		}
		groups[i].Value = groups[i].Value.Add(value(rec))
	}

	slices.SortStableFunc(groups, func(a, b Entry) int {
		return b.Value.Cmp(a.Value)
	})
	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}
	if groups == nil {
		groups = []Entry{}
	}
	return groups
}

// LowStock lists every item at or below its threshold, materials first.
func LowStock(materials []models.RawMaterial, products []models.Product) []models.StockItem {
	out := []models.StockItem{}
	for _, m := range materials {
		if m.IsLowStock() {
			out = append(out, m.StockItem())
		}
	}
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p.StockItem())
		}
	}
	return out
}

// DashboardStats summarises the collections. today is a YYYY-MM-DD date;
// sales and purchases dated on it count towards the "today" figures.
func DashboardStats(materials []models.RawMaterial, products []models.Product, sales []models.Sale, purchases []models.Purchase, today string) models.DashboardStats {
	stats := models.DashboardStats{
		TotalProducts:     len(products),
		TotalRawMaterials: len(materials),
		LowStockItems:     len(LowStock(materials, products)),
		TodaySales:        decimal.Zero,
		TodayPurchases:    decimal.Zero,
		TotalRevenue:      decimal.Zero,
		TotalCosts:        decimal.Zero,
	}
	for _, s := range sales {
		stats.TotalRevenue = stats.TotalRevenue.Add(s.TotalAmount)
		if s.Date == today {
			stats.TodaySales = stats.TodaySales.Add(s.TotalAmount)
		}
	}
	for _, p := range purchases {
		stats.TotalCosts = stats.TotalCosts.Add(p.TotalCost)
		if p.Date == today {
			stats.TodayPurchases = stats.TodayPurchases.Add(p.TotalCost)
		}
	}
	stats.Profit = stats.TotalRevenue.Sub(stats.TotalCosts)
	return stats
}
