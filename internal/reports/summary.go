package reports

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"smartstock/internal/models"
)

const topLimit = 5

// Summary is the period report: filtered records plus totals and rankings.
type Summary struct {
	Range          Range             `json:"range"`
	Search         string            `json:"search,omitempty"`
	Sales          []models.Sale     `json:"sales"`
	Purchases      []models.Purchase `json:"purchases"`
	TotalSales     decimal.Decimal   `json:"totalSales"`
	TotalPurchases decimal.Decimal   `json:"totalPurchases"`
	Profit         decimal.Decimal   `json:"profit"`
	ProfitMargin   decimal.Decimal   `json:"profitMargin"` // percent of sales
	TopProducts    []Entry           `json:"topProducts"`  // by quantity sold
	TopSuppliers   []Entry           `json:"topSuppliers"` // by amount spent
}

func Summarize(sales []models.Sale, purchases []models.Purchase, r Range, search string) Summary {
	fs := FilterByRange(sales, r, search)
	fp := FilterByRange(purchases, r, search)

	s := Summary{
		Range:          r,
		Search:         search,
		Sales:          fs,
		Purchases:      fp,
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		ProfitMargin:   decimal.Zero,
	}
	for _, sale := range fs {
		s.TotalSales = s.TotalSales.Add(sale.TotalAmount)
	}
	for _, p := range fp {
		s.TotalPurchases = s.TotalPurchases.Add(p.TotalCost)
	}
	s.Profit = s.TotalSales.Sub(s.TotalPurchases)
	if s.TotalSales.IsPositive() {
		s.ProfitMargin = s.Profit.Div(s.TotalSales).Mul(decimal.NewFromInt(100))
	}

	s.TopProducts = TopN(fs,
		func(sale models.Sale) string { return sale.ProductName },
		func(sale models.Sale) decimal.Decimal { return decimal.NewFromInt(int64(sale.Quantity)) },
		topLimit)
	s.TopSuppliers = TopN(fp,
		func(p models.Purchase) string { return p.SupplierName },
		func(p models.Purchase) decimal.Decimal { return p.TotalCost },
		topLimit)
	return s
}

// ReportType picks which part of a Summary a report shows.
type ReportType string

const (
	SalesReportType     ReportType = "sales"
	PurchasesReportType ReportType = "purchases"
	ProfitReportType    ReportType = "profit"
)

func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(strings.ToLower(strings.TrimSpace(s))); t {
	case SalesReportType, PurchasesReportType, ProfitReportType:
		return t, nil
	case "":
		return SalesReportType, nil
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

type SalesReport struct {
	Range       Range           `json:"range"`
	Search      string          `json:"search,omitempty"`
	Sales       []models.Sale   `json:"sales"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	TopProducts []Entry         `json:"topProducts"`
}

type PurchasesReport struct {
	Range          Range             `json:"range"`
	Search         string            `json:"search,omitempty"`
	Purchases      []models.Purchase `json:"purchases"`
	TotalPurchases decimal.Decimal   `json:"totalPurchases"`
	TopSuppliers   []Entry           `json:"topSuppliers"`
}

type ProfitReport struct {
	Range          Range           `json:"range"`
	Search         string          `json:"search,omitempty"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	Profit         decimal.Decimal `json:"profit"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`
	SalesCount     int             `json:"salesCount"`
	PurchasesCount int             `json:"purchasesCount"`
}

// View trims s down to what a report of type t shows.
func (s Summary) View(t ReportType) any {
	switch t {
	case PurchasesReportType:
		return PurchasesReport{Range: s.Range, Search: s.Search, Purchases: s.Purchases, TotalPurchases: s.TotalPurchases, TopSuppliers: s.TopSuppliers}
	case ProfitReportType:
		return ProfitReport{
			Range: s.Range, Search: s.Search,
			TotalSales: s.TotalSales, TotalPurchases: s.TotalPurchases,
			Profit: s.Profit, ProfitMargin: s.ProfitMargin,
			SalesCount: len(s.Sales), PurchasesCount: len(s.Purchases),
		}
	}
	return SalesReport{Range: s.Range, Search: s.Search, Sales: s.Sales, TotalSales: s.TotalSales, TopProducts: s.TopProducts}
}

// StockReport is the low-stock view of the stock screen. Items lists
// products before materials.
type StockReport struct {
	TotalProducts     int                `json:"totalProducts"`
	TotalRawMaterials int                `json:"totalRawMaterials"`
	LowProducts       int                `json:"lowProducts"`
	LowRawMaterials   int                `json:"lowRawMaterials"`
	Items             []models.StockItem `json:"items"`
}

func Stock(materials []models.RawMaterial, products []models.Product) StockReport {
	rep := StockReport{
		TotalProducts:     len(products),
		TotalRawMaterials: len(materials),
		Items:             []models.StockItem{},
	}
	for _, p := range products {
		if p.IsLowStock() {
			rep.LowProducts++
			rep.Items = append(rep.Items, p.StockItem())
		}
	}
	for _, m := range materials {
		if m.IsLowStock() {
			rep.LowRawMaterials++
			rep.Items = append(rep.Items, m.StockItem())
		}
	}
	return rep
}

// --- Valuation ---

// ValuationItem is one line of the valuation table.
type ValuationItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Total     decimal.Decimal `json:"total"`
}

// ValuationGroup is one table, e.g. "Raw Material".
type ValuationGroup struct {
	Kind     models.ItemKind `json:"kind"`
	Label    string          `json:"label"`
	Items    []ValuationItem `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ValuationResponse struct {
	Groups     []ValuationGroup `json:"groups"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
}

// Valuation prices the stock on hand: raw materials at their purchase price,
// products at cost. Negative stock contributes a negative value.
func Valuation(materials []models.RawMaterial, products []models.Product) ValuationResponse {
	mat := ValuationGroup{Kind: models.KindRawMaterial, Label: models.KindRawMaterial.Label(), Items: []ValuationItem{}, Subtotal: decimal.Zero}
	for _, m := range materials {
		total := m.Price.Mul(decimal.NewFromInt(int64(m.Stock)))
		mat.Items = append(mat.Items, ValuationItem{ID: m.ID, Name: m.Name, Unit: m.Unit, Quantity: m.Stock, UnitValue: m.Price, Total: total})
		mat.Subtotal = mat.Subtotal.Add(total)
	}

	prod := ValuationGroup{Kind: models.KindProduct, Label: models.KindProduct.Label(), Items: []ValuationItem{}, Subtotal: decimal.Zero}
	for _, p := range products {
		total := p.Cost.Mul(decimal.NewFromInt(int64(p.Stock)))
		prod.Items = append(prod.Items, ValuationItem{ID: p.ID, Name: p.Name, Unit: p.Unit, Quantity: p.Stock, UnitValue: p.Cost, Total: total})
		prod.Subtotal = prod.Subtotal.Add(total)
	}

	return ValuationResponse{
		Groups:     []ValuationGroup{mat, prod},
		GrandTotal: mat.Subtotal.Add(prod.Subtotal),
	}
}

// RecentSales returns the n newest sales, newest first.
func RecentSales(sales []models.Sale, n int) []models.Sale {
	out := slices.Clone(sales)
	slices.SortStableFunc(out, func(a, b models.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []models.Sale{}
	}
	return out
}

// SalesTotals is the revenue and number of sales dated inside r.
type SalesTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

func TotalsFor(sales []models.Sale, r Range) SalesTotals {
	t := SalesTotals{Revenue: decimal.Zero}
	for _, s := range sales {
		if r.Contains(s.Date) {
			t.Revenue = t.Revenue.Add(s.TotalAmount)
			t.Count++
		}
	}
	return t
}
