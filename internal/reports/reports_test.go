package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smartstock/internal/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sale(id, customer, product string, qty int, price int64, date string) models.Sale {
	return models.Sale{
		ID: id, CustomerName: customer, ProductID: "p-" + product, ProductName: product,
		Quantity: qty, UnitPrice: d(price), TotalAmount: d(price * int64(qty)), Date: date,
	}
}

func purchase(id, supplier, product string, qty int, cost int64, date string) models.Purchase {
	return models.Purchase{
		ID: id, SupplierName: supplier, ProductID: "x-" + product, ProductName: product,
		Quantity: qty, UnitCost: d(cost), TotalCost: d(cost * int64(qty)), Date: date,
	}
}

func TestDateRange(t *testing.T) {
	ref := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		period Period
		custom Range
		want   Range
	}{
		{Daily, Range{}, Range{"2026-03-04", "2026-03-04"}},
		{Weekly, Range{}, Range{"2026-02-25", "2026-03-04"}},
		{Monthly, Range{}, Range{"2026-03-01", "2026-03-04"}},
		{Custom, Range{"2026-01-01", "2026-01-31"}, Range{"2026-01-01", "2026-01-31"}},
		{Custom, Range{Start: "2026-02-01"}, Range{"2026-02-01", "2026-03-04"}},
		{Custom, Range{}, Range{"2026-03-04", "2026-03-04"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			require.Equal(t, tc.want, DateRange(tc.period, ref, tc.custom))
		})
	}
}

func TestDateRange_WeeklyCrossesYear(t *testing.T) {
	ref := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)
	r := DateRange(Weekly, ref, Range{})
	require.Equal(t, "2025-12-27", r.Start)
	require.Equal(t, "2026-01-03", r.End)
	require.True(t, r.Contains("2025-12-31"))
	require.False(t, r.Contains("2025-12-26"))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Weekly ")
	require.NoError(t, err)
	require.Equal(t, Weekly, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	require.Equal(t, Monthly, p)

	_, err = ParsePeriod("yearly")
	require.Error(t, err)
}

func TestFilterByRange(t *testing.T) {
	sales := []models.Sale{
		sale("1", "Acme Corp", "Metal Cabinet", 1, 200, "2026-10-01"),
		sale("2", "Bolt Ltd", "Wire Frame", 2, 45, "2026-10-10"),
		sale("3", "acme corp", "Wire Frame", 1, 45, "2026-10-17"),
		sale("4", "Zed", "Metal Cabinet", 1, 200, "2026-09-30"),
	}
	r := Range{"2026-10-01", "2026-10-17"}

	got := FilterByRange(sales, r, "")
	require.Len(t, got, 3, "bounds are inclusive")

	got = FilterByRange(sales, r, "ACME")
	require.Equal(t, []string{"1", "3"}, ids(got))

	got = FilterByRange(sales, r, "frame")
	require.Equal(t, []string{"2", "3"}, ids(got))

	got = FilterByRange(sales, r, "cabinet")
	require.Equal(t, []string{"1"}, ids(got), "out-of-range match is dropped")

	purchases := []models.Purchase{purchase("a", "Steel Inc", "Steel Sheet", 1, 50, "2026-10-05")}
	require.Len(t, FilterByRange(purchases, r, "steel inc"), 1)
	require.Empty(t, FilterByRange(purchases, r, "acme"))
}

func TestSearch(t *testing.T) {
	sales := []models.Sale{
		sale("1", "Acme", "Cabinet", 1, 1, "2026-01-01"),
		sale("2", "Bolt", "Frame", 1, 1, "2026-01-01"),
	}
	require.Len(t, Search(sales, ""), 2)
	require.Equal(t, []string{"2"}, ids(Search(sales, "fra")))
}

func ids(sales []models.Sale) []string {
	out := []string{}
	for _, s := range sales {
		out = append(out, s.ID)
	}
	return out
}

func TestTopN_TieKeepsFirstSeenGroup(t *testing.T) {
	sales := []models.Sale{
		sale("1", "c", "A", 3, 1, "2026-01-01"),
		sale("2", "c", "B", 5, 1, "2026-01-01"),
		sale("3", "c", "A", 2, 1, "2026-01-01"),
	}
	got := TopN(sales,
		func(s models.Sale) string { return s.ProductName },
		func(s models.Sale) decimal.Decimal { return d(int64(s.Quantity)) },
		5)

	require.Len(t, got, 2)
	require.Equal(t, "A", got[0].Key)
	require.True(t, got[0].Value.Equal(d(5)))
	require.Equal(t, "B", got[1].Key)
	require.True(t, got[1].Value.Equal(d(5)))
}

func TestTopN_OrdersAndTruncates(t *testing.T) {
	var sales []models.Sale
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		sales = append(sales, sale(name, "c", name, i+1, 1, "2026-01-01"))
	}
	got := TopN(sales,
		func(s models.Sale) string { return s.ProductName },
		func(s models.Sale) decimal.Decimal { return d(int64(s.Quantity)) },
		5)
	require.Len(t, got, 5)
	require.Equal(t, "g", got[0].Key)
	require.Equal(t, "c", got[4].Key)

	require.Empty(t, TopN([]models.Sale{}, func(s models.Sale) string { return "" }, func(s models.Sale) decimal.Decimal { return decimal.Zero }, 5))
}

func TestLowStock_Boundary(t *testing.T) {
	materials := []models.RawMaterial{
		{ID: "m-eq", Stock: 50, MinThreshold: 50},
		{ID: "m-above", Stock: 51, MinThreshold: 50},
		{ID: "m-neg", Stock: -2, MinThreshold: 0},
	}
	products := []models.Product{
		{ID: "p-above", Stock: 11, MinThreshold: 10},
		{ID: "p-eq", Stock: 10, MinThreshold: 10},
	}

	got := LowStock(materials, products)
	require.Len(t, got, 3)
	require.Equal(t, "m-eq", got[0].ID)
	require.Equal(t, models.KindRawMaterial, got[0].Kind)
	require.Equal(t, "m-neg", got[1].ID)
	require.Equal(t, "p-eq", got[2].ID)
	require.Equal(t, models.KindProduct, got[2].Kind)
	for _, item := range got {
		require.True(t, item.IsLowStock())
	}
}

func TestDashboardStats(t *testing.T) {
	today := "2026-10-17"
	materials := []models.RawMaterial{
		{ID: "m1", Stock: 100, MinThreshold: 20},
		{ID: "m2", Stock: 15, MinThreshold: 50},
	}
	products := []models.Product{
		{ID: "p1", Stock: 25, MinThreshold: 10},
		{ID: "p2", Stock: 8, MinThreshold: 15},
	}
	sales := []models.Sale{
		sale("1", "a", "Cab", 5, 200, today),
		sale("2", "b", "Cab", 1, 200, "2026-10-16"),
	}
	purchases := []models.Purchase{
		purchase("a", "s", "Wire", 40, 5, today),
		purchase("b", "s", "Steel", 2, 50, "2026-09-01"),
	}

	stats := DashboardStats(materials, products, sales, purchases, today)
	require.Equal(t, 2, stats.TotalProducts)
	require.Equal(t, 2, stats.TotalRawMaterials)
	require.Equal(t, 2, stats.LowStockItems)
	require.True(t, stats.TodaySales.Equal(d(1000)))
	require.True(t, stats.TodayPurchases.Equal(d(200)))
	require.True(t, stats.TotalRevenue.Equal(d(1200)))
	require.True(t, stats.TotalCosts.Equal(d(300)))
	require.True(t, stats.Profit.Equal(stats.TotalRevenue.Sub(stats.TotalCosts)))
	require.True(t, stats.Profit.Equal(d(900)))
}

func TestDashboardStats_Empty(t *testing.T) {
	stats := DashboardStats(nil, nil, nil, nil, "2026-10-17")
	require.Zero(t, stats.TotalProducts)
	require.True(t, stats.Profit.IsZero())
}

func TestSummarize(t *testing.T) {
	r := Range{"2026-10-01", "2026-10-31"}
	sales := []models.Sale{
		sale("1", "a", "Cab", 2, 100, "2026-10-02"),
		sale("2", "b", "Frame", 5, 10, "2026-10-03"),
		sale("3", "c", "Cab", 1, 100, "2026-11-01"),
	}
	purchases := []models.Purchase{
		purchase("a", "Steel Inc", "Steel", 2, 50, "2026-10-02"),
		purchase("b", "Wire Co", "Wire", 10, 1, "2026-10-05"),
		purchase("c", "Wire Co", "Wire", 20, 1, "2026-10-06"),
	}

	s := Summarize(sales, purchases, r, "")
	require.Len(t, s.Sales, 2)
	require.True(t, s.TotalSales.Equal(d(250)))
	require.True(t, s.TotalPurchases.Equal(d(130)))
	require.True(t, s.Profit.Equal(d(120)))
	require.True(t, s.ProfitMargin.Equal(decimal.RequireFromString("48")))

	require.Equal(t, "Frame", s.TopProducts[0].Key)
	require.Equal(t, "Cab", s.TopProducts[1].Key)
	require.Equal(t, "Steel Inc", s.TopSuppliers[0].Key)
	require.True(t, s.TopSuppliers[1].Value.Equal(d(30)))
}

func TestSummarize_NoSalesHasZeroMargin(t *testing.T) {
	s := Summarize(nil, []models.Purchase{purchase("a", "s", "w", 1, 10, "2026-10-02")}, Range{"2026-10-01", "2026-10-31"}, "")
	require.True(t, s.ProfitMargin.IsZero())
	require.True(t, s.Profit.Equal(d(-10)))
}

func TestStock(t *testing.T) {
	rep := Stock(
		[]models.RawMaterial{{ID: "m1", Stock: 1, MinThreshold: 5}},
		[]models.Product{{ID: "p1", Stock: 1, MinThreshold: 5}, {ID: "p2", Stock: 9, MinThreshold: 5}},
	)
	require.Equal(t, 1, rep.LowProducts)
	require.Equal(t, 1, rep.LowRawMaterials)
	require.Equal(t, "p1", rep.Items[0].ID)
	require.Equal(t, "m1", rep.Items[1].ID)
}

func TestValuation(t *testing.T) {
	v := Valuation(
		[]models.RawMaterial{{ID: "m1", Name: "Steel", Price: d(50), Stock: 100}},
		[]models.Product{
			{ID: "p1", Name: "Cabinet", Cost: d(150), Stock: 25},
			{ID: "p2", Name: "Frame", Cost: decimal.RequireFromString("2.5"), Stock: 4},
		},
	)
	require.Len(t, v.Groups, 2)
	require.True(t, v.Groups[0].Subtotal.Equal(d(5000)))
	require.True(t, v.Groups[1].Subtotal.Equal(d(3760)))
	require.True(t, v.GrandTotal.Equal(d(8760)))
}

func TestRecentSales(t *testing.T) {
	base := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	var sales []models.Sale
	for i := 0; i < 12; i++ {
		s := sale(string(rune('a'+i)), "c", "p", 1, 1, "2026-10-17")
		s.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		sales = append(sales, s)
	}
	got := RecentSales(sales, 10)
	require.Len(t, got, 10)
	require.Equal(t, "l", got[0].ID)
	require.Equal(t, "c", got[9].ID)
	require.Equal(t, "a", sales[0].ID, "input is not reordered")
}

func TestTotalsFor(t *testing.T) {
	sales := []models.Sale{
		sale("1", "a", "p", 2, 10, "2026-10-01"),
		sale("2", "a", "p", 1, 10, "2026-10-02"),
		sale("3", "a", "p", 1, 10, "2026-10-03"),
	}
	got := TotalsFor(sales, Range{"2026-10-01", "2026-10-02"})
	require.Equal(t, 2, got.Count)
	require.True(t, got.Revenue.Equal(d(30)))
}

func TestSummaryView(t *testing.T) {
	s := Summarize(
		[]models.Sale{sale("1", "a", "Cab", 2, 100, "2026-10-02")},
		[]models.Purchase{purchase("a", "Steel Inc", "Steel", 1, 50, "2026-10-02")},
		Range{"2026-10-01", "2026-10-31"}, "")

	sv, ok := s.View(SalesReportType).(SalesReport)
	require.True(t, ok)
	require.Len(t, sv.Sales, 1)
	require.Equal(t, "Cab", sv.TopProducts[0].Key)

	pv, ok := s.View(PurchasesReportType).(PurchasesReport)
	require.True(t, ok)
	require.Len(t, pv.Purchases, 1)
	require.True(t, pv.TotalPurchases.Equal(d(50)))

	profit, ok := s.View(ProfitReportType).(ProfitReport)
	require.True(t, ok)
	require.True(t, profit.Profit.Equal(d(150)))
	require.True(t, profit.ProfitMargin.Equal(d(75)))
	require.Equal(t, 1, profit.SalesCount)
}

func TestParseReportType(t *testing.T) {
	rt, err := ParseReportType("")
	require.NoError(t, err)
	require.Equal(t, SalesReportType, rt)

	rt, err = ParseReportType("Profit")
	require.NoError(t, err)
	require.Equal(t, ProfitReportType, rt)

	_, err = ParseReportType("tax")
	require.Error(t, err)
}
