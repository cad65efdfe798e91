package ai

import (
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"smartstock/internal/models"
	"smartstock/internal/reports"
	"smartstock/internal/repository"
)

type inventoryRow struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Stock        int    `json:"stock"`
	MinThreshold int    `json:"min_threshold"`
	Price        string `json:"price,omitempty"`
	Cost         string `json:"cost,omitempty"`
	SellingPrice string `json:"selling_price,omitempty"`
}

// executeTool runs one model function call against snap. Failures are reported
// back to the model in an "error" field rather than aborting the chat.
func executeTool(snap repository.Snapshot, call genai.FunctionCall, now time.Time) map[string]any {
	switch call.Name {
	case "check_inventory":
		name, _ := call.Args["name"].(string)
		return map[string]any{"inventory": inventory(snap, name)}

	case "get_low_stock":
		low := reports.LowStock(snap.Materials, snap.Products)
		items := make([]map[string]any, 0, len(low))
		for _, it := range low {
			items = append(items, map[string]any{
				"kind": it.Kind.Label(), "name": it.Name, "unit": it.Unit,
				"stock": it.Stock, "min_threshold": it.MinThreshold,
			})
		}
		return map[string]any{"count": len(items), "items": items}

	case "get_sales_report":
		start, _ := call.Args["start_date"].(string)
		end, _ := call.Args["end_date"].(string)
		if !validDate(start) || !validDate(end) {
			return map[string]any{"error": "Dates must be in YYYY-MM-DD format."}
		}
		if start > end {
			return map[string]any{"error": "start_date must not be after end_date."}
		}
		s := reports.Summarize(snap.Sales, snap.Purchases, reports.Range{Start: start, End: end}, "")
		top := make([]map[string]any, 0, len(s.TopProducts))
		for _, e := range s.TopProducts {
			top = append(top, map[string]any{"product": e.Key, "quantity": e.Value.String()})
		}
		return map[string]any{
			"revenue":         s.TotalSales.StringFixed(2),
			"sales_count":     len(s.Sales),
			"purchase_costs":  s.TotalPurchases.StringFixed(2),
			"purchases_count": len(s.Purchases),
			"profit":          s.Profit.StringFixed(2),
			"profit_margin":   s.ProfitMargin.StringFixed(1),
			"top_products":    top,
		}
	}
	return map[string]any{"error": "unknown tool " + call.Name}
}

func inventory(snap repository.Snapshot, name string) []inventoryRow {
	needle := strings.ToLower(strings.TrimSpace(name))
	keep := func(n string) bool { return needle == "" || strings.Contains(strings.ToLower(n), needle) }

	rows := []inventoryRow{}
	for _, m := range snap.Materials {
		if keep(m.Name) {
			rows = append(rows, inventoryRow{
				Kind: models.KindRawMaterial.Label(), ID: m.ID, Name: m.Name, Unit: m.Unit,
				Stock: m.Stock, MinThreshold: m.MinThreshold, Price: m.Price.StringFixed(2),
			})
		}
	}
	for _, p := range snap.Products {
		if keep(p.Name) {
			rows = append(rows, inventoryRow{
				Kind: models.KindProduct.Label(), ID: p.ID, Name: p.Name, Unit: p.Unit,
				Stock: p.Stock, MinThreshold: p.MinThreshold,
				Cost: p.Cost.StringFixed(2), SellingPrice: p.SellingPrice.StringFixed(2),
			})
		}
	}
	return rows
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
