package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartstock/internal/export"
	"smartstock/internal/reports"
)

const recentSalesLimit = 10

// GET /api/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	snap := h.repo.Snapshot()
	now := h.now()
	today := reports.Today(now)

	c.JSON(http.StatusOK, gin.H{
		"stats":       reports.DashboardStats(snap.Materials, snap.Products, snap.Sales, snap.Purchases, today),
		"lowStock":    reports.LowStock(snap.Materials, snap.Products),
		"recentSales": reports.RecentSales(snap.Sales, recentSalesLimit),
		"monthToDate": reports.TotalsFor(snap.Sales, reports.DateRange(reports.Monthly, now, reports.Range{})),
	})
}

// reportRange reads period, start and end from the query string.
func (h *Handler) reportRange(c *gin.Context) (reports.Range, bool) {
	period, err := reports.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return reports.Range{}, false
	}
	custom := reports.Range{Start: c.Query("start"), End: c.Query("end")}
	if !validDate(custom.Start) || !validDate(custom.End) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return reports.Range{}, false
	}
	return reports.DateRange(period, h.now(), custom), true
}

// GET /api/reports?type=sales|purchases|profit&period=&start=&end=&q=
func (h *Handler) Report(c *gin.Context) {
	reportType, err := reports.ParseReportType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be sales, purchases or profit"})
		return
	}

	// 1. Resolve the date window
	r, ok := h.reportRange(c)
	if !ok {
		return
	}

	// 2. Aggregate over one consistent snapshot
	snap := h.repo.Snapshot()
	summary := reports.Summarize(snap.Sales, snap.Purchases, r, c.Query("q"))

	// 3. Send only the part this report type shows
	c.JSON(http.StatusOK, gin.H{
		"type":   reportType,
		"report": summary.View(reportType),
	})
}

// GET /api/reports/stock
func (h *Handler) StockReport(c *gin.Context) {
	snap := h.repo.Snapshot()
	c.JSON(http.StatusOK, reports.Stock(snap.Materials, snap.Products))
}

// GET /api/reports/valuation
// StockValuation calculates the total monetary value of all physical inventory
func (h *Handler) StockValuation(c *gin.Context) {
	snap := h.repo.Snapshot()
	c.JSON(http.StatusOK, reports.Valuation(snap.Materials, snap.Products))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/export/:dataset?format=csv|xlsx
// Sales and purchases honour the same period/start/end/q filters as /api/reports.
func (h *Handler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	snap := h.repo.Snapshot()
	dataset := c.Param("dataset")

	// 1. Build the table for the requested dataset
	var (
		table export.Table
		sheet string
	)
	switch dataset {
	case "sales", "purchases":
		r, ok := h.reportRange(c)
		if !ok {
			return
		}
		if dataset == "sales" {
			table, sheet = export.SalesTable(reports.FilterByRange(snap.Sales, r, c.Query("q"))), "Sales"
		} else {
			table, sheet = export.PurchasesTable(reports.FilterByRange(snap.Purchases, r, c.Query("q"))), "Purchases"
		}
	case "products":
		table, sheet = export.ProductsTable(snap.Products), "Products"
	case "materials":
		table, sheet = export.MaterialsTable(snap.Materials), "Raw Materials"
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown dataset " + dataset})
		return
	}

	// 2. Render it
	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	var err error
	if format == "xlsx" {
		contentType = xlsxContentType
		err = export.WriteXLSX(&buf, sheet, table)
	} else {
		err = export.WriteCSV(&buf, table)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. Send it as a download
	name := export.Filename(dataset, format, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

