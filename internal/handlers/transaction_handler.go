package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/models"
	"smartstock/internal/reports"
)

// GET /api/sales?q= lists sales newest first.
func (h *Handler) ListSales(c *gin.Context) {
	sales := reports.Search(h.repo.Snapshot().Sales, c.Query("q"))
	out := slices.Clone(sales)
	slices.Reverse(out)
	if out == nil {
		out = []models.Sale{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) RecordSale(c *gin.Context) {
	var in models.SaleInput
	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	// 2. Dates are calendar days; empty means today
	if !validDate(in.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be in YYYY-MM-DD format"})
		return
	}

	// 3. Let the ledger check stock and persist
	sale, err := h.engine.RecordSale(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GET /api/purchases?q= lists purchases newest first.
func (h *Handler) ListPurchases(c *gin.Context) {
	purchases := reports.Search(h.repo.Snapshot().Purchases, c.Query("q"))
	out := slices.Clone(purchases)
	slices.Reverse(out)
	if out == nil {
		out = []models.Purchase{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) RecordPurchase(c *gin.Context) {
	var in models.PurchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !validDate(in.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be in YYYY-MM-DD format"})
		return
	}

	purchase, err := h.engine.RecordPurchase(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
