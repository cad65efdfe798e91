package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartstock/internal/middleware"
	"smartstock/internal/models"
)

// --- Raw materials ---

// GET /api/materials?q=
func (h *Handler) ListMaterials(c *gin.Context) {
	items := h.repo.Snapshot().Materials
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	out := make([]models.RawMaterial, 0, len(items))
	for _, m := range items {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var in models.RawMaterialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	m, err := h.engine.CreateRawMaterial(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// PUT /api/materials/:id updates only the fields that were sent.
func (h *Handler) UpdateMaterial(c *gin.Context) {
	var patch models.RawMaterialPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	m, err := h.engine.UpdateRawMaterial(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMaterial(c *gin.Context) {
	h.deleteItem(c, models.KindRawMaterial)
}

// --- Products ---

// GET /api/products?q=
func (h *Handler) ListProducts(c *gin.Context) {
	items := h.repo.Snapshot().Products
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	out := make([]models.Product, 0, len(items))
	for _, p := range items {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	p, err := h.engine.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	p, err := h.engine.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	h.deleteItem(c, models.KindProduct)
}

// deleteItem passes the caller on to the engine, which makes the final
// permission decision.
func (h *Handler) deleteItem(c *gin.Context, kind models.ItemKind) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}
	if err := h.engine.DeleteItem(c.Request.Context(), actor, kind, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": kind.Label() + " deleted"})
}
