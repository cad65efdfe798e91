package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/ai"
	"smartstock/internal/config"
	"smartstock/internal/ledger"
	"smartstock/internal/logger"
	"smartstock/internal/middleware"
	"smartstock/internal/models"
	"smartstock/internal/repository"
)

// AgentFunc answers a question about the inventory. ai.RunAgent in production.
type AgentFunc func(ctx context.Context, message, apiKey string, inv ai.Inventory, now time.Time) (string, error)

type Handler struct {
	engine    *ledger.Engine
	repo      *repository.Repository
	log       *logger.Logger
	secret    []byte
	geminiKey string
	now       func() time.Time
	agent     AgentFunc
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }
func WithAgent(a AgentFunc) Option { return func(h *Handler) { h.agent = a } }

func New(engine *ledger.Engine, repo *repository.Repository, log *logger.Logger, cfg *config.Config, opts ...Option) *Handler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	h := &Handler{
		engine:    engine,
		repo:      repo,
		log:       log,
		secret:    []byte(cfg.JWTSecret),
		geminiKey: cfg.GeminiAPIKey,
		now:       func() time.Time { return time.Now().In(loc) },
		agent:     ai.RunAgent,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.secret, h.repo))
	{
		// STAFF & ADMIN
		api.GET("/me", h.Me)

		api.GET("/materials", h.ListMaterials)
		api.POST("/materials", h.CreateMaterial)
		api.PUT("/materials/:id", h.UpdateMaterial)

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.PUT("/products/:id", h.UpdateProduct)

		api.GET("/sales", h.ListSales)
		api.POST("/sales", h.RecordSale)
		api.GET("/purchases", h.ListPurchases)
		api.POST("/purchases", h.RecordPurchase)

		api.GET("/dashboard", h.Dashboard)
		api.GET("/reports", h.Report)
		api.GET("/reports/stock", h.StockReport)
		api.GET("/reports/valuation", h.StockValuation)
		api.GET("/export/:dataset", h.Export)

		// ADMIN ONLY
		admin := api.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.DELETE("/materials/:id", h.DeleteMaterial)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/ask", h.AskAI)
		}
	}
}

// statusFor maps engine errors onto HTTP status codes. Anything else,
// storage failures included, is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrReferenceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal error, please try again"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
