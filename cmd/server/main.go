package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"smartstock/internal/config"
	"smartstock/internal/handlers"
	"smartstock/internal/ledger"
	"smartstock/internal/logger"
	"smartstock/internal/middleware"
	"smartstock/internal/repository"
	"smartstock/internal/store"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()
	if !envFound {
		lg.Warn("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	kv, err := store.Open(ctx, cfg.Store, lg)
	if err != nil {
		lg.Fatal("open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer kv.Close()

	repo := repository.New(kv, lg)
	if err := repo.Load(ctx); err != nil {
		lg.Fatal("load collections", "error", err)
	}
	if cfg.SeedDemoData {
		if err := repo.SeedDemoData(ctx, time.Now().In(cfg.Location)); err != nil {
			lg.Fatal("seed demo data", "error", err)
		}
	}

	// 2. Ledger
	engine := ledger.New(repo, lg,
		ledger.WithStockFloor(cfg.EnforceStockFloor),
		ledger.WithClock(func() time.Time { return time.Now().In(cfg.Location) }),
	)

	// 3. HTTP
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(lg))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.New(engine, repo, lg, cfg).Register(r)

	// --- Serve the React frontend ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")

	// SPA Catch-All: a refresh on "/dashboard" serves index.html so React can route it.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		lg.Info("server starting", "url", cfg.BaseURL, "store", cfg.Store.Driver, "stock_floor", engine.EnforcesStockFloor())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "error", err)
	}
}
