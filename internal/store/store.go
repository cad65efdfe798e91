package store

import (
	"context"
	"fmt"

	"smartstock/internal/config"
	"smartstock/internal/logger"
)

// Collection keys. Each holds one JSON document that is always read and
// written whole.
const (
	KeyUser         = "smartstock_user"
	KeyRawMaterials = "smartstock_raw_materials"
	KeyProducts     = "smartstock_products"
	KeySales        = "smartstock_sales"
	KeyPurchases    = "smartstock_purchases"
)

// Store is durable key-value storage. Get returns (nil, nil) for a key that
// was never written; callers treat that the same as an empty collection.
// Each Set must be atomic for its key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend from cfg.Driver.
func Open(ctx context.Context, cfg config.Store, log *logger.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenGorm(SQLite(cfg.SQLitePath), cfg.Verbose, log)
	case "mysql":
		return OpenGorm(MySQL(cfg.DSN), cfg.Verbose, log)
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix, log)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
