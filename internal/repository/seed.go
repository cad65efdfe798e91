package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartstock/internal/models"
	"smartstock/internal/store"
)

// SeedDemoData fills collections whose key was never written with the
// starter catalogue, then reloads. Existing keys are never touched, even
// when they hold an empty list.
func (r *Repository) SeedDemoData(ctx context.Context, now time.Time) error {
	seeds := []struct {
		key   string
		value any
	}{
		{store.KeyRawMaterials, demoMaterials(now)},
		{store.KeyProducts, demoProducts(now)},
		{store.KeySales, []models.Sale{}},
		{store.KeyPurchases, []models.Purchase{}},
	}

	seeded := 0
	for _, s := range seeds {
		raw, err := r.store.Get(ctx, s.key)
		if err != nil {
			return &StorageError{Op: "get", Key: s.key, Err: err}
		}
		if raw != nil {
			continue
		}
		b, err := marshal(s.key, s.value)
		if err != nil {
			return err
		}
		if err := r.store.Set(ctx, s.key, b); err != nil {
			return &StorageError{Op: "set", Key: s.key, Err: err}
		}
		seeded++
	}
	if seeded > 0 {
		r.log.Info("seeded demo data", "collections", seeded)
	}
	return r.Load(ctx)
}

func demoMaterials(now time.Time) []models.RawMaterial {
	return []models.RawMaterial{
		{ID: uuid.NewString(), Name: "Steel Sheet", Unit: "kg", Price: decimal.NewFromInt(50), Stock: 100, MinThreshold: 20, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Aluminum Wire", Unit: "meter", Price: decimal.NewFromInt(5), Stock: 15, MinThreshold: 50, CreatedAt: now, UpdatedAt: now},
	}
}

func demoProducts(now time.Time) []models.Product {
	return []models.Product{
		{ID: uuid.NewString(), Name: "Metal Cabinet", Unit: "piece", Cost: decimal.NewFromInt(150), SellingPrice: decimal.NewFromInt(200), Stock: 25, MinThreshold: 10, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Wire Frame", Unit: "piece", Cost: decimal.NewFromInt(30), SellingPrice: decimal.NewFromInt(45), Stock: 8, MinThreshold: 15, CreatedAt: now, UpdatedAt: now},
	}
}
