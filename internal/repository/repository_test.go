package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smartstock/internal/logger"
	"smartstock/internal/models"
	"smartstock/internal/store"
)

// flakyStore fails Set for one key.
type flakyStore struct {
	*store.MemoryStore
	failKey string
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return errDiskFull
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestLoad_AbsentKeysAreEmpty(t *testing.T) {
	repo := New(store.NewMemoryStore(), logger.Nop())
	require.NoError(t, repo.Load(context.Background()))

	snap := repo.Snapshot()
	require.NotNil(t, snap.Materials)
	require.Empty(t, snap.Materials)
	require.Empty(t, snap.Products)
	require.Empty(t, snap.Sales)
	require.Empty(t, snap.Purchases)
}

func TestCommit_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := New(s, logger.Nop())

	p := models.Product{ID: "p1", Name: "Cabinet", SellingPrice: decimal.NewFromInt(200), Stock: 25, MinThreshold: 10}
	require.NoError(t, repo.Commit(ctx, Changes{Products: []models.Product{p}}))

	other := New(s, logger.Nop())
	require.NoError(t, other.Load(ctx))
	snap := other.Snapshot()
	require.Len(t, snap.Products, 1)
	require.Equal(t, "Cabinet", snap.Products[0].Name)
	require.True(t, snap.Products[0].SellingPrice.Equal(decimal.NewFromInt(200)))
}

func TestCommit_FailureLeavesMemoryAndStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	fs := &flakyStore{MemoryStore: mem}
	repo := New(fs, logger.Nop())

	before := []models.Product{{ID: "p1", Name: "Cabinet", Stock: 25}}
	require.NoError(t, repo.Commit(ctx, Changes{Products: before}))

	// products is written before sales, so the products write must be undone
	fs.failKey = store.KeySales
	err := repo.Commit(ctx, Changes{
		Products: []models.Product{{ID: "p1", Name: "Cabinet", Stock: 20}},
		Sales:    []models.Sale{{ID: "s1", ProductID: "p1", Quantity: 5}},
	})

	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, store.KeySales, se.Key)
	require.ErrorIs(t, err, errDiskFull)

	snap := repo.Snapshot()
	require.Equal(t, 25, snap.Products[0].Stock)
	require.Empty(t, snap.Sales)

	reloaded := New(mem, logger.Nop())
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, 25, reloaded.Snapshot().Products[0].Stock)
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), logger.Nop())
	require.NoError(t, repo.Commit(ctx, Changes{Materials: []models.RawMaterial{{ID: "m1", Stock: 1}}}))

	snap := repo.Snapshot()
	snap.Materials[0].Stock = 99
	require.Equal(t, 1, repo.Snapshot().Materials[0].Stock)
}

func TestLoad_CorruptCollection(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeySales, []byte("{not json")))

	err := New(s, logger.Nop()).Load(ctx)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "decode", se.Op)
}

func TestCurrentUser_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), logger.Nop())

	u, err := repo.CurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, u)

	require.NoError(t, repo.SetCurrentUser(ctx, models.User{ID: "u1", Username: "ana", Role: models.RoleAdmin}))
	u, err = repo.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana", u.Username)
	require.True(t, u.IsAdmin())

	require.NoError(t, repo.ClearCurrentUser(ctx))
	u, err = repo.CurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestSeedDemoData_OnlyFillsAbsentKeys(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyProducts, []byte("[]")))

	repo := New(s, logger.Nop())
	require.NoError(t, repo.SeedDemoData(ctx, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))

	snap := repo.Snapshot()
	require.Len(t, snap.Materials, 2)
	require.Empty(t, snap.Products, "an existing empty list is kept")
	require.Empty(t, snap.Sales)

	// a second run changes nothing
	require.NoError(t, repo.SeedDemoData(ctx, time.Now()))
	require.Equal(t, snap.Materials, repo.Snapshot().Materials)
}
