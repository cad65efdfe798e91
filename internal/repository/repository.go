package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"smartstock/internal/logger"
	"smartstock/internal/models"
	"smartstock/internal/store"
)

// StorageError wraps a failure of the persistent store.
type StorageError struct {
	Op  string // get, set, delete, encode, decode
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Snapshot is a copy of every collection at one instant.
type Snapshot struct {
	Materials []models.RawMaterial
	Products  []models.Product
	Sales     []models.Sale
	Purchases []models.Purchase
}

// Changes names the collections a mutation replaces. Nil fields are untouched.
type Changes struct {
	Materials []models.RawMaterial
	Products  []models.Product
	Sales     []models.Sale
	Purchases []models.Purchase
}

// Repository owns the in-memory collections and keeps them in step with the
// store. Memory is only updated after every write of a commit succeeded.
type Repository struct {
	store store.Store
	log   *logger.Logger

	mu        sync.RWMutex
	materials []models.RawMaterial
	products  []models.Product
	sales     []models.Sale
	purchases []models.Purchase
}

func New(s store.Store, log *logger.Logger) *Repository {
	return &Repository{
		store:     s,
		log:       log.With("component", "repository"),
		materials: []models.RawMaterial{},
		products:  []models.Product{},
		sales:     []models.Sale{},
		purchases: []models.Purchase{},
	}
}

// Load replaces memory with the store's contents.
func (r *Repository) Load(ctx context.Context) error {
	materials, err := load[models.RawMaterial](ctx, r.store, store.KeyRawMaterials)
	if err != nil {
		return err
	}
	products, err := load[models.Product](ctx, r.store, store.KeyProducts)
	if err != nil {
		return err
	}
	sales, err := load[models.Sale](ctx, r.store, store.KeySales)
	if err != nil {
		return err
	}
	purchases, err := load[models.Purchase](ctx, r.store, store.KeyPurchases)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.materials, r.products, r.sales, r.purchases = materials, products, sales, purchases
	r.mu.Unlock()

	r.log.Info("repository loaded",
		"materials", len(materials), "products", len(products),
		"sales", len(sales), "purchases", len(purchases))
	return nil
}

func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Materials: slices.Clone(r.materials),
		Products:  slices.Clone(r.products),
		Sales:     slices.Clone(r.sales),
		Purchases: slices.Clone(r.purchases),
	}
}

type write struct {
	key      string
	next     []byte
	previous []byte
}

// Commit persists the changed collections in a fixed order (materials,
// products, sales, purchases). If one write fails the keys already written
// are put back to their previous contents and memory is left as it was.
func (r *Repository) Commit(ctx context.Context, ch Changes) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var writes []write
	add := func(key string, next, prev any) error {
		nb, err := marshal(key, next)
		if err != nil {
			return err
		}
		pb, err := marshal(key, prev)
		if err != nil {
			return err
		}
		writes = append(writes, write{key: key, next: nb, previous: pb})
		return nil
	}
	if ch.Materials != nil {
		if err := add(store.KeyRawMaterials, ch.Materials, r.materials); err != nil {
			return err
		}
	}
	if ch.Products != nil {
		if err := add(store.KeyProducts, ch.Products, r.products); err != nil {
			return err
		}
	}
	if ch.Sales != nil {
		if err := add(store.KeySales, ch.Sales, r.sales); err != nil {
			return err
		}
	}
	if ch.Purchases != nil {
		if err := add(store.KeyPurchases, ch.Purchases, r.purchases); err != nil {
			return err
		}
	}

	for i, w := range writes {
		if err := r.store.Set(ctx, w.key, w.next); err != nil {
			r.rollback(ctx, writes[:i])
			return &StorageError{Op: "set", Key: w.key, Err: err}
		}
	}

	if ch.Materials != nil {
		r.materials = ch.Materials
	}
	if ch.Products != nil {
		r.products = ch.Products
	}
	if ch.Sales != nil {
		r.sales = ch.Sales
	}
	if ch.Purchases != nil {
		r.purchases = ch.Purchases
	}
	return nil
}

// rollback is best effort; a failure here leaves the store ahead of memory
// until the next Load.
func (r *Repository) rollback(ctx context.Context, done []write) {
	for i := len(done) - 1; i >= 0; i-- {
		if err := r.store.Set(ctx, done[i].key, done[i].previous); err != nil {
			r.log.Error("rollback failed", "key", done[i].key, "error", err)
		}
	}
}

// --- current user singleton ---

// CurrentUser returns nil when nobody is logged in.
func (r *Repository) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := r.store.Get(ctx, store.KeyUser)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: store.KeyUser, Err: err}
	}
	if raw == nil {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &StorageError{Op: "decode", Key: store.KeyUser, Err: err}
	}
	return &u, nil
}

func (r *Repository) SetCurrentUser(ctx context.Context, u models.User) error {
	raw, err := marshal(store.KeyUser, u)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, store.KeyUser, raw); err != nil {
		return &StorageError{Op: "set", Key: store.KeyUser, Err: err}
	}
	return nil
}

func (r *Repository) ClearCurrentUser(ctx context.Context) error {
	if err := r.store.Delete(ctx, store.KeyUser); err != nil {
		return &StorageError{Op: "delete", Key: store.KeyUser, Err: err}
	}
	return nil
}

func load[T any](ctx context.Context, s store.Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	out := []T{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &StorageError{Op: "decode", Key: key, Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func marshal(key string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &StorageError{Op: "encode", Key: key, Err: err}
	}
	return b, nil
}
