package ledger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartstock/internal/logger"
	"smartstock/internal/models"
	"smartstock/internal/repository"
)

// Engine applies every stock-affecting change to the repository. Stock is
// always recomputed from the record as it is at the moment of the call.
type Engine struct {
	repo  *repository.Repository
	log   *logger.Logger
	floor bool
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

type Option func(*Engine)

// WithStockFloor controls whether a sale may take stock below zero.
// Enforced by default.
func WithStockFloor(enforce bool) Option {
	return func(e *Engine) { e.floor = enforce }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

func New(repo *repository.Repository, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:  repo,
		log:   log.With("component", "ledger"),
		floor: true,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) EnforcesStockFloor() bool { return e.floor }

func (e *Engine) today() string { return e.now().Format(models.DateLayout) }

// --- Create ---

func (e *Engine) CreateRawMaterial(ctx context.Context, in models.RawMaterialInput) (*models.RawMaterial, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	m := models.RawMaterial{
		ID:           e.newID(),
		Name:         in.Name,
		Unit:         in.Unit,
		Price:        in.Price,
		Stock:        in.Stock,
		MinThreshold: in.MinThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	snap := e.repo.Snapshot()
	if err := e.repo.Commit(ctx, repository.Changes{Materials: append(snap.Materials, m)}); err != nil {
		return nil, fmt.Errorf("create raw material: %w", err)
	}
	e.log.Info("raw material created", "id", m.ID, "name", m.Name, "stock", m.Stock)
	return &m, nil
}

func (e *Engine) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	p := models.Product{
		ID:           e.newID(),
		Name:         in.Name,
		Unit:         in.Unit,
		Cost:         in.Cost,
		SellingPrice: in.SellingPrice,
		Stock:        in.Stock,
		MinThreshold: in.MinThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	snap := e.repo.Snapshot()
	if err := e.repo.Commit(ctx, repository.Changes{Products: append(snap.Products, p)}); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	e.log.Info("product created", "id", p.ID, "name", p.Name, "stock", p.Stock)
	return &p, nil
}

// --- Update ---

func (e *Engine) UpdateRawMaterial(ctx context.Context, id string, patch models.RawMaterialPatch) (*models.RawMaterial, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	materials := e.repo.Snapshot().Materials
	i := slices.IndexFunc(materials, func(m models.RawMaterial) bool { return m.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("update raw material %s: %w", id, ErrReferenceNotFound)
	}
	patch.Apply(&materials[i])
	materials[i].UpdatedAt = e.now()

	if err := e.repo.Commit(ctx, repository.Changes{Materials: materials}); err != nil {
		return nil, fmt.Errorf("update raw material %s: %w", id, err)
	}
	updated := materials[i]
	return &updated, nil
}

func (e *Engine) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	products := e.repo.Snapshot().Products
	i := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("update product %s: %w", id, ErrReferenceNotFound)
	}
	patch.Apply(&products[i])
	products[i].UpdatedAt = e.now()

	if err := e.repo.Commit(ctx, repository.Changes{Products: products}); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	updated := products[i]
	return &updated, nil
}

// --- Delete ---

// DeleteItem removes a raw material or product. Only admins may delete.
// Sales and purchases that reference the item are kept as they are.
func (e *Engine) DeleteItem(ctx context.Context, actor models.User, kind models.ItemKind, id string) error {
	if !actor.IsAdmin() {
		e.log.Warn("delete refused", "actor", actor.Username, "role", actor.Role, "kind", kind, "id", id)
		return fmt.Errorf("delete %s %s: %w", kind, id, ErrPermissionDenied)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.repo.Snapshot()
	var changes repository.Changes
	switch kind {
	case models.KindRawMaterial:
		before := len(snap.Materials)
		next := slices.DeleteFunc(snap.Materials, func(m models.RawMaterial) bool { return m.ID == id })
		if len(next) == before {
			return fmt.Errorf("delete raw material %s: %w", id, ErrReferenceNotFound)
		}
		changes.Materials = next
	case models.KindProduct:
		before := len(snap.Products)
		next := slices.DeleteFunc(snap.Products, func(p models.Product) bool { return p.ID == id })
		if len(next) == before {
			return fmt.Errorf("delete product %s: %w", id, ErrReferenceNotFound)
		}
		changes.Products = next
	default:
		return fmt.Errorf("delete: unknown item kind %q", kind)
	}

	if err := e.repo.Commit(ctx, changes); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	e.log.Info("item deleted", "actor", actor.Username, "kind", kind, "id", id)
	return nil
}

// --- Transactions ---

// RecordSale snapshots the product's current name and selling price, appends
// the sale and takes the quantity off the product's stock.
func (e *Engine) RecordSale(ctx context.Context, in models.SaleInput) (*models.Sale, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("record sale: %w", ErrInvalidQuantity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.repo.Snapshot()
	i := slices.IndexFunc(snap.Products, func(p models.Product) bool { return p.ID == in.ProductID })
	if i < 0 {
		return nil, fmt.Errorf("record sale for product %s: %w", in.ProductID, ErrReferenceNotFound)
	}
	product := &snap.Products[i]

	if e.floor && in.Quantity > product.Stock {
		return nil, fmt.Errorf("record sale of %d %s (available %d): %w",
			in.Quantity, product.Name, product.Stock, ErrInsufficientStock)
	}
	if !canRemove(product.Stock, in.Quantity) {
		return nil, fmt.Errorf("record sale of %d %s (stock %d): %w",
			in.Quantity, product.Name, product.Stock, ErrInvalidQuantity)
	}

	if in.Date == "" {
		in.Date = e.today()
	}
	now := e.now()
	sale := models.NewSale(in, *product)
	sale.ID = e.newID()
	sale.CreatedAt = now
	if err := sale.Validate(); err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	product.Stock -= in.Quantity
	product.UpdatedAt = now

	err := e.repo.Commit(ctx, repository.Changes{
		Products: snap.Products,
		Sales:    append(snap.Sales, sale),
	})
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	e.log.Info("sale recorded",
		"sale_id", sale.ID, "product_id", sale.ProductID, "quantity", sale.Quantity,
		"total", sale.TotalAmount.String(), "stock_after", product.Stock)
	if product.IsLowStock() {
		e.log.Warn("product low on stock", "product_id", product.ID, "stock", product.Stock, "min_threshold", product.MinThreshold)
	}
	return &sale, nil
}

// RecordPurchase adds the purchased quantity to a raw material or a product,
// depending on IsRawMaterial. Only the target's collection is written.
func (e *Engine) RecordPurchase(ctx context.Context, in models.PurchaseInput) (*models.Purchase, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("record purchase: %w", ErrInvalidQuantity)
	}
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("record purchase unit cost %s: %w", in.UnitCost, ErrInvalidAmount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.repo.Snapshot()
	now := e.now()
	if in.Date == "" {
		in.Date = e.today()
	}

	var (
		target  models.StockItem
		changes repository.Changes
	)
	if in.IsRawMaterial {
		i := slices.IndexFunc(snap.Materials, func(m models.RawMaterial) bool { return m.ID == in.ProductID })
		if i < 0 {
			return nil, fmt.Errorf("record purchase for raw material %s: %w", in.ProductID, ErrReferenceNotFound)
		}
		if !canAdd(snap.Materials[i].Stock, in.Quantity) {
			return nil, fmt.Errorf("record purchase of %d onto stock %d: %w", in.Quantity, snap.Materials[i].Stock, ErrInvalidQuantity)
		}
		snap.Materials[i].Stock += in.Quantity
		snap.Materials[i].UpdatedAt = now
		target = snap.Materials[i].StockItem()
		changes.Materials = snap.Materials
	} else {
		i := slices.IndexFunc(snap.Products, func(p models.Product) bool { return p.ID == in.ProductID })
		if i < 0 {
			return nil, fmt.Errorf("record purchase for product %s: %w", in.ProductID, ErrReferenceNotFound)
		}
		if !canAdd(snap.Products[i].Stock, in.Quantity) {
			return nil, fmt.Errorf("record purchase of %d onto stock %d: %w", in.Quantity, snap.Products[i].Stock, ErrInvalidQuantity)
		}
		snap.Products[i].Stock += in.Quantity
		snap.Products[i].UpdatedAt = now
		target = snap.Products[i].StockItem()
		changes.Products = snap.Products
	}

	purchase := models.NewPurchase(in, target)
	purchase.ID = e.newID()
	purchase.CreatedAt = now
	if err := purchase.Validate(); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	changes.Purchases = append(snap.Purchases, purchase)

	if err := e.repo.Commit(ctx, changes); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	e.log.Info("purchase recorded",
		"purchase_id", purchase.ID, "kind", target.Kind, "item_id", target.ID,
		"quantity", purchase.Quantity, "total", purchase.TotalCost.String(), "stock_after", target.Stock)
	return &purchase, nil
}

// canAdd reports whether stock+qty fits in an int. qty is positive.
func canAdd(stock, qty int) bool { return stock <= 0 || qty <= math.MaxInt-stock }

// canRemove reports whether stock-qty fits in an int. qty is positive.
func canRemove(stock, qty int) bool { return stock >= math.MinInt+qty }
