package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemKind discriminates the two stock-holding entities.
type ItemKind string

const (
	KindRawMaterial ItemKind = "raw_material"
	KindProduct     ItemKind = "product"
)

func (k ItemKind) Label() string {
	switch k {
	case KindRawMaterial:
		return "Raw Material"
	case KindProduct:
		return "Product"
	}
	return string(k)
}

// ParseItemKind accepts the wire names used in URLs and JSON.
func ParseItemKind(s string) (ItemKind, error) {
	switch s {
	case "raw_material", "raw_materials", "material", "materials":
		return KindRawMaterial, nil
	case "product", "products":
		return KindProduct, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// StockItem is the common view of a RawMaterial or a Product used by mixed
// lists such as low-stock alerts. Kind is fixed when the item is built.
type StockItem struct {
	Kind         ItemKind `json:"kind"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Stock        int      `json:"stock"`
	MinThreshold int      `json:"minThreshold"`
}

func (m RawMaterial) StockItem() StockItem {
	return StockItem{Kind: KindRawMaterial, ID: m.ID, Name: m.Name, Unit: m.Unit, Stock: m.Stock, MinThreshold: m.MinThreshold}
}

func (p Product) StockItem() StockItem {
	return StockItem{Kind: KindProduct, ID: p.ID, Name: p.Name, Unit: p.Unit, Stock: p.Stock, MinThreshold: p.MinThreshold}
}

// IsLowStock: stock at or below the configured threshold.
func (s StockItem) IsLowStock() bool { return s.Stock <= s.MinThreshold }

func (m RawMaterial) IsLowStock() bool { return m.Stock <= m.MinThreshold }
func (p Product) IsLowStock() bool { return p.Stock <= p.MinThreshold }

// --- Inputs accepted by the ledger ---

type RawMaterialInput struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	MinThreshold int             `json:"minThreshold"`
}

type ProductInput struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit"`
	Cost         decimal.Decimal `json:"cost"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock"`
	MinThreshold int             `json:"minThreshold"`
}

// RawMaterialPatch carries a partial update. Nil fields are left alone.
type RawMaterialPatch struct {
	Name         *string          `json:"name"`
	Unit         *string          `json:"unit"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	MinThreshold *int             `json:"minThreshold"`
}

func (p RawMaterialPatch) Apply(m *RawMaterial) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Stock != nil {
		m.Stock = *p.Stock
	}
	if p.MinThreshold != nil {
		m.MinThreshold = *p.MinThreshold
	}
}

type ProductPatch struct {
	Name         *string          `json:"name"`
	Unit         *string          `json:"unit"`
	Cost         *decimal.Decimal `json:"cost"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	Stock        *int             `json:"stock"`
	MinThreshold *int             `json:"minThreshold"`
}

func (p ProductPatch) Apply(pr *Product) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Unit != nil {
		pr.Unit = *p.Unit
	}
	if p.Cost != nil {
		pr.Cost = *p.Cost
	}
	if p.SellingPrice != nil {
		pr.SellingPrice = *p.SellingPrice
	}
	if p.Stock != nil {
		pr.Stock = *p.Stock
	}
	if p.MinThreshold != nil {
		pr.MinThreshold = *p.MinThreshold
	}
}

type SaleInput struct {
	CustomerName string `json:"customerName"`
	ProductID    string `json:"productId" binding:"required"`
	Quantity     int    `json:"quantity"`
	Date         string `json:"date"`
}

type PurchaseInput struct {
	SupplierName  string          `json:"supplierName"`
	ProductID     string          `json:"productId" binding:"required"`
	IsRawMaterial bool            `json:"isRawMaterial"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	Date          string          `json:"date"`
}

// --- Transaction construction ---

var errTotalMismatch = errors.New("total does not equal quantity times unit amount")

// NewSale snapshots the product's name and selling price into a sale record.
// ID and CreatedAt are filled in by the caller.
func NewSale(in SaleInput, p Product) Sale {
	return Sale{
		CustomerName: in.CustomerName,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     in.Quantity,
		UnitPrice:    p.SellingPrice,
		TotalAmount:  p.SellingPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Date:         in.Date,
	}
}

func (s Sale) Validate() error {
	if s.Quantity <= 0 {
		return fmt.Errorf("sale quantity %d must be positive", s.Quantity)
	}
	if !s.TotalAmount.Equal(s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))) {
		return fmt.Errorf("sale %s: %w", s.ID, errTotalMismatch)
	}
	return nil
}

// NewPurchase snapshots the target's name; the unit cost comes from the supplier.
func NewPurchase(in PurchaseInput, target StockItem) Purchase {
	return Purchase{
		SupplierName:  in.SupplierName,
		ProductID:     target.ID,
		ProductName:   target.Name,
		IsRawMaterial: target.Kind == KindRawMaterial,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		TotalCost:     in.UnitCost.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Date:          in.Date,
	}
}

func (p Purchase) Validate() error {
	if p.Quantity <= 0 {
		return fmt.Errorf("purchase quantity %d must be positive", p.Quantity)
	}
	if p.UnitCost.IsNegative() {
		return fmt.Errorf("purchase unit cost %s must not be negative", p.UnitCost)
	}
	if !p.TotalCost.Equal(p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))) {
		return fmt.Errorf("purchase %s: %w", p.ID, errTotalMismatch)
	}
	return nil
}

// TargetKind resolves which collection ProductID refers to.
func (p Purchase) TargetKind() ItemKind {
	if p.IsRawMaterial {
		return KindRawMaterial
	}
	return KindProduct
}

// RecordDate and SearchFields let reports filter sales and purchases the same way.
func (s Sale) RecordDate() string { return s.Date }
func (s Sale) SearchFields() []string { return []string{s.CustomerName, s.ProductName} }
func (p Purchase) RecordDate() string { return p.Date }
func (p Purchase) SearchFields() []string { return []string{p.SupplierName, p.ProductName} }
