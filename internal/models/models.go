package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role values carried by User.Role
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// DateLayout is the calendar-date format used by Sale.Date and Purchase.Date.
const DateLayout = "2006-01-02"

// User - the person operating the tracker. Only admins may delete stock items.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // 'admin' or 'staff'
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidRole reports whether r is one of the two supported roles.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleStaff }

// RawMaterial - stock bought in and consumed by production
type RawMaterial struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	MinThreshold int             `json:"minThreshold"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Product - finished goods that can be sold
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Cost         decimal.Decimal `json:"cost"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock"`
	MinThreshold int             `json:"minThreshold"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Sale - one line sold to a customer. ProductName and UnitPrice are snapshots
// taken when the sale was recorded and never follow later product edits.
type Sale struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Date         string          `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Purchase - stock received from a supplier. ProductID points at a RawMaterial
// when IsRawMaterial is set, otherwise at a Product.
type Purchase struct {
	ID            string          `json:"id"`
	SupplierName  string          `json:"supplierName"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	IsRawMaterial bool            `json:"isRawMaterial"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Date          string          `json:"date"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// DashboardStats is derived from the current collections and never persisted.
type DashboardStats struct {
	TotalProducts     int             `json:"totalProducts"`
	TotalRawMaterials int             `json:"totalRawMaterials"`
	LowStockItems     int             `json:"lowStockItems"`
	TodaySales        decimal.Decimal `json:"todaySales"`
	TodayPurchases    decimal.Decimal `json:"todayPurchases"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalCosts        decimal.Decimal `json:"totalCosts"`
	Profit            decimal.Decimal `json:"profit"`
}
