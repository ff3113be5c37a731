package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory enumerates the supported catalog categories.
type ProductCategory string

const (
	CategoryLimb    ProductCategory = "Limb"
	CategoryJoint   ProductCategory = "Joint"
	CategorySpinal  ProductCategory = "Spinal"
	CategoryCranial ProductCategory = "Cranial"
	CategoryDental  ProductCategory = "Dental"
	CategoryOther   ProductCategory = "Other"
)

// Valid reports whether c is one of the known categories.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryLimb, CategoryJoint, CategorySpinal, CategoryCranial, CategoryDental, CategoryOther:
		return true
	}
	return false
}

// Product represents a stocked catalog item.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID                int             `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	ModelNumber       string          `db:"model_number" json:"modelNumber"`
	Description       string          `db:"description" json:"description"`
	Category          ProductCategory `db:"category" json:"category"`
	CostPrice         decimal.Decimal `db:"cost_price" json:"costPrice"`
	SellingPrice      decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	StockQuantity     int             `db:"stock_quantity" json:"stockQuantity"`
	LowStockThreshold int             `db:"low_stock_threshold" json:"lowStockThreshold"`
	ImageURL          string          `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
