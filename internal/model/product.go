package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus constants
const (
	ProductStatusAvailable = "available"
	ProductStatusInactive  = "inactive"
)

// Category groups products within a location.
type Category struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product is an item held in stock at one location.
//
// Quantity is the single authoritative stock count. It is adjusted only by
// the transaction ledger, the sale order engine, or the explicit override on
// the product-update path. It may legitimately go negative: correction
// entries through import or the override are allowed to drive it below zero,
// while the export path refuses to. That asymmetry is intentional.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU        string          `gorm:"type:varchar(100);index" json:"sku"`
	Unit       string          `gorm:"type:varchar(50);not null" json:"unit"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sale_price"`
	Quantity   int64           `gorm:"type:bigint;not null;default:0" json:"quantity"`
	Status     string          `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	ImageURL   string          `gorm:"type:text" json:"image_url"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
