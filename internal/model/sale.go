package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleOrder is a multi-line customer order. Line items are a snapshot taken
// at creation time: product name and sale price are copied, not referenced,
// so later renames or repricing never alter historical orders. Deleting an
// order restores every line's stock and removes the row entirely.
type SaleOrder struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Items         []SaleOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedByName string          `gorm:"type:varchar(255)" json:"created_by_name"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

func (o *SaleOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// SaleOrderItem is one snapshotted line of a sale order.
type SaleOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int64           `gorm:"type:bigint;not null" json:"quantity"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"sale_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
}

func (i *SaleOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
