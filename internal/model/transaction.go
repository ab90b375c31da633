package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType enum constants
const (
	TxTypeImport = "IMPORT"
	TxTypeExport = "EXPORT"
)

// InventoryTransaction records one stock movement. Rows are append-only:
// a mistake is corrected with a new compensating entry, never by editing or
// deleting the original. Each insert is paired with the matching
// Product.Quantity adjustment inside one database transaction.
type InventoryTransaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type       string          `gorm:"type:varchar(10);not null" json:"type"` // IMPORT, EXPORT
	Quantity   int64           `gorm:"type:bigint;not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"total_price"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id"`
	Notes      string          `gorm:"type:text" json:"notes"`
	ImageURLs  []string        `gorm:"type:jsonb;serializer:json" json:"image_urls"`
	FileURLs   []string        `gorm:"type:jsonb;serializer:json" json:"file_urls"`
	StockAfter int64           `gorm:"type:bigint;not null" json:"stock_after"`
	CreatedBy  uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
