package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a location-scoped cost entry in the location's currency.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Notes       string          `gorm:"type:text" json:"notes"`
	ReceiptURL  string          `gorm:"type:text" json:"receipt_url"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
