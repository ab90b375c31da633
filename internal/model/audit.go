package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateProduct   = "CREATE_PRODUCT"
	ActionUpdateProduct   = "UPDATE_PRODUCT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionToggleProduct   = "TOGGLE_PRODUCT_STATUS"
	ActionRecordImport    = "RECORD_IMPORT"
	ActionRecordExport    = "RECORD_EXPORT"
	ActionCreateSaleOrder = "CREATE_SALE_ORDER"
	ActionDeleteSaleOrder = "DELETE_SALE_ORDER"
	ActionReplaceGrants   = "REPLACE_LOCATION_GRANTS"
	ActionRevokeGrants    = "REVOKE_LOCATION_GRANTS"
	ActionCreateLocation  = "CREATE_LOCATION"
	ActionDeleteLocation  = "DELETE_LOCATION"
	ActionCreateExpense   = "CREATE_EXPENSE"
	ActionAttachDocument  = "ATTACH_DOCUMENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LocationID *uuid.UUID `gorm:"type:uuid;index" json:"location_id"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
