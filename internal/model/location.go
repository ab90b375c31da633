package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationType enum constants
const (
	LocationTypeWarehouse = "WAREHOUSE"
	LocationTypeHotel     = "HOTEL"
	LocationTypeStore     = "STORE"
)

// Location is a physical site (warehouse, hotel, store). Every domain record
// is scoped to exactly one location. AdminID is fixed at creation; there is
// no ownership transfer.
type Location struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Type      string         `gorm:"type:varchar(20);not null" json:"type"` // WAREHOUSE, HOTEL, STORE
	Currency  string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Address   string         `gorm:"type:text" json:"address"`
	AdminID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"admin_id"`
	Admin     *User          `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Capability is a single permission a user can hold on a location.
type Capability string

const (
	CapManageProducts   Capability = "MANAGE_PRODUCTS"
	CapManageCategories Capability = "MANAGE_CATEGORIES"
	CapManageSuppliers  Capability = "MANAGE_SUPPLIERS"
	CapImportStock      Capability = "IMPORT_STOCK"
	CapExportStock      Capability = "EXPORT_STOCK"
	CapManageExpenses   Capability = "MANAGE_EXPENSES"
	CapViewReports      Capability = "VIEW_REPORTS"
)

// AllCapabilities lists every assignable capability.
var AllCapabilities = []Capability{
	CapManageProducts,
	CapManageCategories,
	CapManageSuppliers,
	CapImportStock,
	CapExportStock,
	CapManageExpenses,
	CapViewReports,
}

// ValidCapability reports whether c is a known capability code.
func ValidCapability(c Capability) bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// CapabilityList is stored as a JSON array on the grant row.
type CapabilityList []Capability

// Has reports whether the list contains c.
func (l CapabilityList) Has(c Capability) bool {
	for _, item := range l {
		if item == c {
			return true
		}
	}
	return false
}

// LocationAccessGrant holds the capability set a role=user actor was given on
// one location. One row per (user, location) pair, keyed so grants for one
// location can be replaced without touching the user's other locations.
// Admins and superadmins never have grant rows; their access is ownership-based.
type LocationAccessGrant struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_location" json:"user_id"`
	LocationID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_location" json:"location_id"`
	Permissions CapabilityList `gorm:"type:jsonb;serializer:json" json:"permissions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (g *LocationAccessGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
