package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is a goods supplier attached to one location.
type Supplier struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"location_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Address       string         `gorm:"type:text" json:"address"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Customer is a buyer attached to one location; referenced by sale orders.
type Customer struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"location_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone      string         `gorm:"type:varchar(50)" json:"phone"`
	Email      string         `gorm:"type:varchar(255)" json:"email"`
	Address    string         `gorm:"type:text" json:"address"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Guest is a hotel guest record for HOTEL-type locations.
type Guest struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"location_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone        string         `gorm:"type:varchar(50)" json:"phone"`
	IDNumber     string         `gorm:"type:varchar(100)" json:"id_number"`
	RoomNumber   string         `gorm:"type:varchar(50)" json:"room_number"`
	CheckInDate  *time.Time     `json:"check_in_date"`
	CheckOutDate *time.Time     `json:"check_out_date"`
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
