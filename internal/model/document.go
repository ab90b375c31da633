package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceType constants for stored documents. The object storage provider
// decides the type; we only record what it returned.
const (
	ResourceTypeImage = "image"
	ResourceTypeRaw   = "raw"
)

// LocationDocument records a file uploaded to the external object store.
// FileURL is opaque: the system stores and returns it verbatim, never
// inspecting the content behind it.
type LocationDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LocationID   uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	ResourceType string    `gorm:"type:varchar(10);not null;default:'raw'" json:"resource_type"` // image, raw
	UploadedBy   uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *LocationDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
