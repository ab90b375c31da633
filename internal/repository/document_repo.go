package repository

import (
	"context"

	"lynnops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.LocationDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LocationDocument, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.LocationDocument, int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.LocationDocument) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.LocationDocument{}).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LocationDocument, error) {
	var doc model.LocationDocument
	if err := GetDB(ctx, r.db).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByLocation(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.LocationDocument, int64, error) {
	var docs []model.LocationDocument
	var total int64

	db := GetDB(ctx, r.db).Model(&model.LocationDocument{}).Where("location_id = ?", locationID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}
