package repository

import (
	"context"

	"lynnops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleOrderRepository interface {
	Create(ctx context.Context, order *model.SaleOrder) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.SaleOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.SaleOrder, int64, error)
	CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type saleOrderRepository struct {
	db *gorm.DB
}

func NewSaleOrderRepository(db *gorm.DB) SaleOrderRepository {
	return &saleOrderRepository{db: db}
}

// Create inserts the order and its item snapshots together.
func (r *saleOrderRepository) Create(ctx context.Context, order *model.SaleOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *saleOrderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.SaleOrder, error) {
	var order model.SaleOrder
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Customer").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes the order row and its items. Restocking is the sale
// engine's job and must happen in the same transaction.
func (r *saleOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", id).Delete(&model.SaleOrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.SaleOrder{}).Error
}

func (r *saleOrderRepository) List(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.SaleOrder, int64, error) {
	var orders []model.SaleOrder
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SaleOrder{}).Where("location_id = ?", locationID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Preload("Customer").
		Where("location_id = ?", locationID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *saleOrderRepository) CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SaleOrderItem{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
