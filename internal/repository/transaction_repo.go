package repository

import (
	"context"

	"lynnops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository persists ledger rows. The interface deliberately has
// no update or delete: the ledger is append-only and corrections are new
// compensating entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error)
	List(ctx context.Context, locationID uuid.UUID, page, limit int, txType string, productID *uuid.UUID) ([]model.InventoryTransaction, int64, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error) {
	var tx model.InventoryTransaction
	if err := GetDB(ctx, r.db).First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, locationID uuid.UUID, page, limit int, txType string, productID *uuid.UUID) ([]model.InventoryTransaction, int64, error) {
	var txs []model.InventoryTransaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryTransaction{}).Where("location_id = ?", locationID)
	if txType != "" {
		db = db.Where("type = ?", txType)
	}
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Product").Order("created_at desc").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

func (r *transactionRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.InventoryTransaction{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
