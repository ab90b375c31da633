package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRanking represents a ranked product based on accumulated movement.
type ProductRanking struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	ProductSKU    string `json:"product_sku"`
	TotalQuantity int64  `json:"total_quantity"`
	TotalValue    string `json:"total_value"`
}

type ReportRepository interface {
	GetTransactionTotals(ctx context.Context, locationID uuid.UUID, txType string, start, end time.Time) (value string, count int64, err error)
	GetSaleTotals(ctx context.Context, locationID uuid.UUID, start, end time.Time) (value string, count int64, err error)
	GetTopMovedProducts(ctx context.Context, locationID uuid.UUID, txType string, start, end time.Time, limit int) ([]ProductRanking, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetTransactionTotals(ctx context.Context, locationID uuid.UUID, txType string, start, end time.Time) (string, int64, error) {
	var result struct {
		Value string
		Count int64
	}
	err := GetDB(ctx, r.db).Table("inventory_transactions").
		Select("COALESCE(CAST(SUM(total_price) AS TEXT), '0') as value, COUNT(*) as count").
		Where("location_id = ? AND type = ? AND created_at >= ? AND created_at <= ?", locationID, txType, start, end).
		Scan(&result).Error
	if err != nil {
		return "0", 0, fmt.Errorf("failed to query transaction totals: %w", err)
	}
	return result.Value, result.Count, nil
}

func (r *reportRepository) GetSaleTotals(ctx context.Context, locationID uuid.UUID, start, end time.Time) (string, int64, error) {
	var result struct {
		Value string
		Count int64
	}
	err := GetDB(ctx, r.db).Table("sale_orders").
		Select("COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as value, COUNT(*) as count").
		Where("location_id = ? AND created_at >= ? AND created_at <= ?", locationID, start, end).
		Scan(&result).Error
	if err != nil {
		return "0", 0, fmt.Errorf("failed to query sale totals: %w", err)
	}
	return result.Value, result.Count, nil
}

func (r *reportRepository) GetTopMovedProducts(ctx context.Context, locationID uuid.UUID, txType string, start, end time.Time, limit int) ([]ProductRanking, error) {
	var rankings []ProductRanking
	if err := GetDB(ctx, r.db).Table("inventory_transactions").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(inventory_transactions.quantity) as total_quantity, COALESCE(CAST(SUM(inventory_transactions.total_price) AS TEXT), '0') as total_value").
		Joins("JOIN products ON products.id = inventory_transactions.product_id").
		Where("inventory_transactions.location_id = ? AND inventory_transactions.type = ? AND inventory_transactions.created_at >= ? AND inventory_transactions.created_at <= ?", locationID, txType, start, end).
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}
