package repository

import (
	"context"
	"time"

	"lynnops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, locationID uuid.UUID, page, limit int, from, to *time.Time) ([]model.Expense, int64, error)
	SumByLocation(ctx context.Context, locationID uuid.UUID, from, to time.Time) (string, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Expense{}).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, locationID uuid.UUID, page, limit int, from, to *time.Time) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Expense{}).Where("location_id = ?", locationID)
	if from != nil {
		db = db.Where("expense_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("expense_date <= ?", *to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("expense_date desc").Offset(offset).Limit(limit).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) SumByLocation(ctx context.Context, locationID uuid.UUID, from, to time.Time) (string, error) {
	var result struct {
		Total string
	}
	// Expense dates carry day precision only, so the bounds are widened to
	// whole days; otherwise a same-day expense falls outside any intra-day
	// window.
	fromUTC, toUTC := from.UTC(), to.UTC()
	dayStart := time.Date(fromUTC.Year(), fromUTC.Month(), fromUTC.Day(), 0, 0, 0, 0, time.UTC)
	nextDay := time.Date(toUTC.Year(), toUTC.Month(), toUTC.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	err := GetDB(ctx, r.db).Model(&model.Expense{}).
		Select("COALESCE(CAST(SUM(amount) AS TEXT), '0') as total").
		Where("location_id = ? AND expense_date >= ? AND expense_date < ?", locationID, dayStart, nextDay).
		Scan(&result).Error
	return result.Total, err
}
