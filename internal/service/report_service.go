package service

import (
	"context"
	"fmt"
	"time"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
)

// LocationSummary aggregates a location's movement and spend over a range.
type LocationSummary struct {
	LocationID        string                     `json:"location_id"`
	TotalImportValue  string                     `json:"total_import_value"`
	TotalExportValue  string                     `json:"total_export_value"`
	TotalImportCount  int64                      `json:"total_import_count"`
	TotalExportCount  int64                      `json:"total_export_count"`
	TotalSaleValue    string                     `json:"total_sale_value"`
	TotalSaleCount    int64                      `json:"total_sale_count"`
	TotalExpenses     string                     `json:"total_expenses"`
	TopImportedItems  []repository.ProductRanking `json:"top_imported_items"`
	TopExportedItems  []repository.ProductRanking `json:"top_exported_items"`
	RangeStart        time.Time                  `json:"range_start"`
	RangeEnd          time.Time                  `json:"range_end"`
}

type ReportService interface {
	GetLocationSummary(ctx context.Context, actor model.Actor, locationID string, start, end time.Time) (*LocationSummary, error)
}

type reportService struct {
	reportRepo  repository.ReportRepository
	expenseRepo repository.ExpenseRepository
	access      AccessService
}

func NewReportService(reportRepo repository.ReportRepository, expenseRepo repository.ExpenseRepository, access AccessService) ReportService {
	return &reportService{reportRepo: reportRepo, expenseRepo: expenseRepo, access: access}
}

func (s *reportService) GetLocationSummary(ctx context.Context, actor model.Actor, locationID string, start, end time.Time) (*LocationSummary, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return nil, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapViewReports); err != nil {
		return nil, err
	}

	importValue, importCount, err := s.reportRepo.GetTransactionTotals(ctx, lid, model.TxTypeImport, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute import totals: %w", err)
	}
	exportValue, exportCount, err := s.reportRepo.GetTransactionTotals(ctx, lid, model.TxTypeExport, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute export totals: %w", err)
	}
	saleValue, saleCount, err := s.reportRepo.GetSaleTotals(ctx, lid, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sale totals: %w", err)
	}
	expenseTotal, err := s.expenseRepo.SumByLocation(ctx, lid, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expense total: %w", err)
	}
	topImported, err := s.reportRepo.GetTopMovedProducts(ctx, lid, model.TxTypeImport, start, end, 5)
	if err != nil {
		return nil, err
	}
	topExported, err := s.reportRepo.GetTopMovedProducts(ctx, lid, model.TxTypeExport, start, end, 5)
	if err != nil {
		return nil, err
	}

	return &LocationSummary{
		LocationID:       lid.String(),
		TotalImportValue: importValue,
		TotalExportValue: exportValue,
		TotalImportCount: importCount,
		TotalExportCount: exportCount,
		TotalSaleValue:   saleValue,
		TotalSaleCount:   saleCount,
		TotalExpenses:    expenseTotal,
		TopImportedItems: topImported,
		TopExportedItems: topExported,
		RangeStart:       start,
		RangeEnd:         end,
	}, nil
}
