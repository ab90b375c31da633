package service

import (
	"context"
	"testing"
	"time"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestLocationSummaryAggregates(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	ctx := context.Background()

	if _, err := env.ledger.RecordTransaction(ctx, admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  100,
		UnitPrice: "2",
	}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if _, err := env.ledger.RecordTransaction(ctx, admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  30,
		UnitPrice: "2",
		Notes:     "store transfer",
	}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := env.sale.CreateOrder(ctx, admin, location.ID.String(), CreateSaleOrderRequest{
		Items: []SaleOrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 10, SalePrice: "5"},
		},
	}); err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if _, err := env.registry.CreateExpense(ctx, admin, location.ID.String(), ExpenseRequest{
		Name: "Rent", Amount: "300", ExpenseDate: time.Now().Format("2006-01-02"),
	}); err != nil {
		t.Fatalf("expense failed: %v", err)
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	summary, err := env.report.GetLocationSummary(ctx, admin, location.ID.String(), start, end)
	if err != nil {
		t.Fatalf("GetLocationSummary failed: %v", err)
	}

	if summary.TotalImportCount != 1 || summary.TotalExportCount != 1 {
		t.Errorf("movement counts = %d/%d, want 1/1", summary.TotalImportCount, summary.TotalExportCount)
	}
	if summary.TotalImportValue != "200" {
		t.Errorf("import value = %s, want 200", summary.TotalImportValue)
	}
	if summary.TotalExportValue != "60" {
		t.Errorf("export value = %s, want 60", summary.TotalExportValue)
	}
	if summary.TotalSaleCount != 1 || summary.TotalSaleValue != "50" {
		t.Errorf("sale totals = %d/%s, want 1/50", summary.TotalSaleCount, summary.TotalSaleValue)
	}
	if summary.TotalExpenses != "300" {
		t.Errorf("expenses = %s, want 300", summary.TotalExpenses)
	}
	if len(summary.TopImportedItems) != 1 || summary.TopImportedItems[0].TotalQuantity != 100 {
		t.Errorf("top imported = %+v, want one ranking of 100", summary.TopImportedItems)
	}
}

func TestLocationSummaryRequiresViewReports(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapManageProducts)

	start := time.Now().Add(-time.Hour)
	end := time.Now()
	_, err := env.report.GetLocationSummary(context.Background(), user, location.ID.String(), start, end)
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("summary without VIEW_REPORTS = %v, want FORBIDDEN", err)
	}

	env.seedGrant(t, user.ID, location.ID, model.CapViewReports)
	if _, err := env.report.GetLocationSummary(context.Background(), user, location.ID.String(), start, end); err != nil {
		t.Fatalf("summary with VIEW_REPORTS failed: %v", err)
	}
}
