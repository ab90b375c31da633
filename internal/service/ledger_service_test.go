package service

import (
	"context"
	"sync"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestRecordImportIncreasesStockAndAppendsLedger(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	res, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  25,
		UnitPrice: "3.50",
	})
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}

	if res.StockAfter != 25 {
		t.Errorf("stock_after = %d, want 25", res.StockAfter)
	}
	if res.TotalPrice != "87.5" {
		t.Errorf("total_price = %s, want 87.5", res.TotalPrice)
	}
	if got := env.reloadProduct(t, product.ID).Quantity; got != 25 {
		t.Errorf("product quantity = %d, want 25", got)
	}

	txs, total, err := env.ledger.ListTransactions(context.Background(), admin, location.ID.String(), 1, 20, "", "")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 || len(txs) != 1 {
		t.Fatalf("ledger rows = %d (total %d), want 1", len(txs), total)
	}
	if txs[0].Type != model.TxTypeImport {
		t.Errorf("ledger type = %s, want IMPORT", txs[0].Type)
	}
}

func TestExportBlocksOverdraw(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 10)

	// First export drains the stock entirely.
	res, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  10,
		Notes:     "shipment 1",
	})
	if err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if res.StockAfter != 0 {
		t.Errorf("stock_after = %d, want 0", res.StockAfter)
	}

	// The second identical export must fail and leave no trace: the stock
	// stays at zero and the ledger keeps exactly one row.
	_, err = env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  10,
		Notes:     "shipment 2",
	})
	if apperr.CategoryOf(err) != apperr.CategoryInsufficientStock {
		t.Fatalf("second export error = %v, want INSUFFICIENT_STOCK", err)
	}

	if got := env.reloadProduct(t, product.ID).Quantity; got != 0 {
		t.Errorf("product quantity = %d, want 0", got)
	}
	_, total, err := env.ledger.ListTransactions(context.Background(), admin, location.ID.String(), 1, 20, "", "")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 {
		t.Errorf("ledger rows = %d, want 1", total)
	}
}

func TestImportThenExportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	if _, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  40,
	}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if _, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  40,
		Notes:     "full drawdown",
	}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if got := env.reloadProduct(t, product.ID).Quantity; got != 0 {
		t.Errorf("product quantity = %d, want 0 after inverse movements", got)
	}
}

func TestExportRequiresNotes(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 5)

	_, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  1,
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("export without notes error = %v, want VALIDATION_ERROR", err)
	}
}

func TestTransactionCrossLocationReportsNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	locationA := env.seedLocation(t, admin.ID)
	locationB := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, locationB.ID, 50)

	// Recording against location A with a product belonging to B must look
	// identical to the product not existing at all.
	_, err := env.ledger.RecordTransaction(context.Background(), admin, locationA.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  5,
	})
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Fatalf("cross-location record error = %v, want NOT_FOUND", err)
	}
	if got := env.reloadProduct(t, product.ID).Quantity; got != 50 {
		t.Errorf("product quantity = %d, want unchanged 50", got)
	}
}

func TestLedgerCapabilityFollowsDirection(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	importer, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 20)
	env.seedGrant(t, importer.ID, location.ID, model.CapImportStock)

	if _, err := env.ledger.RecordTransaction(context.Background(), importer, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  5,
	}); err != nil {
		t.Fatalf("import with IMPORT_STOCK grant failed: %v", err)
	}

	// The same user lacks EXPORT_STOCK, so the export direction is denied.
	_, err := env.ledger.RecordTransaction(context.Background(), importer, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  5,
		Notes:     "unauthorized attempt",
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("export without grant error = %v, want FORBIDDEN", err)
	}
}

func TestConcurrentExportsAdmitOnlyOne(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 15)

	// Two exports race for the same 15 units; the row lock must let exactly
	// one through and refuse the other.
	req := RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeExport,
		Quantity:  15,
		UnitPrice: "2",
		Notes:     "full drain",
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, refused int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.CategoryOf(err) == apperr.CategoryInsufficientStock:
			refused++
		default:
			t.Fatalf("unexpected export error: %v", err)
		}
	}
	if succeeded != 1 || refused != 1 {
		t.Fatalf("exports = %d succeeded / %d refused, want exactly one of each", succeeded, refused)
	}

	if got := env.reloadProduct(t, product.ID).Quantity; got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
	_, total, err := env.ledger.ListTransactions(context.Background(), admin, location.ID.String(), 1, 20, "", "")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 {
		t.Errorf("ledger rows = %d, want 1", total)
	}
}
