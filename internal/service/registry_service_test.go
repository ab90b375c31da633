package service

import (
	"context"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestSupplierCRUDGatedByCapability(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapImportStock)

	ctx := context.Background()

	// Writes need MANAGE_SUPPLIERS; this user only imports stock.
	_, err := env.registry.CreateSupplier(ctx, user, location.ID.String(), SupplierRequest{Name: "Acme"})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("create without capability = %v, want FORBIDDEN", err)
	}

	supplier, err := env.registry.CreateSupplier(ctx, admin, location.ID.String(), SupplierRequest{
		Name:  "Acme Wholesale",
		Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("CreateSupplier as admin failed: %v", err)
	}

	// Reads only need view access, which any grant row provides.
	suppliers, total, err := env.registry.ListSuppliers(ctx, user, location.ID.String(), 1, 20, "")
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if total != 1 || suppliers[0].ID != supplier.ID {
		t.Errorf("suppliers = %d rows, want the one created", total)
	}

	updated, err := env.registry.UpdateSupplier(ctx, admin, location.ID.String(), supplier.ID.String(), SupplierRequest{
		Name: "Acme Wholesale Ltd",
	})
	if err != nil {
		t.Fatalf("UpdateSupplier failed: %v", err)
	}
	if updated.Name != "Acme Wholesale Ltd" {
		t.Errorf("name = %s, want updated", updated.Name)
	}

	if err := env.registry.DeleteSupplier(ctx, admin, location.ID.String(), supplier.ID.String()); err != nil {
		t.Fatalf("DeleteSupplier failed: %v", err)
	}
}

func TestExpenseAmountAndDateValidation(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)

	ctx := context.Background()

	_, err := env.registry.CreateExpense(ctx, admin, location.ID.String(), ExpenseRequest{
		Name: "Rent", Amount: "not-a-number", ExpenseDate: "2026-08-01",
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("bad amount = %v, want VALIDATION_ERROR", err)
	}

	_, err = env.registry.CreateExpense(ctx, admin, location.ID.String(), ExpenseRequest{
		Name: "Rent", Amount: "1200.00", ExpenseDate: "01/08/2026",
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("bad date = %v, want VALIDATION_ERROR", err)
	}

	expense, err := env.registry.CreateExpense(ctx, admin, location.ID.String(), ExpenseRequest{
		Name: "Rent", Amount: "1200.00", Category: "facilities", ExpenseDate: "2026-08-01",
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.Amount.String() != "1200" {
		t.Errorf("amount = %s, want 1200", expense.Amount.String())
	}

	expenses, total, err := env.registry.ListExpenses(ctx, admin, location.ID.String(), 1, 20, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if total != 1 || len(expenses) != 1 {
		t.Errorf("expenses in range = %d, want 1", total)
	}
}

func TestCrossLocationRegistryLookupsReportNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	locationA := env.seedLocation(t, admin.ID)
	locationB := env.seedLocation(t, admin.ID)

	ctx := context.Background()

	supplier, err := env.registry.CreateSupplier(ctx, admin, locationB.ID.String(), SupplierRequest{Name: "Elsewhere Co"})
	if err != nil {
		t.Fatalf("CreateSupplier failed: %v", err)
	}

	_, err = env.registry.UpdateSupplier(ctx, admin, locationA.ID.String(), supplier.ID.String(), SupplierRequest{Name: "Probe"})
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Fatalf("cross-location update = %v, want NOT_FOUND", err)
	}
	err = env.registry.DeleteSupplier(ctx, admin, locationA.ID.String(), supplier.ID.String())
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Fatalf("cross-location delete = %v, want NOT_FOUND", err)
	}
}

func TestAttachDocumentValidatesResourceType(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)

	ctx := context.Background()

	_, err := env.registry.AttachDocument(ctx, admin, location.ID.String(), AttachDocumentRequest{
		Name: "Lease", FileURL: "https://cdn.example.com/lease.pdf", ResourceType: "spreadsheet",
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("bad resource type = %v, want VALIDATION_ERROR", err)
	}

	doc, err := env.registry.AttachDocument(ctx, admin, location.ID.String(), AttachDocumentRequest{
		Name: "Lease", FileURL: "https://cdn.example.com/lease.pdf", ResourceType: model.ResourceTypeRaw,
	})
	if err != nil {
		t.Fatalf("AttachDocument failed: %v", err)
	}

	docs, total, err := env.registry.ListDocuments(ctx, admin, location.ID.String(), 1, 20)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 1 || docs[0].ID != doc.ID {
		t.Errorf("documents = %d, want the attached one", total)
	}
}
