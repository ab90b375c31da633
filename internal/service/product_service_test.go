package service

import (
	"context"
	"sync"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestCreateProductStartsAtZeroStock(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)

	res, err := env.product.CreateProduct(context.Background(), admin, location.ID.String(), CreateProductRequest{
		Name:  "Mineral Water 500ml",
		Unit:  "bottle",
		Price: "0.80",
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if res.Quantity != 0 {
		t.Errorf("quantity = %d, want 0; stock only enters through the ledger", res.Quantity)
	}
	if res.Status != model.ProductStatusAvailable {
		t.Errorf("status = %s, want available", res.Status)
	}
}

func TestQuantityOverrideAllowsNegative(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 5)

	// The direct override is the correction escape hatch and carries no
	// sufficiency check, unlike the export path.
	override := int64(-3)
	res, err := env.product.UpdateProduct(context.Background(), admin, location.ID.String(), product.ID.String(), UpdateProductRequest{
		Quantity: &override,
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if res.Quantity != -3 {
		t.Errorf("quantity = %d, want -3", res.Quantity)
	}
	if got := env.reloadProduct(t, product.ID).Quantity; got != -3 {
		t.Errorf("stored quantity = %d, want -3", got)
	}
}

func TestDeleteProductRefusedWhileHistoryExists(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	if _, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
		ProductID: product.ID.String(),
		Type:      model.TxTypeImport,
		Quantity:  10,
	}); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	err := env.product.DeleteProduct(context.Background(), admin, location.ID.String(), product.ID.String())
	if apperr.CategoryOf(err) != apperr.CategoryConflict {
		t.Fatalf("delete with history = %v, want CONFLICT", err)
	}
}

func TestDeleteProductWithoutHistory(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	if err := env.product.DeleteProduct(context.Background(), admin, location.ID.String(), product.ID.String()); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	_, _, err := env.product.ListProducts(context.Background(), admin, location.ID.String(), 1, 20, "", "")
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
}

func TestDeleteProductRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)
	env.seedGrant(t, user.ID, location.ID, model.CapManageProducts)

	// Even a fully-granted user cannot hard delete; that is an admin action.
	err := env.product.DeleteProduct(context.Background(), user, location.ID.String(), product.ID.String())
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("delete as user = %v, want FORBIDDEN", err)
	}
}

func TestToggleProductStatus(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 7)

	res, err := env.product.ToggleProductStatus(context.Background(), admin, location.ID.String(), product.ID.String())
	if err != nil {
		t.Fatalf("ToggleProductStatus failed: %v", err)
	}
	if res.Status != model.ProductStatusInactive {
		t.Errorf("status = %s, want inactive", res.Status)
	}
	if res.Quantity != 7 {
		t.Errorf("quantity = %d, want 7; toggling must not touch stock", res.Quantity)
	}

	res, err = env.product.ToggleProductStatus(context.Background(), admin, location.ID.String(), product.ID.String())
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if res.Status != model.ProductStatusAvailable {
		t.Errorf("status = %s, want available", res.Status)
	}
}

func TestUpdateProductCrossLocationReportsNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	locationA := env.seedLocation(t, admin.ID)
	locationB := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, locationB.ID, 0)

	name := "Probe"
	_, err := env.product.UpdateProduct(context.Background(), admin, locationA.ID.String(), product.ID.String(), UpdateProductRequest{
		Name: &name,
	})
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Fatalf("cross-location update = %v, want NOT_FOUND", err)
	}
}

func TestCategoryRequiresManageCategoriesCapability(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapManageProducts)

	_, err := env.product.CreateCategory(context.Background(), user, location.ID.String(), CategoryRequest{Name: "Beverages"})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("create category without capability = %v, want FORBIDDEN", err)
	}

	env.seedGrant(t, user.ID, location.ID, model.CapManageProducts, model.CapManageCategories)
	if _, err := env.product.CreateCategory(context.Background(), user, location.ID.String(), CategoryRequest{Name: "Beverages"}); err != nil {
		t.Fatalf("create category with capability failed: %v", err)
	}
}

func TestMetadataEditDoesNotDisturbConcurrentImports(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 0)

	// Name-only edits race against ledger imports on the same row. Updates
	// load the product under the row lock inside their transaction, so a
	// metadata edit can never write back a stale quantity.
	const imports = 8
	errs := make(chan error, imports*2)
	var wg sync.WaitGroup
	for i := 0; i < imports; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.ledger.RecordTransaction(context.Background(), admin, location.ID.String(), RecordTransactionRequest{
				ProductID: product.ID.String(),
				Type:      model.TxTypeImport,
				Quantity:  1,
				UnitPrice: "1",
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			name := "Renamed Widget"
			_, err := env.product.UpdateProduct(context.Background(), admin, location.ID.String(), product.ID.String(), UpdateProductRequest{
				Name: &name,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent operation failed: %v", err)
		}
	}

	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.Quantity != imports {
		t.Errorf("quantity = %d, want %d", reloaded.Quantity, imports)
	}
	if reloaded.Name != "Renamed Widget" {
		t.Errorf("name = %s, want Renamed Widget", reloaded.Name)
	}
}
