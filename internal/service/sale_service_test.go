package service

import (
	"context"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestCreateOrderDeductsStockAcrossLines(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	productA := env.seedProduct(t, location.ID, 30)
	productB := env.seedProduct(t, location.ID, 12)

	// Two lines reference product A; the engine must check their sum.
	res, err := env.sale.CreateOrder(context.Background(), admin, location.ID.String(), CreateSaleOrderRequest{
		Items: []SaleOrderItemRequest{
			{ProductID: productA.ID.String(), Quantity: 10, SalePrice: "2.00"},
			{ProductID: productA.ID.String(), Quantity: 5, SalePrice: "2.00"},
			{ProductID: productB.ID.String(), Quantity: 12, SalePrice: "1.25"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if res.TotalAmount != "45" {
		t.Errorf("total_amount = %s, want 45", res.TotalAmount)
	}
	if len(res.Items) != 3 {
		t.Errorf("order items = %d, want 3", len(res.Items))
	}
	if got := env.reloadProduct(t, productA.ID).Quantity; got != 15 {
		t.Errorf("product A quantity = %d, want 15", got)
	}
	if got := env.reloadProduct(t, productB.ID).Quantity; got != 0 {
		t.Errorf("product B quantity = %d, want 0", got)
	}
}

func TestCreateOrderFailingLineLeavesAllStockUntouched(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	productA := env.seedProduct(t, location.ID, 100)
	productB := env.seedProduct(t, location.ID, 3)

	_, err := env.sale.CreateOrder(context.Background(), admin, location.ID.String(), CreateSaleOrderRequest{
		Items: []SaleOrderItemRequest{
			{ProductID: productA.ID.String(), Quantity: 10, SalePrice: "5.00"},
			{ProductID: productB.ID.String(), Quantity: 4, SalePrice: "5.00"},
		},
	})
	if apperr.CategoryOf(err) != apperr.CategoryInsufficientStock {
		t.Fatalf("order error = %v, want INSUFFICIENT_STOCK", err)
	}

	// All-or-nothing: even the fulfillable line must not have been debited.
	if got := env.reloadProduct(t, productA.ID).Quantity; got != 100 {
		t.Errorf("product A quantity = %d, want untouched 100", got)
	}
	if got := env.reloadProduct(t, productB.ID).Quantity; got != 3 {
		t.Errorf("product B quantity = %d, want untouched 3", got)
	}
	_, total, err := env.sale.ListOrders(context.Background(), admin, location.ID.String(), 1, 20)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if total != 0 {
		t.Errorf("orders = %d, want 0", total)
	}
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 20)

	order, err := env.sale.CreateOrder(context.Background(), admin, location.ID.String(), CreateSaleOrderRequest{
		Items: []SaleOrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 8, SalePrice: "9.99"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if got := env.reloadProduct(t, product.ID).Quantity; got != 12 {
		t.Fatalf("quantity after order = %d, want 12", got)
	}

	if err := env.sale.DeleteOrder(context.Background(), admin, location.ID.String(), order.ID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}

	if got := env.reloadProduct(t, product.ID).Quantity; got != 20 {
		t.Errorf("quantity after reversal = %d, want 20", got)
	}
	_, err = env.sale.GetOrder(context.Background(), admin, location.ID.String(), order.ID)
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Errorf("GetOrder after delete = %v, want NOT_FOUND", err)
	}
}

func TestOrderSnapshotImmuneToLaterProductEdits(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, location.ID, 10)
	originalName := product.Name

	order, err := env.sale.CreateOrder(context.Background(), admin, location.ID.String(), CreateSaleOrderRequest{
		Items: []SaleOrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 2, SalePrice: "7.00"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Rename and reprice the product after the sale.
	newName := "Renamed Product"
	newPrice := "99.00"
	if _, err := env.product.UpdateProduct(context.Background(), admin, location.ID.String(), product.ID.String(), UpdateProductRequest{
		Name:      &newName,
		SalePrice: &newPrice,
	}); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	reloaded, err := env.sale.GetOrder(context.Background(), admin, location.ID.String(), order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if reloaded.Items[0].ProductName != originalName {
		t.Errorf("snapshot name = %s, want %s", reloaded.Items[0].ProductName, originalName)
	}
	if reloaded.Items[0].SalePrice != "7" {
		t.Errorf("snapshot sale_price = %s, want 7", reloaded.Items[0].SalePrice)
	}
}

func TestCreateOrderRejectsForeignCustomer(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	locationA := env.seedLocation(t, admin.ID)
	locationB := env.seedLocation(t, admin.ID)
	product := env.seedProduct(t, locationA.ID, 10)

	customer := &model.Customer{LocationID: locationB.ID, Name: "Elsewhere Buyer"}
	if err := env.customerRepo.Create(context.Background(), customer); err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}

	_, err := env.sale.CreateOrder(context.Background(), admin, locationA.ID.String(), CreateSaleOrderRequest{
		CustomerID: customer.ID.String(),
		Items: []SaleOrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 1, SalePrice: "1.00"},
		},
	})
	if apperr.CategoryOf(err) != apperr.CategoryNotFound {
		t.Fatalf("order with foreign customer = %v, want NOT_FOUND", err)
	}
	if got := env.reloadProduct(t, product.ID).Quantity; got != 10 {
		t.Errorf("product quantity = %d, want untouched 10", got)
	}
}
