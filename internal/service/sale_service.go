package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	ws "lynnops/internal/websocket"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type SaleOrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	SalePrice string `json:"sale_price" binding:"required"` // Decimal string
}

type CreateSaleOrderRequest struct {
	CustomerID string                 `json:"customer_id"`
	Notes      string                 `json:"notes"`
	Items      []SaleOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type SaleOrderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	SalePrice   string `json:"sale_price"`
	TotalPrice  string `json:"total_price"`
}

type SaleOrderResponse struct {
	ID            string                  `json:"id"`
	LocationID    string                  `json:"location_id"`
	CustomerID    *string                 `json:"customer_id"`
	Notes         string                  `json:"notes"`
	TotalAmount   string                  `json:"total_amount"`
	Items         []SaleOrderItemResponse `json:"items"`
	CreatedBy     string                  `json:"created_by"`
	CreatedByName string                  `json:"created_by_name"`
	CreatedAt     string                  `json:"created_at"`
}

// SaleService is the sale order engine. Order creation checks stock
// sufficiency across every line before any line is committed, then commits
// the whole order or nothing; deletion is a full compensating reversal that
// restores every line's stock.
type SaleService interface {
	CreateOrder(ctx context.Context, actor model.Actor, locationID string, req CreateSaleOrderRequest) (SaleOrderResponse, error)
	DeleteOrder(ctx context.Context, actor model.Actor, locationID, orderID string) error
	GetOrder(ctx context.Context, actor model.Actor, locationID, orderID string) (SaleOrderResponse, error)
	ListOrders(ctx context.Context, actor model.Actor, locationID string, page, limit int) ([]SaleOrderResponse, int64, error)
}

type saleService struct {
	saleRepo     repository.SaleOrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	access       AccessService
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewSaleService(
	saleRepo repository.SaleOrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	access AccessService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		access:       access,
		txManager:    txManager,
		hub:          hub,
	}
}

func mapSaleOrder(o *model.SaleOrder) SaleOrderResponse {
	res := SaleOrderResponse{
		ID:            o.ID.String(),
		LocationID:    o.LocationID.String(),
		Notes:         o.Notes,
		TotalAmount:   o.TotalAmount.String(),
		CreatedBy:     o.CreatedBy.String(),
		CreatedByName: o.CreatedByName,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Items:         make([]SaleOrderItemResponse, 0, len(o.Items)),
	}
	if o.CustomerID != nil {
		id := o.CustomerID.String()
		res.CustomerID = &id
	}
	for _, item := range o.Items {
		res.Items = append(res.Items, SaleOrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			SalePrice:   item.SalePrice.String(),
			TotalPrice:  item.TotalPrice.String(),
		})
	}
	return res
}

func (s *saleService) CreateOrder(ctx context.Context, actor model.Actor, locationID string, req CreateSaleOrderRequest) (SaleOrderResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return SaleOrderResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageProducts); err != nil {
		return SaleOrderResponse{}, err
	}
	if len(req.Items) == 0 {
		return SaleOrderResponse{}, apperr.Validation("order must have at least one item")
	}

	customerID, err := parseOptionalUUID(req.CustomerID, "customer_id")
	if err != nil {
		return SaleOrderResponse{}, err
	}

	// Parse lines up front so no validation failure can happen mid-commit.
	type line struct {
		productID uuid.UUID
		quantity  int64
		salePrice decimal.Decimal
	}
	lines := make([]line, 0, len(req.Items))
	needed := make(map[uuid.UUID]int64)
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return SaleOrderResponse{}, apperr.Validationf("invalid product_id: %s", item.ProductID)
		}
		price, err := decimal.NewFromString(item.SalePrice)
		if err != nil {
			return SaleOrderResponse{}, apperr.Validationf("invalid sale_price: %s", item.SalePrice)
		}
		lines = append(lines, line{productID: pid, quantity: item.Quantity, salePrice: price})
		needed[pid] += item.Quantity
	}

	// Lock products in a deterministic order so two overlapping orders
	// cannot deadlock on each other's row locks.
	lockOrder := make([]uuid.UUID, 0, len(needed))
	for pid := range needed {
		lockOrder = append(lockOrder, pid)
	}
	sort.Slice(lockOrder, func(i, j int) bool {
		return lockOrder[i].String() < lockOrder[j].String()
	})

	var order model.SaleOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if customerID != nil {
			customer, err := s.customerRepo.FindByID(txCtx, *customerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("customer not found")
				}
				return fmt.Errorf("failed to load customer: %w", err)
			}
			if customer.LocationID != lid {
				return apperr.NotFound("customer not found")
			}
		}

		// Pre-flight pass: every product must exist at this location and
		// hold enough stock for the summed line quantities. Any failure
		// aborts before a single quantity is touched.
		products := make(map[uuid.UUID]*model.Product, len(lockOrder))
		for _, pid := range lockOrder {
			product, err := s.productRepo.FindByIDForUpdate(txCtx, pid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("product not found: %s", pid)
				}
				return fmt.Errorf("failed to load product %s: %w", pid, err)
			}
			if product.LocationID != lid {
				return apperr.NotFoundf("product not found: %s", pid)
			}
			if product.Quantity < needed[pid] {
				return apperr.InsufficientStockf(
					"insufficient stock for %s: have %d, requested %d",
					product.Name, product.Quantity, needed[pid],
				)
			}
			products[pid] = product
		}

		// Commit pass: snapshot lines, insert the order, then decrement.
		items := make([]model.SaleOrderItem, 0, len(lines))
		totalAmount := decimal.Zero
		for _, l := range lines {
			lineTotal := l.salePrice.Mul(decimal.NewFromInt(l.quantity))
			items = append(items, model.SaleOrderItem{
				ProductID:   l.productID,
				ProductName: products[l.productID].Name,
				Quantity:    l.quantity,
				SalePrice:   l.salePrice,
				TotalPrice:  lineTotal,
			})
			totalAmount = totalAmount.Add(lineTotal)
		}

		order = model.SaleOrder{
			LocationID:    lid,
			CustomerID:    customerID,
			Notes:         req.Notes,
			TotalAmount:   totalAmount,
			Items:         items,
			CreatedBy:     actor.ID,
			CreatedByName: actor.Name,
		}
		if err := s.saleRepo.Create(txCtx, &order); err != nil {
			return fmt.Errorf("failed to create sale order: %w", err)
		}

		for _, pid := range lockOrder {
			if err := s.productRepo.AdjustQuantity(txCtx, pid, -needed[pid]); err != nil {
				return fmt.Errorf("failed to decrement stock for %s: %w", pid, err)
			}
		}

		actorID := actor.ID
		details, _ := json.Marshal(map[string]interface{}{
			"total_amount": totalAmount.String(),
			"item_count":   len(items),
		})
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionCreateSaleOrder,
			EntityID:   order.ID.String(),
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaleOrderResponse{}, err
	}

	s.broadcastStockChanges(ctx, lid, lockOrder)

	return mapSaleOrder(&order), nil
}

func (s *saleService) DeleteOrder(ctx context.Context, actor model.Actor, locationID, orderID string) error {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageProducts); err != nil {
		return err
	}

	oid, err := uuid.Parse(orderID)
	if err != nil {
		return apperr.Validation("invalid order id")
	}

	var touched []uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.saleRepo.FindByIDWithItems(txCtx, oid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("sale order not found")
			}
			return fmt.Errorf("failed to load sale order: %w", err)
		}
		if order.LocationID != lid {
			return apperr.NotFound("sale order not found")
		}

		// Compensating reversal: restore every line's stock, then drop the
		// order. The product-delete guard means restock targets normally
		// still exist; a missing one aborts the whole deletion untouched.
		restock := make(map[uuid.UUID]int64)
		for _, item := range order.Items {
			restock[item.ProductID] += item.Quantity
		}
		ids := make([]uuid.UUID, 0, len(restock))
		for pid := range restock {
			ids = append(ids, pid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		for _, pid := range ids {
			if _, err := s.productRepo.FindByIDForUpdate(txCtx, pid); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Conflict(fmt.Sprintf("cannot restock: product %s no longer exists", pid))
				}
				return fmt.Errorf("failed to load product %s: %w", pid, err)
			}
			if err := s.productRepo.AdjustQuantity(txCtx, pid, restock[pid]); err != nil {
				return fmt.Errorf("failed to restock product %s: %w", pid, err)
			}
		}

		if err := s.saleRepo.Delete(txCtx, oid); err != nil {
			return fmt.Errorf("failed to delete sale order: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(map[string]interface{}{
			"total_amount": order.TotalAmount.String(),
			"item_count":   len(order.Items),
		})
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionDeleteSaleOrder,
			EntityID:   oid.String(),
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		touched = ids
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcastStockChanges(ctx, lid, touched)
	return nil
}

func (s *saleService) GetOrder(ctx context.Context, actor model.Actor, locationID, orderID string) (SaleOrderResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return SaleOrderResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, ""); err != nil {
		return SaleOrderResponse{}, err
	}

	oid, err := uuid.Parse(orderID)
	if err != nil {
		return SaleOrderResponse{}, apperr.Validation("invalid order id")
	}
	order, err := s.saleRepo.FindByIDWithItems(ctx, oid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SaleOrderResponse{}, apperr.NotFound("sale order not found")
		}
		return SaleOrderResponse{}, fmt.Errorf("failed to load sale order: %w", err)
	}
	if order.LocationID != lid {
		return SaleOrderResponse{}, apperr.NotFound("sale order not found")
	}
	return mapSaleOrder(order), nil
}

func (s *saleService) ListOrders(ctx context.Context, actor model.Actor, locationID string, page, limit int) ([]SaleOrderResponse, int64, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return nil, 0, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, ""); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	orders, total, err := s.saleRepo.List(ctx, lid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sale orders: %w", err)
	}

	res := make([]SaleOrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, mapSaleOrder(&orders[i]))
	}
	return res, total, nil
}

// broadcastStockChanges reloads the touched products and pushes their new
// quantities to websocket clients. Runs after commit; failures only log.
func (s *saleService) broadcastStockChanges(ctx context.Context, locationID uuid.UUID, productIDs []uuid.UUID) {
	if s.hub == nil {
		return
	}
	for _, pid := range productIDs {
		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			continue
		}
		s.hub.BroadcastStockEvent(ws.StockEvent{
			Event:      "stock.updated",
			LocationID: locationID.String(),
			ProductID:  pid.String(),
			Quantity:   product.Quantity,
		})
	}
}
