package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	ws "lynnops/internal/websocket"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RecordTransactionRequest struct {
	ProductID  string   `json:"product_id" binding:"required"`
	Type       string   `json:"type" binding:"required,oneof=IMPORT EXPORT"`
	Quantity   int64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice  string   `json:"unit_price"` // Decimal string
	SupplierID string   `json:"supplier_id"`
	Notes      string   `json:"notes"`
	ImageURLs  []string `json:"image_urls"`
	FileURLs   []string `json:"file_urls"`
}

type TransactionResponse struct {
	ID         string   `json:"id"`
	LocationID string   `json:"location_id"`
	ProductID  string   `json:"product_id"`
	Type       string   `json:"type"`
	Quantity   int64    `json:"quantity"`
	UnitPrice  string   `json:"unit_price"`
	TotalPrice string   `json:"total_price"`
	SupplierID *string  `json:"supplier_id"`
	Notes      string   `json:"notes"`
	ImageURLs  []string `json:"image_urls"`
	FileURLs   []string `json:"file_urls"`
	StockAfter int64    `json:"stock_after"`
	CreatedBy  string   `json:"created_by"`
	CreatedAt  string   `json:"created_at"`
}

// LedgerService is the append-only stock movement log. Recording a movement
// and adjusting the product's quantity happen in one database transaction:
// a ledger row without its quantity change (or the reverse) must never exist.
type LedgerService interface {
	RecordTransaction(ctx context.Context, actor model.Actor, locationID string, req RecordTransactionRequest) (TransactionResponse, error)
	ListTransactions(ctx context.Context, actor model.Actor, locationID string, page, limit int, txType, productID string) ([]TransactionResponse, int64, error)
}

type ledgerService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	access      AccessService
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewLedgerService(
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	access AccessService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) LedgerService {
	return &ledgerService{
		txRepo:      txRepo,
		productRepo: productRepo,
		auditRepo:   auditRepo,
		access:      access,
		txManager:   txManager,
		hub:         hub,
	}
}

func mapTransaction(t *model.InventoryTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:         t.ID.String(),
		LocationID: t.LocationID.String(),
		ProductID:  t.ProductID.String(),
		Type:       t.Type,
		Quantity:   t.Quantity,
		UnitPrice:  t.UnitPrice.String(),
		TotalPrice: t.TotalPrice.String(),
		Notes:      t.Notes,
		ImageURLs:  t.ImageURLs,
		FileURLs:   t.FileURLs,
		StockAfter: t.StockAfter,
		CreatedBy:  t.CreatedBy.String(),
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.SupplierID != nil {
		id := t.SupplierID.String()
		res.SupplierID = &id
	}
	if res.ImageURLs == nil {
		res.ImageURLs = []string{}
	}
	if res.FileURLs == nil {
		res.FileURLs = []string{}
	}
	return res
}

func (s *ledgerService) RecordTransaction(ctx context.Context, actor model.Actor, locationID string, req RecordTransactionRequest) (TransactionResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return TransactionResponse{}, apperr.Validation("invalid location id")
	}

	// The required capability follows the movement direction.
	capability := model.CapImportStock
	if req.Type == model.TxTypeExport {
		capability = model.CapExportStock
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, capability); err != nil {
		return TransactionResponse{}, err
	}

	// Exports always need an explanation on record.
	if req.Type == model.TxTypeExport && req.Notes == "" {
		return TransactionResponse{}, apperr.Validation("export transactions require notes")
	}

	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return TransactionResponse{}, apperr.Validation("invalid product id")
	}

	unitPrice, err := parseDecimalField(req.UnitPrice, "unit_price")
	if err != nil {
		return TransactionResponse{}, err
	}
	supplierID, err := parseOptionalUUID(req.SupplierID, "supplier_id")
	if err != nil {
		return TransactionResponse{}, err
	}

	var entry model.InventoryTransaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock the product row so the sufficiency check and the quantity
		// write cannot interleave with a concurrent movement.
		product, err := s.productRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if product.LocationID != lid {
			return apperr.NotFound("product not found")
		}

		var stockAfter int64
		switch req.Type {
		case model.TxTypeImport:
			stockAfter = product.Quantity + req.Quantity
		case model.TxTypeExport:
			if product.Quantity < req.Quantity {
				return apperr.InsufficientStockf(
					"insufficient stock for %s: have %d, requested %d",
					product.Name, product.Quantity, req.Quantity,
				)
			}
			stockAfter = product.Quantity - req.Quantity
		default:
			return apperr.Validationf("invalid transaction type: %s", req.Type)
		}

		entry = model.InventoryTransaction{
			LocationID: lid,
			ProductID:  pid,
			Type:       req.Type,
			Quantity:   req.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice.Mul(decimal.NewFromInt(req.Quantity)),
			SupplierID: supplierID,
			Notes:      req.Notes,
			ImageURLs:  req.ImageURLs,
			FileURLs:   req.FileURLs,
			StockAfter: stockAfter,
			CreatedBy:  actor.ID,
		}
		if err := s.txRepo.Create(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		if err := s.productRepo.UpdateQuantity(txCtx, pid, stockAfter); err != nil {
			return fmt.Errorf("failed to update product quantity: %w", err)
		}

		actorID := actor.ID
		action := model.ActionRecordImport
		if req.Type == model.TxTypeExport {
			action = model.ActionRecordExport
		}
		details, _ := json.Marshal(map[string]interface{}{
			"product_id":  pid.String(),
			"type":        req.Type,
			"quantity":    req.Quantity,
			"stock_after": stockAfter,
		})
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     action,
			EntityID:   entry.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastStockEvent(ws.StockEvent{
			Event:      "stock.updated",
			LocationID: lid.String(),
			ProductID:  pid.String(),
			Quantity:   entry.StockAfter,
		})
	}

	return mapTransaction(&entry), nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, actor model.Actor, locationID string, page, limit int, txType, productID string) ([]TransactionResponse, int64, error) {
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

	var pid *uuid.UUID
	if productID != "" {
		parsed, err := uuid.Parse(productID)
		if err != nil {
			return nil, 0, apperr.Validation("invalid product id")
		}
		pid = &parsed
	}

	txs, total, err := s.txRepo.List(ctx, lid, page, limit, txType, pid)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	res := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		res = append(res, mapTransaction(&txs[i]))
	}
	return res, total, nil
}
