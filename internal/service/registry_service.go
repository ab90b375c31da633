package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type SupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type GuestRequest struct {
	Name         string     `json:"name" binding:"required"`
	Phone        string     `json:"phone"`
	IDNumber     string     `json:"id_number"`
	RoomNumber   string     `json:"room_number"`
	CheckInDate  *time.Time `json:"check_in_date"`
	CheckOutDate *time.Time `json:"check_out_date"`
	Notes        string     `json:"notes"`
}

type ExpenseRequest struct {
	Name        string `json:"name" binding:"required"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	ReceiptURL  string `json:"receipt_url"`
	ExpenseDate string `json:"expense_date" binding:"required"` // YYYY-MM-DD
}

type AttachDocumentRequest struct {
	Name         string `json:"name" binding:"required"`
	FileURL      string `json:"file_url" binding:"required"`
	ResourceType string `json:"resource_type" binding:"required,oneof=image raw"`
}

// RegistryService covers the simple location-scoped registries: suppliers,
// customers, guests, expenses, and documents. No cross-entity stock
// invariant lives here; every operation is a capability-gated CRUD.
type RegistryService interface {
	ListSuppliers(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Supplier, int64, error)
	CreateSupplier(ctx context.Context, actor model.Actor, locationID string, req SupplierRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, actor model.Actor, locationID, supplierID string, req SupplierRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, actor model.Actor, locationID, supplierID string) error

	ListCustomers(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Customer, int64, error)
	CreateCustomer(ctx context.Context, actor model.Actor, locationID string, req CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, actor model.Actor, locationID, customerID string, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, actor model.Actor, locationID, customerID string) error

	ListGuests(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Guest, int64, error)
	CreateGuest(ctx context.Context, actor model.Actor, locationID string, req GuestRequest) (*model.Guest, error)
	UpdateGuest(ctx context.Context, actor model.Actor, locationID, guestID string, req GuestRequest) (*model.Guest, error)
	DeleteGuest(ctx context.Context, actor model.Actor, locationID, guestID string) error

	ListExpenses(ctx context.Context, actor model.Actor, locationID string, page, limit int, from, to string) ([]model.Expense, int64, error)
	CreateExpense(ctx context.Context, actor model.Actor, locationID string, req ExpenseRequest) (*model.Expense, error)
	DeleteExpense(ctx context.Context, actor model.Actor, locationID, expenseID string) error

	ListDocuments(ctx context.Context, actor model.Actor, locationID string, page, limit int) ([]model.LocationDocument, int64, error)
	AttachDocument(ctx context.Context, actor model.Actor, locationID string, req AttachDocumentRequest) (*model.LocationDocument, error)
	DeleteDocument(ctx context.Context, actor model.Actor, locationID, documentID string) error
}

type registryService struct {
	supplierRepo repository.SupplierRepository
	customerRepo repository.CustomerRepository
	guestRepo    repository.GuestRepository
	expenseRepo  repository.ExpenseRepository
	documentRepo repository.DocumentRepository
	auditRepo    repository.AuditRepository
	access       AccessService
	txManager    repository.TransactionManager
}

func NewRegistryService(
	supplierRepo repository.SupplierRepository,
	customerRepo repository.CustomerRepository,
	guestRepo repository.GuestRepository,
	expenseRepo repository.ExpenseRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	access AccessService,
	txManager repository.TransactionManager,
) RegistryService {
	return &registryService{
		supplierRepo: supplierRepo,
		customerRepo: customerRepo,
		guestRepo:    guestRepo,
		expenseRepo:  expenseRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		access:       access,
		txManager:    txManager,
	}
}

func (s *registryService) requireAccess(ctx context.Context, actor model.Actor, locationID string, capability model.Capability) (uuid.UUID, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, capability); err != nil {
		return uuid.Nil, err
	}
	return lid, nil
}

// --- Suppliers ---

func (s *registryService) ListSuppliers(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Supplier, int64, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, "")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.supplierRepo.List(ctx, lid, page, limit, search)
}

func (s *registryService) CreateSupplier(ctx context.Context, actor model.Actor, locationID string, req SupplierRequest) (*model.Supplier, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageSuppliers)
	if err != nil {
		return nil, err
	}
	supplier := &model.Supplier{
		LocationID:    lid,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Notes:         req.Notes,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (s *registryService) UpdateSupplier(ctx context.Context, actor model.Actor, locationID, supplierID string, req SupplierRequest) (*model.Supplier, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageSuppliers)
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(supplierID)
	if err != nil {
		return nil, apperr.Validation("invalid supplier id")
	}
	supplier, err := s.supplierRepo.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("supplier not found")
		}
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier.LocationID != lid {
		return nil, apperr.NotFound("supplier not found")
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.Notes = req.Notes

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *registryService) DeleteSupplier(ctx context.Context, actor model.Actor, locationID, supplierID string) error {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageSuppliers)
	if err != nil {
		return err
	}
	sid, err := uuid.Parse(supplierID)
	if err != nil {
		return apperr.Validation("invalid supplier id")
	}
	supplier, err := s.supplierRepo.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("supplier not found")
		}
		return fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier.LocationID != lid {
		return apperr.NotFound("supplier not found")
	}
	return s.supplierRepo.Delete(ctx, sid)
}

// --- Customers ---

func (s *registryService) ListCustomers(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Customer, int64, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, "")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.customerRepo.List(ctx, lid, page, limit, search)
}

func (s *registryService) CreateCustomer(ctx context.Context, actor model.Actor, locationID string, req CustomerRequest) (*model.Customer, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return nil, err
	}
	customer := &model.Customer{
		LocationID: lid,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Notes:      req.Notes,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *registryService) UpdateCustomer(ctx context.Context, actor model.Actor, locationID, customerID string, req CustomerRequest) (*model.Customer, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return nil, err
	}
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer id")
	}
	customer, err := s.customerRepo.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer.LocationID != lid {
		return nil, apperr.NotFound("customer not found")
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Notes = req.Notes

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *registryService) DeleteCustomer(ctx context.Context, actor model.Actor, locationID, customerID string) error {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return apperr.Validation("invalid customer id")
	}
	customer, err := s.customerRepo.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("customer not found")
		}
		return fmt.Errorf("failed to load customer: %w", err)
	}
	if customer.LocationID != lid {
		return apperr.NotFound("customer not found")
	}
	return s.customerRepo.Delete(ctx, cid)
}

// --- Guests ---

func (s *registryService) ListGuests(ctx context.Context, actor model.Actor, locationID string, page, limit int, search string) ([]model.Guest, int64, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, "")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.guestRepo.List(ctx, lid, page, limit, search)
}

func (s *registryService) CreateGuest(ctx context.Context, actor model.Actor, locationID string, req GuestRequest) (*model.Guest, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return nil, err
	}
	guest := &model.Guest{
		LocationID:   lid,
		Name:         req.Name,
		Phone:        req.Phone,
		IDNumber:     req.IDNumber,
		RoomNumber:   req.RoomNumber,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		Notes:        req.Notes,
	}
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return guest, nil
}

func (s *registryService) UpdateGuest(ctx context.Context, actor model.Actor, locationID, guestID string, req GuestRequest) (*model.Guest, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return nil, err
	}
	gid, err := uuid.Parse(guestID)
	if err != nil {
		return nil, apperr.Validation("invalid guest id")
	}
	guest, err := s.guestRepo.FindByID(ctx, gid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("guest not found")
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}
	if guest.LocationID != lid {
		return nil, apperr.NotFound("guest not found")
	}

	guest.Name = req.Name
	guest.Phone = req.Phone
	guest.IDNumber = req.IDNumber
	guest.RoomNumber = req.RoomNumber
	guest.CheckInDate = req.CheckInDate
	guest.CheckOutDate = req.CheckOutDate
	guest.Notes = req.Notes

	if err := s.guestRepo.Update(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}
	return guest, nil
}

func (s *registryService) DeleteGuest(ctx context.Context, actor model.Actor, locationID, guestID string) error {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return err
	}
	gid, err := uuid.Parse(guestID)
	if err != nil {
		return apperr.Validation("invalid guest id")
	}
	guest, err := s.guestRepo.FindByID(ctx, gid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("guest not found")
		}
		return fmt.Errorf("failed to load guest: %w", err)
	}
	if guest.LocationID != lid {
		return apperr.NotFound("guest not found")
	}
	return s.guestRepo.Delete(ctx, gid)
}

// --- Expenses ---

func (s *registryService) ListExpenses(ctx context.Context, actor model.Actor, locationID string, page, limit int, from, to string) ([]model.Expense, int64, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, "")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var fromDate, toDate *time.Time
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, 0, apperr.Validation("invalid from date, expected YYYY-MM-DD")
		}
		fromDate = &parsed
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, 0, apperr.Validation("invalid to date, expected YYYY-MM-DD")
		}
		toDate = &parsed
	}

	return s.expenseRepo.List(ctx, lid, page, limit, fromDate, toDate)
}

func (s *registryService) CreateExpense(ctx context.Context, actor model.Actor, locationID string, req ExpenseRequest) (*model.Expense, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageExpenses)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, apperr.Validationf("invalid amount: %s", req.Amount)
	}
	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return nil, apperr.Validation("invalid expense_date, expected YYYY-MM-DD")
	}

	expense := &model.Expense{
		LocationID:  lid,
		Name:        req.Name,
		Amount:      amount,
		Category:    req.Category,
		Notes:       req.Notes,
		ReceiptURL:  req.ReceiptURL,
		ExpenseDate: expenseDate,
		CreatedBy:   actor.ID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.expenseRepo.Create(txCtx, expense); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionCreateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *registryService) DeleteExpense(ctx context.Context, actor model.Actor, locationID, expenseID string) error {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageExpenses)
	if err != nil {
		return err
	}
	eid, err := uuid.Parse(expenseID)
	if err != nil {
		return apperr.Validation("invalid expense id")
	}
	expense, err := s.expenseRepo.FindByID(ctx, eid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("expense not found")
		}
		return fmt.Errorf("failed to load expense: %w", err)
	}
	if expense.LocationID != lid {
		return apperr.NotFound("expense not found")
	}
	return s.expenseRepo.Delete(ctx, eid)
}

// --- Documents ---

func (s *registryService) ListDocuments(ctx context.Context, actor model.Actor, locationID string, page, limit int) ([]model.LocationDocument, int64, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, "")
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.documentRepo.ListByLocation(ctx, lid, page, limit)
}

func (s *registryService) AttachDocument(ctx context.Context, actor model.Actor, locationID string, req AttachDocumentRequest) (*model.LocationDocument, error) {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return nil, err
	}
	if req.ResourceType != model.ResourceTypeImage && req.ResourceType != model.ResourceTypeRaw {
		return nil, apperr.Validationf("invalid resource_type: %s", req.ResourceType)
	}

	// The URL comes back from the object storage provider; stored verbatim.
	doc := &model.LocationDocument{
		LocationID:   lid,
		Name:         req.Name,
		FileURL:      req.FileURL,
		ResourceType: req.ResourceType,
		UploadedBy:   actor.ID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.documentRepo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("failed to attach document: %w", err)
		}

		actorID := actor.ID
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionAttachDocument,
			EntityID:   doc.ID.String(),
			EntityName: doc.Name,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *registryService) DeleteDocument(ctx context.Context, actor model.Actor, locationID, documentID string) error {
	lid, err := s.requireAccess(ctx, actor, locationID, model.CapManageProducts)
	if err != nil {
		return err
	}
	did, err := uuid.Parse(documentID)
	if err != nil {
		return apperr.Validation("invalid document id")
	}
	doc, err := s.documentRepo.FindByID(ctx, did)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("document not found")
		}
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.LocationID != lid {
		return apperr.NotFound("document not found")
	}
	return s.documentRepo.Delete(ctx, did)
}
