package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	Name       string `json:"name" binding:"required"`
	Unit       string `json:"unit" binding:"required"`
	SKU        string `json:"sku"`
	Price      string `json:"price"`      // Decimal string
	SalePrice  string `json:"sale_price"` // Decimal string
	CategoryID string `json:"category_id"`
	SupplierID string `json:"supplier_id"`
	ImageURL   string `json:"image_url"`
}

// UpdateProductRequest carries partial updates. Quantity, when present, is
// the deliberate direct-override escape hatch for admin corrections: it
// bypasses the ledger and carries no sufficiency check.
type UpdateProductRequest struct {
	Name       *string `json:"name"`
	Unit       *string `json:"unit"`
	SKU        *string `json:"sku"`
	Price      *string `json:"price"`
	SalePrice  *string `json:"sale_price"`
	CategoryID *string `json:"category_id"`
	SupplierID *string `json:"supplier_id"`
	ImageURL   *string `json:"image_url"`
	Quantity   *int64  `json:"quantity"`
}

type ProductResponse struct {
	ID         string  `json:"id"`
	LocationID string  `json:"location_id"`
	CategoryID *string `json:"category_id"`
	SupplierID *string `json:"supplier_id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Unit       string  `json:"unit"`
	Price      string  `json:"price"`
	SalePrice  string  `json:"sale_price"`
	Quantity   int64   `json:"quantity"`
	Status     string  `json:"status"`
	ImageURL   string  `json:"image_url"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CategoryResponse struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
}

type ProductService interface {
	ListProducts(ctx context.Context, actor model.Actor, locationID string, page, limit int, search, status string) ([]ProductResponse, int64, error)
	CreateProduct(ctx context.Context, actor model.Actor, locationID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, actor model.Actor, locationID, productID string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, actor model.Actor, locationID, productID string) error
	ToggleProductStatus(ctx context.Context, actor model.Actor, locationID, productID string) (ProductResponse, error)

	ListCategories(ctx context.Context, actor model.Actor, locationID string) ([]CategoryResponse, error)
	CreateCategory(ctx context.Context, actor model.Actor, locationID string, req CategoryRequest) (CategoryResponse, error)
	UpdateCategory(ctx context.Context, actor model.Actor, locationID, categoryID string, req CategoryRequest) (CategoryResponse, error)
	DeleteCategory(ctx context.Context, actor model.Actor, locationID, categoryID string) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	txRepo       repository.TransactionRepository
	saleRepo     repository.SaleOrderRepository
	auditRepo    repository.AuditRepository
	access       AccessService
	txManager    repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	txRepo repository.TransactionRepository,
	saleRepo repository.SaleOrderRepository,
	auditRepo repository.AuditRepository,
	access AccessService,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		saleRepo:     saleRepo,
		auditRepo:    auditRepo,
		access:       access,
		txManager:    txManager,
	}
}

func mapProduct(p *model.Product) ProductResponse {
	res := ProductResponse{
		ID:         p.ID.String(),
		LocationID: p.LocationID.String(),
		Name:       p.Name,
		SKU:        p.SKU,
		Unit:       p.Unit,
		Price:      p.Price.String(),
		SalePrice:  p.SalePrice.String(),
		Quantity:   p.Quantity,
		Status:     p.Status,
		ImageURL:   p.ImageURL,
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		res.CategoryID = &id
	}
	if p.SupplierID != nil {
		id := p.SupplierID.String()
		res.SupplierID = &id
	}
	return res
}

func parseDecimalField(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Validationf("invalid %s: %s", field, value)
	}
	return d, nil
}

func parseOptionalUUID(value, field string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperr.Validationf("invalid %s: %s", field, value)
	}
	return &id, nil
}

func (s *productService) ListProducts(ctx context.Context, actor model.Actor, locationID string, page, limit int, search, status string) ([]ProductResponse, int64, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return nil, 0, apperr.Validation("invalid location id")
	}
	// Listing requires mere view access, not a specific capability.
	if err := s.access.RequireLocationAccess(ctx, actor, lid, ""); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, lid, page, limit, search, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, mapProduct(&products[i]))
	}
	return res, total, nil
}

func (s *productService) CreateProduct(ctx context.Context, actor model.Actor, locationID string, req CreateProductRequest) (ProductResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return ProductResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageProducts); err != nil {
		return ProductResponse{}, err
	}

	price, err := parseDecimalField(req.Price, "price")
	if err != nil {
		return ProductResponse{}, err
	}
	salePrice, err := parseDecimalField(req.SalePrice, "sale_price")
	if err != nil {
		return ProductResponse{}, err
	}
	categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return ProductResponse{}, err
	}
	supplierID, err := parseOptionalUUID(req.SupplierID, "supplier_id")
	if err != nil {
		return ProductResponse{}, err
	}

	// New products always start at zero stock; the ledger brings stock in.
	product := model.Product{
		LocationID: lid,
		CategoryID: categoryID,
		SupplierID: supplierID,
		Name:       req.Name,
		SKU:        req.SKU,
		Unit:       req.Unit,
		Price:      price,
		SalePrice:  salePrice,
		Quantity:   0,
		Status:     model.ProductStatusAvailable,
		ImageURL:   req.ImageURL,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return mapProduct(&product), nil
}

// lockLocationProduct fetches the product under a row lock and verifies it
// belongs to the claimed location, reporting NotFound otherwise so
// cross-location probing cannot tell "wrong location" from "no such product".
// Must be called inside a transaction; the lock is held until commit, which
// keeps updates here serialized with ledger movements and sale orders on the
// same row.
func (s *productService) lockLocationProduct(txCtx context.Context, locationID uuid.UUID, productID string) (*model.Product, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, apperr.Validation("invalid product id")
	}
	product, err := s.productRepo.FindByIDForUpdate(txCtx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.LocationID != locationID {
		return nil, apperr.NotFound("product not found")
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor model.Actor, locationID, productID string, req UpdateProductRequest) (ProductResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return ProductResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageProducts); err != nil {
		return ProductResponse{}, err
	}

	if req.Name != nil && *req.Name == "" {
		return ProductResponse{}, apperr.Validation("name cannot be empty")
	}
	if req.Unit != nil && *req.Unit == "" {
		return ProductResponse{}, apperr.Validation("unit cannot be empty")
	}
	var price, salePrice decimal.Decimal
	if req.Price != nil {
		if price, err = parseDecimalField(*req.Price, "price"); err != nil {
			return ProductResponse{}, err
		}
	}
	if req.SalePrice != nil {
		if salePrice, err = parseDecimalField(*req.SalePrice, "sale_price"); err != nil {
			return ProductResponse{}, err
		}
	}
	var categoryID, supplierID *uuid.UUID
	if req.CategoryID != nil {
		if categoryID, err = parseOptionalUUID(*req.CategoryID, "category_id"); err != nil {
			return ProductResponse{}, err
		}
	}
	if req.SupplierID != nil {
		if supplierID, err = parseOptionalUUID(*req.SupplierID, "supplier_id"); err != nil {
			return ProductResponse{}, err
		}
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Load under lock so the write cannot race a ledger movement or a
		// sale order committing between read and save.
		product, err = s.lockLocationProduct(txCtx, lid, productID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Unit != nil {
			product.Unit = *req.Unit
		}
		if req.SKU != nil {
			product.SKU = *req.SKU
		}
		if req.Price != nil {
			product.Price = price
		}
		if req.SalePrice != nil {
			product.SalePrice = salePrice
		}
		if req.CategoryID != nil {
			product.CategoryID = categoryID
		}
		if req.SupplierID != nil {
			product.SupplierID = supplierID
		}
		if req.ImageURL != nil {
			product.ImageURL = *req.ImageURL
		}
		if req.Quantity != nil {
			// Direct override: no sufficiency check, negative values allowed.
			product.Quantity = *req.Quantity
		}

		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return mapProduct(product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, actor model.Actor, locationID, productID string) error {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleSuperadmin {
		return apperr.Forbidden("only admins can delete products")
	}
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, ""); err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.lockLocationProduct(txCtx, lid, productID)
		if err != nil {
			return err
		}

		// Hard delete is refused while history references the product; this
		// also guarantees sale-order deletion always has a restock target.
		// The counts run under the row lock so no movement can slip in
		// between the check and the delete.
		txCount, err := s.txRepo.CountByProduct(txCtx, product.ID)
		if err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		itemCount, err := s.saleRepo.CountItemsByProduct(txCtx, product.ID)
		if err != nil {
			return fmt.Errorf("failed to count sale items: %w", err)
		}
		if txCount > 0 || itemCount > 0 {
			return apperr.Conflict("product has transaction or order history; deactivate it instead")
		}

		if err := s.productRepo.Delete(txCtx, product.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		actorID := actor.ID
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionDeleteProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *productService) ToggleProductStatus(ctx context.Context, actor model.Actor, locationID, productID string) (ProductResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return ProductResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageProducts); err != nil {
		return ProductResponse{}, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.lockLocationProduct(txCtx, lid, productID)
		if err != nil {
			return err
		}

		if product.Status == model.ProductStatusAvailable {
			product.Status = model.ProductStatusInactive
		} else {
			product.Status = model.ProductStatusAvailable
		}

		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product status: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(map[string]string{"status": product.Status})
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionToggleProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return mapProduct(product), nil
}

// --- Categories ---

func mapCategory(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:         c.ID.String(),
		LocationID: c.LocationID.String(),
		Name:       c.Name,
	}
}

func (s *productService) ListCategories(ctx context.Context, actor model.Actor, locationID string) ([]CategoryResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return nil, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, ""); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListByLocation(ctx, lid)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	res := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, mapCategory(&categories[i]))
	}
	return res, nil
}

func (s *productService) CreateCategory(ctx context.Context, actor model.Actor, locationID string, req CategoryRequest) (CategoryResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return CategoryResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageCategories); err != nil {
		return CategoryResponse{}, err
	}

	category := model.Category{LocationID: lid, Name: req.Name}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}
	return mapCategory(&category), nil
}

func (s *productService) UpdateCategory(ctx context.Context, actor model.Actor, locationID, categoryID string, req CategoryRequest) (CategoryResponse, error) {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return CategoryResponse{}, apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageCategories); err != nil {
		return CategoryResponse{}, err
	}

	cid, err := uuid.Parse(categoryID)
	if err != nil {
		return CategoryResponse{}, apperr.Validation("invalid category id")
	}
	category, err := s.categoryRepo.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, apperr.NotFound("category not found")
		}
		return CategoryResponse{}, fmt.Errorf("failed to load category: %w", err)
	}
	if category.LocationID != lid {
		return CategoryResponse{}, apperr.NotFound("category not found")
	}

	category.Name = req.Name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to update category: %w", err)
	}
	return mapCategory(category), nil
}

func (s *productService) DeleteCategory(ctx context.Context, actor model.Actor, locationID, categoryID string) error {
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return apperr.Validation("invalid location id")
	}
	if err := s.access.RequireLocationAccess(ctx, actor, lid, model.CapManageCategories); err != nil {
		return err
	}

	cid, err := uuid.Parse(categoryID)
	if err != nil {
		return apperr.Validation("invalid category id")
	}
	category, err := s.categoryRepo.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("category not found")
		}
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category.LocationID != lid {
		return apperr.NotFound("category not found")
	}

	return s.categoryRepo.Delete(ctx, cid)
}
