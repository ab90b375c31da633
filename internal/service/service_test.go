package service

import (
	"context"
	"testing"

	"lynnops/internal/database"
	"lynnops/internal/model"
	"lynnops/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the real repositories and services against an in-memory
// sqlite database so service behavior is tested through the same transaction
// manager the production wiring uses.
type testEnv struct {
	db *gorm.DB

	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	grantRepo    repository.GrantRepository
	productRepo  repository.ProductRepository
	txRepo       repository.TransactionRepository
	saleRepo     repository.SaleOrderRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository

	auth     AuthService
	access   AccessService
	location LocationService
	product  ProductService
	ledger   LedgerService
	sale     SaleService
	registry RegistryService
	report   ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A unique shared-cache DSN per test keeps tests isolated while letting
	// gorm's pooled connections see the same in-memory database.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	saleRepo := repository.NewSaleOrderRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	access := NewAccessService(grantRepo, locationRepo, userRepo, auditRepo, txManager)

	return &testEnv{
		db:           db,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		grantRepo:    grantRepo,
		productRepo:  productRepo,
		txRepo:       txRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		auth:         NewAuthService(userRepo, []byte("test_secret")),
		access:       access,
		location:     NewLocationService(locationRepo, grantRepo, userRepo, auditRepo, txManager),
		product:      NewProductService(productRepo, categoryRepo, txRepo, saleRepo, auditRepo, access, txManager),
		ledger:       NewLedgerService(txRepo, productRepo, auditRepo, access, txManager, nil),
		sale:         NewSaleService(saleRepo, productRepo, customerRepo, auditRepo, access, txManager, nil),
		registry:     NewRegistryService(supplierRepo, customerRepo, guestRepo, expenseRepo, documentRepo, auditRepo, access, txManager),
		report:       NewReportService(reportRepo, expenseRepo, access),
	}
}

func (e *testEnv) seedUser(t *testing.T, role string) (model.Actor, *model.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	suffix := uuid.NewString()[:8]
	user := &model.User{
		Username: role + "_" + suffix,
		Email:    role + "_" + suffix + "@example.com",
		Name:     "Test " + role,
		Password: string(hash),
		Role:     role,
	}
	if err := e.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return model.Actor{ID: user.ID, Role: user.Role, Name: user.Name}, user
}

func (e *testEnv) seedLocation(t *testing.T, adminID uuid.UUID) *model.Location {
	t.Helper()

	location := &model.Location{
		Name:     "Warehouse " + uuid.NewString()[:8],
		Type:     model.LocationTypeWarehouse,
		Currency: "USD",
		AdminID:  adminID,
	}
	if err := e.locationRepo.Create(context.Background(), location); err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	return location
}

func (e *testEnv) seedProduct(t *testing.T, locationID uuid.UUID, quantity int64) *model.Product {
	t.Helper()

	product := &model.Product{
		LocationID: locationID,
		Name:       "Product " + uuid.NewString()[:8],
		Unit:       "pcs",
		Quantity:   quantity,
		Status:     model.ProductStatusAvailable,
	}
	if err := e.productRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func (e *testEnv) seedGrant(t *testing.T, userID, locationID uuid.UUID, caps ...model.Capability) {
	t.Helper()

	grant := &model.LocationAccessGrant{
		UserID:      userID,
		LocationID:  locationID,
		Permissions: model.CapabilityList(caps),
	}
	if err := e.grantRepo.Replace(context.Background(), grant); err != nil {
		t.Fatalf("failed to seed grant: %v", err)
	}
}

func (e *testEnv) reloadProduct(t *testing.T, id uuid.UUID) *model.Product {
	t.Helper()

	product, err := e.productRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	return product
}
