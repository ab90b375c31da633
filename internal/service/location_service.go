package service

import (
	"context"
	"errors"
	"fmt"

	"lynnops/internal/model"
	"lynnops/internal/repository"
	"lynnops/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateLocationRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=WAREHOUSE HOTEL STORE"`
	Currency string `json:"currency"`
	Address  string `json:"address"`
	AdminID  string `json:"admin_id"` // Superadmin only; admins always own what they create
}

type UpdateLocationRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type" binding:"omitempty,oneof=WAREHOUSE HOTEL STORE"`
	Currency string `json:"currency"`
	Address  string `json:"address"`
}

type LocationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Address  string `json:"address"`
	AdminID  string `json:"admin_id"`
}

type LocationService interface {
	ListLocations(ctx context.Context, actor model.Actor) ([]LocationResponse, error)
	CreateLocation(ctx context.Context, actor model.Actor, req CreateLocationRequest) (LocationResponse, error)
	UpdateLocation(ctx context.Context, actor model.Actor, id string, req UpdateLocationRequest) (LocationResponse, error)
	DeleteLocation(ctx context.Context, actor model.Actor, id string) error
}

type locationService struct {
	locationRepo repository.LocationRepository
	grantRepo    repository.GrantRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewLocationService(
	locationRepo repository.LocationRepository,
	grantRepo repository.GrantRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		grantRepo:    grantRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func mapLocation(l *model.Location) LocationResponse {
	return LocationResponse{
		ID:       l.ID.String(),
		Name:     l.Name,
		Type:     l.Type,
		Currency: l.Currency,
		Address:  l.Address,
		AdminID:  l.AdminID.String(),
	}
}

// ListLocations returns what the actor can see: superadmins everything,
// admins their own locations, users the locations they hold grants on.
func (s *locationService) ListLocations(ctx context.Context, actor model.Actor) ([]LocationResponse, error) {
	var locations []model.Location
	var err error

	switch actor.Role {
	case model.RoleSuperadmin:
		locations, err = s.locationRepo.ListAll(ctx)
	case model.RoleAdmin:
		locations, err = s.locationRepo.ListByAdmin(ctx, actor.ID)
	case model.RoleUser:
		grants, gerr := s.grantRepo.ListByUser(ctx, actor.ID)
		if gerr != nil {
			return nil, fmt.Errorf("failed to list grants: %w", gerr)
		}
		ids := make([]uuid.UUID, 0, len(grants))
		for _, g := range grants {
			ids = append(ids, g.LocationID)
		}
		locations, err = s.locationRepo.ListByIDs(ctx, ids)
	default:
		return nil, apperr.Forbidden("unknown role")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	res := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		res = append(res, mapLocation(&locations[i]))
	}
	return res, nil
}

func (s *locationService) CreateLocation(ctx context.Context, actor model.Actor, req CreateLocationRequest) (LocationResponse, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleSuperadmin {
		return LocationResponse{}, apperr.Forbidden("only admins can create locations")
	}

	adminID := actor.ID
	if req.AdminID != "" {
		if actor.Role != model.RoleSuperadmin {
			return LocationResponse{}, apperr.Forbidden("only superadmins can assign an owner")
		}
		parsed, err := uuid.Parse(req.AdminID)
		if err != nil {
			return LocationResponse{}, apperr.Validation("invalid admin id")
		}
		owner, err := s.userRepo.FindByID(ctx, parsed)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LocationResponse{}, apperr.NotFound("admin user not found")
			}
			return LocationResponse{}, fmt.Errorf("failed to load admin user: %w", err)
		}
		if owner.Role != model.RoleAdmin {
			return LocationResponse{}, apperr.Validation("location owner must have the admin role")
		}
		adminID = parsed
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	location := model.Location{
		Name:     req.Name,
		Type:     req.Type,
		Currency: currency,
		Address:  req.Address,
		AdminID:  adminID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.locationRepo.Create(txCtx, &location); err != nil {
			return fmt.Errorf("failed to create location: %w", err)
		}

		actorID := actor.ID
		lid := location.ID
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionCreateLocation,
			EntityID:   location.ID.String(),
			EntityName: location.Name,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return LocationResponse{}, err
	}

	return mapLocation(&location), nil
}

func (s *locationService) loadOwnedLocation(ctx context.Context, actor model.Actor, id string) (*model.Location, error) {
	lid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid location id")
	}
	location, err := s.locationRepo.FindByID(ctx, lid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("location not found")
		}
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	switch actor.Role {
	case model.RoleSuperadmin:
		return location, nil
	case model.RoleAdmin:
		if location.AdminID != actor.ID {
			return nil, apperr.Forbidden("you do not manage this location")
		}
		return location, nil
	default:
		return nil, apperr.Forbidden("only admins can manage locations")
	}
}

func (s *locationService) UpdateLocation(ctx context.Context, actor model.Actor, id string, req UpdateLocationRequest) (LocationResponse, error) {
	location, err := s.loadOwnedLocation(ctx, actor, id)
	if err != nil {
		return LocationResponse{}, err
	}

	// AdminID deliberately has no update path: ownership never transfers.
	if req.Name != "" {
		location.Name = req.Name
	}
	if req.Type != "" {
		location.Type = req.Type
	}
	if req.Currency != "" {
		location.Currency = req.Currency
	}
	if req.Address != "" {
		location.Address = req.Address
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return LocationResponse{}, fmt.Errorf("failed to update location: %w", err)
	}
	return mapLocation(location), nil
}

func (s *locationService) DeleteLocation(ctx context.Context, actor model.Actor, id string) error {
	location, err := s.loadOwnedLocation(ctx, actor, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.grantRepo.DeleteByLocation(txCtx, location.ID); err != nil {
			return fmt.Errorf("failed to remove grants: %w", err)
		}
		if err := s.locationRepo.Delete(txCtx, location.ID); err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}

		actorID := actor.ID
		lid := location.ID
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionDeleteLocation,
			EntityID:   location.ID.String(),
			EntityName: location.Name,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}
