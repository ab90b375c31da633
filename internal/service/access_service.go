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
	"gorm.io/gorm"
)

// --- DTOs ---

type GrantResponse struct {
	UserID       string             `json:"user_id"`
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name,omitempty"`
	Permissions  []model.Capability `json:"permissions"`
}

type ReplaceGrantsRequest struct {
	Permissions []model.Capability `json:"permissions" binding:"required"`
}

// AccessService is the permission evaluator plus the grant store behind it.
//
// Three-tier resolution, applied before every location-scoped operation:
//   - superadmin: always allowed, no lookup.
//   - admin: allowed iff they own the location; the capability argument is
//     ignored because owners hold the full capability set.
//   - user: allowed iff a grant row exists for (user, location); with an
//     empty capability any grant (even an empty set) means view access,
//     otherwise the capability must be in the granted set.
type AccessService interface {
	HasLocationAccess(ctx context.Context, actor model.Actor, locationID uuid.UUID, capability model.Capability) (bool, error)
	RequireLocationAccess(ctx context.Context, actor model.Actor, locationID uuid.UUID, capability model.Capability) error

	GetUserGrants(ctx context.Context, actor model.Actor, userID string) ([]GrantResponse, error)
	ReplaceLocationGrants(ctx context.Context, actor model.Actor, userID, locationID string, req ReplaceGrantsRequest) (GrantResponse, error)
	RevokeLocationGrants(ctx context.Context, actor model.Actor, userID, locationID string) error
}

type accessService struct {
	grantRepo    repository.GrantRepository
	locationRepo repository.LocationRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewAccessService(
	grantRepo repository.GrantRepository,
	locationRepo repository.LocationRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) AccessService {
	return &accessService{
		grantRepo:    grantRepo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *accessService) HasLocationAccess(ctx context.Context, actor model.Actor, locationID uuid.UUID, capability model.Capability) (bool, error) {
	switch actor.Role {
	case model.RoleSuperadmin:
		return true, nil

	case model.RoleAdmin:
		location, err := s.locationRepo.FindByID(ctx, locationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load location: %w", err)
		}
		return location.AdminID == actor.ID, nil

	case model.RoleUser:
		grant, err := s.grantRepo.FindByUserAndLocation(ctx, actor.ID, locationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load access grant: %w", err)
		}
		if capability == "" {
			// Any grant row, even with an empty set, means view access.
			return true, nil
		}
		return grant.Permissions.Has(capability), nil

	default:
		return false, nil
	}
}

func (s *accessService) RequireLocationAccess(ctx context.Context, actor model.Actor, locationID uuid.UUID, capability model.Capability) error {
	ok, err := s.HasLocationAccess(ctx, actor, locationID, capability)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("you do not have access to this location")
	}
	return nil
}

// requireGrantManager verifies the acting user may manage grants on the
// location: superadmin always, admin only on locations they own.
func (s *accessService) requireGrantManager(ctx context.Context, actor model.Actor, locationID uuid.UUID) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
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
		return nil, apperr.Forbidden("only admins can manage location access")
	}
}

func (s *accessService) GetUserGrants(ctx context.Context, actor model.Actor, userID string) ([]GrantResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}

	if actor.Role != model.RoleAdmin && actor.Role != model.RoleSuperadmin {
		return nil, apperr.Forbidden("only admins can view location access")
	}

	grants, err := s.grantRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	locationIDs := make([]uuid.UUID, 0, len(grants))
	for _, g := range grants {
		locationIDs = append(locationIDs, g.LocationID)
	}
	locations, err := s.locationRepo.ListByIDs(ctx, locationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	locationByID := make(map[uuid.UUID]model.Location, len(locations))
	for _, l := range locations {
		locationByID[l.ID] = l
	}

	res := make([]GrantResponse, 0, len(grants))
	for _, g := range grants {
		location, known := locationByID[g.LocationID]
		// Admins only see grants on locations they own.
		if actor.Role == model.RoleAdmin && (!known || location.AdminID != actor.ID) {
			continue
		}
		perms := g.Permissions
		if perms == nil {
			perms = model.CapabilityList{}
		}
		res = append(res, GrantResponse{
			UserID:       g.UserID.String(),
			LocationID:   g.LocationID.String(),
			LocationName: location.Name,
			Permissions:  perms,
		})
	}
	return res, nil
}

func (s *accessService) ReplaceLocationGrants(ctx context.Context, actor model.Actor, userID, locationID string, req ReplaceGrantsRequest) (GrantResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return GrantResponse{}, apperr.Validation("invalid user id")
	}
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return GrantResponse{}, apperr.Validation("invalid location id")
	}

	for _, c := range req.Permissions {
		if !model.ValidCapability(c) {
			return GrantResponse{}, apperr.Validationf("unknown capability: %s", c)
		}
	}

	location, err := s.requireGrantManager(ctx, actor, lid)
	if err != nil {
		return GrantResponse{}, err
	}

	target, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GrantResponse{}, apperr.NotFound("user not found")
		}
		return GrantResponse{}, fmt.Errorf("failed to load user: %w", err)
	}
	if target.Role != model.RoleUser {
		return GrantResponse{}, apperr.Validation("grants only apply to user-tier accounts")
	}

	grant := &model.LocationAccessGrant{
		UserID:      uid,
		LocationID:  lid,
		Permissions: model.CapabilityList(req.Permissions),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.grantRepo.Replace(txCtx, grant); err != nil {
			return fmt.Errorf("failed to replace grants: %w", err)
		}

		actorID := actor.ID
		details, _ := json.Marshal(map[string]interface{}{
			"user_id":     uid.String(),
			"permissions": req.Permissions,
		})
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionReplaceGrants,
			EntityID:   uid.String(),
			EntityName: target.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return GrantResponse{}, err
	}

	return GrantResponse{
		UserID:       uid.String(),
		LocationID:   lid.String(),
		LocationName: location.Name,
		Permissions:  req.Permissions,
	}, nil
}

func (s *accessService) RevokeLocationGrants(ctx context.Context, actor model.Actor, userID, locationID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperr.Validation("invalid user id")
	}
	lid, err := uuid.Parse(locationID)
	if err != nil {
		return apperr.Validation("invalid location id")
	}

	if _, err := s.requireGrantManager(ctx, actor, lid); err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.grantRepo.DeleteByUserAndLocation(txCtx, uid, lid); err != nil {
			return fmt.Errorf("failed to revoke grants: %w", err)
		}

		actorID := actor.ID
		audit := &model.AuditLog{
			UserID:     &actorID,
			LocationID: &lid,
			Action:     model.ActionRevokeGrants,
			EntityID:   uid.String(),
			Details:    `{"revoked": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}
