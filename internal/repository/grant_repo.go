package repository

import (
	"context"

	"lynnops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantRepository persists per-(user, location) capability grants. Grants are
// keyed by location so replacing one location's set never touches the user's
// grants on other locations.
type GrantRepository interface {
	FindByUserAndLocation(ctx context.Context, userID, locationID uuid.UUID) (*model.LocationAccessGrant, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.LocationAccessGrant, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.LocationAccessGrant, error)
	Replace(ctx context.Context, grant *model.LocationAccessGrant) error
	DeleteByUserAndLocation(ctx context.Context, userID, locationID uuid.UUID) error
	DeleteByLocation(ctx context.Context, locationID uuid.UUID) error
}

type grantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) FindByUserAndLocation(ctx context.Context, userID, locationID uuid.UUID) (*model.LocationAccessGrant, error) {
	var grant model.LocationAccessGrant
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		First(&grant).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *grantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.LocationAccessGrant, error) {
	var grants []model.LocationAccessGrant
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at asc").Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *grantRepository) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.LocationAccessGrant, error) {
	var grants []model.LocationAccessGrant
	if err := GetDB(ctx, r.db).Where("location_id = ?", locationID).Order("created_at asc").Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// Replace upserts the grant row for (user, location), overwriting the whole
// capability set for that location only.
func (r *grantRepository) Replace(ctx context.Context, grant *model.LocationAccessGrant) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions", "updated_at"}),
	}).Create(grant).Error
}

func (r *grantRepository) DeleteByUserAndLocation(ctx context.Context, userID, locationID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Delete(&model.LocationAccessGrant{}).Error
}

func (r *grantRepository) DeleteByLocation(ctx context.Context, locationID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("location_id = ?", locationID).Delete(&model.LocationAccessGrant{}).Error
}
