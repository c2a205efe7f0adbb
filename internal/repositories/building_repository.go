package repositories

import (
	"context"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type BuildingRepository struct {
	db *gorm.DB
}

func NewBuildingRepository(db *gorm.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

func (r *BuildingRepository) ListBuildings(ctx context.Context, villageID uint) ([]models.Building, error) {
	var buildings []models.Building
	err := r.db.WithContext(ctx).
		Where("village_id = ?", villageID).
		Find(&buildings).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list buildings")
	}
	return buildings, nil
}

func (r *BuildingRepository) GetBuilding(ctx context.Context, villageID uint, buildingType string) (*models.Building, error) {
	var building models.Building
	err := r.db.WithContext(ctx).
		Where("village_id = ? AND type = ?", villageID, buildingType).
		First(&building).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "building not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get building")
	}
	return &building, nil
}
