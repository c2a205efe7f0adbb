package repositories

import (
	"context"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type TroopRepository struct {
	db *gorm.DB
}

func NewTroopRepository(db *gorm.DB) *TroopRepository {
	return &TroopRepository{db: db}
}

func (r *TroopRepository) ListTroops(ctx context.Context, villageID uint) ([]models.TroopStock, error) {
	var stocks []models.TroopStock
	err := r.db.WithContext(ctx).
		Where("village_id = ?", villageID).
		Find(&stocks).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list troops")
	}
	return stocks, nil
}
