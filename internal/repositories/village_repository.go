package repositories

import (
	"context"
	"time"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type VillageRepository struct {
	db *gorm.DB
}

func NewVillageRepository(db *gorm.DB) *VillageRepository {
	return &VillageRepository{db: db}
}

func (r *VillageRepository) GetVillage(ctx context.Context, id uint) (*models.Village, error) {
	var village models.Village
	if err := r.db.WithContext(ctx).First(&village, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "village not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get village")
	}
	return &village, nil
}

func (r *VillageRepository) ListVillageIDs(ctx context.Context, limit, offset int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Order("id").
		Limit(limit).
		Offset(offset).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list village ids")
	}
	return ids, nil
}

func (r *VillageRepository) ListPlayerVillageIDs(ctx context.Context, playerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("player_id = ?", playerID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list player villages")
	}
	return ids, nil
}

func (r *VillageRepository) CountBarbarianVillages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("player_id IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to count barbarian villages")
	}
	return count, nil
}

// ConditionalUpdateResources is the optimistic-concurrency write behind
// reconciliation: it only lands if last_reconciled_at is untouched since
// the caller read it.
func (r *VillageRepository) ConditionalUpdateResources(ctx context.Context, id uint, expected time.Time, res models.Resources, newReconciledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("id = ? AND last_reconciled_at = ?", id, expected).
		Updates(map[string]interface{}{
			"wood":               res.Wood,
			"clay":               res.Clay,
			"iron":               res.Iron,
			"food":               res.Food,
			"last_reconciled_at": newReconciledAt,
		})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to write reconciled resources")
	}
	return result.RowsAffected > 0, nil
}

func (r *VillageRepository) CreditResources(ctx context.Context, id uint, delta models.Resources, capacity float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"wood": gorm.Expr("LEAST(wood + ?, ?)", delta.Wood, capacity),
			"clay": gorm.Expr("LEAST(clay + ?, ?)", delta.Clay, capacity),
			"iron": gorm.Expr("LEAST(iron + ?, ?)", delta.Iron, capacity),
			"food": gorm.Expr("LEAST(food + ?, ?)", delta.Food, capacity),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to credit resources")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "village not found")
	}
	return nil
}

func (r *VillageRepository) DebitLoot(ctx context.Context, id uint, loot models.Resources) error {
	result := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"wood": gorm.Expr("GREATEST(wood - ?, 0)", loot.Wood),
			"clay": gorm.Expr("GREATEST(clay - ?, 0)", loot.Clay),
			"iron": gorm.Expr("GREATEST(iron - ?, 0)", loot.Iron),
			"food": gorm.Expr("GREATEST(food - ?, 0)", loot.Food),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to debit loot")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "village not found")
	}
	return nil
}

func (r *VillageRepository) AddPoints(ctx context.Context, id uint, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to add points")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "village not found")
	}
	return nil
}

func (r *VillageRepository) CreateVillage(ctx context.Context, village *models.Village, buildings []models.Building, troops []models.TroopStock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(village).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to create village")
		}

		for i := range buildings {
			buildings[i].VillageID = village.ID
		}
		if err := tx.Create(&buildings).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to create buildings")
		}

		for i := range troops {
			troops[i].VillageID = village.ID
		}
		if err := tx.Create(&troops).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to create troop stocks")
		}

		return nil
	})
}

func (r *VillageRepository) ListCoordinates(ctx context.Context) ([][2]int, error) {
	var rows []struct {
		X int
		Y int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Village{}).
		Select("x", "y").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list coordinates")
	}

	coords := make([][2]int, len(rows))
	for i, row := range rows {
		coords[i] = [2]int{row.X, row.Y}
	}
	return coords, nil
}
