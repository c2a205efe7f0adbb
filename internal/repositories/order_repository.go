package repositories

import (
	"context"
	"time"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// debitVillage deducts cost inside tx, guarded by the balance predicates
// in the WHERE clause so a concurrent spend cannot double-debit.
func debitVillage(tx *gorm.DB, villageID uint, cost models.Resources) error {
	result := tx.Model(&models.Village{}).
		Where("id = ? AND wood >= ? AND clay >= ? AND iron >= ? AND food >= ?",
			villageID, cost.Wood, cost.Clay, cost.Iron, cost.Food).
		Updates(map[string]interface{}{
			"wood": gorm.Expr("wood - ?", cost.Wood),
			"clay": gorm.Expr("clay - ?", cost.Clay),
			"iron": gorm.Expr("iron - ?", cost.Iron),
			"food": gorm.Expr("food - ?", cost.Food),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to debit resources")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeInsufficientResources, "balance no longer covers the cost")
	}
	return nil
}

// DebitAndEnqueueConstruction commits the debit, the upgrading flag and
// the order as one unit: a timeout or conflict rolls all three back.
func (r *OrderRepository) DebitAndEnqueueConstruction(ctx context.Context, cost models.Resources, order *models.ConstructionOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debitVillage(tx, order.VillageID, cost); err != nil {
			return err
		}

		result := tx.Model(&models.Building{}).
			Where("id = ? AND upgrading = ?", order.BuildingID, false).
			Updates(map[string]interface{}{
				"upgrading": true,
				"finish_at": order.FinishAt,
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to mark building upgrading")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeAlreadyUpgrading, "building is already upgrading")
		}

		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to enqueue construction order")
		}
		return nil
	})
}

func (r *OrderRepository) DebitAndEnqueueTraining(ctx context.Context, cost models.Resources, order *models.TrainingOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debitVillage(tx, order.VillageID, cost); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to enqueue training order")
		}
		return nil
	})
}

func (r *OrderRepository) ScanDueConstruction(ctx context.Context, now time.Time, limit, offset int) ([]models.ConstructionOrder, error) {
	var entries []models.ConstructionOrder
	err := r.db.WithContext(ctx).
		Where("finish_at <= ?", now).
		Order("finish_at, id").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to scan construction orders")
	}
	return entries, nil
}

func (r *OrderRepository) ScanDueTraining(ctx context.Context, now time.Time, limit, offset int) ([]models.TrainingOrder, error) {
	var entries []models.TrainingOrder
	err := r.db.WithContext(ctx).
		Where("finish_at <= ?", now).
		Order("finish_at, id").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to scan training orders")
	}
	return entries, nil
}

// ApplyConstructionCompletion consumes the order and folds its effect
// into the building and village rows. The order delete doubles as the
// exactly-once guard: overlapping sweeps race on it and only the winner
// applies the level increment.
func (r *OrderRepository) ApplyConstructionCompletion(ctx context.Context, order *models.ConstructionOrder, pointsDelta int64) (bool, error) {
	applied := false
	var missingParent error

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.ConstructionOrder{}, order.ID)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to consume construction order")
		}
		if result.RowsAffected == 0 {
			// A concurrent sweep already consumed it.
			return nil
		}

		result = tx.Model(&models.Building{}).
			Where("id = ? AND upgrading = ?", order.BuildingID, true).
			Updates(map[string]interface{}{
				"level":     gorm.Expr("level + 1"),
				"upgrading": false,
				"finish_at": nil,
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to apply building level")
		}
		if result.RowsAffected == 0 {
			// Parent building vanished or was reset. Commit the delete
			// anyway so the order can never be retried.
			missingParent = errors.New(errors.ErrCodeNotFound, "building missing for construction order")
			return nil
		}

		result = tx.Model(&models.Village{}).
			Where("id = ?", order.VillageID).
			Update("points", gorm.Expr("points + ?", pointsDelta))
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to credit village points")
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if missingParent != nil {
		return false, missingParent
	}
	return applied, nil
}

// ApplyTrainingCompletion consumes the order and adds the batch to the
// troop stock, with the same delete-as-guard exactly-once discipline.
func (r *OrderRepository) ApplyTrainingCompletion(ctx context.Context, order *models.TrainingOrder) (bool, error) {
	applied := false
	var missingParent error

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.TrainingOrder{}, order.ID)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to consume training order")
		}
		if result.RowsAffected == 0 {
			return nil
		}

		result = tx.Model(&models.TroopStock{}).
			Where("village_id = ? AND type = ?", order.VillageID, order.TroopType).
			Update("amount", gorm.Expr("amount + ?", order.Amount))
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodePersistenceError, "failed to increment troop stock")
		}
		if result.RowsAffected == 0 {
			// Stock row gone. If the whole village is gone, drop the
			// order; otherwise restore the row.
			var village models.Village
			if err := tx.Select("id").First(&village, order.VillageID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					missingParent = errors.New(errors.ErrCodeNotFound, "village missing for training order")
					return nil
				}
				return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to check village")
			}
			stock := models.TroopStock{
				VillageID: order.VillageID,
				Type:      order.TroopType,
				Amount:    order.Amount,
			}
			if err := tx.Create(&stock).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to restore troop stock")
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if missingParent != nil {
		return false, missingParent
	}
	return applied, nil
}
