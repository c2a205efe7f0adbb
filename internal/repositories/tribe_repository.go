package repositories

import (
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type TribeRepository struct {
	db *gorm.DB
}

func NewTribeRepository(db *gorm.DB) *TribeRepository {
	return &TribeRepository{db: db}
}

func (r *TribeRepository) CreateTribe(tribe *models.Tribe, creatorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tribe).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to create tribe")
		}

		member := &models.TribeMember{
			TribeID:  tribe.ID,
			PlayerID: creatorID,
			Role:     models.TribeRoleLeader,
		}

		if err := tx.Create(member).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to add creator as leader")
		}

		return nil
	})
}

func (r *TribeRepository) GetTribeByID(id uint) (*models.Tribe, error) {
	var tribe models.Tribe
	if err := r.db.Preload("Creator").First(&tribe, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "tribe not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get tribe")
	}
	return &tribe, nil
}

func (r *TribeRepository) ListTribeIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Tribe{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to list tribe ids")
	}
	return ids, nil
}

func (r *TribeRepository) GetTribeByName(name string) (*models.Tribe, error) {
	var tribe models.Tribe
	if err := r.db.Where("name = ?", name).First(&tribe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "tribe not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get tribe by name")
	}
	return &tribe, nil
}

func (r *TribeRepository) GetPlayerTribe(playerID uint) (*models.Tribe, error) {
	var member models.TribeMember
	if err := r.db.Preload("Tribe").Where("player_id = ?", playerID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // Player not in a tribe
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get player tribe")
	}
	return &member.Tribe, nil
}

func (r *TribeRepository) AddMember(tribeID, playerID uint, role string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		member := &models.TribeMember{
			TribeID:  tribeID,
			PlayerID: playerID,
			Role:     role,
		}
		if err := tx.Create(member).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to add member")
		}

		if err := tx.Model(&models.Tribe{}).Where("id = ?", tribeID).Update("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *TribeRepository) RemoveMember(tribeID, playerID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tribe_id = ? AND player_id = ?", tribeID, playerID).Delete(&models.TribeMember{}).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to remove member")
		}

		if err := tx.Model(&models.Tribe{}).Where("id = ?", tribeID).Update("member_count", gorm.Expr("member_count - 1")).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *TribeRepository) GetTribeMembers(tribeID uint) ([]models.TribeMember, error) {
	var members []models.TribeMember
	if err := r.db.Preload("Player").Where("tribe_id = ?", tribeID).Find(&members).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get tribe members")
	}
	return members, nil
}

// SumMemberVillagePoints totals the points of every village owned by a
// tribe member.
func (r *TribeRepository) SumMemberVillagePoints(tribeID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.Village{}).
		Joins("JOIN tribe_members ON tribe_members.player_id = villages.player_id").
		Where("tribe_members.tribe_id = ?", tribeID).
		Select("COALESCE(SUM(villages.points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to sum member village points")
	}
	return total, nil
}

func (r *TribeRepository) UpdateTribePoints(tribeID uint, points int64) error {
	return r.db.Model(&models.Tribe{}).Where("id = ?", tribeID).Update("points", points).Error
}

func (r *TribeRepository) GetTribeLeaderboard(limit int) ([]models.Tribe, error) {
	var tribes []models.Tribe
	if err := r.db.Order("points DESC").Limit(limit).Find(&tribes).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get tribe leaderboard")
	}
	return tribes, nil
}

func (r *TribeRepository) GetTribeRank(tribeID uint) (int64, error) {
	var tribe models.Tribe
	if err := r.db.First(&tribe, tribeID).Error; err != nil {
		return 0, err
	}

	var rank int64
	r.db.Model(&models.Tribe{}).Where("points > ?", tribe.Points).Count(&rank)
	return rank + 1, nil
}
