package repositories

import (
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"gorm.io/gorm"
)

type PlayerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) CreatePlayer(player *models.Player) error {
	if err := r.db.Create(player).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceError, "failed to create player")
	}
	return nil
}

func (r *PlayerRepository) GetPlayerByID(id uint) (*models.Player, error) {
	var player models.Player
	if err := r.db.First(&player, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "player not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get player")
	}
	return &player, nil
}

func (r *PlayerRepository) GetPlayerByUsername(username string) (*models.Player, error) {
	var player models.Player
	if err := r.db.Where("username = ?", username).First(&player).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrCodeNotFound, "player not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodePersistenceError, "failed to get player by username")
	}
	return &player, nil
}
