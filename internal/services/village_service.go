package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/internal/worldmap"
	"github.com/cryptotribes/server/pkg/errors"
	"github.com/cryptotribes/server/pkg/logger"
	"github.com/cryptotribes/server/pkg/utils"
)

// Buildings present at level 1 when a village is founded; everything
// else starts at level 0.
var foundingLevels = map[string]int{
	models.BuildingHall:      1,
	models.BuildingFarm:      1,
	models.BuildingWarehouse: 1,
	models.BuildingLumber:    1,
	models.BuildingClayPit:   1,
	models.BuildingIronMine:  1,
}

// VillageService creates villages (player-owned and barbarian) at free
// unique coordinates.
type VillageService struct {
	villages VillageStore
	worldMap *worldmap.Cache
	tuning   *game.Tuning
	starting models.Resources
	now      func() time.Time
}

func NewVillageService(villages VillageStore, worldMap *worldmap.Cache, tuning *game.Tuning, starting models.Resources) *VillageService {
	return &VillageService{
		villages: villages,
		worldMap: worldMap,
		tuning:   tuning,
		starting: starting,
		now:      time.Now,
	}
}

// CreateVillage founds a village at a free coordinate. A nil playerID
// creates a barbarian village. Players get exactly one founding village.
func (s *VillageService) CreateVillage(ctx context.Context, playerID *uint, name string) (*models.Village, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "village name is required")
	}

	if playerID != nil {
		existing, err := s.villages.ListPlayerVillageIDs(ctx, *playerID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, errors.New(errors.ErrCodeAlreadyExists, "player already has a village")
		}
	}

	x, y, err := s.worldMap.AllocateFree(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	village := &models.Village{
		Name:             name,
		PlayerID:         playerID,
		X:                x,
		Y:                y,
		Resources:        s.starting.CapAt(s.tuning.StorageCapacity(foundingLevels[models.BuildingWarehouse])),
		LastReconciledAt: now,
	}

	buildings := make([]models.Building, 0, len(models.AllBuildingTypes))
	for _, bt := range models.AllBuildingTypes {
		buildings = append(buildings, models.Building{
			Type:  bt,
			Level: foundingLevels[bt],
		})
	}
	troops := make([]models.TroopStock, 0, len(models.AllTroopTypes))
	for _, tt := range models.AllTroopTypes {
		troops = append(troops, models.TroopStock{Type: tt})
	}

	if err := s.villages.CreateVillage(ctx, village, buildings, troops); err != nil {
		s.worldMap.Release(x, y)
		return nil, err
	}

	return village, nil
}

// SeedBarbarians founds barbarian villages until at least min exist.
// Returns how many were created.
func (s *VillageService) SeedBarbarians(ctx context.Context, min int) (int, error) {
	existing, err := s.villages.CountBarbarianVillages(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for int(existing)+created < min {
		name := fmt.Sprintf("Barbarian Camp %s", utils.GenerateRandomID(5))
		if _, err := s.CreateVillage(ctx, nil, name); err != nil {
			logger.Warn("barbarian seeding stopped early", "created", created, "error", err)
			return created, err
		}
		created++
	}

	return created, nil
}
