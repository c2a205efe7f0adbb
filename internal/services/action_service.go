package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
)

// PendingAction describes an enqueued timed completion.
type PendingAction struct {
	FinishAt time.Time
	Duration time.Duration
}

// ActionService validates player actions against a freshly reconciled
// balance and turns them into timed queue entries. The debit and the
// enqueue commit as one atomic unit; a failed validation never touches
// village resources.
type ActionService struct {
	accrual   *AccrualService
	buildings BuildingStore
	troops    TroopStore
	orders    OrderStore
	tuning    *game.Tuning
	now       func() time.Time
}

func NewActionService(accrual *AccrualService, buildings BuildingStore, troops TroopStore, orders OrderStore, tuning *game.Tuning) *ActionService {
	return &ActionService{
		accrual:   accrual,
		buildings: buildings,
		troops:    troops,
		orders:    orders,
		tuning:    tuning,
		now:       time.Now,
	}
}

// UpgradeBuilding enqueues a level upgrade for one building.
func (s *ActionService) UpgradeBuilding(ctx context.Context, playerID, villageID uint, buildingType string) (*PendingAction, error) {
	if !models.IsValidBuildingType(buildingType) {
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown building type: %s", buildingType))
	}

	snap, err := s.accrual.ReconcileAndGet(ctx, villageID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(snap, playerID); err != nil {
		return nil, err
	}

	building, err := s.buildings.GetBuilding(ctx, villageID, buildingType)
	if err != nil {
		return nil, err
	}
	if building.Upgrading {
		return nil, errors.New(errors.ErrCodeAlreadyUpgrading, fmt.Sprintf("%s is already upgrading", buildingType))
	}
	if building.Level >= s.tuning.MaxLevel(buildingType) {
		return nil, errors.New(errors.ErrCodeMaxLevelReached, fmt.Sprintf("%s is at max level %d", buildingType, building.Level))
	}

	targetLevel := building.Level + 1

	// Only the hall may outgrow itself; everything else is capped at the
	// hall's current level.
	if buildingType != models.BuildingHall {
		hall, err := s.buildings.GetBuilding(ctx, villageID, models.BuildingHall)
		if err != nil {
			return nil, err
		}
		if targetLevel > hall.Level {
			return nil, errors.New(errors.ErrCodePrerequisiteNotMet,
				fmt.Sprintf("hall level %d required for %s level %d", targetLevel, buildingType, targetLevel))
		}
	}

	cost, err := s.tuning.UpgradeCost(buildingType, building.Level)
	if err != nil {
		return nil, err
	}
	if !snap.Resources.Covers(cost) {
		return nil, errors.New(errors.ErrCodeInsufficientResources,
			fmt.Sprintf("upgrade of %s to level %d is unaffordable", buildingType, targetLevel))
	}

	duration, err := s.tuning.BuildDuration(buildingType, targetLevel, 1)
	if err != nil {
		return nil, err
	}
	finishAt := s.now().Add(duration)

	order := &models.ConstructionOrder{
		VillageID:    villageID,
		BuildingID:   building.ID,
		BuildingType: buildingType,
		TargetLevel:  targetLevel,
		FinishAt:     finishAt,
	}
	if err := s.orders.DebitAndEnqueueConstruction(ctx, cost, order); err != nil {
		return nil, err
	}

	return &PendingAction{FinishAt: finishAt, Duration: duration}, nil
}

// TrainTroops enqueues a troop training batch.
func (s *ActionService) TrainTroops(ctx context.Context, playerID, villageID uint, troopType string, amount int) (*PendingAction, error) {
	if !models.IsValidTroopType(troopType) {
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
	}
	if amount < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid amount: %d", amount))
	}

	snap, err := s.accrual.ReconcileAndGet(ctx, villageID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(snap, playerID); err != nil {
		return nil, err
	}

	barracks, err := s.buildings.GetBuilding(ctx, villageID, models.BuildingBarracks)
	if err != nil {
		return nil, err
	}
	if barracks.Level < 1 {
		return nil, errors.New(errors.ErrCodePrerequisiteNotMet, "barracks required to train troops")
	}

	farm, err := s.buildings.GetBuilding(ctx, villageID, models.BuildingFarm)
	if err != nil {
		return nil, err
	}
	stocks, err := s.troops.ListTroops(ctx, villageID)
	if err != nil {
		return nil, err
	}
	used, err := s.tuning.PopulationUsed(stocks)
	if err != nil {
		return nil, err
	}
	batchPop, err := s.tuning.PopulationOf(troopType, amount)
	if err != nil {
		return nil, err
	}
	if used+batchPop > s.tuning.PopulationCap(farm.Level) {
		return nil, errors.New(errors.ErrCodePopulationCapExceeded,
			fmt.Sprintf("farm level %d supports %d population, have %d, requested %d",
				farm.Level, s.tuning.PopulationCap(farm.Level), used, batchPop))
	}

	cost, err := s.tuning.TrainCost(troopType, amount)
	if err != nil {
		return nil, err
	}
	if !snap.Resources.Covers(cost) {
		return nil, errors.New(errors.ErrCodeInsufficientResources,
			fmt.Sprintf("training %d %s is unaffordable", amount, troopType))
	}

	duration, err := s.tuning.TrainDuration(troopType, amount, 1)
	if err != nil {
		return nil, err
	}
	finishAt := s.now().Add(duration)

	order := &models.TrainingOrder{
		VillageID: villageID,
		TroopType: troopType,
		Amount:    amount,
		FinishAt:  finishAt,
	}
	if err := s.orders.DebitAndEnqueueTraining(ctx, cost, order); err != nil {
		return nil, err
	}

	return &PendingAction{FinishAt: finishAt, Duration: duration}, nil
}

func requireOwner(snap *ReconciledSnapshot, playerID uint) error {
	if snap.PlayerID == nil || *snap.PlayerID != playerID {
		return errors.New(errors.ErrCodeForbidden, "village is not owned by this player")
	}
	return nil
}
