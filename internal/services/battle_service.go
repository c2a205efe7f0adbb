package services

import (
	"context"
	"fmt"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
	"github.com/cryptotribes/server/pkg/logger"
)

// BattleReport is the outcome of one raid.
type BattleReport struct {
	Victory      bool
	AttackPower  float64
	DefensePower float64
	Loot         models.Resources
}

// BattleService resolves raids synchronously: attack power against
// defense power plus wall bonus, loot on victory. Barbarian and player
// targets share the same path; formations, casualties and terrain are an
// extension point.
type BattleService struct {
	accrual   *AccrualService
	villages  VillageStore
	buildings BuildingStore
	troops    TroopStore
	tuning    *game.Tuning
}

func NewBattleService(accrual *AccrualService, villages VillageStore, buildings BuildingStore, troops TroopStore, tuning *game.Tuning) *BattleService {
	return &BattleService{
		accrual:   accrual,
		villages:  villages,
		buildings: buildings,
		troops:    troops,
		tuning:    tuning,
	}
}

// Attack raids the defender village with a troop selection from the
// attacker village.
func (s *BattleService) Attack(ctx context.Context, playerID, attackerID, defenderID uint, troops map[string]int) (*BattleReport, error) {
	if attackerID == defenderID {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a village cannot attack itself")
	}
	total := 0
	for troopType, amount := range troops {
		if !models.IsValidTroopType(troopType) {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
		}
		if amount < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("negative troop amount: %d", amount))
		}
		total += amount
	}
	if total < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no troops selected")
	}

	attackerSnap, err := s.accrual.ReconcileAndGet(ctx, attackerID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(attackerSnap, playerID); err != nil {
		return nil, err
	}

	stocks, err := s.troops.ListTroops(ctx, attackerID)
	if err != nil {
		return nil, err
	}
	available := make(map[string]int, len(stocks))
	for _, stock := range stocks {
		available[stock.Type] = stock.Amount
	}
	for troopType, amount := range troops {
		if available[troopType] < amount {
			return nil, errors.New(errors.ErrCodePreconditionFailed,
				fmt.Sprintf("only %d %s available, %d requested", available[troopType], troopType, amount))
		}
	}

	defenderSnap, err := s.accrual.ReconcileAndGet(ctx, defenderID)
	if err != nil {
		return nil, err
	}

	defenderStocks, err := s.troops.ListTroops(ctx, defenderID)
	if err != nil {
		return nil, err
	}
	defenderBuildings, err := s.buildings.ListBuildings(ctx, defenderID)
	if err != nil {
		return nil, err
	}

	attackPower, err := s.tuning.AttackPower(troops)
	if err != nil {
		return nil, err
	}
	defensePower := s.tuning.DefensePower(defenderStocks, levelOf(defenderBuildings, models.BuildingWall))

	report := &BattleReport{
		AttackPower:  attackPower,
		DefensePower: defensePower,
		Victory:      attackPower > defensePower,
	}
	if !report.Victory {
		return report, nil
	}

	loot := game.Loot(defenderSnap.Resources, s.tuning.CarryCapacity(troops))
	if err := s.resolveLoot(ctx, attackerID, defenderID, loot, attackerSnap.Capacity); err != nil {
		return nil, err
	}
	report.Loot = loot

	return report, nil
}

// resolveLoot transfers the plunder as two independent single-village
// writes. A crash between the debit and the credit leaves at most one
// side applied; the window is documented rather than closed with a
// cross-entity transaction.
func (s *BattleService) resolveLoot(ctx context.Context, attackerID, defenderID uint, loot models.Resources, attackerCapacity float64) error {
	if err := s.villages.DebitLoot(ctx, defenderID, loot); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceError, "loot debit failed")
	}
	if err := s.villages.CreditResources(ctx, attackerID, loot, attackerCapacity); err != nil {
		logger.Error("loot credit failed after debit committed",
			"attacker_id", attackerID, "defender_id", defenderID, "error", err)
		return errors.Wrap(err, errors.ErrCodePersistenceError, "loot credit failed")
	}
	return nil
}
