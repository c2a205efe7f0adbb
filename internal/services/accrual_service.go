package services

import (
	"context"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/logger"
)

// ReconciledSnapshot is the up-to-date view of a village balance after
// lazy accrual.
type ReconciledSnapshot struct {
	VillageID           uint
	PlayerID            *uint
	Resources           models.Resources
	ProductionPerMinute models.Resources
	Capacity            float64
	ReconciledAt        time.Time
}

// AccrualService lazily reconciles village resource balances against
// elapsed wall-clock time. Two concurrent reconciliations for the same
// village never both apply their delta: the conditional write decides the
// winner and the loser re-reads the winner's result.
type AccrualService struct {
	villages  VillageStore
	buildings BuildingStore
	troops    TroopStore
	tuning    *game.Tuning
	locks     *VillageLocks
	maxWindow time.Duration
	now       func() time.Time
}

func NewAccrualService(villages VillageStore, buildings BuildingStore, troops TroopStore, tuning *game.Tuning, maxWindow time.Duration) *AccrualService {
	return &AccrualService{
		villages:  villages,
		buildings: buildings,
		troops:    troops,
		tuning:    tuning,
		locks:     NewVillageLocks(),
		maxWindow: maxWindow,
		now:       time.Now,
	}
}

// ReconcileAndGet brings the village balance up to date and returns the
// reconciled snapshot. Sub-minute calls are no-ops returning the stored
// state. Accrual is clamped to the configured maximum window so dormant
// villages catch up at bounded cost.
func (s *AccrualService) ReconcileAndGet(ctx context.Context, villageID uint) (*ReconciledSnapshot, error) {
	// Advisory only: collapses same-village request storms. The
	// conditional write below carries correctness on its own.
	release := s.locks.Acquire(villageID)
	defer release()

	village, err := s.villages.GetVillage(ctx, villageID)
	if err != nil {
		return nil, err
	}

	buildings, err := s.buildings.ListBuildings(ctx, villageID)
	if err != nil {
		logger.Warn("accrual degraded: building list unavailable", "village_id", villageID, "error", err)
		return s.staleSnapshot(village), nil
	}
	troops, err := s.troops.ListTroops(ctx, villageID)
	if err != nil {
		logger.Warn("accrual degraded: troop list unavailable", "village_id", villageID, "error", err)
		return s.staleSnapshot(village), nil
	}

	rates, err := s.tuning.NetProductionPerMinute(buildings, troops)
	if err != nil {
		return nil, err
	}
	capacity := s.tuning.StorageCapacity(levelOf(buildings, models.BuildingWarehouse))

	now := s.now()
	elapsedMinutes := int64(now.Sub(village.LastReconciledAt) / time.Minute)
	if elapsedMinutes < 1 {
		// Idempotence boundary: nothing accrues inside a minute.
		return snapshot(village, rates, capacity), nil
	}
	if maxMinutes := int64(s.maxWindow / time.Minute); elapsedMinutes > maxMinutes {
		elapsedMinutes = maxMinutes
	}

	newResources := village.Resources.Add(rates.Scale(float64(elapsedMinutes))).CapAt(capacity)

	matched, err := s.villages.ConditionalUpdateResources(ctx, villageID, village.LastReconciledAt, newResources, now)
	if err != nil {
		// Degrade to the last-known balance rather than failing the
		// caller's request.
		logger.Warn("accrual write failed, returning stale snapshot", "village_id", villageID, "error", err)
		return snapshot(village, rates, capacity), nil
	}
	if !matched {
		// Lost the optimistic race: another writer already advanced
		// last_reconciled_at. Discard our delta and adopt theirs.
		fresh, err := s.villages.GetVillage(ctx, villageID)
		if err != nil {
			return nil, err
		}
		return snapshot(fresh, rates, capacity), nil
	}

	village.Resources = newResources
	village.LastReconciledAt = now
	return snapshot(village, rates, capacity), nil
}

// RunResourceSweep reconciles every village in pages, for villages not
// touched interactively. Individual failures are logged and skipped.
func (s *AccrualService) RunResourceSweep(ctx context.Context, batchSize int) (SweepReport, error) {
	var report SweepReport

	offset := 0
	for {
		ids, err := s.villages.ListVillageIDs(ctx, batchSize, offset)
		if err != nil {
			return report, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if _, err := s.ReconcileAndGet(ctx, id); err != nil {
				logger.Warn("resource sweep skipped village", "village_id", id, "error", err)
				report.Failed++
				continue
			}
			report.Processed++
		}

		if len(ids) < batchSize {
			break
		}
		offset += len(ids)
	}

	return report, nil
}

func (s *AccrualService) staleSnapshot(village *models.Village) *ReconciledSnapshot {
	return snapshot(village, models.Resources{}, s.tuning.StorageCapacity(0))
}

func snapshot(village *models.Village, rates models.Resources, capacity float64) *ReconciledSnapshot {
	return &ReconciledSnapshot{
		VillageID:           village.ID,
		PlayerID:            village.PlayerID,
		Resources:           village.Resources,
		ProductionPerMinute: rates,
		Capacity:            capacity,
		ReconciledAt:        village.LastReconciledAt,
	}
}

func levelOf(buildings []models.Building, buildingType string) int {
	for _, b := range buildings {
		if b.Type == buildingType {
			return b.Level
		}
	}
	return 0
}
