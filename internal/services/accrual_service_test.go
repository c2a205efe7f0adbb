package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
)

// flatTuning returns balance tables with round numbers so expected
// values are exact: lumber yields 20 wood per minute per level and the
// warehouse caps every resource at 2000 regardless of level.
func flatTuning() *game.Tuning {
	tuning := game.DefaultTuning()

	lumber := tuning.Buildings[models.BuildingLumber]
	lumber.BaseRate = 20
	lumber.RateGrowth = 1
	tuning.Buildings[models.BuildingLumber] = lumber

	warehouse := tuning.Buildings[models.BuildingWarehouse]
	warehouse.CapacityBase = 2000
	warehouse.CapacityFactor = 1
	tuning.Buildings[models.BuildingWarehouse] = warehouse

	return tuning
}

func newAccrualFixture(tuning *game.Tuning) (*memStore, *AccrualService) {
	store := newMemStore()
	svc := NewAccrualService(store, store, store, tuning, 12*time.Hour)
	return store, svc
}

func TestReconcileAndGet_SubMinuteIsNoOp(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Second)
	playerID := uint(1)
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, last, map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Resources.Wood != 500 {
		t.Errorf("expected wood unchanged at 500, got %v", snap.Resources.Wood)
	}
	if !snap.ReconciledAt.Equal(last) {
		t.Errorf("expected reconciled-at unchanged, got %v", snap.ReconciledAt)
	}
	if got := store.village(id).Resources.Wood; got != 500 {
		t.Errorf("expected stored wood unchanged at 500, got %v", got)
	}
}

func TestReconcileAndGet_FlooredMinutes(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	// 5m59s elapsed accrues exactly 5 minutes.
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-(5*time.Minute + 59*time.Second)), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Resources.Wood != 600 {
		t.Errorf("expected 500 + 5*20 = 600 wood, got %v", snap.Resources.Wood)
	}
	if !snap.ReconciledAt.Equal(now) {
		t.Errorf("expected reconciled-at advanced to now, got %v", snap.ReconciledAt)
	}
}

func TestReconcileAndGet_CapsAtStorageCapacity(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	// 130 minutes at 20 wood/min would reach 3100; the warehouse caps at 2000.
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-130*time.Minute), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Resources.Wood != 2000 {
		t.Errorf("expected wood capped at 2000, got %v", snap.Resources.Wood)
	}
	if snap.Capacity != 2000 {
		t.Errorf("expected capacity 2000, got %v", snap.Capacity)
	}
	if got := store.village(id).Resources.Wood; got != 2000 {
		t.Errorf("expected stored wood 2000, got %v", got)
	}
}

func TestReconcileAndGet_BoundedCatchUp(t *testing.T) {
	tuning := flatTuning()
	// Lift the cap out of the way so the window clamp is what binds.
	warehouse := tuning.Buildings[models.BuildingWarehouse]
	warehouse.CapacityBase = 1e9
	tuning.Buildings[models.BuildingWarehouse] = warehouse

	store, svc := newAccrualFixture(tuning)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	// Dormant for 48 hours; accrual is clamped to the 12-hour window.
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-48*time.Hour), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 500 + float64(12*60)*20
	if snap.Resources.Wood != want {
		t.Errorf("expected wood %v after 12h clamp, got %v", want, snap.Resources.Wood)
	}
}

func TestReconcileAndGet_FoodFloorsAtZero(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	// Farm at level 0, 100 spearmen eating 1 food/min each: net food is
	// deeply negative over 10 minutes but the balance floors at zero.
	id := store.addVillage(&playerID, models.Resources{Food: 50}, now.Add(-10*time.Minute), map[string]int{
		models.BuildingWarehouse: 1,
	})
	store.setTroops(id, models.TroopSpearman, 100)
	svc.now = func() time.Time { return now }

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Resources.Food != 0 {
		t.Errorf("expected food floored at 0, got %v", snap.Resources.Food)
	}
	if snap.ProductionPerMinute.Food != -100 {
		t.Errorf("expected net food rate -100, got %v", snap.ProductionPerMinute.Food)
	}
}

func TestReconcileAndGet_ConcurrentCallersApplyOnce(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-10*time.Minute), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }

	const callers = 16
	snapshots := make([]*ReconciledSnapshot, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshots[i], errs[i] = svc.ReconcileAndGet(context.Background(), id)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if snapshots[i].Resources.Wood != 700 {
			t.Errorf("caller %d saw wood %v, want 700", i, snapshots[i].Resources.Wood)
		}
	}
	// The 10-minute delta applied exactly once.
	if got := store.village(id).Resources.Wood; got != 700 {
		t.Errorf("expected stored wood 700, got %v", got)
	}
	if svc.locks.Len() != 0 {
		t.Errorf("expected lock registry drained, %d entries remain", svc.locks.Len())
	}
}

func TestReconcileAndGet_LostRaceAdoptsWinner(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-10*time.Minute), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }
	store.forceConditionalMiss = true

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Our delta was discarded; the re-read returns the stored state.
	if snap.Resources.Wood != 500 {
		t.Errorf("expected wood 500 from the re-read, got %v", snap.Resources.Wood)
	}
	if got := store.village(id).Resources.Wood; got != 500 {
		t.Errorf("expected stored wood untouched at 500, got %v", got)
	}
}

func TestReconcileAndGet_DegradesWhenBuildingsUnavailable(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-10*time.Minute), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }
	store.listBuildingsErr = fmt.Errorf("connection reset")

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("expected degraded snapshot, got error: %v", err)
	}
	if snap.Resources.Wood != 500 {
		t.Errorf("expected stale wood 500, got %v", snap.Resources.Wood)
	}
	if got := store.village(id).Resources.Wood; got != 500 {
		t.Errorf("expected stored state untouched, got wood %v", got)
	}
}

func TestReconcileAndGet_WriteFailureReturnsStaleSnapshot(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	id := store.addVillage(&playerID, models.Resources{Wood: 500}, now.Add(-10*time.Minute), map[string]int{
		models.BuildingLumber:    1,
		models.BuildingWarehouse: 1,
	})
	svc.now = func() time.Time { return now }
	store.conditionalErr = fmt.Errorf("deadlock detected")

	snap, err := svc.ReconcileAndGet(context.Background(), id)
	if err != nil {
		t.Fatalf("expected degraded snapshot, got error: %v", err)
	}
	if snap.Resources.Wood != 500 {
		t.Errorf("expected stale wood 500, got %v", snap.Resources.Wood)
	}
}

func TestReconcileAndGet_UnknownVillage(t *testing.T) {
	_, svc := newAccrualFixture(flatTuning())

	_, err := svc.ReconcileAndGet(context.Background(), 42)
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRunResourceSweep_PagesThroughAllVillages(t *testing.T) {
	store, svc := newAccrualFixture(flatTuning())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playerID := uint(1)
	for i := 0; i < 7; i++ {
		store.addVillage(&playerID, models.Resources{Wood: 100}, now.Add(-10*time.Minute), map[string]int{
			models.BuildingLumber:    1,
			models.BuildingWarehouse: 1,
		})
	}
	svc.now = func() time.Time { return now }

	report, err := svc.RunResourceSweep(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 7 {
		t.Errorf("expected 7 processed, got %d", report.Processed)
	}
	for id := uint(1); id <= 7; id++ {
		if got := store.village(id).Resources.Wood; got != 300 {
			t.Errorf("village %d: expected wood 300, got %v", id, got)
		}
	}
}
