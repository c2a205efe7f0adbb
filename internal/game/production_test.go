package game

import (
	"testing"
	"time"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
)

func TestProductionPerMinute_ZeroAtLevelZero(t *testing.T) {
	tuning := DefaultTuning()

	for _, bt := range models.AllBuildingTypes {
		rate, err := tuning.ProductionPerMinute(bt, 0)
		if err != nil {
			t.Fatalf("ProductionPerMinute(%s, 0) error = %v", bt, err)
		}
		if (rate != models.Resources{}) {
			t.Errorf("ProductionPerMinute(%s, 0) = %+v, want zero", bt, rate)
		}
	}
}

func TestProductionPerMinute_StrictlyIncreasing(t *testing.T) {
	tuning := DefaultTuning()

	producers := []struct {
		buildingType string
		axis         func(models.Resources) float64
	}{
		{models.BuildingLumber, func(r models.Resources) float64 { return r.Wood }},
		{models.BuildingClayPit, func(r models.Resources) float64 { return r.Clay }},
		{models.BuildingIronMine, func(r models.Resources) float64 { return r.Iron }},
		{models.BuildingFarm, func(r models.Resources) float64 { return r.Food }},
	}

	for _, p := range producers {
		t.Run(p.buildingType, func(t *testing.T) {
			prev := 0.0
			for level := 1; level <= 30; level++ {
				rate, err := tuning.ProductionPerMinute(p.buildingType, level)
				if err != nil {
					t.Fatalf("ProductionPerMinute(%s, %d) error = %v", p.buildingType, level, err)
				}
				if p.axis(rate) <= prev {
					t.Fatalf("production at level %d (%v) not greater than level %d (%v)", level, p.axis(rate), level-1, prev)
				}
				prev = p.axis(rate)
			}
		})
	}
}

func TestProductionPerMinute_NonProducersYieldNothing(t *testing.T) {
	tuning := DefaultTuning()

	for _, bt := range []string{models.BuildingMain, models.BuildingWall, models.BuildingMarket, models.BuildingSmithy} {
		rate, err := tuning.ProductionPerMinute(bt, 10)
		if err != nil {
			t.Fatalf("ProductionPerMinute(%s, 10) error = %v", bt, err)
		}
		if (rate != models.Resources{}) {
			t.Errorf("ProductionPerMinute(%s, 10) = %+v, want zero", bt, rate)
		}
	}
}

func TestProductionPerMinute_UnknownType(t *testing.T) {
	tuning := DefaultTuning()

	_, err := tuning.ProductionPerMinute("castle", 1)
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ProductionPerMinute(castle) error = %v, want INVALID_INPUT", err)
	}
}

func TestNetProductionPerMinute(t *testing.T) {
	tuning := DefaultTuning()

	buildings := []models.Building{
		{Type: models.BuildingLumber, Level: 1},
		{Type: models.BuildingFarm, Level: 1},
		{Type: models.BuildingWall, Level: 5},
	}
	troops := []models.TroopStock{
		{Type: models.TroopSpearman, Amount: 10},
	}

	net, err := tuning.NetProductionPerMinute(buildings, troops)
	if err != nil {
		t.Fatalf("NetProductionPerMinute() error = %v", err)
	}

	wood := tuning.Buildings[models.BuildingLumber].BaseRate
	if net.Wood != wood {
		t.Errorf("net wood = %v, want %v", net.Wood, wood)
	}

	wantFood := tuning.Buildings[models.BuildingFarm].BaseRate - 10*tuning.Troops[models.TroopSpearman].UpkeepPerMinute
	if net.Food != wantFood {
		t.Errorf("net food = %v, want %v", net.Food, wantFood)
	}
}

func TestNetProductionPerMinute_UpkeepCanExceedProduction(t *testing.T) {
	tuning := DefaultTuning()

	buildings := []models.Building{
		{Type: models.BuildingFarm, Level: 1},
	}
	troops := []models.TroopStock{
		{Type: models.TroopKnight, Amount: 100},
	}

	net, err := tuning.NetProductionPerMinute(buildings, troops)
	if err != nil {
		t.Fatalf("NetProductionPerMinute() error = %v", err)
	}
	if net.Food >= 0 {
		t.Errorf("net food = %v, want negative", net.Food)
	}
}

func TestStorageCapacity_Monotonic(t *testing.T) {
	tuning := DefaultTuning()

	prev := 0.0
	for level := 0; level <= 30; level++ {
		cap := tuning.StorageCapacity(level)
		if cap <= prev {
			t.Fatalf("capacity at level %d (%v) not greater than level %d (%v)", level, cap, level-1, prev)
		}
		prev = cap
	}

	if tuning.StorageCapacity(0) != tuning.Buildings[models.BuildingWarehouse].CapacityBase {
		t.Errorf("StorageCapacity(0) = %v, want base %v", tuning.StorageCapacity(0), tuning.Buildings[models.BuildingWarehouse].CapacityBase)
	}
}

func TestUpgradeCost_Monotonic(t *testing.T) {
	tuning := DefaultTuning()

	prev := models.Resources{}
	for level := 0; level < 20; level++ {
		cost, err := tuning.UpgradeCost(models.BuildingHall, level)
		if err != nil {
			t.Fatalf("UpgradeCost(hall, %d) error = %v", level, err)
		}
		if cost.Wood <= prev.Wood || cost.Clay <= prev.Clay || cost.Iron <= prev.Iron {
			t.Fatalf("cost at level %d (%+v) not greater than at level %d (%+v)", level, cost, level-1, prev)
		}
		prev = cost
	}
}

func TestUpgradeCost_UnknownType(t *testing.T) {
	tuning := DefaultTuning()

	_, err := tuning.UpgradeCost("castle", 1)
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("UpgradeCost(castle) error = %v, want INVALID_INPUT", err)
	}
}

func TestBuildDuration(t *testing.T) {
	tuning := DefaultTuning()

	prev := time.Duration(0)
	for level := 1; level <= 20; level++ {
		d, err := tuning.BuildDuration(models.BuildingBarracks, level, 1)
		if err != nil {
			t.Fatalf("BuildDuration(barracks, %d, 1) error = %v", level, err)
		}
		if d <= prev {
			t.Fatalf("duration at level %d (%v) not greater than at level %d (%v)", level, d, level-1, prev)
		}
		prev = d
	}
}

func TestBuildDuration_SpeedModifier(t *testing.T) {
	tuning := DefaultTuning()

	normal, err := tuning.BuildDuration(models.BuildingFarm, 5, 1)
	if err != nil {
		t.Fatalf("BuildDuration() error = %v", err)
	}
	fast, err := tuning.BuildDuration(models.BuildingFarm, 5, 2)
	if err != nil {
		t.Fatalf("BuildDuration() error = %v", err)
	}
	diff := fast*2 - normal
	if diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("speed 2 duration = %v, want half of %v", fast, normal)
	}

	// Non-positive modifiers behave as 1.
	guarded, err := tuning.BuildDuration(models.BuildingFarm, 5, 0)
	if err != nil {
		t.Fatalf("BuildDuration() error = %v", err)
	}
	if guarded != normal {
		t.Errorf("speed 0 duration = %v, want %v", guarded, normal)
	}
}

func TestTrainCostAndDuration(t *testing.T) {
	tuning := DefaultTuning()

	cost, err := tuning.TrainCost(models.TroopSpearman, 5)
	if err != nil {
		t.Fatalf("TrainCost() error = %v", err)
	}
	want := tuning.Troops[models.TroopSpearman].Cost.Scale(5)
	if cost != want {
		t.Errorf("TrainCost(spearman, 5) = %+v, want %+v", cost, want)
	}

	d, err := tuning.TrainDuration(models.TroopSpearman, 5, 1)
	if err != nil {
		t.Fatalf("TrainDuration() error = %v", err)
	}
	wantDur := time.Duration(tuning.Troops[models.TroopSpearman].TrainSeconds*5) * time.Second
	if d != wantDur {
		t.Errorf("TrainDuration(spearman, 5, 1) = %v, want %v", d, wantDur)
	}

	if _, err := tuning.TrainDuration(models.TroopSpearman, 0, 1); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("TrainDuration(amount=0) error = %v, want INVALID_INPUT", err)
	}
	if _, err := tuning.TrainCost("dragon", 1); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("TrainCost(dragon) error = %v, want INVALID_INPUT", err)
	}
}

func TestPopulation(t *testing.T) {
	tuning := DefaultTuning()

	if got := tuning.PopulationCap(0); got != 0 {
		t.Errorf("PopulationCap(0) = %d, want 0", got)
	}
	if got := tuning.PopulationCap(2); got <= tuning.PopulationCap(1) {
		t.Errorf("PopulationCap(2) = %d, want > PopulationCap(1) = %d", got, tuning.PopulationCap(1))
	}

	used, err := tuning.PopulationUsed([]models.TroopStock{
		{Type: models.TroopSpearman, Amount: 10},
		{Type: models.TroopKnight, Amount: 5},
	})
	if err != nil {
		t.Fatalf("PopulationUsed() error = %v", err)
	}
	want := 10*tuning.Troops[models.TroopSpearman].Population + 5*tuning.Troops[models.TroopKnight].Population
	if used != want {
		t.Errorf("PopulationUsed() = %d, want %d", used, want)
	}
}
