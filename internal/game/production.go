package game

import (
	"fmt"
	"math"
	"time"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
)

// Production scaling is base * level * growth^(level-1): zero at level 0,
// strictly increasing in level, super-linear for growth > 1.

// ProductionPerMinute returns the per-minute resource output of one
// building at the given level. Non-production buildings return zero.
func (t *Tuning) ProductionPerMinute(buildingType string, level int) (models.Resources, error) {
	spec, ok := t.Buildings[buildingType]
	if !ok {
		return models.Resources{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown building type: %s", buildingType))
	}
	if spec.Produces == "" || level <= 0 {
		return models.Resources{}, nil
	}

	rate := spec.BaseRate * float64(level) * math.Pow(spec.RateGrowth, float64(level-1))

	var out models.Resources
	switch spec.Produces {
	case "wood":
		out.Wood = rate
	case "clay":
		out.Clay = rate
	case "iron":
		out.Iron = rate
	case "food":
		out.Food = rate
	}
	return out, nil
}

// NetProductionPerMinute sums production across all buildings and
// subtracts troop upkeep from food. The result's food axis may be
// negative: upkeep can exceed farm output.
func (t *Tuning) NetProductionPerMinute(buildings []models.Building, troops []models.TroopStock) (models.Resources, error) {
	var net models.Resources
	for _, b := range buildings {
		rate, err := t.ProductionPerMinute(b.Type, b.Level)
		if err != nil {
			return models.Resources{}, err
		}
		net = net.Add(rate)
	}
	for _, stock := range troops {
		upkeep, err := t.TroopUpkeepPerMinute(stock.Type, stock.Amount)
		if err != nil {
			return models.Resources{}, err
		}
		net.Food -= upkeep
	}
	return net, nil
}

// StorageCapacity returns the per-resource storage cap for a warehouse
// level. Level 0 keeps the base capacity so fresh villages can hold their
// starting resources.
func (t *Tuning) StorageCapacity(warehouseLevel int) float64 {
	spec := t.Buildings[models.BuildingWarehouse]
	if warehouseLevel < 0 {
		warehouseLevel = 0
	}
	return spec.CapacityBase * math.Pow(spec.CapacityFactor, float64(warehouseLevel))
}

// UpgradeCost returns the cost of upgrading a building from currentLevel
// to currentLevel+1.
func (t *Tuning) UpgradeCost(buildingType string, currentLevel int) (models.Resources, error) {
	spec, ok := t.Buildings[buildingType]
	if !ok {
		return models.Resources{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown building type: %s", buildingType))
	}
	factor := math.Pow(spec.CostGrowth, float64(currentLevel))
	return spec.BaseCost.Scale(factor), nil
}

// BuildDuration returns the time to upgrade a building to targetLevel.
// speedModifier > 1 shortens the build (hall bonus hook); non-positive
// values are treated as 1.
func (t *Tuning) BuildDuration(buildingType string, targetLevel int, speedModifier float64) (time.Duration, error) {
	spec, ok := t.Buildings[buildingType]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown building type: %s", buildingType))
	}
	if targetLevel < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid target level: %d", targetLevel))
	}
	if speedModifier <= 0 {
		speedModifier = 1
	}
	seconds := spec.BaseBuildSeconds * math.Pow(spec.BuildTimeGrowth, float64(targetLevel-1)) / speedModifier
	return time.Duration(seconds * float64(time.Second)), nil
}

// MaxLevel returns the level cap for a building type, or 0 for unknown
// types.
func (t *Tuning) MaxLevel(buildingType string) int {
	return t.Buildings[buildingType].MaxLevel
}

// PointsForLevel returns the village score contribution of a building
// reaching the given level.
func (t *Tuning) PointsForLevel(buildingType string, level int) int64 {
	return t.Buildings[buildingType].PointsPerLevel * int64(level)
}

// TroopUpkeepPerMinute returns the food consumed per minute by a stock of
// troops.
func (t *Tuning) TroopUpkeepPerMinute(troopType string, amount int) (float64, error) {
	spec, ok := t.Troops[troopType]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
	}
	if amount <= 0 {
		return 0, nil
	}
	return spec.UpkeepPerMinute * float64(amount), nil
}

// TrainCost returns the total cost of training a batch.
func (t *Tuning) TrainCost(troopType string, amount int) (models.Resources, error) {
	spec, ok := t.Troops[troopType]
	if !ok {
		return models.Resources{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
	}
	return spec.Cost.Scale(float64(amount)), nil
}

// TrainDuration returns the time to train a batch: per-unit time times
// amount, divided by the speed modifier (barracks bonus hook).
func (t *Tuning) TrainDuration(troopType string, amount int, speedModifier float64) (time.Duration, error) {
	spec, ok := t.Troops[troopType]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
	}
	if amount < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid amount: %d", amount))
	}
	if speedModifier <= 0 {
		speedModifier = 1
	}
	seconds := spec.TrainSeconds * float64(amount) / speedModifier
	return time.Duration(seconds * float64(time.Second)), nil
}

// PopulationCap returns the troop population supported by a farm level.
func (t *Tuning) PopulationCap(farmLevel int) int {
	if farmLevel <= 0 {
		return 0
	}
	spec := t.Buildings[models.BuildingFarm]
	return int(spec.PopulationBase * float64(farmLevel))
}

// PopulationOf returns the population units of a troop batch.
func (t *Tuning) PopulationOf(troopType string, amount int) (int, error) {
	spec, ok := t.Troops[troopType]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
	}
	return spec.Population * amount, nil
}

// PopulationUsed sums population across existing stocks.
func (t *Tuning) PopulationUsed(troops []models.TroopStock) (int, error) {
	total := 0
	for _, stock := range troops {
		pop, err := t.PopulationOf(stock.Type, stock.Amount)
		if err != nil {
			return 0, err
		}
		total += pop
	}
	return total, nil
}
