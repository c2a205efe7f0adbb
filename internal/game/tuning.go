package game

import (
	"fmt"
	"os"

	"github.com/cryptotribes/server/internal/models"
	"gopkg.in/yaml.v3"
)

// BuildingSpec is the balance table entry for one building type.
type BuildingSpec struct {
	MaxLevel         int              `yaml:"max_level"`
	BaseCost         models.Resources `yaml:"base_cost"`
	CostGrowth       float64          `yaml:"cost_growth"`
	BaseBuildSeconds float64          `yaml:"base_build_seconds"`
	BuildTimeGrowth  float64          `yaml:"build_time_growth"`
	Produces         string           `yaml:"produces"` // "", wood, clay, iron, food
	BaseRate         float64          `yaml:"base_rate"`
	RateGrowth       float64          `yaml:"rate_growth"`
	CapacityBase     float64          `yaml:"capacity_base"`   // warehouse only
	CapacityFactor   float64          `yaml:"capacity_factor"` // warehouse only
	PopulationBase   float64          `yaml:"population_base"` // farm only
	PointsPerLevel   int64            `yaml:"points_per_level"`
}

// TroopSpec is the balance table entry for one troop type.
type TroopSpec struct {
	Cost            models.Resources `yaml:"cost"`
	TrainSeconds    float64          `yaml:"train_seconds"`
	UpkeepPerMinute float64          `yaml:"upkeep_per_minute"`
	Population      int              `yaml:"population"`
	Attack          float64          `yaml:"attack"`
	Defense         float64          `yaml:"defense"`
	Carry           float64          `yaml:"carry"`
}

// Tuning holds the full balance configuration. All engine math goes
// through a Tuning instance so tests and operators can rebalance without
// code changes.
type Tuning struct {
	Buildings map[string]BuildingSpec `yaml:"buildings"`
	Troops    map[string]TroopSpec    `yaml:"troops"`

	// WallDefenseBonus is the per-wall-level multiplier added to the
	// defender's power (0.05 = +5% per level).
	WallDefenseBonus float64 `yaml:"wall_defense_bonus"`
}

// DefaultTuning returns the compiled-in balance tables.
func DefaultTuning() *Tuning {
	return &Tuning{
		WallDefenseBonus: 0.05,
		Buildings: map[string]BuildingSpec{
			models.BuildingMain: {
				MaxLevel:         20,
				BaseCost:         models.Resources{Wood: 90, Clay: 80, Iron: 70},
				CostGrowth:       1.26,
				BaseBuildSeconds: 600,
				BuildTimeGrowth:  1.2,
				PointsPerLevel:   10,
			},
			models.BuildingHall: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 120, Clay: 100, Iron: 90},
				CostGrowth:       1.28,
				BaseBuildSeconds: 900,
				BuildTimeGrowth:  1.22,
				PointsPerLevel:   12,
			},
			models.BuildingBarracks: {
				MaxLevel:         25,
				BaseCost:         models.Resources{Wood: 200, Clay: 170, Iron: 90},
				CostGrowth:       1.26,
				BaseBuildSeconds: 1200,
				BuildTimeGrowth:  1.2,
				PointsPerLevel:   8,
			},
			models.BuildingFarm: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 45, Clay: 40, Iron: 30},
				CostGrowth:       1.3,
				BaseBuildSeconds: 600,
				BuildTimeGrowth:  1.2,
				Produces:         "food",
				BaseRate:         20,
				RateGrowth:       1.15,
				PopulationBase:   240,
				PointsPerLevel:   6,
			},
			models.BuildingWarehouse: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 60, Clay: 50, Iron: 40},
				CostGrowth:       1.27,
				BaseBuildSeconds: 900,
				BuildTimeGrowth:  1.2,
				CapacityBase:     1000,
				CapacityFactor:   1.23,
				PointsPerLevel:   6,
			},
			models.BuildingWall: {
				MaxLevel:         20,
				BaseCost:         models.Resources{Wood: 50, Clay: 100, Iron: 20},
				CostGrowth:       1.3,
				BaseBuildSeconds: 1800,
				BuildTimeGrowth:  1.22,
				PointsPerLevel:   8,
			},
			models.BuildingLumber: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 50, Clay: 60, Iron: 40},
				CostGrowth:       1.25,
				BaseBuildSeconds: 900,
				BuildTimeGrowth:  1.2,
				Produces:         "wood",
				BaseRate:         30,
				RateGrowth:       1.16,
				PointsPerLevel:   6,
			},
			models.BuildingClayPit: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 65, Clay: 50, Iron: 40},
				CostGrowth:       1.25,
				BaseBuildSeconds: 900,
				BuildTimeGrowth:  1.2,
				Produces:         "clay",
				BaseRate:         30,
				RateGrowth:       1.16,
				PointsPerLevel:   6,
			},
			models.BuildingIronMine: {
				MaxLevel:         30,
				BaseCost:         models.Resources{Wood: 75, Clay: 65, Iron: 70},
				CostGrowth:       1.25,
				BaseBuildSeconds: 1080,
				BuildTimeGrowth:  1.2,
				Produces:         "iron",
				BaseRate:         25,
				RateGrowth:       1.17,
				PointsPerLevel:   6,
			},
			models.BuildingMarket: {
				MaxLevel:         25,
				BaseCost:         models.Resources{Wood: 100, Clay: 100, Iron: 100},
				CostGrowth:       1.26,
				BaseBuildSeconds: 1500,
				BuildTimeGrowth:  1.2,
				PointsPerLevel:   10,
			},
			models.BuildingSmithy: {
				MaxLevel:         20,
				BaseCost:         models.Resources{Wood: 220, Clay: 180, Iron: 240},
				CostGrowth:       1.28,
				BaseBuildSeconds: 1800,
				BuildTimeGrowth:  1.22,
				PointsPerLevel:   12,
			},
		},
		Troops: map[string]TroopSpec{
			models.TroopSpearman: {
				Cost:            models.Resources{Wood: 50, Clay: 30, Iron: 10},
				TrainSeconds:    120,
				UpkeepPerMinute: 1,
				Population:      1,
				Attack:          10,
				Defense:         15,
				Carry:           25,
			},
			models.TroopSwordman: {
				Cost:            models.Resources{Wood: 30, Clay: 30, Iron: 70},
				TrainSeconds:    180,
				UpkeepPerMinute: 1,
				Population:      1,
				Attack:          25,
				Defense:         50,
				Carry:           15,
			},
			models.TroopArcher: {
				Cost:            models.Resources{Wood: 100, Clay: 30, Iron: 60},
				TrainSeconds:    210,
				UpkeepPerMinute: 1,
				Population:      1,
				Attack:          15,
				Defense:         50,
				Carry:           10,
			},
			models.TroopKnight: {
				Cost:            models.Resources{Wood: 125, Clay: 100, Iron: 250},
				TrainSeconds:    600,
				UpkeepPerMinute: 4,
				Population:      4,
				Attack:          150,
				Defense:         80,
				Carry:           80,
			},
		},
	}
}

// LoadTuning returns the default tables with any entries present in the
// YAML file at path replacing their defaults wholesale. An empty path
// returns the defaults.
func LoadTuning(path string) (*Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	var override Tuning
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}

	for name, spec := range override.Buildings {
		if !models.IsValidBuildingType(name) {
			return nil, fmt.Errorf("tuning file references unknown building type %q", name)
		}
		tuning.Buildings[name] = spec
	}
	for name, spec := range override.Troops {
		if !models.IsValidTroopType(name) {
			return nil, fmt.Errorf("tuning file references unknown troop type %q", name)
		}
		tuning.Troops[name] = spec
	}
	if override.WallDefenseBonus > 0 {
		tuning.WallDefenseBonus = override.WallDefenseBonus
	}

	return tuning, nil
}
