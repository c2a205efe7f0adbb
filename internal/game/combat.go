package game

import (
	"fmt"
	"math"

	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/pkg/errors"
)

// Combat is resolved as a synchronous power comparison: attack sum versus
// defense sum with a wall multiplier. Formations, casualties and terrain
// are extension points, not implemented here.

// AttackPower sums the attack value of a troop selection.
func (t *Tuning) AttackPower(troops map[string]int) (float64, error) {
	var power float64
	for troopType, amount := range troops {
		spec, ok := t.Troops[troopType]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown troop type: %s", troopType))
		}
		if amount < 0 {
			return 0, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("negative troop amount: %d", amount))
		}
		power += spec.Attack * float64(amount)
	}
	return power, nil
}

// DefensePower sums the defense value of the defender's standing troops,
// multiplied by the wall bonus. Unknown stock types are impossible by the
// model hooks and would be a data error; they are skipped here rather
// than failing the whole battle.
func (t *Tuning) DefensePower(stocks []models.TroopStock, wallLevel int) float64 {
	var power float64
	for _, stock := range stocks {
		spec, ok := t.Troops[stock.Type]
		if !ok {
			continue
		}
		power += spec.Defense * float64(stock.Amount)
	}
	if wallLevel > 0 {
		power *= 1 + t.WallDefenseBonus*float64(wallLevel)
	}
	return power
}

// CarryCapacity sums the loot-carrying capacity of a troop selection.
func (t *Tuning) CarryCapacity(troops map[string]int) float64 {
	var carry float64
	for troopType, amount := range troops {
		if spec, ok := t.Troops[troopType]; ok && amount > 0 {
			carry += spec.Carry * float64(amount)
		}
	}
	return carry
}

// Loot computes the plunder taken from a defender balance given the
// attacker's carry capacity: each axis yields up to an equal quarter of
// the capacity, floored at what the defender actually holds.
func Loot(defender models.Resources, carryCapacity float64) models.Resources {
	if carryCapacity <= 0 {
		return models.Resources{}
	}
	perAxis := carryCapacity / 4
	return models.Resources{
		Wood: math.Min(perAxis, math.Max(0, defender.Wood)),
		Clay: math.Min(perAxis, math.Max(0, defender.Clay)),
		Iron: math.Min(perAxis, math.Max(0, defender.Iron)),
		Food: math.Min(perAxis, math.Max(0, defender.Food)),
	}
}
