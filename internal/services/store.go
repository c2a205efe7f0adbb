package services

import (
	"context"
	"time"

	"github.com/cryptotribes/server/internal/models"
)

// Store contracts consumed by the engine. The gorm repositories implement
// them; tests use in-memory fakes.

type VillageStore interface {
	// GetVillage returns the village or a NOT_FOUND AppError.
	GetVillage(ctx context.Context, id uint) (*models.Village, error)

	// ListVillageIDs pages through all village ids for bulk sweeps.
	ListVillageIDs(ctx context.Context, limit, offset int) ([]uint, error)

	// ListPlayerVillageIDs returns the ids of villages owned by a player.
	ListPlayerVillageIDs(ctx context.Context, playerID uint) ([]uint, error)

	// CountBarbarianVillages counts villages without an owner.
	CountBarbarianVillages(ctx context.Context) (int64, error)

	// ConditionalUpdateResources writes the reconciled balance only if
	// last_reconciled_at still equals expected. Returns whether a row
	// matched.
	ConditionalUpdateResources(ctx context.Context, id uint, expected time.Time, res models.Resources, newReconciledAt time.Time) (bool, error)

	// CreditResources adds delta to the balance, clamping each axis to
	// [0, capacity].
	CreditResources(ctx context.Context, id uint, delta models.Resources, capacity float64) error

	// DebitLoot subtracts loot from the balance, flooring each axis at 0.
	DebitLoot(ctx context.Context, id uint, loot models.Resources) error

	// AddPoints adds a score delta to the village.
	AddPoints(ctx context.Context, id uint, delta int64) error

	// CreateVillage inserts the village with its initial buildings and
	// troop stocks in one transaction.
	CreateVillage(ctx context.Context, village *models.Village, buildings []models.Building, troops []models.TroopStock) error

	// ListCoordinates returns every occupied (x, y) pair.
	ListCoordinates(ctx context.Context) ([][2]int, error)
}

type BuildingStore interface {
	ListBuildings(ctx context.Context, villageID uint) ([]models.Building, error)
	GetBuilding(ctx context.Context, villageID uint, buildingType string) (*models.Building, error)
}

type TroopStore interface {
	ListTroops(ctx context.Context, villageID uint) ([]models.TroopStock, error)
}

type OrderStore interface {
	// DebitAndEnqueueConstruction deducts cost from the village balance,
	// marks the building upgrading and inserts the order, all in one
	// transaction. The debit is conditional on the current balance
	// covering the cost (INSUFFICIENT_RESOURCES on shortfall at commit
	// time) and the flag set is conditional on the building not already
	// upgrading (ALREADY_UPGRADING).
	DebitAndEnqueueConstruction(ctx context.Context, cost models.Resources, order *models.ConstructionOrder) error

	// DebitAndEnqueueTraining is the training counterpart; only the
	// balance condition applies.
	DebitAndEnqueueTraining(ctx context.Context, cost models.Resources, order *models.TrainingOrder) error

	ScanDueConstruction(ctx context.Context, now time.Time, limit, offset int) ([]models.ConstructionOrder, error)
	ScanDueTraining(ctx context.Context, now time.Time, limit, offset int) ([]models.TrainingOrder, error)

	// ApplyConstructionCompletion consumes the order and folds it into
	// the building row (level++, upgrading cleared) plus a village score
	// delta. Returns applied=false with nil error when a concurrent
	// sweep already consumed the order, and a NOT_FOUND AppError when
	// the parent building or village vanished (the order is still
	// consumed so it can never be retried).
	ApplyConstructionCompletion(ctx context.Context, order *models.ConstructionOrder, pointsDelta int64) (applied bool, err error)

	// ApplyTrainingCompletion consumes the order and increments the
	// troop stock. Same applied/NOT_FOUND semantics as construction.
	ApplyTrainingCompletion(ctx context.Context, order *models.TrainingOrder) (applied bool, err error)
}
