package services

import (
	"context"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/pkg/errors"
	"github.com/cryptotribes/server/pkg/logger"
)

// SweepReport summarizes one background sweep invocation.
type SweepReport struct {
	Processed int
	Skipped   int
	Failed    int
}

// QueueService resolves due construction and training orders in batched
// sweeps. Each order applies exactly once; a failing order never blocks
// the rest of its batch. Overlapping sweep invocations are safe: a
// consumed order no longer matches the due predicate.
type QueueService struct {
	orders    OrderStore
	tuning    *game.Tuning
	batchSize int
	now       func() time.Time
}

func NewQueueService(orders OrderStore, tuning *game.Tuning, batchSize int) *QueueService {
	return &QueueService{
		orders:    orders,
		tuning:    tuning,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// RunConstructionSweep applies all construction orders whose finish time
// has elapsed: level++, upgrading flag cleared, village points credited.
func (s *QueueService) RunConstructionSweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := s.now()

	// Applied orders leave the due set, so we keep scanning from an
	// offset that only skips the entries that failed and stayed behind.
	offset := 0
	for {
		entries, err := s.orders.ScanDueConstruction(ctx, now, s.batchSize, offset)
		if err != nil {
			return report, errors.Wrap(err, errors.ErrCodePersistenceError, "construction scan failed")
		}
		if len(entries) == 0 {
			break
		}

		for i := range entries {
			entry := &entries[i]
			points := s.tuning.PointsForLevel(entry.BuildingType, entry.TargetLevel)

			applied, err := s.orders.ApplyConstructionCompletion(ctx, entry, points)
			switch {
			case err != nil && errors.HasCode(err, errors.ErrCodeNotFound):
				// Parent village or building vanished between enqueue
				// and resolution. The order is consumed; nothing to do.
				logger.Warn("construction order had no parent, dropped",
					"order_id", entry.ID, "village_id", entry.VillageID, "building", entry.BuildingType)
				report.Skipped++
			case err != nil:
				logger.Error("construction completion failed",
					"order_id", entry.ID, "village_id", entry.VillageID, "error", err)
				report.Failed++
				offset++
			case applied:
				report.Processed++
			default:
				// A concurrent sweep consumed the order first.
				report.Skipped++
			}
		}

		if len(entries) < s.batchSize {
			break
		}
	}

	logger.Debug("construction sweep finished",
		"processed", report.Processed, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// RunTrainingSweep applies all training orders whose finish time has
// elapsed: troop stock incremented, order removed.
func (s *QueueService) RunTrainingSweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := s.now()

	offset := 0
	for {
		entries, err := s.orders.ScanDueTraining(ctx, now, s.batchSize, offset)
		if err != nil {
			return report, errors.Wrap(err, errors.ErrCodePersistenceError, "training scan failed")
		}
		if len(entries) == 0 {
			break
		}

		for i := range entries {
			entry := &entries[i]

			applied, err := s.orders.ApplyTrainingCompletion(ctx, entry)
			switch {
			case err != nil && errors.HasCode(err, errors.ErrCodeNotFound):
				logger.Warn("training order had no parent, dropped",
					"order_id", entry.ID, "village_id", entry.VillageID, "troop", entry.TroopType)
				report.Skipped++
			case err != nil:
				logger.Error("training completion failed",
					"order_id", entry.ID, "village_id", entry.VillageID, "error", err)
				report.Failed++
				offset++
			case applied:
				report.Processed++
			default:
				report.Skipped++
			}
		}

		if len(entries) < s.batchSize {
			break
		}
	}

	logger.Debug("training sweep finished",
		"processed", report.Processed, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}
