package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cryptotribes/server/internal/config"
	"github.com/cryptotribes/server/internal/services"
	"github.com/cryptotribes/server/pkg/logger"
)

// Scheduler drives the background sweeps on fixed intervals, independent
// of request traffic. The sweeps are idempotent, so an overlapping or
// repeated invocation only shrinks the due set.
type Scheduler struct {
	accrual *services.AccrualService
	queue   *services.QueueService
	tribes  *services.TribeService
	cfg     *config.Config

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New builds the scheduler. tribes may be nil when tribe rankings are
// not enabled.
func New(accrual *services.AccrualService, queue *services.QueueService, tribes *services.TribeService, cfg *config.Config) *Scheduler {
	return &Scheduler{
		accrual: accrual,
		queue:   queue,
		tribes:  tribes,
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
}

// Start launches the sweep loops.
func (s *Scheduler) Start() {
	s.run("resource", s.cfg.GetResourceSweepInterval(), func(ctx context.Context) (services.SweepReport, error) {
		return s.accrual.RunResourceSweep(ctx, s.cfg.SweepBatchSize)
	})
	s.run("construction", s.cfg.GetConstructionSweepInterval(), s.queue.RunConstructionSweep)
	s.run("training", s.cfg.GetTrainingSweepInterval(), s.queue.RunTrainingSweep)
	if s.tribes != nil {
		s.run("ranking", s.cfg.GetRankingSweepInterval(), s.tribes.RunRankingSweep)
	}

	logger.Info("scheduler started",
		"resource_interval", s.cfg.GetResourceSweepInterval(),
		"construction_interval", s.cfg.GetConstructionSweepInterval(),
		"training_interval", s.cfg.GetTrainingSweepInterval())
}

// Stop halts the loops and waits for in-flight sweeps to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

func (s *Scheduler) run(name string, interval time.Duration, sweep func(context.Context) (services.SweepReport, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				start := time.Now()
				report, err := sweep(context.Background())
				if err != nil {
					logger.Error("sweep failed", "sweep", name, "error", err)
					continue
				}
				if report.Processed > 0 || report.Failed > 0 {
					logger.Info("sweep finished",
						"sweep", name,
						"processed", report.Processed,
						"skipped", report.Skipped,
						"failed", report.Failed,
						"elapsed", time.Since(start))
				}
			}
		}
	}()
}
