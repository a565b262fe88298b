package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"lklbridge/internal/dedup"
)

// Scheduler runs the processed-transaction retention job. Eviction happens
// here rather than on the notify request path.
type Scheduler struct {
	cron   *cron.Cron
	store  *dedup.GormStore
	logger *zap.Logger
}

// New creates the retention scheduler over the durable dedupe store.
func New(store *dedup.GormStore, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}
}

// Start registers and starts the retention job.
func (s *Scheduler) Start() {
	// Trim the dedupe table to capacity - every 10 minutes.
	s.cron.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		evicted, err := s.store.Prune(ctx)
		if err != nil {
			s.logger.Error("dedupe retention failed", zap.Error(err))
			return
		}
		if evicted > 0 {
			s.logger.Info("dedupe retention evicted oldest entries", zap.Int64("evicted", evicted))
		}
	})

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that closes once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
