package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"poolFeeSync/internal/queue"
)

// DefaultPollInterval is the scheduler period.
const DefaultPollInterval = 10 * time.Second

// Scheduler enqueues a poll job on every tick. The first tick fires immediately.
type Scheduler struct {
	interval time.Duration
	queue    queue.Queue
	logger   *zap.Logger
}

func NewScheduler(interval time.Duration, q queue.Queue, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{interval: interval, queue: q, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.queue.Enqueue(ctx, queue.Job{Name: queue.JobPollBlocks}); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("enqueue poll failed", zap.Error(err), zap.String("queue", s.queue.Name()))
	}
}
