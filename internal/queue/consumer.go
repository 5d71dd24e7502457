package queue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"poolFeeSync/internal/metrics"
)

// Handler processes one job. A returned error triggers redelivery until
// the consumer's attempt budget is spent.
type Handler func(ctx context.Context, job Job) error

// ConsumerConfig holds consumer settings.
type ConsumerConfig struct {
	// JobsPerSecond limits how fast jobs are started. Zero disables limiting.
	JobsPerSecond float64
	MaxAttempts   int
}

// DefaultConsumerConfig starts one job per second and tries each job three times.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{JobsPerSecond: 1, MaxAttempts: 3}
}

// Consumer drains a queue with a single worker.
type Consumer struct {
	queue   Queue
	handler Handler
	cfg     ConsumerConfig
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewConsumer(q Queue, handler Handler, cfg ConsumerConfig, m *metrics.Metrics, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	limit := rate.Inf
	if cfg.JobsPerSecond > 0 {
		limit = rate.Limit(cfg.JobsPerSecond)
	}
	return &Consumer{
		queue:   q,
		handler: handler,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		metrics: m,
		logger:  logger.With(zap.String("queue", q.Name())),
	}
}

// Run handles jobs until ctx is cancelled or the queue is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return ctxErr(ctx, err)
		}

		job, err := c.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("dequeue failed", zap.Error(err))
			continue
		}

		c.handle(ctx, job)
	}
}

func (c *Consumer) handle(ctx context.Context, job Job) {
	started := time.Now()
	err := c.handler(ctx, job)
	if err == nil {
		c.metrics.JobHandled(c.queue.Name(), metrics.OutcomeOK, time.Since(started))
		return
	}

	job.Attempts++
	if job.Attempts >= c.cfg.MaxAttempts || ctx.Err() != nil {
		c.metrics.JobHandled(c.queue.Name(), metrics.OutcomeDropped, time.Since(started))
		c.logger.Error("job failed, dropping",
			zap.Error(err),
			zap.String("job", job.Name),
			zap.Int("attempts", job.Attempts),
		)
		return
	}

	c.metrics.JobHandled(c.queue.Name(), metrics.OutcomeRetry, time.Since(started))
	c.logger.Warn("job failed, requeue",
		zap.Error(err),
		zap.String("job", job.Name),
		zap.Int("attempts", job.Attempts),
	)
	if qerr := c.queue.Enqueue(ctx, job); qerr != nil {
		c.logger.Error("requeue failed", zap.Error(qerr), zap.String("job", job.Name))
	}
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
