package indexer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolFeeSync/internal/metrics"
	"poolFeeSync/internal/queue"
)

// PipelineConfig wires the scheduler and both queue consumers.
type PipelineConfig struct {
	PollInterval time.Duration
	Consumer     queue.ConsumerConfig
}

// Pipeline runs the scheduler, the resolver consumer and the enrichment consumer.
type Pipeline struct {
	scheduler *Scheduler
	resolve   *queue.Consumer
	enrich    *queue.Consumer
	logger    *zap.Logger
}

func NewPipeline(
	cfg PipelineConfig,
	blockSync queue.Queue,
	processing queue.Queue,
	resolver *Resolver,
	enricher *Enricher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		scheduler: NewScheduler(cfg.PollInterval, blockSync, logger.Named("scheduler")),
		resolve:   queue.NewConsumer(blockSync, resolver.HandleJob, cfg.Consumer, m, logger.Named("resolver")),
		enrich:    queue.NewConsumer(processing, enricher.HandleJob, cfg.Consumer, m, logger.Named("enricher")),
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. Cancellation is not reported as an error.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.scheduler.Run(ctx) })
	g.Go(func() error { return p.resolve.Run(ctx) })
	g.Go(func() error { return p.enrich.Run(ctx) })

	p.logger.Info("pipeline started")
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	p.logger.Info("pipeline stopped")
	return err
}
