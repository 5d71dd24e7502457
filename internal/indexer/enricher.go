package indexer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/explorer"
	"poolFeeSync/internal/fee"
	"poolFeeSync/internal/metrics"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/price"
	"poolFeeSync/internal/queue"
	"poolFeeSync/internal/storage"
)

// ErrPersistence wraps ledger and cursor write failures. Jobs failing with it are redelivered.
var ErrPersistence = errors.New("persistence failure")

// Drop reasons reported to metrics.
const (
	dropNoPrice   = "no_price"
	dropDuplicate = "duplicate"
	dropInvalid   = "invalid"
)

// Enricher fetches transfers of one block range, prices them and records the fees.
type Enricher struct {
	registry  *chain.Registry
	explorers map[model.ChainType]explorer.Client
	series    *price.SeriesFetcher
	ledger    storage.LedgerStore
	policy    RetryPolicy
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewEnricher(
	registry *chain.Registry,
	explorers map[model.ChainType]explorer.Client,
	prices price.Client,
	ledger storage.LedgerStore,
	policy RetryPolicy,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		registry:  registry,
		explorers: explorers,
		series:    price.NewSeriesFetcher(prices, logger),
		ledger:    ledger,
		policy:    policy,
		metrics:   m,
		logger:    logger,
	}
}

// HandleJob serves process_transactions jobs. Only persistence failures are returned.
func (e *Enricher) HandleJob(ctx context.Context, job queue.Job) error {
	if job.Name != queue.JobProcessTransactions {
		e.logger.Warn("unexpected job", zap.String("job", job.Name))
		return nil
	}
	var task model.EnrichmentTask
	if err := job.Decode(&task); err != nil {
		e.logger.Error("invalid task payload", zap.Error(err))
		return nil
	}
	return e.Process(ctx, task)
}

// Process runs one task end to end.
func (e *Enricher) Process(ctx context.Context, task model.EnrichmentTask) error {
	log := e.logger.With(
		zap.String("pool", task.PoolAddress),
		zap.Int64("chain_id", task.ChainID),
		zap.Uint64("from", task.StartBlock),
		zap.Uint64("to", task.EndBlock),
	)
	if err := task.Validate(); err != nil {
		log.Error("invalid task", zap.Error(err))
		return nil
	}

	handler, err := e.registry.Handler(task.ChainType)
	if err != nil {
		log.Error("no chain handler", zap.Error(err))
		return nil
	}
	source, ok := e.explorers[task.ChainType]
	if !ok {
		log.Error("no explorer for chain type", zap.String("chain_type", string(task.ChainType)))
		return nil
	}

	var page explorer.TransferPage
	err = withRetry(ctx, e.policy, func(ctx context.Context) error {
		var err error
		page, err = source.TransferEvents(ctx, explorer.TransferQuery{
			ContractAddress: task.ContractAddress,
			Address:         task.PoolAddress,
			StartBlock:      task.StartBlock,
			EndBlock:        task.EndBlock,
		})
		return err
	})
	if err != nil {
		log.Error("fetch transfer events failed", zap.Error(err))
		return nil
	}
	e.metrics.EventsFetched(len(page.Events))

	if len(page.Events) == 0 {
		if !page.Trimmed {
			log.Info("no transfer events in range")
			return e.advance(ctx, handler, task, task.EndBlock, log)
		}
		// every returned event sat in one block; move up to just before it
		log.Warn("page cap filled by a single block, sync stalled",
			zap.Uint64("trimmed_block", page.TrimmedBlock),
		)
		if page.TrimmedBlock == 0 {
			return nil
		}
		return e.advance(ctx, handler, task, page.TrimmedBlock-1, log)
	}
	if page.Trimmed {
		log.Info("page cap reached, trailing block dropped",
			zap.Uint64("trimmed_block", page.TrimmedBlock),
			zap.Int("events", len(page.Events)),
		)
	}

	first, last := timeBounds(page.Events)
	window := price.RoundWindow(first, last, price.Interval)
	series := e.series.Fetch(ctx, task.PriceSymbol, window)
	if len(series.Samples) == 0 {
		log.Error("no price data for window",
			zap.Error(series.Err),
			zap.String("symbol", task.PriceSymbol),
			zap.Int64("window_start", window.Start),
			zap.Int64("window_end", window.End),
		)
		return nil
	}
	if series.Partial {
		log.Warn("price series incomplete", zap.Error(series.Err), zap.Int("points", len(series.Samples)))
	}

	poolAddress := handler.Normalize(task.PoolAddress)
	records := make([]model.Transaction, 0, len(page.Events))
	noPrice, invalid := 0, 0
	for _, ev := range page.Events {
		sample, gap, ok := price.Nearest(series.Samples, ev.TimestampMillis())
		if !ok || gap >= price.MaxMatchGap.Milliseconds() {
			log.Debug("no price within tolerance", zap.String("hash", ev.Hash), zap.Int64("gap_ms", gap))
			noPrice++
			continue
		}
		f, err := fee.Compute(ev.GasPrice, ev.GasUsed, sample.Price)
		if err != nil {
			log.Warn("skip event with bad gas figures", zap.Error(err), zap.String("hash", ev.Hash))
			invalid++
			continue
		}
		records = append(records, buildTransaction(task, poolAddress, ev, f))
	}
	if noPrice > 0 {
		log.Warn("events without matching price", zap.Int("count", noPrice))
	}

	records, duplicates := dedupeByHash(records, log)
	e.metrics.EventsDropped(dropNoPrice, noPrice)
	e.metrics.EventsDropped(dropInvalid, invalid)
	e.metrics.EventsDropped(dropDuplicate, duplicates)

	if err := e.ledger.BulkUpsert(ctx, records); err != nil {
		return fmt.Errorf("%w: store transactions: %v", ErrPersistence, err)
	}
	e.metrics.TransactionsStored(len(records))

	target := task.EndBlock
	if page.Trimmed {
		target, _ = page.LastBlock()
	}
	log.Info("transactions stored", zap.Int("stored", len(records)), zap.Uint64("cursor_target", target))
	return e.advance(ctx, handler, task, target, log)
}

func (e *Enricher) advance(ctx context.Context, handler chain.Handler, task model.EnrichmentTask, target uint64, log *zap.Logger) error {
	moved, err := handler.SetCurrentBlock(ctx, task.PoolAddress, task.ChainID, target)
	if err != nil {
		return fmt.Errorf("%w: advance cursor to %d: %v", ErrPersistence, target, err)
	}
	if moved {
		e.metrics.ObserveCursor(handler.Normalize(task.PoolAddress), task.ChainID, target)
	} else {
		log.Debug("cursor already at or past target", zap.Uint64("target", target))
	}
	return nil
}
