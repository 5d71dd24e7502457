package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/metrics"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/queue"
	"poolFeeSync/internal/storage"
)

// HeadSource reports the latest block of a chain.
type HeadSource interface {
	HeadBlockNumber(ctx context.Context) (uint64, error)
}

// PoolState is the resolver's view of one pool.
type PoolState string

const (
	StateIdle          PoolState = "idle"
	StatePolling       PoolState = "polling"
	StateEventsPending PoolState = "events_pending"
)

// Resolver turns a poll trigger into one enrichment task per pool with new blocks.
type Resolver struct {
	pools    []model.Pool
	registry *chain.Registry
	heads    map[model.ChainType]HeadSource
	tasks    queue.Queue
	policy   RetryPolicy
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu     sync.Mutex
	states map[string]PoolState
}

func NewResolver(
	pools []model.Pool,
	registry *chain.Registry,
	heads map[model.ChainType]HeadSource,
	tasks queue.Queue,
	policy RetryPolicy,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		pools:    pools,
		registry: registry,
		heads:    heads,
		tasks:    tasks,
		policy:   policy,
		metrics:  m,
		logger:   logger,
		states:   make(map[string]PoolState, len(pools)),
	}
}

// HandleJob serves poll_blocks jobs from the block-sync queue.
func (r *Resolver) HandleJob(ctx context.Context, job queue.Job) error {
	if job.Name != queue.JobPollBlocks {
		r.logger.Warn("unexpected job", zap.String("job", job.Name))
		return nil
	}
	r.Resolve(ctx)
	return nil
}

// Resolve checks every pool once. A failing pool is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context) {
	for _, pool := range r.pools {
		if ctx.Err() != nil {
			return
		}
		if err := r.resolvePool(ctx, pool); err != nil {
			r.setState(pool, StateIdle)
			r.logger.Error("resolve block range failed",
				zap.Error(err),
				zap.String("pool", pool.Address),
				zap.Int64("chain_id", pool.ChainID),
			)
		}
	}
}

func (r *Resolver) resolvePool(ctx context.Context, pool model.Pool) error {
	r.setState(pool, StatePolling)

	handler, err := r.registry.Handler(pool.ChainType)
	if err != nil {
		return err
	}
	heads, ok := r.heads[pool.ChainType]
	if !ok {
		return fmt.Errorf("%w: no head source for %s", chain.ErrUnsupportedChain, pool.ChainType)
	}

	var head uint64
	err = withRetry(ctx, r.policy, func(ctx context.Context) error {
		var err error
		head, err = heads.HeadBlockNumber(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("head block: %w", err)
	}
	r.metrics.ObserveHead(handler.Normalize(pool.Address), pool.ChainID, head)

	cursor, err := handler.CurrentBlock(ctx, pool.Address, pool.ChainID)
	if err != nil {
		if errors.Is(err, storage.ErrPoolNotFound) {
			return fmt.Errorf("pool is not registered: %w", err)
		}
		return fmt.Errorf("current block: %w", err)
	}
	r.metrics.ObserveCursor(handler.Normalize(pool.Address), pool.ChainID, cursor)

	if head <= cursor {
		r.logger.Info("no new blocks",
			zap.String("pool", pool.Address),
			zap.Int64("chain_id", pool.ChainID),
			zap.Uint64("head", head),
			zap.Uint64("cursor", cursor),
		)
		r.setState(pool, StateIdle)
		return nil
	}

	task := model.EnrichmentTask{
		PoolAddress:     pool.Address,
		ChainID:         pool.ChainID,
		ChainType:       pool.ChainType,
		ContractAddress: pool.ContractAddress,
		PriceSymbol:     pool.PriceSymbol,
		StartBlock:      cursor + 1,
		EndBlock:        head,
	}
	job, err := queue.NewJob(queue.JobProcessTransactions, task)
	if err != nil {
		return err
	}
	if err := r.tasks.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	r.metrics.TaskEnqueued()
	r.setState(pool, StateEventsPending)

	r.logger.Info("block range queued",
		zap.String("pool", pool.Address),
		zap.Int64("chain_id", pool.ChainID),
		zap.Uint64("from", task.StartBlock),
		zap.Uint64("to", task.EndBlock),
	)
	return nil
}

// State returns the last known state of a pool.
func (r *Resolver) State(pool model.Pool) PoolState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[poolKey(pool.Address, pool.ChainID)]; ok {
		return s
	}
	return StateIdle
}

func (r *Resolver) setState(pool model.Pool, state PoolState) {
	r.mu.Lock()
	r.states[poolKey(pool.Address, pool.ChainID)] = state
	r.mu.Unlock()
}

func poolKey(address string, chainID int64) string {
	return fmt.Sprintf("%d:%s", chainID, address)
}
