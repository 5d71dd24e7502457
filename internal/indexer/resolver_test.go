package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/queue"
	"poolFeeSync/internal/storage"
)

func newTestRegistry(t *testing.T, store storage.CursorStore) *chain.Registry {
	t.Helper()
	registry, err := chain.NewRegistry(chain.NewEVMHandler(store), chain.NewSolanaHandler(store))
	require.NoError(t, err)
	return registry
}

func drain(t *testing.T, q *queue.Memory) []model.EnrichmentTask {
	t.Helper()
	tasks := make([]model.EnrichmentTask, 0)
	for q.Len() > 0 {
		job, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		require.Equal(t, queue.JobProcessTransactions, job.Name)
		var task model.EnrichmentTask
		require.NoError(t, job.Decode(&task))
		tasks = append(tasks, task)
	}
	return tasks
}

func TestResolverEnqueuesNewRange(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pool := ethPool()
	require.NoError(t, store.RegisterPool(ctx, strings.ToLower(pool.Address), pool.ChainID, 21202122))

	tasks := queue.NewMemory(queue.TransactionProcessing, 8)
	heads := map[model.ChainType]HeadSource{model.ChainTypeEthereum: &fakeExplorer{head: 21202200}}
	r := NewResolver([]model.Pool{pool}, newTestRegistry(t, store), heads, tasks, RetryPolicy{}, nil, nil)

	require.NoError(t, r.HandleJob(ctx, queue.Job{Name: queue.JobPollBlocks}))

	got := drain(t, tasks)
	require.Equal(t, []model.EnrichmentTask{taskFor(pool, 21202123, 21202200)}, got)
	require.Equal(t, StateEventsPending, r.State(pool))
}

func TestResolverSkipsPoolsWithoutNewBlocks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pool := ethPool()
	require.NoError(t, store.RegisterPool(ctx, strings.ToLower(pool.Address), pool.ChainID, 500))

	tasks := queue.NewMemory(queue.TransactionProcessing, 8)
	heads := map[model.ChainType]HeadSource{model.ChainTypeEthereum: &fakeExplorer{head: 500}}
	r := NewResolver([]model.Pool{pool}, newTestRegistry(t, store), heads, tasks, RetryPolicy{}, nil, nil)

	r.Resolve(ctx)
	require.Equal(t, 0, tasks.Len())
	require.Equal(t, StateIdle, r.State(pool))
}

func TestResolverIsolatesPoolFailures(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	eth, sol := ethPool(), solPool()
	require.NoError(t, store.RegisterPool(ctx, strings.ToLower(eth.Address), eth.ChainID, 100))
	require.NoError(t, store.RegisterPool(ctx, sol.Address, sol.ChainID, 100))

	unregistered := ethPool()
	unregistered.Address = "0x0000000000000000000000000000000000000001"

	tasks := queue.NewMemory(queue.TransactionProcessing, 8)
	heads := map[model.ChainType]HeadSource{
		model.ChainTypeEthereum: &fakeExplorer{head: 150},
		model.ChainTypeSolana:   &fakeExplorer{headErr: errors.New("rpc unavailable")},
	}
	pools := []model.Pool{sol, unregistered, eth}
	r := NewResolver(pools, newTestRegistry(t, store), heads, tasks, RetryPolicy{}, nil, nil)

	r.Resolve(ctx)

	got := drain(t, tasks)
	require.Len(t, got, 1)
	require.Equal(t, eth.Address, got[0].PoolAddress)
	require.Equal(t, uint64(101), got[0].StartBlock)
	require.Equal(t, uint64(150), got[0].EndBlock)

	require.Equal(t, StateIdle, r.State(sol))
	require.Equal(t, StateIdle, r.State(unregistered))

	// cursors are untouched by the resolver
	c, err := store.GetCursor(ctx, sol.Address, sol.ChainID)
	require.NoError(t, err)
	require.Equal(t, uint64(100), c)
}

func TestResolverUnsupportedChainType(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	registry, err := chain.NewRegistry(chain.NewEVMHandler(store))
	require.NoError(t, err)

	tasks := queue.NewMemory(queue.TransactionProcessing, 8)
	r := NewResolver([]model.Pool{solPool()}, registry, map[model.ChainType]HeadSource{}, tasks, RetryPolicy{}, nil, nil)

	r.Resolve(ctx)
	require.Equal(t, 0, tasks.Len())
}
