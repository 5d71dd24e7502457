package indexer

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"poolFeeSync/internal/explorer"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/price"
	"poolFeeSync/internal/storage"
)

const (
	usdcWethPool = "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640"
	usdcToken    = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	solanaPool   = "4UqarBqCVuPQrBCJKMvuogXaGxaJHqHJuj5zwgKpSpSH"

	// 2024-01-01 09:00:00 UTC
	nineAM int64 = 1704099600
)

type fakeExplorer struct {
	mu      sync.Mutex
	head    uint64
	headErr error
	page    explorer.TransferPage
	pageErr error
	queries []explorer.TransferQuery
}

func (f *fakeExplorer) HeadBlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, f.headErr
}

func (f *fakeExplorer) TransferEvents(_ context.Context, q explorer.TransferQuery) (explorer.TransferPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.page, f.pageErr
}

// fakePrices returns one candle every five minutes across the query, all at the same price.
type fakePrices struct {
	mu    sync.Mutex
	price decimal.Decimal
	err   error
	calls int
}

func (f *fakePrices) Candles(_ context.Context, q price.CandleQuery) ([]price.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	step := price.Interval.Milliseconds()
	out := make([]price.Candle, 0)
	for ts := q.StartTime; ts <= q.EndTime; ts += step {
		out = append(out, price.Candle{OpenTime: ts, Open: f.price, Close: f.price})
	}
	return out, nil
}

type failingLedger struct{}

func (failingLedger) BulkUpsert(context.Context, []model.Transaction) error {
	return errors.New("connection reset")
}

var _ storage.LedgerStore = failingLedger{}

func transfer(hash string, block uint64, ts int64) model.TransferEvent {
	return model.TransferEvent{
		Hash:        hash,
		BlockNumber: block,
		Timestamp:   ts,
		GasPrice:    "20000000000",
		GasUsed:     "21000",
	}
}

func ethPool() model.Pool {
	return model.Pool{
		Address:         usdcWethPool,
		ChainID:         1,
		ChainType:       model.ChainTypeEthereum,
		ContractAddress: usdcToken,
		PriceSymbol:     "ETHUSDT",
		CreatedBlock:    21202122,
	}
}

func solPool() model.Pool {
	return model.Pool{
		Address:      solanaPool,
		ChainID:      101,
		ChainType:    model.ChainTypeSolana,
		PriceSymbol:  "SOLUSDT",
		CreatedBlock: 987654,
	}
}

func taskFor(pool model.Pool, start, end uint64) model.EnrichmentTask {
	return model.EnrichmentTask{
		PoolAddress:     pool.Address,
		ChainID:         pool.ChainID,
		ChainType:       pool.ChainType,
		ContractAddress: pool.ContractAddress,
		PriceSymbol:     pool.PriceSymbol,
		StartBlock:      start,
		EndBlock:        end,
	}
}

type singleCandle struct {
	ts    int64
	price decimal.Decimal
}

func (s singleCandle) Candles(context.Context, price.CandleQuery) ([]price.Candle, error) {
	return []price.Candle{{OpenTime: s.ts, Open: s.price}}, nil
}
