package storage

import (
	"context"
	"errors"

	"poolFeeSync/internal/model"
)

// ErrPoolNotFound is returned when no cursor row exists for a pool.
var ErrPoolNotFound = errors.New("pool not found")

// ErrTransactionNotFound is returned when a ledger lookup by hash misses.
var ErrTransactionNotFound = errors.New("transaction not found")

// CursorStore persists per-pool sync progress. Advances are max-merges applied by the store itself.
type CursorStore interface {
	GetCursor(ctx context.Context, address string, chainID int64) (uint64, error)
	AdvanceCursor(ctx context.Context, address string, chainID int64, candidate uint64) (bool, error)
	RegisterPool(ctx context.Context, address string, chainID int64, seedBlock uint64) error
}

// LedgerStore persists fee records unique by transaction hash.
type LedgerStore interface {
	BulkUpsert(ctx context.Context, records []model.Transaction) error
}

// TransactionQuery selects ledger rows by timestamp range (inclusive, seconds).
type TransactionQuery struct {
	StartTime int64
	EndTime   int64
	Limit     int
	Skip      int
}

// LedgerReader serves stored fee records.
type LedgerReader interface {
	GetTransaction(ctx context.Context, hash string) (model.Transaction, error)
	ListTransactions(ctx context.Context, query TransactionQuery) ([]model.Transaction, int64, error)
}
