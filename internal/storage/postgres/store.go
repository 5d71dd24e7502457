package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for pool cursors and the fee ledger.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ storage.CursorStore  = (*Store)(nil)
	_ storage.LedgerStore  = (*Store)(nil)
	_ storage.LedgerReader = (*Store)(nil)
)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// RegisterPool inserts a pool cursor or raises an existing one to seedBlock.
func (s *Store) RegisterPool(ctx context.Context, address string, chainID int64, seedBlock uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (address, chain_id, current_block, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (address, chain_id)
		DO UPDATE SET
			current_block = GREATEST(pools.current_block, EXCLUDED.current_block),
			updated_at = now()
	`, address, chainID, int64(seedBlock))
	if err != nil {
		return fmt.Errorf("register pool %s: %w", address, err)
	}
	return nil
}

// GetCursor returns the current block for a pool.
func (s *Store) GetCursor(ctx context.Context, address string, chainID int64) (uint64, error) {
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT current_block FROM pools WHERE address=$1 AND chain_id=$2`, address, chainID)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s on chain %d", storage.ErrPoolNotFound, address, chainID)
		}
		return 0, err
	}
	return uint64(block), nil
}

// AdvanceCursor raises current_block to candidate if it is larger.
// The comparison happens inside the UPDATE so concurrent callers converge to the maximum.
func (s *Store) AdvanceCursor(ctx context.Context, address string, chainID int64, candidate uint64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pools
		SET current_block = $3, updated_at = now()
		WHERE address = $1 AND chain_id = $2 AND current_block < $3
	`, address, chainID, int64(candidate))
	if err != nil {
		return false, fmt.Errorf("advance cursor %s: %w", address, err)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkUpsert inserts or overwrites transactions keyed by hash.
func (s *Store) BulkUpsert(ctx context.Context, records []model.Transaction) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range records {
		batch.Queue(`
			INSERT INTO transactions (
				hash, block_number, timestamp, pool, chain_id, gas_price, gas_used,
				transaction_fee_eth, transaction_fee, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text::numeric, $9::text::numeric, now())
			ON CONFLICT (hash)
			DO UPDATE SET
				block_number = EXCLUDED.block_number,
				timestamp = EXCLUDED.timestamp,
				pool = EXCLUDED.pool,
				chain_id = EXCLUDED.chain_id,
				gas_price = EXCLUDED.gas_price,
				gas_used = EXCLUDED.gas_used,
				transaction_fee_eth = EXCLUDED.transaction_fee_eth,
				transaction_fee = EXCLUDED.transaction_fee,
				updated_at = now()
		`,
			tx.Hash,
			int64(tx.BlockNumber),
			tx.Timestamp,
			tx.PoolAddress,
			tx.ChainID,
			tx.GasPrice,
			tx.GasUsed,
			tx.FeeNative,
			tx.FeeQuote,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

const transactionColumns = `
	hash, block_number, timestamp, pool, chain_id, gas_price, gas_used,
	transaction_fee_eth::text, transaction_fee::text
`

// GetTransaction returns a ledger row by hash.
func (s *Store) GetTransaction(ctx context.Context, hash string) (model.Transaction, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE hash=$1`, hash)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transaction{}, storage.ErrTransactionNotFound
		}
		return model.Transaction{}, err
	}
	return tx, nil
}

// ListTransactions returns rows with timestamp in [StartTime, EndTime] ordered by timestamp.
func (s *Store) ListTransactions(ctx context.Context, query storage.TransactionQuery) ([]model.Transaction, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions WHERE timestamp BETWEEN $1 AND $2`,
		query.StartTime, query.EndTime,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp ASC, hash ASC
		LIMIT $3 OFFSET $4
	`, query.StartTime, query.EndTime, query.Limit, query.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Transaction, 0, query.Limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var (
		tx          model.Transaction
		blockNumber int64
	)
	err := row.Scan(
		&tx.Hash,
		&blockNumber,
		&tx.Timestamp,
		&tx.PoolAddress,
		&tx.ChainID,
		&tx.GasPrice,
		&tx.GasUsed,
		&tx.FeeNative,
		&tx.FeeQuote,
	)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.BlockNumber = uint64(blockNumber)
	return tx, nil
}
