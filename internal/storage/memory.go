package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"poolFeeSync/internal/model"
)

// MemoryStore keeps cursors and ledger rows in process memory.
// It is used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	cursors map[string]uint64
	ledger  map[string]model.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cursors: make(map[string]uint64),
		ledger:  make(map[string]model.Transaction),
	}
}

func cursorKey(address string, chainID int64) string {
	return fmt.Sprintf("%d:%s", chainID, address)
}

func (s *MemoryStore) GetCursor(_ context.Context, address string, chainID int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.cursors[cursorKey(address, chainID)]
	if !ok {
		return 0, fmt.Errorf("%w: %s on chain %d", ErrPoolNotFound, address, chainID)
	}
	return block, nil
}

func (s *MemoryStore) AdvanceCursor(_ context.Context, address string, chainID int64, candidate uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cursorKey(address, chainID)
	current, ok := s.cursors[key]
	if !ok || candidate <= current {
		return false, nil
	}
	s.cursors[key] = candidate
	return true, nil
}

func (s *MemoryStore) RegisterPool(_ context.Context, address string, chainID int64, seedBlock uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cursorKey(address, chainID)
	if current, ok := s.cursors[key]; ok && current >= seedBlock {
		return nil
	}
	s.cursors[key] = seedBlock
	return nil
}

func (s *MemoryStore) BulkUpsert(_ context.Context, records []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if record.Hash == "" {
			continue
		}
		s.ledger[record.Hash] = record
	}
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, hash string) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.ledger[hash]
	if !ok {
		return model.Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, query TransactionQuery) ([]model.Transaction, int64, error) {
	s.mu.Lock()
	matched := make([]model.Transaction, 0)
	for _, tx := range s.ledger {
		if tx.Timestamp >= query.StartTime && tx.Timestamp <= query.EndTime {
			matched = append(matched, tx)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Timestamp == matched[j].Timestamp {
			return matched[i].Hash < matched[j].Hash
		}
		return matched[i].Timestamp < matched[j].Timestamp
	})

	total := int64(len(matched))
	if query.Skip >= len(matched) {
		return []model.Transaction{}, total, nil
	}
	matched = matched[query.Skip:]
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, total, nil
}

// Transactions returns a snapshot of all ledger rows.
func (s *MemoryStore) Transactions() map[string]model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]model.Transaction, len(s.ledger))
	for k, v := range s.ledger {
		out[k] = v
	}
	return out
}
