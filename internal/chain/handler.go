package chain

import (
	"context"
	"fmt"
	"strings"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

// Handler applies the address and cursor rules of one chain family.
type Handler interface {
	ChainType() model.ChainType
	// ValidateAddress reports whether address is well formed for the chain family.
	// It fails with ErrUnsupportedChain when chainID is not served by the handler.
	ValidateAddress(address string, chainID int64) (bool, error)
	Normalize(address string) string
	CurrentBlock(ctx context.Context, address string, chainID int64) (uint64, error)
	SetCurrentBlock(ctx context.Context, address string, chainID int64, block uint64) (bool, error)
	RegisterPool(ctx context.Context, address string, chainID int64, seedBlock uint64) error
}

// cursorDelegate forwards cursor calls to the store after validation and normalization.
// Chain handlers embed it and supply their own normalize func.
type cursorDelegate struct {
	name      string
	store     storage.CursorStore
	chainIDs  map[int64]struct{}
	normalize func(string) string
}

func newCursorDelegate(name string, store storage.CursorStore, chainIDs []int64, normalize func(string) string) cursorDelegate {
	ids := make(map[int64]struct{}, len(chainIDs))
	for _, id := range chainIDs {
		ids[id] = struct{}{}
	}
	return cursorDelegate{name: name, store: store, chainIDs: ids, normalize: normalize}
}

func (d cursorDelegate) Normalize(address string) string {
	return d.normalize(strings.TrimSpace(address))
}

func (d cursorDelegate) supports(chainID int64) error {
	if _, ok := d.chainIDs[chainID]; !ok {
		return fmt.Errorf("%w: chain id %d for %s", ErrUnsupportedChain, chainID, d.name)
	}
	return nil
}

func (d cursorDelegate) check(address string, chainID int64) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if chainID <= 0 {
		return "", fmt.Errorf("%w: chain id must be positive, got %d", ErrInvalidInput, chainID)
	}
	if err := d.supports(chainID); err != nil {
		return "", err
	}
	return d.Normalize(address), nil
}

func (d cursorDelegate) CurrentBlock(ctx context.Context, address string, chainID int64) (uint64, error) {
	normalized, err := d.check(address, chainID)
	if err != nil {
		return 0, err
	}
	return d.store.GetCursor(ctx, normalized, chainID)
}

func (d cursorDelegate) SetCurrentBlock(ctx context.Context, address string, chainID int64, block uint64) (bool, error) {
	normalized, err := d.check(address, chainID)
	if err != nil {
		return false, err
	}
	return d.store.AdvanceCursor(ctx, normalized, chainID, block)
}

func (d cursorDelegate) RegisterPool(ctx context.Context, address string, chainID int64, seedBlock uint64) error {
	normalized, err := d.check(address, chainID)
	if err != nil {
		return err
	}
	return d.store.RegisterPool(ctx, normalized, chainID, seedBlock)
}
