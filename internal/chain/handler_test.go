package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

const (
	usdcWethPool = "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640"
	solanaPool   = "4UqarBqCVuPQrBCJKMvuogXaGxaJHqHJuj5zwgKpSpSH"
)

func TestRegistryLookup(t *testing.T) {
	store := storage.NewMemoryStore()
	evm := NewEVMHandler(store)
	registry, err := NewRegistry(evm)
	require.NoError(t, err)

	h, err := registry.Handler(model.ChainTypeEthereum)
	require.NoError(t, err)
	require.Same(t, evm, h)

	_, err = registry.Handler(model.ChainTypeSolana)
	require.True(t, errors.Is(err, ErrUnsupportedChain))

	_, err = registry.Handler("bitcoin")
	require.True(t, errors.Is(err, ErrUnsupportedChain))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := NewRegistry(NewEVMHandler(store), NewEVMHandler(store, 5))
	require.Error(t, err)
}

func TestEVMHandlerValidateAddress(t *testing.T) {
	h := NewEVMHandler(storage.NewMemoryStore())

	ok, err := h.ValidateAddress(usdcWethPool, 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.ValidateAddress("0x1234", 1)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = h.ValidateAddress(usdcWethPool, 56)
	require.True(t, errors.Is(err, ErrUnsupportedChain))
}

func TestSolanaHandlerValidateAddress(t *testing.T) {
	h := NewSolanaHandler(storage.NewMemoryStore())

	ok, err := h.ValidateAddress(solanaPool, ChainIDSolanaMainnet)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.ValidateAddress("0OIl-not-base58", ChainIDSolanaMainnet)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = h.ValidateAddress(solanaPool, 1)
	require.True(t, errors.Is(err, ErrUnsupportedChain))
}

func TestEVMHandlerNormalizesCursorKeys(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	h := NewEVMHandler(store)

	require.NoError(t, h.RegisterPool(ctx, usdcWethPool, 1, 21202122))

	block, err := store.GetCursor(ctx, "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640", 1)
	require.NoError(t, err)
	require.Equal(t, uint64(21202122), block)

	updated, err := h.SetCurrentBlock(ctx, "0x88E6A0C2DDD26FEEB64F039A2C41296FCB3F5640", 1, 21202200)
	require.NoError(t, err)
	require.True(t, updated)

	block, err = h.CurrentBlock(ctx, usdcWethPool, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(21202200), block)
}

func TestSolanaHandlerKeepsCase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	h := NewSolanaHandler(store)

	require.NoError(t, h.RegisterPool(ctx, solanaPool, ChainIDSolanaMainnet, 987654))

	_, err := store.GetCursor(ctx, solanaPool, ChainIDSolanaMainnet)
	require.NoError(t, err)
	_, err = store.GetCursor(ctx, "4uqarbqcvupqrbcjkmvuogxagxajhqhjuj5zwgkpspsh", ChainIDSolanaMainnet)
	require.True(t, errors.Is(err, storage.ErrPoolNotFound))
}

func TestHandlerRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	h := NewEVMHandler(storage.NewMemoryStore())

	_, err := h.CurrentBlock(ctx, "", 1)
	require.True(t, errors.Is(err, ErrInvalidInput))

	_, err = h.SetCurrentBlock(ctx, usdcWethPool, 0, 10)
	require.True(t, errors.Is(err, ErrInvalidInput))

	_, err = h.SetCurrentBlock(ctx, usdcWethPool, -1, 10)
	require.True(t, errors.Is(err, ErrInvalidInput))

	_, err = h.CurrentBlock(ctx, usdcWethPool, 137)
	require.True(t, errors.Is(err, ErrUnsupportedChain))
}

func TestRegistryValidatePool(t *testing.T) {
	store := storage.NewMemoryStore()
	registry, err := NewRegistry(NewEVMHandler(store), NewSolanaHandler(store))
	require.NoError(t, err)

	require.NoError(t, registry.ValidatePool(model.Pool{Address: usdcWethPool, ChainID: 1, ChainType: model.ChainTypeEthereum}))
	require.NoError(t, registry.ValidatePool(model.Pool{Address: solanaPool, ChainID: 101, ChainType: model.ChainTypeSolana}))

	err = registry.ValidatePool(model.Pool{Address: "nope", ChainID: 1, ChainType: model.ChainTypeEthereum})
	require.True(t, errors.Is(err, ErrInvalidInput))
}
