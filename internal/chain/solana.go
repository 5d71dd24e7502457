package chain

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

// ChainIDSolanaMainnet is the chain id used for Solana mainnet pools.
const ChainIDSolanaMainnet int64 = 101

// SolanaHandler serves base58-addressed pools. Addresses are case sensitive and kept as given.
type SolanaHandler struct {
	cursorDelegate
}

var _ Handler = (*SolanaHandler)(nil)

func NewSolanaHandler(store storage.CursorStore, chainIDs ...int64) *SolanaHandler {
	if len(chainIDs) == 0 {
		chainIDs = []int64{ChainIDSolanaMainnet}
	}
	identity := func(s string) string { return s }
	return &SolanaHandler{cursorDelegate: newCursorDelegate("solana", store, chainIDs, identity)}
}

func (h *SolanaHandler) ChainType() model.ChainType {
	return model.ChainTypeSolana
}

func (h *SolanaHandler) ValidateAddress(address string, chainID int64) (bool, error) {
	if err := h.supports(chainID); err != nil {
		return false, err
	}
	_, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	return err == nil, nil
}
