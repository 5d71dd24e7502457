package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

// ChainIDEthereumMainnet is the chain id of Ethereum mainnet.
const ChainIDEthereumMainnet int64 = 1

// EVMHandler serves hex-addressed chains. Addresses are stored lower-cased.
type EVMHandler struct {
	cursorDelegate
}

var _ Handler = (*EVMHandler)(nil)

// NewEVMHandler builds a handler for the given chain ids, defaulting to Ethereum mainnet.
func NewEVMHandler(store storage.CursorStore, chainIDs ...int64) *EVMHandler {
	if len(chainIDs) == 0 {
		chainIDs = []int64{ChainIDEthereumMainnet}
	}
	return &EVMHandler{cursorDelegate: newCursorDelegate("ethereum", store, chainIDs, strings.ToLower)}
}

func (h *EVMHandler) ChainType() model.ChainType {
	return model.ChainTypeEthereum
}

func (h *EVMHandler) ValidateAddress(address string, chainID int64) (bool, error) {
	if err := h.supports(chainID); err != nil {
		return false, err
	}
	return common.IsHexAddress(strings.TrimSpace(address)), nil
}
