package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const poolTokensABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	poolTokensABI     abi.ABI
	poolTokensABIOnce sync.Once
	poolTokensABIErr  error
)

func poolTokensABIInstance() (abi.ABI, error) {
	poolTokensABIOnce.Do(func() {
		poolTokensABI, poolTokensABIErr = abi.JSON(strings.NewReader(poolTokensABIJSON))
	})
	return poolTokensABI, poolTokensABIErr
}

// PoolToken0 reads token0() of a two-token pool contract.
func PoolToken0(ctx context.Context, caller ethereum.ContractCaller, pool string) (string, error) {
	return poolToken(ctx, caller, pool, "token0")
}

// PoolToken1 reads token1() of a two-token pool contract.
func PoolToken1(ctx context.Context, caller ethereum.ContractCaller, pool string) (string, error) {
	return poolToken(ctx, caller, pool, "token1")
}

func poolToken(ctx context.Context, caller ethereum.ContractCaller, pool, method string) (string, error) {
	if !common.IsHexAddress(pool) {
		return "", fmt.Errorf("%w: pool address %q", ErrInvalidInput, pool)
	}
	parsed, err := poolTokensABIInstance()
	if err != nil {
		return "", fmt.Errorf("parse pool abi: %w", err)
	}

	data, err := parsed.Pack(method)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	to := common.HexToAddress(pool)
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return "", fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return "", fmt.Errorf("unpack %s: empty result", method)
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("unpack %s: unexpected type %T", method, values[0])
	}
	return addr.Hex(), nil
}
