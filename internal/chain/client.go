package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client reads chain head information from an EVM JSON-RPC node.
// It can replace the explorer as the head source for the resolver.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// CheckChainID fails when the node serves a different chain than expected.
func (c *Client) CheckChainID(ctx context.Context, expected int64) error {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !id.IsInt64() || id.Int64() != expected {
		return fmt.Errorf("%w: rpc serves chain %s, pools expect %d", ErrUnsupportedChain, id, expected)
	}
	return nil
}

// HeadBlockNumber returns the latest block number.
func (c *Client) HeadBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// CallContract executes a read-only contract call at block, or latest when block is nil.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, block)
}
