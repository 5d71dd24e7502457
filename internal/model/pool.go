package model

// ChainType identifies a blockchain family that shares address and cursor rules.
type ChainType string

const (
	ChainTypeEthereum ChainType = "ethereum"
	ChainTypeSolana   ChainType = "solana"
)

// Pool is a tracked pool registered from configuration.
type Pool struct {
	Address         string    `json:"address" mapstructure:"address"`
	ChainID         int64     `json:"chain_id" mapstructure:"chain-id"`
	ChainType       ChainType `json:"chain_type" mapstructure:"chain-type"`
	ContractAddress string    `json:"contract_address" mapstructure:"contract-address"`
	PriceSymbol     string    `json:"price_symbol" mapstructure:"price-symbol"`
	CreatedBlock    uint64    `json:"created_block" mapstructure:"created-block"`
	Description     string    `json:"description,omitempty" mapstructure:"description"`
}

// PoolCursor is the last fully processed block for a pool.
type PoolCursor struct {
	Address      string `json:"address"`
	ChainID      int64  `json:"chain_id"`
	CurrentBlock uint64 `json:"current_block"`
}
