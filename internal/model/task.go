package model

import "fmt"

// EnrichmentTask asks the enrichment stage to process an inclusive block range for a pool.
type EnrichmentTask struct {
	PoolAddress     string    `json:"pool_address"`
	ChainID         int64     `json:"chain_id"`
	ChainType       ChainType `json:"chain_type"`
	ContractAddress string    `json:"contract_address"`
	PriceSymbol     string    `json:"price_symbol"`
	StartBlock      uint64    `json:"start_block"`
	EndBlock        uint64    `json:"end_block"`
}

// Validate checks the task fields that the worker relies on.
func (t EnrichmentTask) Validate() error {
	if t.PoolAddress == "" {
		return fmt.Errorf("pool address is required")
	}
	if t.ChainID <= 0 {
		return fmt.Errorf("chain id must be positive")
	}
	if t.EndBlock < t.StartBlock {
		return fmt.Errorf("end block %d is before start block %d", t.EndBlock, t.StartBlock)
	}
	return nil
}
