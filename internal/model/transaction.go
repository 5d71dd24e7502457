package model

// Transaction is a fee-annotated ledger row, unique by Hash.
type Transaction struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
	PoolAddress string `json:"pool_address"`
	ChainID     int64  `json:"chain_id"`
	GasPrice    string `json:"gas_price"`
	GasUsed     string `json:"gas_used"`
	FeeNative   string `json:"fee_native"`
	FeeQuote    string `json:"fee_quote"`
}
