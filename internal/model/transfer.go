package model

import "github.com/shopspring/decimal"

// TransferEvent is a token transfer as reported by a chain explorer.
type TransferEvent struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
	GasPrice    string `json:"gas_price"`
	GasUsed     string `json:"gas_used"`
}

// TimestampMillis returns the event time in milliseconds.
func (e TransferEvent) TimestampMillis() int64 {
	return e.Timestamp * 1000
}

// PriceSample is a single point of a price series.
type PriceSample struct {
	Timestamp int64           `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}
