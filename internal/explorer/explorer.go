package explorer

import (
	"context"

	"poolFeeSync/internal/model"
)

// DefaultPageCap is the maximum number of rows the explorer returns per call.
const DefaultPageCap = 10000

// TransferQuery selects token transfers of ContractAddress touching Address in [StartBlock, EndBlock].
type TransferQuery struct {
	ContractAddress string
	Address         string
	StartBlock      uint64
	EndBlock        uint64
}

// TransferPage is a block-complete list of transfers, ascending by block.
type TransferPage struct {
	Events []model.TransferEvent
	// Trimmed is set when the provider cap was hit and TrimmedBlock was dropped.
	Trimmed      bool
	TrimmedBlock uint64
}

// LastBlock returns the block number of the last retained event.
func (p TransferPage) LastBlock() (uint64, bool) {
	if len(p.Events) == 0 {
		return 0, false
	}
	return p.Events[len(p.Events)-1].BlockNumber, true
}

// Client is the chain explorer surface used by the sync pipeline.
type Client interface {
	HeadBlockNumber(ctx context.Context) (uint64, error)
	TransferEvents(ctx context.Context, query TransferQuery) (TransferPage, error)
}
