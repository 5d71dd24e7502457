package indexer

import (
	"go.uber.org/zap"

	"poolFeeSync/internal/fee"
	"poolFeeSync/internal/model"
)

func buildTransaction(task model.EnrichmentTask, poolAddress string, ev model.TransferEvent, f fee.Fee) model.Transaction {
	return model.Transaction{
		Hash:        ev.Hash,
		BlockNumber: ev.BlockNumber,
		Timestamp:   ev.Timestamp,
		PoolAddress: poolAddress,
		ChainID:     task.ChainID,
		GasPrice:    ev.GasPrice,
		GasUsed:     ev.GasUsed,
		FeeNative:   f.Native.String(),
		FeeQuote:    f.Quote.String(),
	}
}

// dedupeByHash keeps the first record per hash and drops records without a hash.
func dedupeByHash(records []model.Transaction, logger *zap.Logger) ([]model.Transaction, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.Transaction, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if rec.Hash == "" {
			logger.Warn("transaction without hash", zap.Uint64("block", rec.BlockNumber))
			dropped++
			continue
		}
		if _, ok := seen[rec.Hash]; ok {
			logger.Warn("duplicate transaction in batch", zap.String("hash", rec.Hash), zap.Uint64("block", rec.BlockNumber))
			dropped++
			continue
		}
		seen[rec.Hash] = struct{}{}
		out = append(out, rec)
	}
	return out, dropped
}

// timeBounds returns the smallest and largest event timestamps in ms.
func timeBounds(events []model.TransferEvent) (int64, int64) {
	first := events[0].TimestampMillis()
	last := first
	for _, ev := range events[1:] {
		ts := ev.TimestampMillis()
		if ts < first {
			first = ts
		}
		if ts > last {
			last = ts
		}
	}
	return first, last
}
