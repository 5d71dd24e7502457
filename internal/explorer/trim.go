package explorer

import "poolFeeSync/internal/model"

// TrimIncompleteBlock drops the tail block of a capped result.
// When len(events) reaches pageCap the provider may have cut the last block short,
// so every event sharing the last event's block number is removed.
// events must be sorted ascending by block number.
func TrimIncompleteBlock(events []model.TransferEvent, pageCap int) TransferPage {
	if pageCap <= 0 || len(events) < pageCap {
		return TransferPage{Events: events}
	}

	last := events[len(events)-1].BlockNumber
	cut := len(events)
	for cut > 0 && events[cut-1].BlockNumber == last {
		cut--
	}
	return TransferPage{
		Events:       events[:cut],
		Trimmed:      true,
		TrimmedBlock: last,
	}
}
