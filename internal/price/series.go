package price

import (
	"context"

	"go.uber.org/zap"

	"poolFeeSync/internal/model"
)

// SeriesFetcher walks a time window page by page against a price client.
type SeriesFetcher struct {
	client          Client
	intervalMinutes int
	limit           int
	logger          *zap.Logger
}

func NewSeriesFetcher(client Client, logger *zap.Logger) *SeriesFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeriesFetcher{
		client:          client,
		intervalMinutes: IntervalMinutes,
		limit:           PageLimit,
		logger:          logger,
	}
}

// SeriesResult is the outcome of a window walk.
type SeriesResult struct {
	Samples []model.PriceSample
	// Partial is set when a chunk failed and the walk stopped early.
	Partial bool
	Err     error
}

// Fetch requests every chunk of w in order. A failed chunk stops the walk and
// the samples collected so far are returned with Partial set.
func (f *SeriesFetcher) Fetch(ctx context.Context, symbol string, w Window) SeriesResult {
	chunks, err := SplitWindow(w, ChunkSpan(f.intervalMinutes, f.limit))
	if err != nil {
		return SeriesResult{Err: err}
	}

	samples := make([]model.PriceSample, 0)
	for _, chunk := range chunks {
		f.logger.Debug("fetch candles", zap.String("symbol", symbol), zap.Int64("from", chunk.Start), zap.Int64("to", chunk.End))

		candles, err := f.client.Candles(ctx, CandleQuery{
			Symbol:          symbol,
			IntervalMinutes: f.intervalMinutes,
			StartTime:       chunk.Start,
			EndTime:         chunk.End,
			Limit:           f.limit,
		})
		if err != nil {
			f.logger.Error("fetch candles failed",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Int64("from", chunk.Start),
				zap.Int64("to", chunk.End),
				zap.Int("collected", len(samples)),
			)
			return SeriesResult{Samples: samples, Partial: true, Err: err}
		}

		for _, c := range candles {
			samples = append(samples, model.PriceSample{Timestamp: c.OpenTime, Price: c.Open})
		}
	}

	f.logger.Debug("candles fetched", zap.String("symbol", symbol), zap.Int("points", len(samples)))
	return SeriesResult{Samples: samples}
}
