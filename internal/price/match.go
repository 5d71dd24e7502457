package price

import "poolFeeSync/internal/model"

// Nearest returns the sample closest in time to tsMillis and the absolute gap in ms.
// Ties keep the first sample encountered. ok is false when samples is empty.
func Nearest(samples []model.PriceSample, tsMillis int64) (sample model.PriceSample, gap int64, ok bool) {
	if len(samples) == 0 {
		return model.PriceSample{}, 0, false
	}

	best := 0
	bestGap := absDiff(samples[0].Timestamp, tsMillis)
	for i := 1; i < len(samples); i++ {
		if d := absDiff(samples[i].Timestamp, tsMillis); d < bestGap {
			best, bestGap = i, d
		}
	}
	return samples[best], bestGap, true
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
