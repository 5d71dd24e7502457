package price

import (
	"fmt"
	"time"
)

const (
	// IntervalMinutes is the sampling interval of the price series.
	IntervalMinutes = 5
	// PageLimit is the maximum number of candles the provider returns per call.
	PageLimit = 1000
	// Interval is IntervalMinutes as a duration.
	Interval = IntervalMinutes * time.Minute
	// MaxMatchGap is the largest tolerated distance between an event and its price sample.
	MaxMatchGap = Interval
)

// Window is an inclusive time range in unix milliseconds.
type Window struct {
	Start int64
	End   int64
}

// RoundWindow widens [firstMillis, lastMillis] outward to interval boundaries:
// the start is floored and the end is ceiled.
func RoundWindow(firstMillis, lastMillis int64, interval time.Duration) Window {
	step := interval.Milliseconds()
	if step <= 0 {
		return Window{Start: firstMillis, End: lastMillis}
	}
	start := floorDiv(firstMillis, step) * step
	end := floorDiv(lastMillis, step) * step
	if end < lastMillis {
		end += step
	}
	return Window{Start: start, End: end}
}

// ChunkSpan returns the time covered by one provider page:
// interval × (limit − 1) minutes, in milliseconds.
func ChunkSpan(intervalMinutes, limit int) int64 {
	return int64(intervalMinutes) * int64(limit-1) * 60 * 1000
}

// SplitWindow walks w in steps of span. Each chunk is [s, min(s+span, w.End)];
// consecutive chunks share their boundary. A zero-length window yields one chunk.
func SplitWindow(w Window, span int64) ([]Window, error) {
	if span <= 0 {
		return nil, fmt.Errorf("span must be greater than zero")
	}
	if w.End < w.Start {
		return nil, fmt.Errorf("window end must be >= start")
	}

	chunks := make([]Window, 0)
	for start := w.Start; ; start += span {
		end := start + span
		if end > w.End {
			end = w.End
		}
		chunks = append(chunks, Window{Start: start, End: end})
		if end == w.End {
			break
		}
	}
	return chunks, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
