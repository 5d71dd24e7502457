package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"poolFeeSync/internal/provider"
)

const (
	// ProviderBinance is the registry name of the Binance provider.
	ProviderBinance = "binance"
	// DefaultBinanceURL is the Binance spot REST endpoint.
	DefaultBinanceURL = "https://api.binance.com"

	binanceKlinesPath = "/api/v3/klines"
)

// Binance reads klines from the Binance spot API.
type Binance struct {
	baseURL string
	client  *provider.Client
}

var _ Client = (*Binance)(nil)

func NewBinance(baseURL string, client *provider.Client) *Binance {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	return &Binance{baseURL: baseURL, client: client}
}

// Candles fetches klines. Limit is clamped to PageLimit.
func (b *Binance) Candles(ctx context.Context, query CandleQuery) ([]Candle, error) {
	if query.Symbol == "" || query.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: symbol and interval are required", provider.ErrBadResponse)
	}
	limit := query.Limit
	if limit <= 0 || limit > PageLimit {
		limit = PageLimit
	}

	params := url.Values{}
	params.Set("symbol", query.Symbol)
	params.Set("interval", binanceInterval(query.IntervalMinutes))
	params.Set("startTime", strconv.FormatInt(query.StartTime, 10))
	params.Set("endTime", strconv.FormatInt(query.EndTime, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("timeZone", "0")

	var raw [][]json.RawMessage
	if err := b.client.GetJSON(ctx, b.baseURL+binanceKlinesPath, params, &raw); err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", query.Symbol, err)
	}

	candles := make([]Candle, 0, len(raw))
	for i, row := range raw {
		candle, err := decodeKline(row)
		if err != nil {
			return nil, fmt.Errorf("binance kline %d: %w: %v", i, provider.ErrBadResponse, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func binanceInterval(minutes int) string {
	switch {
	case minutes%(24*60) == 0:
		return fmt.Sprintf("%dd", minutes/(24*60))
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// decodeKline reads [openTime, open, high, low, close, volume, closeTime, ...].
func decodeKline(row []json.RawMessage) (Candle, error) {
	if len(row) < 11 {
		return Candle{}, fmt.Errorf("malformed kline: %d fields", len(row))
	}

	var c Candle
	if err := json.Unmarshal(row[0], &c.OpenTime); err != nil {
		return Candle{}, fmt.Errorf("open time: %w", err)
	}
	if err := json.Unmarshal(row[6], &c.CloseTime); err != nil {
		return Candle{}, fmt.Errorf("close time: %w", err)
	}

	fields := []*decimal.Decimal{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
	for i, dst := range fields {
		var text string
		if err := json.Unmarshal(row[i+1], &text); err != nil {
			return Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		value, err := decimal.NewFromString(text)
		if err != nil {
			return Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		*dst = value
	}
	return c, nil
}
