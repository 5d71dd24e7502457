package price

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownProvider is returned when no price provider is registered under a name.
var ErrUnknownProvider = errors.New("unknown price provider")

// CandleQuery selects candles for Symbol with open time in [StartTime, EndTime] (ms).
type CandleQuery struct {
	Symbol          string
	IntervalMinutes int
	StartTime       int64
	EndTime         int64
	Limit           int
}

// Candle is one OHLC bucket.
type Candle struct {
	OpenTime  int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime int64
}

// Client returns price candles from a market data provider.
type Client interface {
	Candles(ctx context.Context, query CandleQuery) ([]Candle, error)
}

// Providers maps provider names to clients.
type Providers struct {
	clients map[string]Client
}

func NewProviders() *Providers {
	return &Providers{clients: make(map[string]Client)}
}

// Register adds a client under name, replacing any previous one.
func (p *Providers) Register(name string, client Client) {
	p.clients[name] = client
}

// Get returns the client registered under name.
func (p *Providers) Get(name string) (Client, error) {
	client, ok := p.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return client, nil
}
