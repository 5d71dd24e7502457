package price

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"poolFeeSync/internal/provider"
)

const klinesBody = `[
  [1700000000000,"2000.10","2010.00","1995.50","2005.00","120.5",1700000299999,"241000.0",50,"60.0","120000.0","0"],
  [1700000300000,"2005.00","2012.00","2001.00","2011.25","98.1",1700000599999,"197000.0",41,"50.0","100000.0","0"]
]`

func newTestBinance(t *testing.T, handler http.HandlerFunc) *Binance {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBinance(srv.URL, provider.NewClient(provider.DefaultConfig("binance"), srv.Client()))
}

func TestBinanceCandles(t *testing.T) {
	b := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "ETHUSDT", q.Get("symbol"))
		require.Equal(t, "5m", q.Get("interval"))
		require.Equal(t, "1700000000000", q.Get("startTime"))
		require.Equal(t, "1700000600000", q.Get("endTime"))
		require.Equal(t, "1000", q.Get("limit"))
		_, _ = w.Write([]byte(klinesBody))
	})

	candles, err := b.Candles(context.Background(), CandleQuery{
		Symbol:          "ETHUSDT",
		IntervalMinutes: 5,
		StartTime:       1700000000000,
		EndTime:         1700000600000,
		Limit:           5000,
	})
	require.NoError(t, err)
	require.Len(t, candles, 2)
	require.Equal(t, int64(1700000000000), candles[0].OpenTime)
	require.Equal(t, "2000.1", candles[0].Open.String())
	require.Equal(t, "2011.25", candles[1].Close.String())
	require.Equal(t, int64(1700000599999), candles[1].CloseTime)
}

func TestBinanceCandlesMalformedRow(t *testing.T) {
	b := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1700000000000,"abc","1","1","1","1",1700000299999,"0",0,"0","0","0"]]`))
	})

	_, err := b.Candles(context.Background(), CandleQuery{Symbol: "ETHUSDT", IntervalMinutes: 5})
	require.True(t, errors.Is(err, provider.ErrBadResponse))
}

func TestBinanceCandlesServerError(t *testing.T) {
	b := newTestBinance(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := b.Candles(context.Background(), CandleQuery{Symbol: "ETHUSDT", IntervalMinutes: 5})
	require.True(t, provider.IsTransient(err))
}

func TestBinanceInterval(t *testing.T) {
	require.Equal(t, "5m", binanceInterval(5))
	require.Equal(t, "1h", binanceInterval(60))
	require.Equal(t, "4h", binanceInterval(240))
	require.Equal(t, "1d", binanceInterval(1440))
}

func TestProvidersLookup(t *testing.T) {
	providers := NewProviders()
	b := NewBinance("", nil)
	providers.Register(ProviderBinance, b)

	got, err := providers.Get(ProviderBinance)
	require.NoError(t, err)
	require.Same(t, b, got)

	_, err = providers.Get("coingecko")
	require.True(t, errors.Is(err, ErrUnknownProvider))
}
