package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/provider"
)

func newTestEtherscan(t *testing.T, handler http.HandlerFunc, pageCap int) *Etherscan {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := provider.NewClient(provider.DefaultConfig("etherscan"), srv.Client())
	return NewEtherscan(EtherscanConfig{BaseURL: srv.URL, APIKey: "key", PageCap: pageCap}, client)
}

func transfersJSON(blocks []uint64) []byte {
	rows := make([]map[string]string, 0, len(blocks))
	for i, b := range blocks {
		rows = append(rows, map[string]string{
			"blockNumber": fmt.Sprintf("%d", b),
			"timeStamp":   fmt.Sprintf("%d", 1700000000+int(b)),
			"hash":        fmt.Sprintf("0x%04d", i),
			"gasPrice":    "20000000000",
			"gasUsed":     "21000",
		})
	}
	body, _ := json.Marshal(map[string]interface{}{"status": "1", "message": "OK", "result": rows})
	return body
}

func TestEtherscanHeadBlockNumber(t *testing.T) {
	e := newTestEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "proxy", r.URL.Query().Get("module"))
		require.Equal(t, "eth_blockNumber", r.URL.Query().Get("action"))
		require.Equal(t, "key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":83,"result":"0x7d0"}`))
	}, 0)

	head, err := e.HeadBlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2000), head)
}

func TestEtherscanHeadBlockNumberRateLimited(t *testing.T) {
	e := newTestEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`))
	}, 0)

	_, err := e.HeadBlockNumber(context.Background())
	require.True(t, errors.Is(err, provider.ErrTransient))
}

func TestEtherscanTransferEventsQuery(t *testing.T) {
	e := newTestEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "tokentx", q.Get("action"))
		require.Equal(t, "0xtoken", q.Get("contractaddress"))
		require.Equal(t, "0xpool", q.Get("address"))
		require.Equal(t, "1000", q.Get("startblock"))
		require.Equal(t, "1100", q.Get("endblock"))
		require.Equal(t, "asc", q.Get("sort"))
		_, _ = w.Write(transfersJSON([]uint64{1001, 1002, 1002}))
	}, 0)

	page, err := e.TransferEvents(context.Background(), TransferQuery{
		ContractAddress: "0xtoken",
		Address:         "0xpool",
		StartBlock:      1000,
		EndBlock:        1100,
	})
	require.NoError(t, err)
	require.False(t, page.Trimmed)
	require.Len(t, page.Events, 3)
	require.Equal(t, int64(1700001001), page.Events[0].Timestamp)
	require.Equal(t, "20000000000", page.Events[0].GasPrice)
}

func TestEtherscanNoTransactions(t *testing.T) {
	e := newTestEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	}, 0)

	page, err := e.TransferEvents(context.Background(), TransferQuery{StartBlock: 1, EndBlock: 2})
	require.NoError(t, err)
	require.Empty(t, page.Events)
	require.False(t, page.Trimmed)
}

func TestEtherscanTrimsCappedPage(t *testing.T) {
	blocks := make([]uint64, 0, DefaultPageCap)
	for len(blocks) < DefaultPageCap-3 {
		blocks = append(blocks, 5000+uint64(len(blocks)/10))
	}
	last := blocks[len(blocks)-1] + 1
	blocks = append(blocks, last, last, last)

	e := newTestEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(transfersJSON(blocks))
	}, DefaultPageCap)

	page, err := e.TransferEvents(context.Background(), TransferQuery{StartBlock: 5000, EndBlock: 9000})
	require.NoError(t, err)
	require.True(t, page.Trimmed)
	require.Equal(t, last, page.TrimmedBlock)
	require.Len(t, page.Events, DefaultPageCap-3)
	for _, ev := range page.Events {
		require.NotEqual(t, last, ev.BlockNumber)
	}
	lastKept, ok := page.LastBlock()
	require.True(t, ok)
	require.Equal(t, last-1, lastKept)
}

func TestTrimIncompleteBlock(t *testing.T) {
	events := []model.TransferEvent{
		{Hash: "a", BlockNumber: 10},
		{Hash: "b", BlockNumber: 11},
		{Hash: "c", BlockNumber: 12},
		{Hash: "d", BlockNumber: 12},
	}

	page := TrimIncompleteBlock(events, 5)
	require.False(t, page.Trimmed)
	require.Len(t, page.Events, 4)

	page = TrimIncompleteBlock(events, 4)
	require.True(t, page.Trimmed)
	require.Equal(t, uint64(12), page.TrimmedBlock)
	require.Len(t, page.Events, 2)

	same := []model.TransferEvent{{BlockNumber: 7}, {BlockNumber: 7}}
	page = TrimIncompleteBlock(same, 2)
	require.True(t, page.Trimmed)
	require.Empty(t, page.Events)
	_, ok := page.LastBlock()
	require.False(t, ok)
}
