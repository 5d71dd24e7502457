package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolFeeSync/internal/model"
	"poolFeeSync/internal/provider"
)

// DefaultEtherscanURL is the Etherscan API endpoint.
const DefaultEtherscanURL = "https://api.etherscan.io/api"

// EtherscanConfig holds Etherscan connection settings.
type EtherscanConfig struct {
	BaseURL string
	APIKey  string
	// ChainID is sent as the chainid parameter when non-zero.
	ChainID int64
	PageCap int
}

// Etherscan reads chain head and token transfers from an Etherscan-compatible API.
type Etherscan struct {
	cfg    EtherscanConfig
	client *provider.Client
}

var _ Client = (*Etherscan)(nil)

func NewEtherscan(cfg EtherscanConfig, client *provider.Client) *Etherscan {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEtherscanURL
	}
	if cfg.PageCap <= 0 {
		cfg.PageCap = DefaultPageCap
	}
	return &Etherscan{cfg: cfg, client: client}
}

type proxyResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type accountResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type tokenTransfer struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	GasPrice    string `json:"gasPrice"`
	GasUsed     string `json:"gasUsed"`
}

func (e *Etherscan) params(module, action string) url.Values {
	params := url.Values{}
	params.Set("module", module)
	params.Set("action", action)
	if e.cfg.ChainID > 0 {
		params.Set("chainid", strconv.FormatInt(e.cfg.ChainID, 10))
	}
	if e.cfg.APIKey != "" {
		params.Set("apikey", e.cfg.APIKey)
	}
	return params
}

// HeadBlockNumber returns the latest block via the eth_blockNumber proxy.
func (e *Etherscan) HeadBlockNumber(ctx context.Context) (uint64, error) {
	var resp proxyResponse
	if err := e.client.GetJSON(ctx, e.cfg.BaseURL, e.params("proxy", "eth_blockNumber"), &resp); err != nil {
		return 0, fmt.Errorf("etherscan block number: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("etherscan block number: %w: %s", provider.ErrBadResponse, resp.Error.Message)
	}

	var hex string
	if err := json.Unmarshal(resp.Result, &hex); err != nil {
		return 0, fmt.Errorf("etherscan block number: %w", classifyMessage(string(resp.Result)))
	}
	if !strings.HasPrefix(hex, "0x") {
		return 0, fmt.Errorf("etherscan block number: %w", classifyMessage(hex))
	}
	block, err := hexutil.DecodeUint64(hex)
	if err != nil {
		return 0, fmt.Errorf("etherscan block number %q: %w: %v", hex, provider.ErrBadResponse, err)
	}
	return block, nil
}

// TransferEvents lists token transfers ascending by block and trims an incomplete tail block.
func (e *Etherscan) TransferEvents(ctx context.Context, query TransferQuery) (TransferPage, error) {
	params := e.params("account", "tokentx")
	params.Set("contractaddress", query.ContractAddress)
	params.Set("address", query.Address)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(e.cfg.PageCap))
	params.Set("startblock", strconv.FormatUint(query.StartBlock, 10))
	params.Set("endblock", strconv.FormatUint(query.EndBlock, 10))
	params.Set("sort", "asc")

	var resp accountResponse
	if err := e.client.GetJSON(ctx, e.cfg.BaseURL, params, &resp); err != nil {
		return TransferPage{}, fmt.Errorf("etherscan tokentx: %w", err)
	}

	var raw []tokenTransfer
	if err := json.Unmarshal(resp.Result, &raw); err != nil {
		// Errors come back as status "0" with a string result.
		var msg string
		_ = json.Unmarshal(resp.Result, &msg)
		return TransferPage{}, fmt.Errorf("etherscan tokentx: %w", classifyMessage(resp.Message+": "+msg))
	}

	events := make([]model.TransferEvent, 0, len(raw))
	for _, item := range raw {
		ev, err := item.toEvent()
		if err != nil {
			return TransferPage{}, fmt.Errorf("etherscan tokentx %s: %w", item.Hash, err)
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].BlockNumber < events[j].BlockNumber
	})

	return TrimIncompleteBlock(events, e.cfg.PageCap), nil
}

func (t tokenTransfer) toEvent() (model.TransferEvent, error) {
	block, err := strconv.ParseUint(t.BlockNumber, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: block number %q", provider.ErrBadResponse, t.BlockNumber)
	}
	ts, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: timestamp %q", provider.ErrBadResponse, t.TimeStamp)
	}
	return model.TransferEvent{
		Hash:        t.Hash,
		BlockNumber: block,
		Timestamp:   ts,
		GasPrice:    t.GasPrice,
		GasUsed:     t.GasUsed,
	}, nil
}

func classifyMessage(msg string) error {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "timeout") {
		return fmt.Errorf("%w: %s", provider.ErrTransient, msg)
	}
	return fmt.Errorf("%w: %s", provider.ErrBadResponse, msg)
}
