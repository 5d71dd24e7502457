package model

import (
	"encoding/json"
	"testing"
)

func TestEnrichmentTaskJSONFieldNames(t *testing.T) {
	task := EnrichmentTask{
		PoolAddress:     "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
		ChainID:         1,
		ChainType:       ChainTypeEthereum,
		ContractAddress: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		PriceSymbol:     "ETHUSDT",
		StartBlock:      1981,
		EndBlock:        2000,
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"pool_address", "chain_id", "chain_type", "contract_address", "price_symbol", "start_block", "end_block"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %s in %s", key, data)
		}
	}
	if decoded["chain_type"] != "ethereum" {
		t.Fatalf("chain type mismatch: %v", decoded["chain_type"])
	}
}

func TestEnrichmentTaskValidate(t *testing.T) {
	valid := EnrichmentTask{PoolAddress: "0xabc", ChainID: 1, StartBlock: 10, EndBlock: 10}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []EnrichmentTask{
		{ChainID: 1, StartBlock: 1, EndBlock: 2},
		{PoolAddress: "0xabc", StartBlock: 1, EndBlock: 2},
		{PoolAddress: "0xabc", ChainID: 1, StartBlock: 5, EndBlock: 4},
	}
	for i, tc := range cases {
		if err := tc.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestTransferEventTimestampMillis(t *testing.T) {
	ev := TransferEvent{Timestamp: 1700000000}
	if got := ev.TimestampMillis(); got != 1700000000000 {
		t.Fatalf("millis mismatch: %d", got)
	}
}
