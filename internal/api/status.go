package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

const ttlDefault = ttlcache.DefaultTTL

type statusResponse struct {
	Status           string `json:"status"`
	BlocksBehind     uint64 `json:"blocksBehind"`
	LatestBlock      uint64 `json:"latestBlock"`
	CurrentSyncBlock uint64 `json:"currentSyncBlock"`
	ChainID          int64  `json:"chainId"`
	PoolAddress      string `json:"poolAddress"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	pool, handler, ok := s.findPool(address)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pool %s is not tracked", address))
		return
	}

	key := fmt.Sprintf("%d:%s", pool.ChainID, handler.Normalize(pool.Address))
	if item := s.statusCache.Get(key); item != nil {
		writeJSON(w, http.StatusOK, item.Value())
		return
	}

	heads, ok := s.heads[pool.ChainType]
	if !ok {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("no head source for %s", pool.ChainType))
		return
	}
	head, err := heads.HeadBlockNumber(r.Context())
	if err != nil {
		s.logger.Warn("head lookup failed", zap.Error(err), zap.String("pool", pool.Address))
		writeError(w, http.StatusBadGateway, "latest block unavailable")
		return
	}
	cursor, err := handler.CurrentBlock(r.Context(), pool.Address, pool.ChainID)
	if errors.Is(err, storage.ErrPoolNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pool %s is not registered", address))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var behind uint64
	if head > cursor {
		behind = head - cursor
	}
	resp := statusResponse{
		Status:           fmt.Sprintf("DB is %d blocks behind", behind),
		BlocksBehind:     behind,
		LatestBlock:      head,
		CurrentSyncBlock: cursor,
		ChainID:          pool.ChainID,
		PoolAddress:      pool.Address,
	}
	s.statusCache.Set(key, resp, ttlDefault)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) findPool(address string) (model.Pool, chain.Handler, bool) {
	for _, pool := range s.pools {
		handler, err := s.registry.Handler(pool.ChainType)
		if err != nil {
			continue
		}
		if handler.Normalize(pool.Address) == handler.Normalize(address) {
			return pool, handler, true
		}
	}
	return model.Pool{}, nil, false
}
